package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
)

type dashboardStudentStore interface {
	All(ctx context.Context) ([]models.Student, error)
}

type dashboardOccurrenceStore interface {
	List(ctx context.Context, filter models.OccurrenceFilter) ([]models.CriticalOccurrence, int, error)
}

// DashboardService computes the aggregate panel for direction and
// coordination. Every figure is derived on demand from current state.
type DashboardService struct {
	students    dashboardStudentStore
	occurrences dashboardOccurrenceStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(students dashboardStudentStore, occurrences dashboardOccurrenceStore, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:    students,
		occurrences: occurrences,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Summary builds the full dashboard snapshot.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	students, err := s.students.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	resp := &dto.DashboardResponse{
		TotalStudents: len(students),
		RiskDistribution: map[models.RiskLevel]int{
			models.RiskLow:    0,
			models.RiskMedium: 0,
			models.RiskHigh:   0,
		},
		StageCounts: map[models.Stage]int{
			models.StageTriage:     0,
			models.StageAssessment: 0,
			models.StageFollowUp:   0,
			models.StageCompleted:  0,
		},
		InterventionsByState: map[models.InterventionStatus]int{
			models.InterventionAguardando:       0,
			models.InterventionEmAcompanhamento: 0,
			models.InterventionConcluido:        0,
		},
		ClassBreakdown: []dto.ClassRiskBreakdown{},
	}

	byClass := map[string]*dto.ClassRiskBreakdown{}
	nowUTC := s.now()
	for i := range students {
		student := &students[i]
		resp.RiskDistribution[student.RiskLevel]++
		resp.StageCounts[StageOf(student)]++
		if student.PsychReferral && len(student.PsychAssessments) == 0 {
			resp.ReferralsAwaiting++
		}

		breakdown, ok := byClass[student.ClassName]
		if !ok {
			breakdown = &dto.ClassRiskBreakdown{ClassName: student.ClassName}
			byClass[student.ClassName] = breakdown
		}
		switch student.RiskLevel {
		case models.RiskHigh:
			breakdown.High++
		case models.RiskMedium:
			breakdown.Medium++
		default:
			breakdown.Low++
		}

		for j := range student.Interventions {
			intervention := &student.Interventions[j]
			resp.InterventionsByState[intervention.Status]++
			if intervention.Status != models.InterventionConcluido {
				resp.OpenInterventions++
			}
			if intervention.Overdue(nowUTC) {
				resp.OverdueInterventions++
			}
		}
	}

	classes := make([]string, 0, len(byClass))
	for name := range byClass {
		classes = append(classes, name)
	}
	sort.Strings(classes)
	for _, name := range classes {
		resp.ClassBreakdown = append(resp.ClassBreakdown, *byClass[name])
	}

	occurrences, _, err := s.occurrences.List(ctx, models.OccurrenceFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrences")
	}
	for i := range occurrences {
		occurrence := &occurrences[i]
		switch occurrence.Status {
		case models.OccurrenceReported, models.OccurrenceInTreatment:
			resp.OpenOccurrences++
		}
		resp.OpenPendingTasks += occurrence.OpenTaskCount()
	}

	return resp, nil
}

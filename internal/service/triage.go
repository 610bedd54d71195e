package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
)

// StageOf routes a student into one of the four queues. Pure read; callers
// must recompute it after every mutation instead of caching the result.
//
// First match wins:
//  1. an unaccepted, unfinished multidisciplinary intervention forces triage;
//  2. a referral with no psych assessment and no accepted multidisciplinary
//     intervention also lands in triage;
//  3. otherwise the psych status decides.
func StageOf(s *models.Student) models.Stage {
	for _, intervention := range s.Interventions {
		if models.MultidisciplinaryCategories[intervention.ActionCategory] &&
			intervention.AcceptedBy == "" &&
			intervention.Status != models.InterventionConcluido {
			return models.StageTriage
		}
	}

	if s.PsychReferral && len(s.PsychAssessments) == 0 && !hasAcceptedMultidisciplinary(s) {
		return models.StageTriage
	}

	if !s.PsychReferral {
		return models.StageCompleted
	}
	if len(s.PsychAssessments) == 0 {
		return models.StageAssessment
	}
	if s.LatestPsychAssessment().NecessitaAcompanhamento {
		return models.StageFollowUp
	}
	return models.StageCompleted
}

func hasAcceptedMultidisciplinary(s *models.Student) bool {
	for _, intervention := range s.Interventions {
		if models.MultidisciplinaryCategories[intervention.ActionCategory] && intervention.AcceptedBy != "" {
			return true
		}
	}
	return false
}

type triageStudentStore interface {
	All(ctx context.Context) ([]models.Student, error)
}

// TriageService buckets students into kanban queues for the
// multidisciplinary team.
type TriageService struct {
	repo   triageStudentStore
	logger *zap.Logger
}

// NewTriageService constructs the service.
func NewTriageService(repo triageStudentStore, logger *zap.Logger) *TriageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageService{repo: repo, logger: logger}
}

// Queues returns every student bucketed by stage.
func (s *TriageService) Queues(ctx context.Context) (*dto.QueuesResponse, error) {
	students, err := s.repo.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	queues := &dto.QueuesResponse{
		Triage:     []dto.StudentSummary{},
		Assessment: []dto.StudentSummary{},
		FollowUp:   []dto.StudentSummary{},
		Completed:  []dto.StudentSummary{},
	}
	for i := range students {
		summary := Summarize(&students[i])
		switch summary.Stage {
		case models.StageTriage:
			queues.Triage = append(queues.Triage, summary)
		case models.StageAssessment:
			queues.Assessment = append(queues.Assessment, summary)
		case models.StageFollowUp:
			queues.FollowUp = append(queues.FollowUp, summary)
		default:
			queues.Completed = append(queues.Completed, summary)
		}
	}
	return queues, nil
}

// ListByStage returns one queue.
func (s *TriageService) ListByStage(ctx context.Context, stage models.Stage) ([]dto.StudentSummary, error) {
	switch stage {
	case models.StageTriage, models.StageAssessment, models.StageFollowUp, models.StageCompleted:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown stage")
	}

	students, err := s.repo.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	result := []dto.StudentSummary{}
	for i := range students {
		summary := Summarize(&students[i])
		if summary.Stage == stage {
			result = append(result, summary)
		}
	}
	return result, nil
}

// Summarize projects a student into the condensed queue view, recomputing
// the stage bucket.
func Summarize(student *models.Student) dto.StudentSummary {
	open := 0
	for _, intervention := range student.Interventions {
		if intervention.Status != models.InterventionConcluido {
			open++
		}
	}
	return dto.StudentSummary{
		ID:                student.ID,
		Name:              student.Name,
		Enrollment:        student.Enrollment,
		ClassName:         student.ClassName,
		RiskLevel:         student.RiskLevel,
		Stage:             StageOf(student),
		PsychReferral:     student.PsychReferral,
		ReferralReason:    student.ReferralReason,
		OpenInterventions: open,
	}
}

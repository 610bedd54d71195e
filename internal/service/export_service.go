package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/simp-monitor-api/internal/models"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
	"github.com/noah-isme/simp-monitor-api/pkg/export"
)

type exportStudentStore interface {
	All(ctx context.Context) ([]models.Student, error)
}

// ExportService renders intervention listings as CSV or PDF for
// coordination meetings.
type ExportService struct {
	repo   exportStudentStore
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs the service.
func NewExportService(repo exportStudentStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var interventionExportHeaders = []string{
	"Aluno", "Turma", "Categoria", "Ferramenta", "Objetivo", "Responsável", "Status", "Prazo", "Atrasada",
}

// InterventionsCSV renders all interventions matching the filter as CSV.
func (s *ExportService) InterventionsCSV(ctx context.Context, filter models.InterventionFilter) ([]byte, error) {
	dataset, err := s.interventionDataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// InterventionsPDF renders the same listing as a titled PDF table.
func (s *ExportService) InterventionsPDF(ctx context.Context, filter models.InterventionFilter) ([]byte, error) {
	dataset, err := s.interventionDataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Relatório de Intervenções - %s", s.now().Format("02/01/2006"))
	payload, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

func (s *ExportService) interventionDataset(ctx context.Context, filter models.InterventionFilter) (*export.Dataset, error) {
	students, err := s.repo.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	type row struct {
		studentName string
		createdAt   time.Time
		data        map[string]string
	}

	now := s.now()
	rows := []row{}
	for i := range students {
		student := &students[i]
		for j := range student.Interventions {
			intervention := &student.Interventions[j]
			if !matchesInterventionFilter(intervention, filter, now) {
				continue
			}
			deadline := ""
			if intervention.PendingUntil != nil {
				deadline = intervention.PendingUntil.Format("02/01/2006")
			}
			overdue := "Não"
			if intervention.Overdue(now) {
				overdue = "Sim"
			}
			rows = append(rows, row{
				studentName: student.Name,
				createdAt:   intervention.CreatedAt,
				data: map[string]string{
					"Aluno":       student.Name,
					"Turma":       student.ClassName,
					"Categoria":   string(intervention.ActionCategory),
					"Ferramenta":  intervention.ActionTool,
					"Objetivo":    intervention.Objective,
					"Responsável": intervention.Responsible,
					"Status":      string(intervention.Status),
					"Prazo":       deadline,
					"Atrasada":    overdue,
				},
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].studentName != rows[j].studentName {
			return strings.ToLower(rows[i].studentName) < strings.ToLower(rows[j].studentName)
		}
		return rows[i].createdAt.Before(rows[j].createdAt)
	})

	dataset := &export.Dataset{Headers: interventionExportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		dataset.Rows = append(dataset.Rows, r.data)
	}
	return dataset, nil
}

func matchesInterventionFilter(i *models.Intervention, filter models.InterventionFilter, now time.Time) bool {
	if filter.StudentID != "" && i.StudentID != filter.StudentID {
		return false
	}
	if filter.Status != "" && i.Status != filter.Status {
		return false
	}
	if filter.Category != "" && i.ActionCategory != filter.Category {
		return false
	}
	if filter.AcceptedBy != "" && i.AcceptedBy != filter.AcceptedBy {
		return false
	}
	if filter.OverdueOnly && !i.Overdue(now) {
		return false
	}
	return true
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
	"github.com/noah-isme/simp-monitor-api/pkg/export"
	"github.com/noah-isme/simp-monitor-api/pkg/jobs"
	"github.com/noah-isme/simp-monitor-api/pkg/storage"
)

type reportStudentStore interface {
	Get(ctx context.Context, id string) (*models.Student, error)
}

type caseReport struct {
	ID          string
	StudentID   string
	Status      dto.CaseReportStatus
	RequestedBy string
	RequestedAt time.Time
	CompletedAt *time.Time
	FilePath    string
	Error       string
}

// ReportService generates full student case dossiers as PDFs in the
// background and hands out signed download URLs once they finish.
type ReportService struct {
	students reportStudentStore
	queue    *jobs.Queue
	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	mu      sync.RWMutex
	reports map[string]*caseReport
}

// NewReportService wires the report pipeline. Call Start before enqueuing.
func NewReportService(students reportStudentStore, store *storage.LocalStorage, signer *storage.SignedURLSigner, concurrency, retries int, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		students: students,
		store:    store,
		signer:   signer,
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		reports:  map[string]*caseReport{},
	}
	s.queue = jobs.NewQueue("case-reports", s.process, jobs.QueueConfig{
		Workers:    concurrency,
		MaxRetries: retries,
		Logger:     logger,
	})
	return s
}

// Start launches the report workers.
func (s *ReportService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the workers.
func (s *ReportService) Stop() { s.queue.Stop() }

// Request enqueues generation of a case report for one student.
func (s *ReportService) Request(ctx context.Context, studentID string, req dto.CreateCaseReportRequest) (*dto.CaseReportResponse, error) {
	if _, err := s.students.Get(ctx, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	report := &caseReport{
		ID:          s.newID(),
		StudentID:   studentID,
		Status:      dto.ReportQueued,
		RequestedBy: req.RequestedBy,
		RequestedAt: s.now(),
	}
	s.mu.Lock()
	s.reports[report.ID] = report
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: report.ID, Type: "case-report", Payload: report.ID}); err != nil {
		s.setFailed(report.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report")
	}
	return s.view(report), nil
}

// Status returns the current state of a report job, including the signed
// download URL once completed.
func (s *ReportService) Status(ctx context.Context, reportID string) (*dto.CaseReportResponse, error) {
	s.mu.RLock()
	report, ok := s.reports[reportID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return s.view(report), nil
}

// OpenSigned validates a signed token and returns the file path to serve.
func (s *ReportService) OpenSigned(token string) (string, error) {
	reportID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid or expired download token")
	}
	s.mu.RLock()
	report, ok := s.reports[reportID]
	s.mu.RUnlock()
	if !ok || report.Status != dto.ReportCompleted || report.FilePath != relPath {
		return "", appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return s.store.Path(relPath), nil
}

func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	reportID, _ := job.Payload.(string)
	s.setStatus(reportID, dto.ReportRunning)

	s.mu.RLock()
	report, ok := s.reports[reportID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown report %s", reportID)
	}

	student, err := s.students.Get(ctx, report.StudentID)
	if err != nil {
		s.setFailed(reportID, err)
		return err
	}

	payload, err := s.pdf.RenderDocument(
		fmt.Sprintf("Dossiê do Aluno - %s", student.Name),
		buildCaseSections(student, s.now()),
	)
	if err != nil {
		s.setFailed(reportID, err)
		return err
	}

	relPath := fmt.Sprintf("case-reports/%s.pdf", reportID)
	if _, err := s.store.Save(relPath, payload); err != nil {
		s.setFailed(reportID, err)
		return err
	}

	now := s.now()
	s.mu.Lock()
	if report, ok := s.reports[reportID]; ok {
		report.Status = dto.ReportCompleted
		report.CompletedAt = &now
		report.FilePath = relPath
		report.Error = ""
	}
	s.mu.Unlock()
	s.logger.Info("case report generated", zap.String("report_id", reportID), zap.String("student_id", report.StudentID))
	return nil
}

func (s *ReportService) setStatus(reportID string, status dto.CaseReportStatus) {
	s.mu.Lock()
	if report, ok := s.reports[reportID]; ok {
		report.Status = status
	}
	s.mu.Unlock()
}

func (s *ReportService) setFailed(reportID string, err error) {
	s.mu.Lock()
	if report, ok := s.reports[reportID]; ok {
		report.Status = dto.ReportFailed
		report.Error = err.Error()
	}
	s.mu.Unlock()
}

func (s *ReportService) view(report *caseReport) *dto.CaseReportResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := &dto.CaseReportResponse{
		ID:          report.ID,
		StudentID:   report.StudentID,
		Status:      report.Status,
		RequestedBy: report.RequestedBy,
		RequestedAt: report.RequestedAt,
		CompletedAt: report.CompletedAt,
		Error:       report.Error,
	}
	if report.Status == dto.ReportCompleted && report.FilePath != "" {
		token, expiresAt, err := s.signer.Generate(report.ID, report.FilePath)
		if err != nil {
			s.logger.Warn("failed to sign report url", zap.String("report_id", report.ID), zap.Error(err))
			return resp
		}
		resp.DownloadURL = fmt.Sprintf("/api/v1/reports/download?token=%s", token)
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

func buildCaseSections(student *models.Student, now time.Time) []export.Section {
	sections := []export.Section{{
		Heading: "Identificação",
		Lines: []string{
			fmt.Sprintf("Nome: %s", student.Name),
			fmt.Sprintf("Matrícula: %s", student.Enrollment),
			fmt.Sprintf("Turma: %s", student.ClassName),
			fmt.Sprintf("Nível de risco: %s", student.RiskLevel),
			fmt.Sprintf("Fila atual: %s", StageOf(student)),
		},
	}}

	if len(student.Assessments) > 0 {
		table := &export.Dataset{Headers: []string{"Data", "Conceito", "Defasadas", "Professor"}}
		for _, a := range student.Assessments {
			table.Rows = append(table.Rows, map[string]string{
				"Data":      a.Date.Format("02/01/2006"),
				"Conceito":  string(a.ConceitoGeral),
				"Defasadas": fmt.Sprintf("%d", a.LaggingCount()),
				"Professor": a.RecordedBy,
			})
		}
		sections = append(sections, export.Section{Heading: "Avaliações Pedagógicas", Table: table})
	}

	if len(student.PsychAssessments) > 0 {
		table := &export.Dataset{Headers: []string{"Data", "Tipo", "Classificação", "Profissional"}}
		for _, p := range student.PsychAssessments {
			table.Rows = append(table.Rows, map[string]string{
				"Data":          p.Date.Format("02/01/2006"),
				"Tipo":          string(p.Type),
				"Classificação": string(p.Classification),
				"Profissional":  p.Professional,
			})
		}
		sections = append(sections, export.Section{Heading: "Avaliações Psicológicas", Table: table})
	}

	if len(student.Interventions) > 0 {
		table := &export.Dataset{Headers: []string{"Categoria", "Objetivo", "Status", "Atrasada"}}
		for _, i := range student.Interventions {
			overdue := "Não"
			if i.Overdue(now) {
				overdue = "Sim"
			}
			table.Rows = append(table.Rows, map[string]string{
				"Categoria": string(i.ActionCategory),
				"Objetivo":  i.Objective,
				"Status":    string(i.Status),
				"Atrasada":  overdue,
			})
		}
		sections = append(sections, export.Section{Heading: "Intervenções", Table: table})
	}

	if student.FamilyContact != nil {
		lines := []string{}
		for idx, attempt := range student.FamilyContact.Attempts {
			state := "pendente"
			if attempt.Done {
				state = "realizada"
				if attempt.Date != nil {
					state = fmt.Sprintf("realizada em %s", attempt.Date.Format("02/01/2006"))
				}
			}
			lines = append(lines, fmt.Sprintf("Tentativa %d: %s", idx+1, state))
		}
		if student.FamilyContact.HouveRetorno != nil {
			retorno := "não"
			if *student.FamilyContact.HouveRetorno {
				retorno = "sim"
			}
			lines = append(lines, fmt.Sprintf("Houve retorno: %s", retorno))
		}
		sections = append(sections, export.Section{Heading: "Contato com a Família", Lines: lines})
	}

	if len(student.Timeline) > 0 {
		lines := make([]string, 0, len(student.Timeline))
		for _, event := range student.Timeline {
			lines = append(lines, fmt.Sprintf("%s [%s] %s", event.Date.Format("02/01/2006"), event.Type, event.Description))
		}
		sections = append(sections, export.Section{Heading: "Linha do Tempo", Lines: lines})
	}

	return sections
}

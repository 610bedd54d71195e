package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
)

type occurrenceStore interface {
	Create(ctx context.Context, occurrence *models.CriticalOccurrence) error
	Get(ctx context.Context, id string) (*models.CriticalOccurrence, error)
	List(ctx context.Context, filter models.OccurrenceFilter) ([]models.CriticalOccurrence, int, error)
	Save(ctx context.Context, occurrence *models.CriticalOccurrence) error
}

type occurrenceStudentStore interface {
	Get(ctx context.Context, id string) (*models.Student, error)
	AppendTimeline(ctx context.Context, studentID string, event models.TimelineEvent) error
}

// OccurrenceService runs the critical occurrence escalation workflow:
// REPORTED -> IN_TREATMENT -> RESOLVED -> ARCHIVED. Resolution is blocked
// while any pending outreach task remains open.
type OccurrenceService struct {
	repo     occurrenceStore
	students occurrenceStudentStore
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewOccurrenceService constructs the service.
func NewOccurrenceService(repo occurrenceStore, students occurrenceStudentStore, logger *zap.Logger) *OccurrenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccurrenceService{
		repo:     repo,
		students: students,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Report opens a critical occurrence for a student.
func (s *OccurrenceService) Report(ctx context.Context, req dto.ReportOccurrenceRequest) (*models.CriticalOccurrence, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description is required")
	}
	if _, err := s.students.Get(ctx, req.StudentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	now := s.now()
	occurrence := &models.CriticalOccurrence{
		ID:          s.newID(),
		StudentID:   req.StudentID,
		ReportedBy:  req.ReportedBy,
		Description: strings.TrimSpace(req.Description),
		Status:      models.OccurrenceReported,
		Tasks:       []models.PendingTask{},
		Log: []models.OccurrenceLogEntry{{
			At:     now,
			Author: req.ReportedBy,
			Text:   "Ocorrência crítica registrada",
		}},
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, occurrence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create occurrence")
	}

	s.appendStudentTimeline(ctx, req.StudentID, models.TimelineEvent{
		ID:          s.newID(),
		Type:        models.TimelineIntervention,
		Date:        now,
		Description: fmt.Sprintf("Ocorrência crítica reportada por %s", req.ReportedBy),
	})
	return occurrence, nil
}

// Assume moves the case into treatment.
func (s *OccurrenceService) Assume(ctx context.Context, occurrenceID string, req dto.AssumeOccurrenceRequest) (*models.CriticalOccurrence, error) {
	return s.mutate(ctx, occurrenceID, func(occurrence *models.CriticalOccurrence) error {
		if occurrence.Status != models.OccurrenceReported {
			return appErrors.Clone(appErrors.ErrConflict, "occurrence is not awaiting treatment")
		}
		occurrence.Status = models.OccurrenceInTreatment
		occurrence.AssumedBy = req.Actor
		s.appendLog(occurrence, req.Actor, "Caso assumido pela coordenação/psicologia")
		return nil
	})
}

// FamilyAttempt registers outreach to the family over a channel and opens
// exactly one pending callback task.
func (s *OccurrenceService) FamilyAttempt(ctx context.Context, occurrenceID string, req dto.FamilyAttemptRequest) (*models.CriticalOccurrence, error) {
	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "channel is required")
	}
	return s.mutate(ctx, occurrenceID, func(occurrence *models.CriticalOccurrence) error {
		if err := requireOpen(occurrence); err != nil {
			return err
		}
		occurrence.Tasks = append(occurrence.Tasks, models.PendingTask{
			ID:       s.newID(),
			Kind:     models.TaskFamilyCallback,
			Label:    fmt.Sprintf("Aguardando retorno da família via %s", channel),
			OpenedBy: req.Actor,
			OpenedAt: s.now(),
		})
		s.appendLog(occurrence, req.Actor, fmt.Sprintf("Tentativa de contato com a família via %s", channel))
		return nil
	})
}

// LogReturn clears a family callback task with a manually logged response.
// Psychologist acceptance tasks cannot be cleared this way.
func (s *OccurrenceService) LogReturn(ctx context.Context, occurrenceID string, req dto.LogReturnRequest) (*models.CriticalOccurrence, error) {
	return s.mutate(ctx, occurrenceID, func(occurrence *models.CriticalOccurrence) error {
		if err := requireOpen(occurrence); err != nil {
			return err
		}
		task, err := findTask(occurrence, req.TaskID)
		if err != nil {
			return err
		}
		if task.Kind != models.TaskFamilyCallback {
			return appErrors.Clone(appErrors.ErrValidation, "only family callback tasks accept a manual return")
		}
		removeTask(occurrence, req.TaskID)
		text := "Retorno da família registrado"
		if note := strings.TrimSpace(req.Note); note != "" {
			text = fmt.Sprintf("%s: %s", text, note)
		}
		s.appendLog(occurrence, req.Actor, text)
		return nil
	})
}

// EscalatePsychology opens the psychologist acceptance sub-workflow. The
// note is mandatory; the resulting task clears only via AcceptPsychologist.
func (s *OccurrenceService) EscalatePsychology(ctx context.Context, occurrenceID string, req dto.EscalatePsychRequest) (*models.CriticalOccurrence, error) {
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "escalation note is required")
	}
	occurrence, err := s.mutate(ctx, occurrenceID, func(occurrence *models.CriticalOccurrence) error {
		if err := requireOpen(occurrence); err != nil {
			return err
		}
		occurrence.Tasks = append(occurrence.Tasks, models.PendingTask{
			ID:       s.newID(),
			Kind:     models.TaskPsychAcceptance,
			Label:    "Aguardando aceite do psicólogo",
			OpenedBy: req.Actor,
			OpenedAt: s.now(),
		})
		s.appendLog(occurrence, req.Actor, fmt.Sprintf("Escalonado para psicologia: %s", note))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.appendStudentTimeline(ctx, occurrence.StudentID, models.TimelineEvent{
		ID:          s.newID(),
		Type:        models.TimelineReferral,
		Date:        s.now(),
		Description: fmt.Sprintf("Ocorrência crítica escalonada para psicologia por %s", req.Actor),
	})
	return occurrence, nil
}

// AcceptPsychologist clears a psychologist acceptance task.
func (s *OccurrenceService) AcceptPsychologist(ctx context.Context, occurrenceID string, req dto.AcceptPsychRequest) (*models.CriticalOccurrence, error) {
	return s.mutate(ctx, occurrenceID, func(occurrence *models.CriticalOccurrence) error {
		if err := requireOpen(occurrence); err != nil {
			return err
		}
		task, err := findTask(occurrence, req.TaskID)
		if err != nil {
			return err
		}
		if task.Kind != models.TaskPsychAcceptance {
			return appErrors.Clone(appErrors.ErrValidation, "task is not a psychologist acceptance")
		}
		removeTask(occurrence, req.TaskID)
		s.appendLog(occurrence, req.Professional, "Caso aceito pelo psicólogo")
		return nil
	})
}

// Resolve closes the occurrence with a mandatory memo. Blocked while any
// pending task is open.
func (s *OccurrenceService) Resolve(ctx context.Context, occurrenceID string, req dto.ResolveOccurrenceRequest) (*models.CriticalOccurrence, error) {
	resolution := strings.TrimSpace(req.Resolution)
	if resolution == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resolution memo is required")
	}
	occurrence, err := s.mutate(ctx, occurrenceID, func(occurrence *models.CriticalOccurrence) error {
		if err := requireOpen(occurrence); err != nil {
			return err
		}
		if occurrence.OpenTaskCount() > 0 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed,
				fmt.Sprintf("%d pending task(s) must be cleared before resolution", occurrence.OpenTaskCount()))
		}
		now := s.now()
		occurrence.Status = models.OccurrenceResolved
		occurrence.ResolutionAta = resolution
		occurrence.ResolvedAt = &now
		s.appendLog(occurrence, req.Actor, "Ocorrência resolvida com ata de encerramento")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.appendStudentTimeline(ctx, occurrence.StudentID, models.TimelineEvent{
		ID:          s.newID(),
		Type:        models.TimelineIntervention,
		Date:        s.now(),
		Description: fmt.Sprintf("Ocorrência crítica resolvida por %s", req.Actor),
	})
	return occurrence, nil
}

// RecordFollowUp registers the downstream follow-up required before a
// resolved occurrence may be archived.
func (s *OccurrenceService) RecordFollowUp(ctx context.Context, occurrenceID string, req dto.FollowUpRequest) (*models.CriticalOccurrence, error) {
	return s.mutate(ctx, occurrenceID, func(occurrence *models.CriticalOccurrence) error {
		if occurrence.Status != models.OccurrenceResolved {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "follow-up applies to resolved occurrences only")
		}
		occurrence.FollowUpDone = true
		s.appendLog(occurrence, req.Actor, fmt.Sprintf("Acompanhamento posterior registrado: %s", req.Note))
		return nil
	})
}

// Archive moves a resolved, followed-up occurrence into its terminal state.
func (s *OccurrenceService) Archive(ctx context.Context, occurrenceID string, req dto.ArchiveOccurrenceRequest) (*models.CriticalOccurrence, error) {
	return s.mutate(ctx, occurrenceID, func(occurrence *models.CriticalOccurrence) error {
		if occurrence.Status != models.OccurrenceResolved {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "only resolved occurrences can be archived")
		}
		if !occurrence.FollowUpDone {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "a follow-up record is required before archiving")
		}
		now := s.now()
		occurrence.Status = models.OccurrenceArchived
		occurrence.ArchivedAt = &now
		s.appendLog(occurrence, req.Actor, "Ocorrência arquivada")
		return nil
	})
}

// Get loads one occurrence.
func (s *OccurrenceService) Get(ctx context.Context, occurrenceID string) (*models.CriticalOccurrence, error) {
	occurrence, err := s.repo.Get(ctx, occurrenceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrence")
	}
	return occurrence, nil
}

// List returns occurrences matching the filter.
func (s *OccurrenceService) List(ctx context.Context, filter models.OccurrenceFilter) ([]models.CriticalOccurrence, *models.Pagination, error) {
	occurrences, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize <= 0 {
		pagination.PageSize = total
	}
	return occurrences, pagination, nil
}

func (s *OccurrenceService) mutate(ctx context.Context, occurrenceID string, fn func(*models.CriticalOccurrence) error) (*models.CriticalOccurrence, error) {
	occurrence, err := s.Get(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	if err := fn(occurrence); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, occurrence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save occurrence")
	}
	return occurrence, nil
}

func (s *OccurrenceService) appendLog(occurrence *models.CriticalOccurrence, author, text string) {
	occurrence.Log = append(occurrence.Log, models.OccurrenceLogEntry{
		At:     s.now(),
		Author: author,
		Text:   text,
	})
}

// appendStudentTimeline mirrors domain-significant occurrence events onto
// the student history. Timeline failures are logged, never fatal.
func (s *OccurrenceService) appendStudentTimeline(ctx context.Context, studentID string, event models.TimelineEvent) {
	if err := s.students.AppendTimeline(ctx, studentID, event); err != nil {
		s.logger.Warn("failed to append student timeline", zap.String("student_id", studentID), zap.Error(err))
	}
}

func requireOpen(occurrence *models.CriticalOccurrence) error {
	switch occurrence.Status {
	case models.OccurrenceResolved, models.OccurrenceArchived:
		return appErrors.Clone(appErrors.ErrFinalized, "occurrence already closed")
	default:
		return nil
	}
}

func findTask(occurrence *models.CriticalOccurrence, taskID string) (*models.PendingTask, error) {
	for i := range occurrence.Tasks {
		if occurrence.Tasks[i].ID == taskID {
			return &occurrence.Tasks[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "pending task not found")
}

func removeTask(occurrence *models.CriticalOccurrence, taskID string) {
	tasks := occurrence.Tasks[:0]
	for _, task := range occurrence.Tasks {
		if task.ID != taskID {
			tasks = append(tasks, task)
		}
	}
	occurrence.Tasks = tasks
}

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

type interventionStudentStore interface {
	Get(ctx context.Context, id string) (*models.Student, error)
	All(ctx context.Context) ([]models.Student, error)
	Save(ctx context.Context, student *models.Student) error
}

// InterventionService is the intervention lifecycle engine. Status moves
// only forward through AGUARDANDO -> EM_ACOMPANHAMENTO -> CONCLUIDO; every
// validation failure leaves the student record untouched.
type InterventionService struct {
	repo   interventionStudentStore
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewInterventionService constructs the service.
func NewInterventionService(repo interventionStudentStore, logger *zap.Logger) *InterventionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterventionService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Create registers an intervention in AGUARDANDO.
func (s *InterventionService) Create(ctx context.Context, req dto.CreateInterventionRequest) (*models.Intervention, error) {
	category, err := parseCategory(req.ActionCategory)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Objective) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "objective is required")
	}

	student, err := s.repo.Get(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	now := s.now()
	intervention := models.Intervention{
		ID:             s.newID(),
		StudentID:      student.ID,
		ActionCategory: category,
		Objective:      strings.TrimSpace(req.Objective),
		Responsible:    req.Responsible,
		Status:         models.InterventionAguardando,
		PendingUntil:   req.PendingUntil,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	student.Interventions = append(student.Interventions, intervention)
	student.Timeline = append(student.Timeline, models.TimelineEvent{
		ID:          s.newID(),
		Type:        models.TimelineIntervention,
		Date:        now,
		Description: fmt.Sprintf("Intervenção (%s) registrada por %s", category, req.Responsible),
	})

	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return &intervention, nil
}

// StartPlan confirms the contingency plan and promotes the intervention to
// EM_ACOMPANHAMENTO. Tool selection is mandatory except for the
// multidisciplinary team, which starts with a triage placeholder.
func (s *InterventionService) StartPlan(ctx context.Context, interventionID string, req dto.StartPlanRequest) (*models.Intervention, error) {
	category, err := parseCategory(req.ActionCategory)
	if err != nil {
		return nil, err
	}
	tool := strings.TrimSpace(req.ActionTool)
	if tool == "" {
		if category != models.CategoryEquipeMultidisciplinar {
			return nil, appErrors.Clone(appErrors.ErrValidation, "action tool is required for this category")
		}
		tool = models.DefaultMultidisciplinaryTool
	}
	if strings.TrimSpace(req.Justification) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "justification is required")
	}

	return s.mutate(ctx, interventionID, func(intervention *models.Intervention, student *models.Student) error {
		if intervention.Status == models.InterventionConcluido {
			return appErrors.Clone(appErrors.ErrFinalized, "intervention already closed")
		}
		now := s.now()
		intervention.ActionCategory = category
		intervention.ActionTool = tool
		intervention.Objective = strings.TrimSpace(req.Justification)
		if req.PendingUntil != nil {
			intervention.PendingUntil = req.PendingUntil
		}
		intervention.Status = models.InterventionEmAcompanhamento
		intervention.UpdatedAt = now

		student.Timeline = append(student.Timeline, models.TimelineEvent{
			ID:          s.newID(),
			Type:        models.TimelineIntervention,
			Date:        now,
			Description: fmt.Sprintf("Plano de contingência confirmado por %s (%s / %s)", req.ConfirmedBy, category, tool),
		})
		return nil
	})
}

// AddUpdate appends a progress note. A final update also closes the
// intervention using the note as resolution memo, in the same write.
func (s *InterventionService) AddUpdate(ctx context.Context, interventionID string, req dto.AddInterventionUpdateRequest) (*models.Intervention, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "update content is required")
	}

	return s.mutate(ctx, interventionID, func(intervention *models.Intervention, student *models.Student) error {
		if intervention.Status == models.InterventionConcluido {
			return appErrors.Clone(appErrors.ErrFinalized, "intervention already closed")
		}
		now := s.now()
		intervention.Updates = append(intervention.Updates, models.InterventionUpdate{
			ID:      s.newID(),
			Author:  req.Author,
			Date:    now,
			Content: content,
			Final:   req.Final,
		})
		description := fmt.Sprintf("Atualização de intervenção registrada por %s", req.Author)
		if req.Final {
			intervention.Status = models.InterventionConcluido
			intervention.ResolutionAta = content
			description = fmt.Sprintf("Intervenção concluída por %s via atualização final", req.Author)
		}
		intervention.UpdatedAt = now

		student.Timeline = append(student.Timeline, models.TimelineEvent{
			ID:          s.newID(),
			Type:        models.TimelineIntervention,
			Date:        now,
			Description: description,
		})
		return nil
	})
}

// Resolve closes the intervention with an explicit resolution memo.
func (s *InterventionService) Resolve(ctx context.Context, interventionID string, req dto.ResolveInterventionRequest) (*models.Intervention, error) {
	resolution := strings.TrimSpace(req.Resolution)
	if resolution == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resolution text is required")
	}

	return s.mutate(ctx, interventionID, func(intervention *models.Intervention, student *models.Student) error {
		if intervention.Status == models.InterventionConcluido {
			return appErrors.Clone(appErrors.ErrConflict, "intervention already resolved")
		}
		now := s.now()
		intervention.Status = models.InterventionConcluido
		intervention.ResolutionAta = resolution
		intervention.UpdatedAt = now

		student.Timeline = append(student.Timeline, models.TimelineEvent{
			ID:          s.newID(),
			Type:        models.TimelineIntervention,
			Date:        now,
			Description: fmt.Sprintf("Intervenção concluída por %s", req.ResolvedBy),
		})
		return nil
	})
}

// Assign sets the accepting professional. Accepting an AGUARDANDO case
// implicitly starts treatment. Re-assigning the same professional is a
// no-op: no duplicate timeline entry.
func (s *InterventionService) Assign(ctx context.Context, interventionID string, req dto.AssignInterventionRequest) (*models.Intervention, error) {
	professional := strings.TrimSpace(req.Professional)
	if professional == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "professional is required")
	}

	return s.mutate(ctx, interventionID, func(intervention *models.Intervention, student *models.Student) error {
		if intervention.Status == models.InterventionConcluido {
			return appErrors.Clone(appErrors.ErrFinalized, "intervention already closed")
		}
		if intervention.AcceptedBy == professional {
			return nil
		}
		now := s.now()
		intervention.AcceptedBy = professional
		if intervention.Status == models.InterventionAguardando {
			intervention.Status = models.InterventionEmAcompanhamento
		}
		intervention.UpdatedAt = now

		student.Timeline = append(student.Timeline, models.TimelineEvent{
			ID:          s.newID(),
			Type:        models.TimelineIntervention,
			Date:        now,
			Description: fmt.Sprintf("Caso aceito por %s", professional),
		})
		return nil
	})
}

// Get returns one intervention with its derived overdue flag.
func (s *InterventionService) Get(ctx context.Context, interventionID string) (*dto.InterventionView, error) {
	_, intervention, err := s.find(ctx, interventionID)
	if err != nil {
		return nil, err
	}
	return &dto.InterventionView{Intervention: *intervention, Overdue: intervention.Overdue(s.now())}, nil
}

// List returns interventions across students matching the filter, newest
// first, overdue recomputed per record.
func (s *InterventionService) List(ctx context.Context, filter models.InterventionFilter) ([]dto.InterventionView, *models.Pagination, error) {
	students, err := s.repo.All(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	now := s.now()
	views := []dto.InterventionView{}
	for i := range students {
		if filter.StudentID != "" && students[i].ID != filter.StudentID {
			continue
		}
		for _, intervention := range students[i].Interventions {
			if filter.Status != "" && intervention.Status != filter.Status {
				continue
			}
			if filter.Category != "" && intervention.ActionCategory != filter.Category {
				continue
			}
			if filter.AcceptedBy != "" && intervention.AcceptedBy != filter.AcceptedBy {
				continue
			}
			overdue := intervention.Overdue(now)
			if filter.OverdueOnly && !overdue {
				continue
			}
			views = append(views, dto.InterventionView{Intervention: intervention, Overdue: overdue})
		}
	}

	total := len(views)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = total
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return views[start:end], pagination, nil
}

// mutate loads the owning student, applies fn to the targeted intervention
// and saves the whole record. fn returning an error aborts without writing.
func (s *InterventionService) mutate(ctx context.Context, interventionID string, fn func(*models.Intervention, *models.Student) error) (*models.Intervention, error) {
	student, intervention, err := s.find(ctx, interventionID)
	if err != nil {
		return nil, err
	}
	if err := fn(intervention, student); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	result := *intervention
	return &result, nil
}

func (s *InterventionService) find(ctx context.Context, interventionID string) (*models.Student, *models.Intervention, error) {
	students, err := s.repo.All(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	for i := range students {
		for j := range students[i].Interventions {
			if students[i].Interventions[j].ID == interventionID {
				return &students[i], &students[i].Interventions[j], nil
			}
		}
	}
	return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "intervention not found")
}

func parseCategory(raw string) (models.ActionCategory, error) {
	switch models.ActionCategory(strings.ToUpper(strings.TrimSpace(raw))) {
	case models.CategoryAcoesInternas:
		return models.CategoryAcoesInternas, nil
	case models.CategoryAcionarFamilia:
		return models.CategoryAcionarFamilia, nil
	case models.CategoryAcionarPsicologia:
		return models.CategoryAcionarPsicologia, nil
	case models.CategoryAcionarPsicopedagogia:
		return models.CategoryAcionarPsicopedagogia, nil
	case models.CategoryEquipeMultidisciplinar:
		return models.CategoryEquipeMultidisciplinar, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown action category")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
)

type studentStore interface {
	Create(ctx context.Context, student *models.Student) error
	Get(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	Save(ctx context.Context, student *models.Student) error
}

// StudentService owns student registration, assessment intake, referrals,
// family contact tracking and document attachments. Assessment intake is the
// write point where riskLevel is kept consistent with the classifier.
type StudentService struct {
	repo     studentStore
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewStudentService constructs the service.
func NewStudentService(repo studentStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:     repo,
		validate: validate,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Register adds a student with no history and low risk.
func (s *StudentService) Register(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		ID:               s.newID(),
		Name:             strings.TrimSpace(req.Name),
		Enrollment:       strings.TrimSpace(req.Enrollment),
		ClassName:        strings.TrimSpace(req.ClassName),
		RiskLevel:        models.RiskLow,
		Assessments:      []models.Assessment{},
		PsychAssessments: []models.PsychAssessment{},
		Interventions:    []models.Intervention{},
		Timeline:         []models.TimelineEvent{},
		Documents:        []models.StudentDocument{},
	}
	if student.Name == "" || student.Enrollment == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name and enrollment are required")
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Get loads one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// List returns students matching the filter. Stage filtering recomputes the
// bucket per student instead of trusting any stored value.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]dto.StudentSummary, *models.Pagination, error) {
	page, pageSize := filter.Page, filter.PageSize
	stage := filter.Stage
	if stage != "" {
		// Stage is derived, so pagination has to happen after routing.
		filter.Page = 0
		filter.PageSize = 0
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	summaries := make([]dto.StudentSummary, 0, len(students))
	for i := range students {
		summary := Summarize(&students[i])
		if stage != "" && summary.Stage != stage {
			continue
		}
		summaries = append(summaries, summary)
	}
	if stage != "" {
		total = len(summaries)
		summaries = pageOf(summaries, page, pageSize)
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize <= 0 {
		pagination.PageSize = total
	}
	return summaries, pagination, nil
}

func pageOf(summaries []dto.StudentSummary, page, pageSize int) []dto.StudentSummary {
	if pageSize <= 0 {
		return summaries
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(summaries) {
		return []dto.StudentSummary{}
	}
	end := start + pageSize
	if end > len(summaries) {
		end = len(summaries)
	}
	return summaries[start:end]
}

// RecordAssessment appends an immutable assessment, reclassifies the
// student's risk and flags a psych referral when a perceived difficulty
// comes in at high risk.
func (s *StudentService) RecordAssessment(ctx context.Context, studentID string, req dto.CreateAssessmentRequest) (*models.Student, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	assessment, err := s.buildAssessment(req)
	if err != nil {
		return nil, err
	}

	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student.Assessments = append(student.Assessments, *assessment)
	student.RiskLevel = ClassifyRisk(*assessment)
	student.Timeline = append(student.Timeline, models.TimelineEvent{
		ID:   s.newID(),
		Type: models.TimelineAssessment,
		Date: assessment.Date,
		Description: fmt.Sprintf("Avaliação %dº bimestre/%d registrada por %s (conceito %s)",
			assessment.Bimester, assessment.Year, assessment.RecordedBy, assessment.ConceitoGeral),
	})

	if req.DificuldadePercebida && student.RiskLevel == models.RiskHigh && !student.PsychReferral {
		s.applyReferral(student, "Dificuldade percebida em avaliação com risco alto", assessment.RecordedBy)
	}

	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return student, nil
}

// RecordPsychAssessment appends a psychology team record.
func (s *StudentService) RecordPsychAssessment(ctx context.Context, studentID string, req dto.CreatePsychAssessmentRequest) (*models.Student, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid psych assessment payload")
	}
	psychType, err := parsePsychType(req.Type)
	if err != nil {
		return nil, err
	}
	classification, err := parseClassification(req.Classification)
	if err != nil {
		return nil, err
	}

	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	record := models.PsychAssessment{
		ID:                      s.newID(),
		Date:                    s.now(),
		Type:                    psychType,
		Classification:          classification,
		NecessitaAcompanhamento: req.NecessitaAcompanhamento,
		Observation:             strings.TrimSpace(req.Observation),
		PEI:                     models.PEIStatus(strings.ToUpper(strings.TrimSpace(req.PEI))),
		Professional:            req.Professional,
	}
	student.PsychAssessments = append(student.PsychAssessments, record)
	student.Timeline = append(student.Timeline, models.TimelineEvent{
		ID:          s.newID(),
		Type:        models.TimelinePsych,
		Date:        record.Date,
		Description: fmt.Sprintf("Avaliação psicológica (%s) registrada por %s", record.Type, record.Professional),
	})

	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return student, nil
}

// Refer flags the student for psychology triage.
func (s *StudentService) Refer(ctx context.Context, studentID string, req dto.ReferralRequest) (*models.Student, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}
	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.PsychReferral {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already referred")
	}

	s.applyReferral(student, strings.TrimSpace(req.Reason), req.ReferredBy)

	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return student, nil
}

// UpdateFamilyContact replaces the family contact record, enforcing the
// attempt ordering invariant in the domain layer.
func (s *StudentService) UpdateFamilyContact(ctx context.Context, studentID string, req dto.UpdateFamilyContactRequest) (*models.Student, error) {
	if len(req.Attempts) > models.FamilyContactAttempts {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at most three contact attempts are tracked")
	}

	contact := models.FamilyContact{
		HouveRetorno: req.HouveRetorno,
		Observation:  strings.TrimSpace(req.Observation),
	}
	for i, attempt := range req.Attempts {
		if attempt.Done && i > 0 && !req.Attempts[i-1].Done {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("attempt %d cannot be marked before attempt %d", i+1, i))
		}
		contact.Attempts[i] = models.FamilyContactAttempt{Done: attempt.Done, Date: attempt.Date}
	}

	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	previousDone := 0
	if student.FamilyContact != nil {
		for _, attempt := range student.FamilyContact.Attempts {
			if attempt.Done {
				previousDone++
			}
		}
	}
	newDone := 0
	for _, attempt := range contact.Attempts {
		if attempt.Done {
			newDone++
		}
	}
	if newDone < previousDone {
		return nil, appErrors.Clone(appErrors.ErrValidation, "completed contact attempts cannot be undone")
	}

	student.FamilyContact = &contact
	if newDone > previousDone {
		student.Timeline = append(student.Timeline, models.TimelineEvent{
			ID:          s.newID(),
			Type:        models.TimelineFamilyContact,
			Date:        s.now(),
			Description: fmt.Sprintf("Tentativa de contato familiar %d registrada por %s", newDone, req.UpdatedBy),
		})
	}

	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return student, nil
}

// AddDocument appends document metadata to the student record.
func (s *StudentService) AddDocument(ctx context.Context, studentID string, req dto.AddDocumentRequest) (*models.Student, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student.Documents = append(student.Documents, models.StudentDocument{
		ID:          s.newID(),
		Name:        strings.TrimSpace(req.Name),
		Type:        models.DocumentType(req.Type),
		Date:        s.now(),
		Responsible: req.Responsible,
		URL:         req.URL,
	})

	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return student, nil
}

func (s *StudentService) applyReferral(student *models.Student, reason, referredBy string) {
	student.PsychReferral = true
	student.ReferralReason = reason
	if student.FamilyContact == nil {
		student.FamilyContact = &models.FamilyContact{}
	}
	student.Timeline = append(student.Timeline, models.TimelineEvent{
		ID:          s.newID(),
		Type:        models.TimelineReferral,
		Date:        s.now(),
		Description: fmt.Sprintf("Encaminhamento para psicologia por %s: %s", referredBy, reason),
	})
}

func (s *StudentService) buildAssessment(req dto.CreateAssessmentRequest) (*models.Assessment, error) {
	dimensions := map[string]string{
		"leitura":       req.Leitura,
		"escrita":       req.Escrita,
		"matematica":    req.Matematica,
		"atencao":       req.Atencao,
		"comportamento": req.Comportamento,
	}
	parsed := make(map[string]models.DimensionLevel, len(dimensions))
	for name, raw := range dimensions {
		level, err := parseDimension(raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s level", name))
		}
		parsed[name] = level
	}

	conceito, err := parseConceito(req.ConceitoGeral)
	if err != nil {
		return nil, err
	}

	assessment := &models.Assessment{
		ID:                   s.newID(),
		Date:                 s.now(),
		Year:                 req.Year,
		Bimester:             req.Bimester,
		Leitura:              parsed["leitura"],
		Escrita:              parsed["escrita"],
		Matematica:           parsed["matematica"],
		Atencao:              parsed["atencao"],
		Comportamento:        parsed["comportamento"],
		ConceitoGeral:        conceito,
		DificuldadePercebida: req.DificuldadePercebida,
		Observation:          strings.TrimSpace(req.Observation),
		RecordedBy:           req.RecordedBy,
	}
	if req.Diagnostic != nil {
		assessment.Diagnostic = &models.DiagnosticDetail{
			Symptoms:     req.Diagnostic.Symptoms,
			ActionsTried: req.Diagnostic.ActionsTried,
			Frequencies:  req.Diagnostic.Frequencies,
		}
	}
	return assessment, nil
}

func parseDimension(raw string) (models.DimensionLevel, error) {
	switch models.DimensionLevel(strings.ToUpper(strings.TrimSpace(raw))) {
	case models.DimensionLagging:
		return models.DimensionLagging, nil
	case models.DimensionDeveloping:
		return models.DimensionDeveloping, nil
	case models.DimensionAdequate:
		return models.DimensionAdequate, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown dimension level")
	}
}

func parseConceito(raw string) (models.ConceitoGeral, error) {
	switch models.ConceitoGeral(strings.ToUpper(strings.TrimSpace(raw))) {
	case models.ConceitoInsuficiente:
		return models.ConceitoInsuficiente, nil
	case models.ConceitoRegular:
		return models.ConceitoRegular, nil
	case models.ConceitoBom:
		return models.ConceitoBom, nil
	case models.ConceitoOtimo:
		return models.ConceitoOtimo, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown conceito geral")
	}
}

func parsePsychType(raw string) (models.PsychAssessmentType, error) {
	switch models.PsychAssessmentType(strings.ToUpper(strings.TrimSpace(raw))) {
	case models.PsychInicial:
		return models.PsychInicial, nil
	case models.PsychReavaliacao:
		return models.PsychReavaliacao, nil
	case models.PsychAcompanhamento:
		return models.PsychAcompanhamento, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown psych assessment type")
	}
}

func parseClassification(raw string) (models.PsychClassification, error) {
	switch models.PsychClassification(strings.ToUpper(strings.TrimSpace(raw))) {
	case models.ClassificationSemIndicios:
		return models.ClassificationSemIndicios, nil
	case models.ClassificationIndicioLeve:
		return models.ClassificationIndicioLeve, nil
	case models.ClassificationIndicioModerado:
		return models.ClassificationIndicioModerado, nil
	case models.ClassificationIndicioSevero:
		return models.ClassificationIndicioSevero, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown psych classification")
	}
}

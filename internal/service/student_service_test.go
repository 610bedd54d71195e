package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
)

func newStudentService(t *testing.T) (*StudentService, *repository.StudentRepository) {
	t.Helper()
	repo := repository.NewStudentRepository(nil)
	return NewStudentService(repo, nil, nil), repo
}

func goodAssessment() dto.CreateAssessmentRequest {
	return dto.CreateAssessmentRequest{
		Year:          2025,
		Bimester:      1,
		Leitura:       "ADEQUADA",
		Escrita:       "ADEQUADA",
		Matematica:    "ADEQUADA",
		Atencao:       "ADEQUADA",
		Comportamento: "ADEQUADA",
		ConceitoGeral: "BOM",
		RecordedBy:    "Prof. Marcos",
	}
}

func TestStudentRegister(t *testing.T) {
	svc, _ := newStudentService(t)

	student, err := svc.Register(context.Background(), dto.CreateStudentRequest{
		Name: "Ana Silva", Enrollment: "20250001", ClassName: "1A",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.RiskLow, student.RiskLevel)
	assert.Empty(t, student.Assessments)
}

func TestStudentRegisterRequiresNameAndEnrollment(t *testing.T) {
	svc, _ := newStudentService(t)

	_, err := svc.Register(context.Background(), dto.CreateStudentRequest{Name: "  ", Enrollment: ""})
	require.Error(t, err)
}

func TestRecordAssessmentReclassifiesRisk(t *testing.T) {
	svc, _ := newStudentService(t)
	ctx := context.Background()
	student, err := svc.Register(ctx, dto.CreateStudentRequest{Name: "Ana", Enrollment: "1", ClassName: "1A"})
	require.NoError(t, err)

	req := goodAssessment()
	req.Leitura = "DEFASADA"
	req.Escrita = "DEFASADA"

	updated, err := svc.RecordAssessment(ctx, student.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, updated.RiskLevel)
	assert.Len(t, updated.Assessments, 1)
	require.Len(t, updated.Timeline, 1)
	assert.Equal(t, models.TimelineAssessment, updated.Timeline[0].Type)
}

func TestRecordAssessmentAutoReferralOnPerceivedDifficultyAtHighRisk(t *testing.T) {
	svc, _ := newStudentService(t)
	ctx := context.Background()
	student, err := svc.Register(ctx, dto.CreateStudentRequest{Name: "Ana", Enrollment: "1", ClassName: "1A"})
	require.NoError(t, err)

	req := goodAssessment()
	req.ConceitoGeral = "INSUFICIENTE"
	req.DificuldadePercebida = true

	updated, err := svc.RecordAssessment(ctx, student.ID, req)
	require.NoError(t, err)
	assert.True(t, updated.PsychReferral)
	assert.NotNil(t, updated.FamilyContact)
	assert.Equal(t, models.StageTriage, StageOf(updated))
}

func TestRecordAssessmentNoReferralWithoutHighRisk(t *testing.T) {
	svc, _ := newStudentService(t)
	ctx := context.Background()
	student, err := svc.Register(ctx, dto.CreateStudentRequest{Name: "Ana", Enrollment: "1", ClassName: "1A"})
	require.NoError(t, err)

	req := goodAssessment()
	req.DificuldadePercebida = true

	updated, err := svc.RecordAssessment(ctx, student.ID, req)
	require.NoError(t, err)
	assert.False(t, updated.PsychReferral)
}

func TestRecordAssessmentRejectsUnknownLevel(t *testing.T) {
	svc, _ := newStudentService(t)
	ctx := context.Background()
	student, err := svc.Register(ctx, dto.CreateStudentRequest{Name: "Ana", Enrollment: "1", ClassName: "1A"})
	require.NoError(t, err)

	req := goodAssessment()
	req.Matematica = "MAIS_OU_MENOS"

	_, err = svc.RecordAssessment(ctx, student.ID, req)
	require.Error(t, err)
}

func TestReferConflictsWhenAlreadyReferred(t *testing.T) {
	svc, _ := newStudentService(t)
	ctx := context.Background()
	student, err := svc.Register(ctx, dto.CreateStudentRequest{Name: "Ana", Enrollment: "1", ClassName: "1A"})
	require.NoError(t, err)

	_, err = svc.Refer(ctx, student.ID, dto.ReferralRequest{Reason: "Comportamento retraído", ReferredBy: "Prof. Marcos"})
	require.NoError(t, err)

	_, err = svc.Refer(ctx, student.ID, dto.ReferralRequest{Reason: "De novo", ReferredBy: "Prof. Marcos"})
	require.Error(t, err)
}

func TestUpdateFamilyContactOrdering(t *testing.T) {
	svc, _ := newStudentService(t)
	ctx := context.Background()
	student, err := svc.Register(ctx, dto.CreateStudentRequest{Name: "Ana", Enrollment: "1", ClassName: "1A"})
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = svc.UpdateFamilyContact(ctx, student.ID, dto.UpdateFamilyContactRequest{
		Attempts: []dto.FamilyContactAttemptPayload{
			{Done: false},
			{Done: true, Date: &now},
		},
		UpdatedBy: "Coord. Beatriz",
	})
	require.Error(t, err, "attempt 2 cannot be done before attempt 1")

	updated, err := svc.UpdateFamilyContact(ctx, student.ID, dto.UpdateFamilyContactRequest{
		Attempts: []dto.FamilyContactAttemptPayload{
			{Done: true, Date: &now},
		},
		UpdatedBy: "Coord. Beatriz",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.FamilyContact)
	assert.True(t, updated.FamilyContact.Attempts[0].Done)

	_, err = svc.UpdateFamilyContact(ctx, student.ID, dto.UpdateFamilyContactRequest{
		Attempts:  []dto.FamilyContactAttemptPayload{{Done: false}},
		UpdatedBy: "Coord. Beatriz",
	})
	require.Error(t, err, "completed attempts cannot be undone")
}

func TestListFilterByStageRecomputesBucket(t *testing.T) {
	svc, repo := newStudentService(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Student{ID: "a", Name: "Ana"}))
	require.NoError(t, repo.Create(ctx, &models.Student{ID: "b", Name: "Bruno", PsychReferral: true}))

	filter := models.StudentFilter{Stage: models.StageTriage}
	summaries, _, err := svc.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bruno", summaries[0].Name)
}

func TestListStageFilterPaginatesAfterRouting(t *testing.T) {
	svc, repo := newStudentService(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Student{ID: "a", Name: "Ana", PsychReferral: true}))
	require.NoError(t, repo.Create(ctx, &models.Student{ID: "b", Name: "Bruno", PsychReferral: true}))
	require.NoError(t, repo.Create(ctx, &models.Student{ID: "c", Name: "Carla", PsychReferral: true}))
	require.NoError(t, repo.Create(ctx, &models.Student{ID: "d", Name: "Davi"}))

	filter := models.StudentFilter{Stage: models.StageTriage, Page: 1, PageSize: 1}
	summaries, pagination, err := svc.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Ana", summaries[0].Name)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 1, pagination.PageSize)
	assert.Equal(t, 3, pagination.TotalCount)

	filter.Page = 2
	summaries, pagination, err = svc.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bruno", summaries[0].Name)
	assert.Equal(t, 3, pagination.TotalCount)

	filter.Page = 5
	summaries, _, err = svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestAddDocument(t *testing.T) {
	svc, _ := newStudentService(t)
	ctx := context.Background()
	student, err := svc.Register(ctx, dto.CreateStudentRequest{Name: "Ana", Enrollment: "1", ClassName: "1A"})
	require.NoError(t, err)

	updated, err := svc.AddDocument(ctx, student.ID, dto.AddDocumentRequest{
		Name: "laudo.pdf", Type: "pdf", Responsible: "Dra. Helena", URL: "https://files/laudo.pdf",
	})
	require.NoError(t, err)
	require.Len(t, updated.Documents, 1)
	assert.Equal(t, models.DocumentPDF, updated.Documents[0].Type)
}

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
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
)

func newInterventionFixture(t *testing.T) (*InterventionService, *repository.StudentRepository, string) {
	t.Helper()
	repo := repository.NewStudentRepository(nil)
	require.NoError(t, repo.Create(context.Background(), &models.Student{ID: "s1", Name: "Ana"}))
	return NewInterventionService(repo, nil), repo, "s1"
}

func TestInterventionCreateStartsWaiting(t *testing.T) {
	svc, repo, studentID := newInterventionFixture(t)
	ctx := context.Background()

	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID:      studentID,
		ActionCategory: "ACOES_INTERNAS",
		Objective:      "Reforço de leitura",
		Responsible:    "Coord. Beatriz",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InterventionAguardando, intervention.Status)

	student, err := repo.Get(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, student.Interventions, 1)
	require.Len(t, student.Timeline, 1)
}

func TestStartPlanRequiresToolForOrdinaryCategories(t *testing.T) {
	svc, _, studentID := newInterventionFixture(t)
	ctx := context.Background()

	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACIONAR_FAMILIA",
		Objective: "Reunião com responsáveis", Responsible: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.StartPlan(ctx, intervention.ID, dto.StartPlanRequest{
		ActionCategory: "ACIONAR_FAMILIA",
		Justification:  "Faltas recorrentes",
		ConfirmedBy:    "Coord. Beatriz",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestStartPlanMultidisciplinaryGetsPlaceholderTool(t *testing.T) {
	svc, _, studentID := newInterventionFixture(t)
	ctx := context.Background()

	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "EQUIPE_MULTIDISCIPLINAR",
		Objective: "Avaliação conjunta", Responsible: "Coord. Beatriz",
	})
	require.NoError(t, err)

	started, err := svc.StartPlan(ctx, intervention.ID, dto.StartPlanRequest{
		ActionCategory: "EQUIPE_MULTIDISCIPLINAR",
		Justification:  "Caso complexo multidimensional",
		ConfirmedBy:    "Coord. Beatriz",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMultidisciplinaryTool, started.ActionTool)
	assert.Equal(t, models.InterventionEmAcompanhamento, started.Status)
}

func TestStartPlanRequiresJustification(t *testing.T) {
	svc, _, studentID := newInterventionFixture(t)
	ctx := context.Background()

	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACOES_INTERNAS",
		Objective: "Reforço", Responsible: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.StartPlan(ctx, intervention.ID, dto.StartPlanRequest{
		ActionCategory: "ACOES_INTERNAS",
		ActionTool:     "Plano de reforço",
		ConfirmedBy:    "Coord. Beatriz",
	})
	require.Error(t, err)
}

func TestStartPlanOnConcludedFails(t *testing.T) {
	svc, _, studentID := newInterventionFixture(t)
	ctx := context.Background()

	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACOES_INTERNAS",
		Objective: "Reforço", Responsible: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, intervention.ID, dto.ResolveInterventionRequest{
		Resolution: "Aluno recuperou o ritmo", ResolvedBy: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.StartPlan(ctx, intervention.ID, dto.StartPlanRequest{
		ActionCategory: "ACOES_INTERNAS",
		ActionTool:     "Plano de reforço",
		Justification:  "Reabrir",
		ConfirmedBy:    "Coord. Beatriz",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrFinalized.Code, appErr.Code)
}

func TestFinalUpdateClosesInSameWrite(t *testing.T) {
	svc, repo, studentID := newInterventionFixture(t)
	ctx := context.Background()

	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACOES_INTERNAS",
		Objective: "Reforço", Responsible: "Coord. Beatriz",
	})
	require.NoError(t, err)

	closed, err := svc.AddUpdate(ctx, intervention.ID, dto.AddInterventionUpdateRequest{
		Author: "Coord. Beatriz", Content: "Meta atingida, encerrando", Final: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.InterventionConcluido, closed.Status)
	assert.Equal(t, "Meta atingida, encerrando", closed.ResolutionAta)
	require.Len(t, closed.Updates, 1)

	student, err := repo.Get(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, models.InterventionConcluido, student.Interventions[0].Status)
}

func TestResolveTwiceConflicts(t *testing.T) {
	svc, _, studentID := newInterventionFixture(t)
	ctx := context.Background()

	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACOES_INTERNAS",
		Objective: "Reforço", Responsible: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, intervention.ID, dto.ResolveInterventionRequest{
		Resolution: "Concluído", ResolvedBy: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, intervention.ID, dto.ResolveInterventionRequest{
		Resolution: "De novo", ResolvedBy: "Coord. Beatriz",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAssignPromotesWaitingAndIsIdempotent(t *testing.T) {
	svc, repo, studentID := newInterventionFixture(t)
	ctx := context.Background()

	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACIONAR_PSICOLOGIA",
		Objective: "Triagem", Responsible: "Coord. Beatriz",
	})
	require.NoError(t, err)

	assigned, err := svc.Assign(ctx, intervention.ID, dto.AssignInterventionRequest{Professional: "Dra. Helena"})
	require.NoError(t, err)
	assert.Equal(t, "Dra. Helena", assigned.AcceptedBy)
	assert.Equal(t, models.InterventionEmAcompanhamento, assigned.Status)

	student, err := repo.Get(ctx, studentID)
	require.NoError(t, err)
	timelineBefore := len(student.Timeline)

	_, err = svc.Assign(ctx, intervention.ID, dto.AssignInterventionRequest{Professional: "Dra. Helena"})
	require.NoError(t, err)

	student, err = repo.Get(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, timelineBefore, len(student.Timeline), "same professional assignment must not add timeline noise")
}

func TestOverdueIsDerivedAtReadTime(t *testing.T) {
	svc, _, studentID := newInterventionFixture(t)
	ctx := context.Background()

	past := time.Now().UTC().AddDate(0, 0, -3)
	intervention, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACOES_INTERNAS",
		Objective: "Reforço", Responsible: "Coord. Beatriz", PendingUntil: &past,
	})
	require.NoError(t, err)

	view, err := svc.Get(ctx, intervention.ID)
	require.NoError(t, err)
	assert.True(t, view.Overdue)

	_, err = svc.Resolve(ctx, intervention.ID, dto.ResolveInterventionRequest{
		Resolution: "Encerrado", ResolvedBy: "Coord. Beatriz",
	})
	require.NoError(t, err)

	view, err = svc.Get(ctx, intervention.ID)
	require.NoError(t, err)
	assert.False(t, view.Overdue, "closed interventions are never overdue")
}

func TestListFiltersOverdueOnly(t *testing.T) {
	svc, _, studentID := newInterventionFixture(t)
	ctx := context.Background()

	past := time.Now().UTC().AddDate(0, 0, -5)
	future := time.Now().UTC().AddDate(0, 0, 5)

	_, err := svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACOES_INTERNAS",
		Objective: "Atrasada", Responsible: "Coord. Beatriz", PendingUntil: &past,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.CreateInterventionRequest{
		StudentID: studentID, ActionCategory: "ACOES_INTERNAS",
		Objective: "No prazo", Responsible: "Coord. Beatriz", PendingUntil: &future,
	})
	require.NoError(t, err)

	views, pagination, err := svc.List(ctx, models.InterventionFilter{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Atrasada", views[0].Intervention.Objective)
	assert.Equal(t, 1, pagination.TotalCount)
}

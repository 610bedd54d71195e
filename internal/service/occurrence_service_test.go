package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
)

func newOccurrenceFixture(t *testing.T) (*OccurrenceService, *repository.StudentRepository, *models.CriticalOccurrence) {
	t.Helper()
	ctx := context.Background()
	students := repository.NewStudentRepository(nil)
	require.NoError(t, students.Create(ctx, &models.Student{ID: "s1", Name: "Ana"}))

	svc := NewOccurrenceService(repository.NewOccurrenceRepository(nil), students, nil)
	occurrence, err := svc.Report(ctx, dto.ReportOccurrenceRequest{
		StudentID: "s1", ReportedBy: "Prof. Marcos",
		Description: "Relato de situação de risco em casa",
	})
	require.NoError(t, err)
	return svc, students, occurrence
}

func TestReportCreatesReportedOccurrence(t *testing.T) {
	_, students, occurrence := newOccurrenceFixture(t)

	assert.Equal(t, models.OccurrenceReported, occurrence.Status)
	assert.Len(t, occurrence.Log, 1)
	assert.Zero(t, occurrence.OpenTaskCount())

	student, err := students.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, student.Timeline, 1)
}

func TestReportUnknownStudentFails(t *testing.T) {
	svc := NewOccurrenceService(repository.NewOccurrenceRepository(nil), repository.NewStudentRepository(nil), nil)
	_, err := svc.Report(context.Background(), dto.ReportOccurrenceRequest{
		StudentID: "ghost", ReportedBy: "Prof. Marcos", Description: "x",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssumeOnlyFromReported(t *testing.T) {
	svc, _, occurrence := newOccurrenceFixture(t)
	ctx := context.Background()

	assumed, err := svc.Assume(ctx, occurrence.ID, dto.AssumeOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.NoError(t, err)
	assert.Equal(t, models.OccurrenceInTreatment, assumed.Status)
	assert.Equal(t, "Coord. Beatriz", assumed.AssumedBy)

	_, err = svc.Assume(ctx, occurrence.ID, dto.AssumeOccurrenceRequest{Actor: "Outra Pessoa"})
	require.Error(t, err)
}

func TestResolveBlockedWhilePendingTasksOpen(t *testing.T) {
	svc, _, occurrence := newOccurrenceFixture(t)
	ctx := context.Background()

	_, err := svc.Assume(ctx, occurrence.ID, dto.AssumeOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.NoError(t, err)

	withTask, err := svc.FamilyAttempt(ctx, occurrence.ID, dto.FamilyAttemptRequest{
		Channel: "telefone", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)
	require.Equal(t, 1, withTask.OpenTaskCount())

	_, err = svc.Resolve(ctx, occurrence.ID, dto.ResolveOccurrenceRequest{
		Resolution: "Família orientada", Actor: "Coord. Beatriz",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = svc.LogReturn(ctx, occurrence.ID, dto.LogReturnRequest{
		TaskID: withTask.Tasks[0].ID, Note: "Mãe retornou a ligação", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, occurrence.ID, dto.ResolveOccurrenceRequest{
		Resolution: "Família orientada", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OccurrenceResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
}

func TestResolveBlockedUntilAllTasksCleared(t *testing.T) {
	svc, _, occurrence := newOccurrenceFixture(t)
	ctx := context.Background()

	_, err := svc.Assume(ctx, occurrence.ID, dto.AssumeOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.NoError(t, err)

	_, err = svc.FamilyAttempt(ctx, occurrence.ID, dto.FamilyAttemptRequest{
		Channel: "telefone", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)
	withBoth, err := svc.EscalatePsychology(ctx, occurrence.ID, dto.EscalatePsychRequest{
		Note: "Acionamento imediato", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)
	require.Equal(t, 2, withBoth.OpenTaskCount())

	resolveReq := dto.ResolveOccurrenceRequest{Resolution: "Caso encaminhado", Actor: "Coord. Beatriz"}
	_, err = svc.Resolve(ctx, occurrence.ID, resolveReq)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	var familyTask, psychTask models.PendingTask
	for _, task := range withBoth.Tasks {
		switch task.Kind {
		case models.TaskFamilyCallback:
			familyTask = task
		case models.TaskPsychAcceptance:
			psychTask = task
		}
	}
	require.NotEmpty(t, familyTask.ID)
	require.NotEmpty(t, psychTask.ID)

	_, err = svc.LogReturn(ctx, occurrence.ID, dto.LogReturnRequest{
		TaskID: familyTask.ID, Note: "Pai retornou", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, occurrence.ID, resolveReq)
	require.Error(t, err, "psych acceptance still pending")
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = svc.AcceptPsychologist(ctx, occurrence.ID, dto.AcceptPsychRequest{
		TaskID: psychTask.ID, Professional: "Dra. Helena",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, occurrence.ID, resolveReq)
	require.NoError(t, err)
	assert.Equal(t, models.OccurrenceResolved, resolved.Status)
}

func TestLogReturnCannotClearPsychTask(t *testing.T) {
	svc, _, occurrence := newOccurrenceFixture(t)
	ctx := context.Background()

	_, err := svc.Assume(ctx, occurrence.ID, dto.AssumeOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.NoError(t, err)

	escalated, err := svc.EscalatePsychology(ctx, occurrence.ID, dto.EscalatePsychRequest{
		Note: "Necessita acolhimento imediato", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)
	require.Equal(t, 1, escalated.OpenTaskCount())
	assert.Equal(t, models.TaskPsychAcceptance, escalated.Tasks[0].Kind)

	_, err = svc.LogReturn(ctx, occurrence.ID, dto.LogReturnRequest{
		TaskID: escalated.Tasks[0].ID, Note: "tentando burlar", Actor: "Coord. Beatriz",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	accepted, err := svc.AcceptPsychologist(ctx, occurrence.ID, dto.AcceptPsychRequest{
		TaskID: escalated.Tasks[0].ID, Professional: "Dra. Helena",
	})
	require.NoError(t, err)
	assert.Zero(t, accepted.OpenTaskCount())
}

func TestEscalatePsychologyRequiresNote(t *testing.T) {
	svc, _, occurrence := newOccurrenceFixture(t)
	ctx := context.Background()

	_, err := svc.Assume(ctx, occurrence.ID, dto.AssumeOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.NoError(t, err)

	_, err = svc.EscalatePsychology(ctx, occurrence.ID, dto.EscalatePsychRequest{
		Note: "   ", Actor: "Coord. Beatriz",
	})
	require.Error(t, err)
}

func TestArchiveRequiresResolutionAndFollowUp(t *testing.T) {
	svc, _, occurrence := newOccurrenceFixture(t)
	ctx := context.Background()

	_, err := svc.Archive(ctx, occurrence.ID, dto.ArchiveOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.Error(t, err, "cannot archive an unresolved occurrence")

	_, err = svc.Assume(ctx, occurrence.ID, dto.AssumeOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, occurrence.ID, dto.ResolveOccurrenceRequest{
		Resolution: "Situação contornada", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.Archive(ctx, occurrence.ID, dto.ArchiveOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.Error(t, err, "follow-up must come before archiving")

	_, err = svc.RecordFollowUp(ctx, occurrence.ID, dto.FollowUpRequest{
		Note: "Aluno acompanhado por 30 dias", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)

	archived, err := svc.Archive(ctx, occurrence.ID, dto.ArchiveOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.NoError(t, err)
	assert.Equal(t, models.OccurrenceArchived, archived.Status)
	assert.NotNil(t, archived.ArchivedAt)
}

func TestMutationsRejectedAfterClose(t *testing.T) {
	svc, _, occurrence := newOccurrenceFixture(t)
	ctx := context.Background()

	_, err := svc.Assume(ctx, occurrence.ID, dto.AssumeOccurrenceRequest{Actor: "Coord. Beatriz"})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, occurrence.ID, dto.ResolveOccurrenceRequest{
		Resolution: "Encerrado", Actor: "Coord. Beatriz",
	})
	require.NoError(t, err)

	_, err = svc.FamilyAttempt(ctx, occurrence.ID, dto.FamilyAttemptRequest{Channel: "telefone", Actor: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFinalized.Code, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
	"github.com/noah-isme/simp-monitor-api/pkg/storage"
)

func newReportFixture(t *testing.T) (*ReportService, *repository.StudentRepository) {
	t.Helper()
	students := repository.NewStudentRepository(nil)
	require.NoError(t, students.Create(context.Background(), &models.Student{
		ID: "s1", Name: "Ana Silva", Enrollment: "20250001", ClassName: "1A",
		RiskLevel: models.RiskMedium,
		Assessments: []models.Assessment{
			{ID: "a1", Date: time.Now().UTC(), ConceitoGeral: models.ConceitoRegular, RecordedBy: "Prof. Marcos"},
		},
	}))

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test_secret", time.Hour)
	return NewReportService(students, store, signer, 1, 1, nil), students
}

func TestReportRequestAndCompletion(t *testing.T) {
	svc, _ := newReportFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	report, err := svc.Request(ctx, "s1", dto.CreateCaseReportRequest{RequestedBy: "Coord. Beatriz"})
	require.NoError(t, err)
	assert.Equal(t, dto.ReportQueued, report.Status)

	require.Eventually(t, func() bool {
		status, err := svc.Status(ctx, report.ID)
		return err == nil && status.Status == dto.ReportCompleted
	}, 5*time.Second, 20*time.Millisecond)

	status, err := svc.Status(ctx, report.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, status.DownloadURL)
	require.NotNil(t, status.ExpiresAt)

	token := status.DownloadURL[len("/api/v1/reports/download?token="):]
	path, err := svc.OpenSigned(token)
	require.NoError(t, err)

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestReportRequestUnknownStudent(t *testing.T) {
	svc, _ := newReportFixture(t)
	ctx := context.Background()
	svc.Start(ctx)
	defer svc.Stop()

	_, err := svc.Request(ctx, "ghost", dto.CreateCaseReportRequest{RequestedBy: "Coord. Beatriz"})
	require.Error(t, err)
}

func TestOpenSignedRejectsForgedToken(t *testing.T) {
	svc, _ := newReportFixture(t)
	_, err := svc.OpenSigned("abc.123.def.badsignature")
	require.Error(t, err)
}

func TestBuildCaseSectionsCoversHistory(t *testing.T) {
	now := time.Now().UTC()
	retorno := true
	student := &models.Student{
		ID: "s1", Name: "Ana", Enrollment: "1", ClassName: "1A",
		RiskLevel:     models.RiskHigh,
		PsychReferral: true,
		Assessments: []models.Assessment{
			{ID: "a1", Date: now, ConceitoGeral: models.ConceitoInsuficiente, RecordedBy: "Prof. Marcos"},
		},
		PsychAssessments: []models.PsychAssessment{
			{ID: "p1", Date: now, Type: models.PsychInicial, Classification: models.ClassificationIndicioLeve, Professional: "Dra. Helena"},
		},
		Interventions: []models.Intervention{
			{ID: "i1", ActionCategory: models.CategoryAcoesInternas, Objective: "Reforço", Status: models.InterventionAguardando},
		},
		Timeline: []models.TimelineEvent{
			{ID: "t1", Type: models.TimelineAssessment, Date: now, Description: "Avaliação registrada"},
		},
		FamilyContact: &models.FamilyContact{HouveRetorno: &retorno},
	}

	sections := buildCaseSections(student, now)
	require.Len(t, sections, 6)
	assert.Equal(t, "Identificação", sections[0].Heading)
	assert.Equal(t, "Avaliações Pedagógicas", sections[1].Heading)
	assert.Equal(t, "Linha do Tempo", sections[5].Heading)
}

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
)

func seedExportStudents(t *testing.T) *repository.StudentRepository {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewStudentRepository(nil)

	past := time.Now().UTC().AddDate(0, 0, -3)
	require.NoError(t, repo.Create(ctx, &models.Student{
		ID: "a", Name: "Ana", ClassName: "1A",
		Interventions: []models.Intervention{
			{
				ID: "i1", StudentID: "a",
				ActionCategory: models.CategoryAcoesInternas,
				ActionTool:     "Plano de reforço",
				Objective:      "Reforço de leitura",
				Responsible:    "Coord. Beatriz",
				Status:         models.InterventionEmAcompanhamento,
				PendingUntil:   &past,
			},
		},
	}))
	require.NoError(t, repo.Create(ctx, &models.Student{
		ID: "b", Name: "Bruno", ClassName: "2A",
		Interventions: []models.Intervention{
			{
				ID: "i2", StudentID: "b",
				ActionCategory: models.CategoryAcionarFamilia,
				Objective:      "Reunião com responsáveis",
				Responsible:    "Coord. Beatriz",
				Status:         models.InterventionConcluido,
			},
		},
	}))
	return repo
}

func TestInterventionsCSVContent(t *testing.T) {
	svc := NewExportService(seedExportStudents(t), nil)

	payload, err := svc.InterventionsCSV(context.Background(), models.InterventionFilter{})
	require.NoError(t, err)

	body := string(payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3, "header plus two rows")
	assert.Contains(t, lines[0], "Aluno")
	assert.Contains(t, lines[1], "Ana")
	assert.Contains(t, lines[1], "Sim", "overdue intervention flagged")
	assert.Contains(t, lines[2], "Bruno")
}

func TestInterventionsCSVHonorsFilter(t *testing.T) {
	svc := NewExportService(seedExportStudents(t), nil)

	payload, err := svc.InterventionsCSV(context.Background(), models.InterventionFilter{
		Status: models.InterventionConcluido,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Bruno")
}

func TestInterventionsPDFRenders(t *testing.T) {
	svc := NewExportService(seedExportStudents(t), nil)

	payload, err := svc.InterventionsPDF(context.Background(), models.InterventionFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"), "pdf magic header")
}

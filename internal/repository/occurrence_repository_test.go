package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simp-monitor-api/internal/models"
)

func TestOccurrenceRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewOccurrenceRepository(nil)

	occurrence := &models.CriticalOccurrence{
		ID: "o1", StudentID: "s1", ReportedBy: "Prof. Marcos",
		Description: "Relato", Status: models.OccurrenceReported,
		Tasks: []models.PendingTask{{ID: "t1", Kind: models.TaskFamilyCallback}},
	}
	require.NoError(t, repo.Create(ctx, occurrence))

	loaded, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	loaded.Tasks[0].Kind = models.TaskPsychAcceptance

	fresh, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskFamilyCallback, fresh.Tasks[0].Kind, "reads are deep copies")
}

func TestOccurrenceRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOccurrenceRepository(nil)

	base := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, &models.CriticalOccurrence{
		ID: "old", StudentID: "s1", Status: models.OccurrenceReported, CreatedAt: base.Add(-time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &models.CriticalOccurrence{
		ID: "new", StudentID: "s2", Status: models.OccurrenceResolved, CreatedAt: base,
	}))

	all, total, err := repo.List(ctx, models.OccurrenceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)

	resolved, total, err := repo.List(ctx, models.OccurrenceFilter{Status: models.OccurrenceResolved})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "new", resolved[0].ID)
}

func TestOccurrenceRepositorySaveUnknown(t *testing.T) {
	repo := NewOccurrenceRepository(nil)
	err := repo.Save(context.Background(), &models.CriticalOccurrence{ID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
	"github.com/noah-isme/simp-monitor-api/internal/service"
)

type occurrenceView struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Tasks  []struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
	} `json:"tasks"`
}

func newOccurrenceRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	students := repository.NewStudentRepository(nil)
	require.NoError(t, students.Create(context.Background(), &models.Student{
		ID: "s1", Name: "Ana Silva", Enrollment: "20250001", ClassName: "1A",
	}))

	occurrences := repository.NewOccurrenceRepository(nil)
	handler := NewOccurrenceHandler(service.NewOccurrenceService(occurrences, students, nil))

	r := gin.New()
	r.GET("/occurrences", handler.List)
	r.POST("/occurrences", handler.Report)
	r.GET("/occurrences/:id", handler.Get)
	r.POST("/occurrences/:id/assume", handler.Assume)
	r.POST("/occurrences/:id/family-attempts", handler.FamilyAttempt)
	r.POST("/occurrences/:id/returns", handler.LogReturn)
	r.POST("/occurrences/:id/resolve", handler.Resolve)
	r.POST("/occurrences/:id/follow-up", handler.RecordFollowUp)
	r.POST("/occurrences/:id/archive", handler.Archive)
	return r
}

func reportOccurrence(t *testing.T, r *gin.Engine) occurrenceView {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/occurrences", gin.H{
		"student_id": "s1", "reported_by": "Prof. Marcos", "description": "Episódio em sala",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var view occurrenceView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	require.NotEmpty(t, view.ID)
	return view
}

func TestOccurrenceReportAndGet(t *testing.T) {
	r := newOccurrenceRouter(t)

	view := reportOccurrence(t, r)
	assert.Equal(t, "REPORTED", view.Status)

	rec := doJSON(t, r, http.MethodGet, "/occurrences/"+view.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOccurrenceReportUnknownStudent(t *testing.T) {
	r := newOccurrenceRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/occurrences", gin.H{
		"student_id": "ghost", "reported_by": "Prof. Marcos", "description": "Episódio",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOccurrenceResolveBlockedByPendingTask(t *testing.T) {
	r := newOccurrenceRouter(t)
	view := reportOccurrence(t, r)

	rec := doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/assume", gin.H{"actor": "Coord. Beatriz"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/family-attempts", gin.H{
		"channel": "TELEFONE", "actor": "Coord. Beatriz",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var withTask envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &withTask))
	var tasked occurrenceView
	require.NoError(t, json.Unmarshal(withTask.Data, &tasked))
	require.Len(t, tasked.Tasks, 1)

	resolvePayload := gin.H{"resolution": "Ata da reunião com a família", "actor": "Coord. Beatriz"}
	rec = doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/resolve", resolvePayload)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/returns", gin.H{
		"task_id": tasked.Tasks[0].ID, "note": "Família retornou", "actor": "Coord. Beatriz",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/resolve", resolvePayload)
	require.Equal(t, http.StatusOK, rec.Code)

	var resolved envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	var final occurrenceView
	require.NoError(t, json.Unmarshal(resolved.Data, &final))
	assert.Equal(t, "RESOLVED", final.Status)
}

func TestOccurrenceArchiveLifecycle(t *testing.T) {
	r := newOccurrenceRouter(t)
	view := reportOccurrence(t, r)

	rec := doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/assume", gin.H{"actor": "Coord. Beatriz"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/archive", gin.H{"actor": "Coord. Beatriz"})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code, "archive requires resolution first")

	rec = doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/resolve", gin.H{
		"resolution": "Ata registrada", "actor": "Coord. Beatriz",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/follow-up", gin.H{
		"note": "Família acompanhada", "actor": "Coord. Beatriz",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/occurrences/"+view.ID+"/archive", gin.H{"actor": "Coord. Beatriz"})
	require.Equal(t, http.StatusOK, rec.Code)

	var archived envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &archived))
	var final occurrenceView
	require.NoError(t, json.Unmarshal(archived.Data, &final))
	assert.Equal(t, "ARCHIVED", final.Status)
}

func TestOccurrenceListFiltersByStatus(t *testing.T) {
	r := newOccurrenceRouter(t)
	first := reportOccurrence(t, r)
	reportOccurrence(t, r)

	rec := doJSON(t, r, http.MethodPost, "/occurrences/"+first.ID+"/assume", gin.H{"actor": "Coord. Beatriz"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/occurrences?status=in_treatment", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1, resp.Pagination.TotalCount)
}

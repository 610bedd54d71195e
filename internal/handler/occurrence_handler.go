package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/service"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
	"github.com/noah-isme/simp-monitor-api/pkg/response"
)

// OccurrenceHandler exposes the critical occurrence workflow endpoints.
type OccurrenceHandler struct {
	occurrences *service.OccurrenceService
}

// NewOccurrenceHandler constructs OccurrenceHandler.
func NewOccurrenceHandler(occurrences *service.OccurrenceService) *OccurrenceHandler {
	return &OccurrenceHandler{occurrences: occurrences}
}

// List godoc
// @Summary List critical occurrences
// @Tags Occurrences
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param status query string false "Filter by workflow status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /occurrences [get]
func (h *OccurrenceHandler) List(c *gin.Context) {
	var filter models.OccurrenceFilter
	filter.StudentID = c.Query("student_id")
	filter.Status = models.OccurrenceStatus(strings.ToUpper(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	occurrences, pagination, err := h.occurrences.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrences, pagination)
}

// Get godoc
// @Summary Get one occurrence with its log and pending tasks
// @Tags Occurrences
// @Produce json
// @Param id path string true "Occurrence ID"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id} [get]
func (h *OccurrenceHandler) Get(c *gin.Context) {
	occurrence, err := h.occurrences.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

// Report godoc
// @Summary Report a critical occurrence
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param payload body dto.ReportOccurrenceRequest true "Occurrence payload"
// @Success 201 {object} response.Envelope
// @Router /occurrences [post]
func (h *OccurrenceHandler) Report(c *gin.Context) {
	var req dto.ReportOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.Report(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, occurrence)
}

// Assume godoc
// @Summary Assume a reported occurrence for treatment
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body dto.AssumeOccurrenceRequest true "Actor payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/assume [post]
func (h *OccurrenceHandler) Assume(c *gin.Context) {
	var req dto.AssumeOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.Assume(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

// FamilyAttempt godoc
// @Summary Register a family contact attempt, opening a callback task
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body dto.FamilyAttemptRequest true "Attempt payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/family-attempts [post]
func (h *OccurrenceHandler) FamilyAttempt(c *gin.Context) {
	var req dto.FamilyAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.FamilyAttempt(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

// LogReturn godoc
// @Summary Clear a family callback task with a manual return note
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body dto.LogReturnRequest true "Return payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/returns [post]
func (h *OccurrenceHandler) LogReturn(c *gin.Context) {
	var req dto.LogReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.LogReturn(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

// EscalatePsychology godoc
// @Summary Escalate the occurrence to a psychologist
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body dto.EscalatePsychRequest true "Escalation payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/escalate-psychology [post]
func (h *OccurrenceHandler) EscalatePsychology(c *gin.Context) {
	var req dto.EscalatePsychRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.EscalatePsychology(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

// AcceptPsychologist godoc
// @Summary Record the psychologist accepting the escalated case
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body dto.AcceptPsychRequest true "Acceptance payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/accept-psychologist [post]
func (h *OccurrenceHandler) AcceptPsychologist(c *gin.Context) {
	var req dto.AcceptPsychRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.AcceptPsychologist(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

// Resolve godoc
// @Summary Resolve the occurrence with a closing memo
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body dto.ResolveOccurrenceRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/resolve [post]
func (h *OccurrenceHandler) Resolve(c *gin.Context) {
	var req dto.ResolveOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.Resolve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

// RecordFollowUp godoc
// @Summary Record the post-resolution follow-up
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body dto.FollowUpRequest true "Follow-up payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/follow-up [post]
func (h *OccurrenceHandler) RecordFollowUp(c *gin.Context) {
	var req dto.FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.RecordFollowUp(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

// Archive godoc
// @Summary Archive a resolved, followed-up occurrence
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body dto.ArchiveOccurrenceRequest true "Archive payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/archive [post]
func (h *OccurrenceHandler) Archive(c *gin.Context) {
	var req dto.ArchiveOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.Archive(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence, nil)
}

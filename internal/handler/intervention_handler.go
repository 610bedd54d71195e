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

// InterventionHandler exposes the intervention lifecycle endpoints.
type InterventionHandler struct {
	interventions *service.InterventionService
}

// NewInterventionHandler constructs InterventionHandler.
func NewInterventionHandler(interventions *service.InterventionService) *InterventionHandler {
	return &InterventionHandler{interventions: interventions}
}

func interventionFilterFromQuery(c *gin.Context) models.InterventionFilter {
	var filter models.InterventionFilter
	filter.StudentID = c.Query("student_id")
	filter.Status = models.InterventionStatus(strings.ToUpper(c.Query("status")))
	filter.Category = models.ActionCategory(strings.ToUpper(c.Query("category")))
	filter.AcceptedBy = c.Query("accepted_by")
	filter.OverdueOnly = c.Query("overdue") == "true"
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List interventions across students
// @Tags Interventions
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param status query string false "Filter by lifecycle status"
// @Param category query string false "Filter by action category"
// @Param accepted_by query string false "Filter by accepting professional"
// @Param overdue query bool false "Only overdue interventions"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /interventions [get]
func (h *InterventionHandler) List(c *gin.Context) {
	views, pagination, err := h.interventions.List(c.Request.Context(), interventionFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// Get godoc
// @Summary Get one intervention with its overdue flag
// @Tags Interventions
// @Produce json
// @Param id path string true "Intervention ID"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id} [get]
func (h *InterventionHandler) Get(c *gin.Context) {
	view, err := h.interventions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Create godoc
// @Summary Open an intervention in AGUARDANDO
// @Tags Interventions
// @Accept json
// @Produce json
// @Param payload body dto.CreateInterventionRequest true "Intervention payload"
// @Success 201 {object} response.Envelope
// @Router /interventions [post]
func (h *InterventionHandler) Create(c *gin.Context) {
	var req dto.CreateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	intervention, err := h.interventions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, intervention)
}

// StartPlan godoc
// @Summary Confirm the contingency plan and start treatment
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path string true "Intervention ID"
// @Param payload body dto.StartPlanRequest true "Plan payload"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id}/start [post]
func (h *InterventionHandler) StartPlan(c *gin.Context) {
	var req dto.StartPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	intervention, err := h.interventions.StartPlan(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intervention, nil)
}

// AddUpdate godoc
// @Summary Append a progress note, optionally closing the intervention
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path string true "Intervention ID"
// @Param payload body dto.AddInterventionUpdateRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id}/updates [post]
func (h *InterventionHandler) AddUpdate(c *gin.Context) {
	var req dto.AddInterventionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	intervention, err := h.interventions.AddUpdate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intervention, nil)
}

// Resolve godoc
// @Summary Conclude an intervention with a resolution memo
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path string true "Intervention ID"
// @Param payload body dto.ResolveInterventionRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id}/resolve [post]
func (h *InterventionHandler) Resolve(c *gin.Context) {
	var req dto.ResolveInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	intervention, err := h.interventions.Resolve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intervention, nil)
}

// Assign godoc
// @Summary Accept a case as the responsible professional
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path string true "Intervention ID"
// @Param payload body dto.AssignInterventionRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id}/assign [post]
func (h *InterventionHandler) Assign(c *gin.Context) {
	var req dto.AssignInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	intervention, err := h.interventions.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intervention, nil)
}

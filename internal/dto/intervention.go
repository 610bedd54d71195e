package dto

import (
	"time"

	"github.com/noah-isme/simp-monitor-api/internal/models"
)

// CreateInterventionRequest registers a new intervention for a student.
// Interventions start in AGUARDANDO.
type CreateInterventionRequest struct {
	StudentID      string     `json:"student_id" binding:"required"`
	ActionCategory string     `json:"action_category" binding:"required"`
	Objective      string     `json:"objective" binding:"required"`
	Responsible    string     `json:"responsible" binding:"required"`
	PendingUntil   *time.Time `json:"pending_until"`
}

// StartPlanRequest confirms the contingency plan, promoting the intervention
// to EM_ACOMPANHAMENTO. Tool is mandatory unless the category is the
// multidisciplinary team.
type StartPlanRequest struct {
	ActionCategory string     `json:"action_category" binding:"required"`
	ActionTool     string     `json:"action_tool"`
	Justification  string     `json:"justification"`
	PendingUntil   *time.Time `json:"pending_until"`
	ConfirmedBy    string     `json:"confirmed_by" binding:"required"`
}

// AddInterventionUpdateRequest appends a progress note. Final updates also
// close the intervention with the note as resolution memo.
type AddInterventionUpdateRequest struct {
	Author  string `json:"author" binding:"required"`
	Content string `json:"content"`
	Final   bool   `json:"final"`
}

// ResolveInterventionRequest closes the intervention with a resolution memo.
type ResolveInterventionRequest struct {
	Resolution string `json:"resolution"`
	ResolvedBy string `json:"resolved_by" binding:"required"`
}

// AssignInterventionRequest sets the accepting professional.
type AssignInterventionRequest struct {
	Professional string `json:"professional" binding:"required"`
}

// InterventionView decorates an intervention with its derived overdue flag.
type InterventionView struct {
	Intervention models.Intervention `json:"intervention"`
	Overdue      bool                `json:"overdue"`
}

package models

import "time"

// InterventionStatus captures the lifecycle state of an intervention.
// Transitions only move forward: AGUARDANDO -> EM_ACOMPANHAMENTO -> CONCLUIDO.
type InterventionStatus string

const (
	InterventionAguardando       InterventionStatus = "AGUARDANDO"
	InterventionEmAcompanhamento InterventionStatus = "EM_ACOMPANHAMENTO"
	InterventionConcluido        InterventionStatus = "CONCLUIDO"
)

// ActionCategory enumerates who the intervention mobilizes.
type ActionCategory string

const (
	CategoryAcoesInternas          ActionCategory = "ACOES_INTERNAS"
	CategoryAcionarFamilia         ActionCategory = "ACIONAR_FAMILIA"
	CategoryAcionarPsicologia      ActionCategory = "ACIONAR_PSICOLOGIA"
	CategoryAcionarPsicopedagogia  ActionCategory = "ACIONAR_PSICOPEDAGOGIA"
	CategoryEquipeMultidisciplinar ActionCategory = "EQUIPE_MULTIDISCIPLINAR"
)

// DefaultMultidisciplinaryTool is the placeholder tool used when a
// multidisciplinary case is opened before clinical triage picked one.
const DefaultMultidisciplinaryTool = "Pendente de Avaliação Clínica/Triagem"

// MultidisciplinaryCategories are the categories routed through the triage
// queue until a professional accepts the case.
var MultidisciplinaryCategories = map[ActionCategory]bool{
	CategoryEquipeMultidisciplinar: true,
	CategoryAcionarPsicologia:      true,
	CategoryAcionarPsicopedagogia:  true,
}

// InterventionUpdate is a free-text progress note. Append-only.
type InterventionUpdate struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
	Final   bool      `json:"final"`
}

// Intervention is the central workflow entity. Never deleted; closed
// interventions remain in the student's history.
type Intervention struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`

	ActionCategory ActionCategory     `json:"action_category"`
	ActionTool     string             `json:"action_tool,omitempty"`
	Objective      string             `json:"objective"`
	Responsible    string             `json:"responsible"`
	Status         InterventionStatus `json:"status"`

	PendingUntil  *time.Time           `json:"pending_until,omitempty"`
	ResolutionAta string               `json:"resolution_ata,omitempty"`
	Updates       []InterventionUpdate `json:"updates,omitempty"`
	AcceptedBy    string               `json:"accepted_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overdue reports whether the intervention blew past its deadline. Derived at
// read time; never stored.
func (i Intervention) Overdue(now time.Time) bool {
	if i.PendingUntil == nil || i.Status == InterventionConcluido {
		return false
	}
	deadline := dateOnly(*i.PendingUntil)
	return deadline.Before(dateOnly(now))
}

// InterventionFilter constrains intervention listings.
type InterventionFilter struct {
	StudentID   string
	Status      InterventionStatus
	Category    ActionCategory
	AcceptedBy  string
	OverdueOnly bool
	Page        int
	PageSize    int
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

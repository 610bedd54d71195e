package models

import "time"

// OccurrenceStatus captures the escalation workflow state.
type OccurrenceStatus string

const (
	OccurrenceReported    OccurrenceStatus = "REPORTED"
	OccurrenceInTreatment OccurrenceStatus = "IN_TREATMENT"
	OccurrenceResolved    OccurrenceStatus = "RESOLVED"
	OccurrenceArchived    OccurrenceStatus = "ARCHIVED"
)

// PendingTaskKind distinguishes outreach tasks blocking resolution.
type PendingTaskKind string

const (
	TaskFamilyCallback  PendingTaskKind = "FAMILY_CALLBACK"
	TaskPsychAcceptance PendingTaskKind = "PSYCH_ACCEPTANCE"
)

// PendingTask is one open outreach awaiting a response. The occurrence
// cannot be resolved while any task remains open.
type PendingTask struct {
	ID       string          `json:"id"`
	Kind     PendingTaskKind `json:"kind"`
	Label    string          `json:"label"`
	OpenedBy string          `json:"opened_by"`
	OpenedAt time.Time       `json:"opened_at"`
}

// OccurrenceLogEntry is one line of the occurrence's own audit trail,
// distinct from the student timeline. Append-only.
type OccurrenceLogEntry struct {
	At     time.Time `json:"at"`
	Author string    `json:"author"`
	Text   string    `json:"text"`
}

// CriticalOccurrence is an urgent safety incident escalated outside the
// ordinary intervention flow.
type CriticalOccurrence struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"student_id"`
	ReportedBy  string           `json:"reported_by"`
	Description string           `json:"description"`
	Status      OccurrenceStatus `json:"status"`

	AssumedBy     string               `json:"assumed_by,omitempty"`
	Tasks         []PendingTask        `json:"tasks"`
	Log           []OccurrenceLogEntry `json:"log"`
	ResolutionAta string               `json:"resolution_ata,omitempty"`
	FollowUpDone  bool                 `json:"follow_up_done"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// OpenTaskCount returns the number of tasks still blocking resolution.
func (o *CriticalOccurrence) OpenTaskCount() int {
	return len(o.Tasks)
}

// OccurrenceFilter constrains occurrence listings.
type OccurrenceFilter struct {
	StudentID string
	Status    OccurrenceStatus
	Page      int
	PageSize  int
}

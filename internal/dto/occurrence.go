package dto

// ReportOccurrenceRequest opens a critical occurrence for a student.
type ReportOccurrenceRequest struct {
	StudentID   string `json:"student_id" binding:"required"`
	ReportedBy  string `json:"reported_by" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// AssumeOccurrenceRequest moves the case into treatment.
type AssumeOccurrenceRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// FamilyAttemptRequest opens a family callback pending task.
type FamilyAttemptRequest struct {
	Channel string `json:"channel" binding:"required"`
	Actor   string `json:"actor" binding:"required"`
}

// LogReturnRequest clears a family callback task with a manual note.
type LogReturnRequest struct {
	TaskID string `json:"task_id" binding:"required"`
	Note   string `json:"note"`
	Actor  string `json:"actor" binding:"required"`
}

// EscalatePsychRequest escalates the occurrence to a psychologist. Opens a
// pending task cleared only by acceptance.
type EscalatePsychRequest struct {
	Note  string `json:"note"`
	Actor string `json:"actor" binding:"required"`
}

// AcceptPsychRequest simulates the psychologist accepting the case.
type AcceptPsychRequest struct {
	TaskID       string `json:"task_id" binding:"required"`
	Professional string `json:"professional" binding:"required"`
}

// ResolveOccurrenceRequest closes the occurrence with a mandatory memo.
// Blocked while pending tasks remain open.
type ResolveOccurrenceRequest struct {
	Resolution string `json:"resolution"`
	Actor      string `json:"actor" binding:"required"`
}

// FollowUpRequest records the downstream follow-up required before archival.
type FollowUpRequest struct {
	Note  string `json:"note" binding:"required"`
	Actor string `json:"actor" binding:"required"`
}

// ArchiveOccurrenceRequest archives a resolved occurrence.
type ArchiveOccurrenceRequest struct {
	Actor string `json:"actor" binding:"required"`
}

package dto

import "time"

// CaseReportStatus tracks asynchronous report generation.
type CaseReportStatus string

const (
	ReportQueued    CaseReportStatus = "QUEUED"
	ReportRunning   CaseReportStatus = "RUNNING"
	ReportCompleted CaseReportStatus = "COMPLETED"
	ReportFailed    CaseReportStatus = "FAILED"
)

// CaseReportResponse describes a generation job and, once completed, its
// signed download URL.
type CaseReportResponse struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"student_id"`
	Status      CaseReportStatus `json:"status"`
	RequestedBy string           `json:"requested_by"`
	RequestedAt time.Time        `json:"requested_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	DownloadURL string           `json:"download_url,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// CreateCaseReportRequest enqueues case-report generation for a student.
type CreateCaseReportRequest struct {
	RequestedBy string `json:"requested_by" binding:"required"`
}

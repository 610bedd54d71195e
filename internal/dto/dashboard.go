package dto

import "github.com/noah-isme/simp-monitor-api/internal/models"

// ClassRiskBreakdown aggregates risk levels for one classroom.
type ClassRiskBreakdown struct {
	ClassName string `json:"class_name"`
	Low       int    `json:"low"`
	Medium    int    `json:"medium"`
	High      int    `json:"high"`
}

// DashboardResponse is the aggregate view for direction and coordination.
// Every figure is recomputed on request; nothing is cached.
type DashboardResponse struct {
	TotalStudents        int                               `json:"total_students"`
	RiskDistribution     map[models.RiskLevel]int          `json:"risk_distribution"`
	StageCounts          map[models.Stage]int              `json:"stage_counts"`
	OpenInterventions    int                               `json:"open_interventions"`
	OverdueInterventions int                               `json:"overdue_interventions"`
	OpenOccurrences      int                               `json:"open_occurrences"`
	OpenPendingTasks     int                               `json:"open_pending_tasks"`
	ReferralsAwaiting    int                               `json:"referrals_awaiting"`
	ClassBreakdown       []ClassRiskBreakdown              `json:"class_breakdown"`
	InterventionsByState map[models.InterventionStatus]int `json:"interventions_by_status"`
}

// QueuesResponse buckets every student into the four kanban stages.
type QueuesResponse struct {
	Triage     []StudentSummary `json:"triage"`
	Assessment []StudentSummary `json:"assessment"`
	FollowUp   []StudentSummary `json:"followup"`
	Completed  []StudentSummary `json:"completed"`
}

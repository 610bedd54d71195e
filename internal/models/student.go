package models

import "time"

// RiskLevel classifies a student's pedagogical risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Stage buckets students into the multidisciplinary team's kanban queues.
type Stage string

const (
	StageTriage     Stage = "TRIAGE"
	StageAssessment Stage = "ASSESSMENT"
	StageFollowUp   Stage = "FOLLOWUP"
	StageCompleted  Stage = "COMPLETED"
)

// Student is the aggregate root for the monitoring workflow. The repository
// owns it; services receive copies and write back whole records.
type Student struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Enrollment     string    `json:"enrollment"`
	ClassName      string    `json:"class_name"`
	RiskLevel      RiskLevel `json:"risk_level"`
	PsychReferral  bool      `json:"psych_referral"`
	ReferralReason string    `json:"referral_reason,omitempty"`

	Assessments      []Assessment      `json:"assessments"`
	PsychAssessments []PsychAssessment `json:"psych_assessments"`
	Interventions    []Intervention    `json:"interventions"`
	Timeline         []TimelineEvent   `json:"timeline"`
	FamilyContact    *FamilyContact    `json:"family_contact,omitempty"`
	Documents        []StudentDocument `json:"documents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ClassName string
	RiskLevel RiskLevel
	Stage     Stage
	Page      int
	PageSize  int
}

// LatestAssessment returns the most recently appended assessment, or nil.
func (s *Student) LatestAssessment() *Assessment {
	if len(s.Assessments) == 0 {
		return nil
	}
	return &s.Assessments[len(s.Assessments)-1]
}

// LatestPsychAssessment returns the most recently appended psych record, or nil.
func (s *Student) LatestPsychAssessment() *PsychAssessment {
	if len(s.PsychAssessments) == 0 {
		return nil
	}
	return &s.PsychAssessments[len(s.PsychAssessments)-1]
}

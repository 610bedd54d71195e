package models

import "time"

// FamilyContactAttempts is the fixed number of outreach slots per student.
const FamilyContactAttempts = 3

// FamilyContactAttempt is one outreach slot. Attempt n cannot be marked
// before attempt n-1 is done.
type FamilyContactAttempt struct {
	Done bool       `json:"done"`
	Date *time.Time `json:"date,omitempty"`
}

// FamilyContact tracks outreach to a student's family. Created lazily on the
// first referral. HouveRetorno is tri-state: nil means unknown.
type FamilyContact struct {
	Attempts     [FamilyContactAttempts]FamilyContactAttempt `json:"attempts"`
	HouveRetorno *bool                                       `json:"houve_retorno,omitempty"`
	Observation  string                                      `json:"observation,omitempty"`
}

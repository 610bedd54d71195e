package models

import "time"

// TimelineEventType tags timeline entries by originating workflow.
type TimelineEventType string

const (
	TimelineAssessment    TimelineEventType = "ASSESSMENT"
	TimelinePsych         TimelineEventType = "PSYCH"
	TimelineIntervention  TimelineEventType = "INTERVENTION"
	TimelineReferral      TimelineEventType = "REFERRAL"
	TimelineFamilyContact TimelineEventType = "FAMILY_CONTACT"
)

// TimelineEvent is one entry of a student's append-only history. Events are
// immutable once appended; insertion order reflects causal order.
type TimelineEvent struct {
	ID          string            `json:"id"`
	Type        TimelineEventType `json:"type"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
}

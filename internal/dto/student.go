package dto

import (
	"time"

	"github.com/noah-isme/simp-monitor-api/internal/models"
)

// CreateStudentRequest registers a student in the monitoring workflow.
type CreateStudentRequest struct {
	Name       string `json:"name" binding:"required" validate:"required"`
	Enrollment string `json:"enrollment" binding:"required" validate:"required"`
	ClassName  string `json:"class_name" binding:"required" validate:"required"`
}

// DiagnosticDetailPayload mirrors the optional structured complement of an
// assessment.
type DiagnosticDetailPayload struct {
	Symptoms     []string          `json:"symptoms"`
	ActionsTried []string          `json:"actions_tried"`
	Frequencies  map[string]string `json:"frequencies"`
}

// CreateAssessmentRequest is a professor's periodic snapshot submission.
type CreateAssessmentRequest struct {
	Year     int `json:"year" binding:"required" validate:"required"`
	Bimester int `json:"bimester" binding:"required,min=1,max=4" validate:"required,min=1,max=4"`

	Leitura       string `json:"leitura" binding:"required" validate:"required"`
	Escrita       string `json:"escrita" binding:"required" validate:"required"`
	Matematica    string `json:"matematica" binding:"required" validate:"required"`
	Atencao       string `json:"atencao" binding:"required" validate:"required"`
	Comportamento string `json:"comportamento" binding:"required" validate:"required"`

	ConceitoGeral        string                   `json:"conceito_geral" binding:"required" validate:"required"`
	DificuldadePercebida bool                     `json:"dificuldade_percebida"`
	Observation          string                   `json:"observation"`
	Diagnostic           *DiagnosticDetailPayload `json:"diagnostic"`

	RecordedBy string `json:"recorded_by" binding:"required" validate:"required"`
}

// CreatePsychAssessmentRequest records a psychology team evaluation.
type CreatePsychAssessmentRequest struct {
	Type                    string `json:"type" binding:"required" validate:"required"`
	Classification          string `json:"classification" binding:"required" validate:"required"`
	NecessitaAcompanhamento bool   `json:"necessita_acompanhamento"`
	Observation             string `json:"observation"`
	PEI                     string `json:"pei"`
	Professional            string `json:"professional" binding:"required" validate:"required"`
}

// ReferralRequest flags a student for psychology triage.
type ReferralRequest struct {
	Reason     string `json:"reason" binding:"required"`
	ReferredBy string `json:"referred_by" binding:"required"`
}

// FamilyContactAttemptPayload is one outreach slot in an update.
type FamilyContactAttemptPayload struct {
	Done bool       `json:"done"`
	Date *time.Time `json:"date"`
}

// UpdateFamilyContactRequest replaces the family contact record. Attempt
// ordering is validated by the service.
type UpdateFamilyContactRequest struct {
	Attempts     []FamilyContactAttemptPayload `json:"attempts" binding:"required,max=3"`
	HouveRetorno *bool                         `json:"houve_retorno"`
	Observation  string                        `json:"observation"`
	UpdatedBy    string                        `json:"updated_by" binding:"required"`
}

// AddDocumentRequest attaches document metadata to a student.
type AddDocumentRequest struct {
	Name        string `json:"name" binding:"required" validate:"required"`
	Type        string `json:"type" binding:"required,oneof=pdf image doc" validate:"required,oneof=pdf image doc"`
	Responsible string `json:"responsible" binding:"required" validate:"required"`
	URL         string `json:"url" binding:"required" validate:"required"`
}

// StudentSummary is the condensed projection used by queue and list views.
type StudentSummary struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Enrollment        string           `json:"enrollment"`
	ClassName         string           `json:"class_name"`
	RiskLevel         models.RiskLevel `json:"risk_level"`
	Stage             models.Stage     `json:"stage"`
	PsychReferral     bool             `json:"psych_referral"`
	ReferralReason    string           `json:"referral_reason,omitempty"`
	OpenInterventions int              `json:"open_interventions"`
}

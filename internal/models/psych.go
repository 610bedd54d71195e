package models

import "time"

// PsychAssessmentType distinguishes intake from follow-up records.
type PsychAssessmentType string

const (
	PsychInicial        PsychAssessmentType = "INICIAL"
	PsychReavaliacao    PsychAssessmentType = "REAVALIACAO"
	PsychAcompanhamento PsychAssessmentType = "ACOMPANHAMENTO"
)

// PsychClassification is the professional's outcome classification.
type PsychClassification string

const (
	ClassificationSemIndicios     PsychClassification = "SEM_INDICIOS"
	ClassificationIndicioLeve     PsychClassification = "INDICIO_LEVE"
	ClassificationIndicioModerado PsychClassification = "INDICIO_MODERADO"
	ClassificationIndicioSevero   PsychClassification = "INDICIO_SEVERO"
)

// PEIStatus tracks the individualized education plan state for a student.
type PEIStatus string

const (
	PEINotNeeded  PEIStatus = "NAO_NECESSARIO"
	PEIInProgress PEIStatus = "EM_ELABORACAO"
	PEIActive     PEIStatus = "ATIVO"
)

// PsychAssessment is a dated record produced by the psychology team.
// Append-only per student.
type PsychAssessment struct {
	ID                      string              `json:"id"`
	Date                    time.Time           `json:"date"`
	Type                    PsychAssessmentType `json:"type"`
	Classification          PsychClassification `json:"classification"`
	NecessitaAcompanhamento bool                `json:"necessita_acompanhamento"`
	Observation             string              `json:"observation,omitempty"`
	PEI                     PEIStatus           `json:"pei,omitempty"`
	Professional            string              `json:"professional"`
}

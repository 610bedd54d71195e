package models

import "time"

// DimensionLevel is the ordinal grading applied to each observed dimension.
type DimensionLevel string

const (
	DimensionLagging    DimensionLevel = "DEFASADA"
	DimensionDeveloping DimensionLevel = "EM_DESENVOLVIMENTO"
	DimensionAdequate   DimensionLevel = "ADEQUADA"
)

// ConceitoGeral is the overall grade a professor assigns in an assessment.
type ConceitoGeral string

const (
	ConceitoInsuficiente ConceitoGeral = "INSUFICIENTE"
	ConceitoRegular      ConceitoGeral = "REGULAR"
	ConceitoBom          ConceitoGeral = "BOM"
	ConceitoOtimo        ConceitoGeral = "OTIMO"
)

// DiagnosticDetail carries the optional structured complement of an
// assessment: observed symptoms, what the professor already tried, and
// how often each area shows difficulty.
type DiagnosticDetail struct {
	Symptoms     []string          `json:"symptoms,omitempty"`
	ActionsTried []string          `json:"actions_tried,omitempty"`
	Frequencies  map[string]string `json:"frequencies,omitempty"`
}

// Assessment is a professor's dated snapshot of a student. Immutable once
// appended to the student's assessment list.
type Assessment struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`

	Year     int `json:"year"`
	Bimester int `json:"bimester"`

	Leitura       DimensionLevel `json:"leitura"`
	Escrita       DimensionLevel `json:"escrita"`
	Matematica    DimensionLevel `json:"matematica"`
	Atencao       DimensionLevel `json:"atencao"`
	Comportamento DimensionLevel `json:"comportamento"`

	ConceitoGeral        ConceitoGeral     `json:"conceito_geral"`
	DificuldadePercebida bool              `json:"dificuldade_percebida"`
	Observation          string            `json:"observation,omitempty"`
	Diagnostic           *DiagnosticDetail `json:"diagnostic,omitempty"`

	RecordedBy string `json:"recorded_by"`
}

// LaggingCount returns how many of the academic dimensions are graded as
// lagging. Comportamento is excluded from the count.
func (a Assessment) LaggingCount() int {
	count := 0
	for _, level := range []DimensionLevel{a.Leitura, a.Escrita, a.Matematica, a.Atencao} {
		if level == DimensionLagging {
			count++
		}
	}
	return count
}

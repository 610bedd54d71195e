package service

import "github.com/noah-isme/simp-monitor-api/internal/models"

// ClassifyRisk maps an assessment to a risk level. Pure and total: high when
// the overall grade is insufficient or at least two academic dimensions lag,
// medium when the grade is regular or one dimension lags, low otherwise.
func ClassifyRisk(a models.Assessment) models.RiskLevel {
	lagging := a.LaggingCount()
	switch {
	case a.ConceitoGeral == models.ConceitoInsuficiente || lagging >= 2:
		return models.RiskHigh
	case a.ConceitoGeral == models.ConceitoRegular || lagging >= 1:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/simp-monitor-api/internal/models"
)

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		name       string
		assessment models.Assessment
		want       models.RiskLevel
	}{
		{
			name: "all adequate with good grade is low",
			assessment: models.Assessment{
				Leitura:       models.DimensionAdequate,
				Escrita:       models.DimensionAdequate,
				Matematica:    models.DimensionAdequate,
				Atencao:       models.DimensionAdequate,
				Comportamento: models.DimensionAdequate,
				ConceitoGeral: models.ConceitoBom,
			},
			want: models.RiskLow,
		},
		{
			name: "regular grade alone is medium",
			assessment: models.Assessment{
				Leitura:       models.DimensionAdequate,
				Escrita:       models.DimensionAdequate,
				Matematica:    models.DimensionAdequate,
				Atencao:       models.DimensionAdequate,
				ConceitoGeral: models.ConceitoRegular,
			},
			want: models.RiskMedium,
		},
		{
			name: "single lagging dimension is medium",
			assessment: models.Assessment{
				Leitura:       models.DimensionLagging,
				Escrita:       models.DimensionAdequate,
				Matematica:    models.DimensionAdequate,
				Atencao:       models.DimensionAdequate,
				ConceitoGeral: models.ConceitoBom,
			},
			want: models.RiskMedium,
		},
		{
			name: "insufficient grade is high regardless of dimensions",
			assessment: models.Assessment{
				Leitura:       models.DimensionAdequate,
				Escrita:       models.DimensionAdequate,
				Matematica:    models.DimensionAdequate,
				Atencao:       models.DimensionAdequate,
				ConceitoGeral: models.ConceitoInsuficiente,
			},
			want: models.RiskHigh,
		},
		{
			name: "two lagging dimensions are high even with a good grade",
			assessment: models.Assessment{
				Leitura:       models.DimensionLagging,
				Escrita:       models.DimensionLagging,
				Matematica:    models.DimensionAdequate,
				Atencao:       models.DimensionAdequate,
				ConceitoGeral: models.ConceitoBom,
			},
			want: models.RiskHigh,
		},
		{
			name: "lagging comportamento does not count toward high",
			assessment: models.Assessment{
				Leitura:       models.DimensionLagging,
				Escrita:       models.DimensionAdequate,
				Matematica:    models.DimensionAdequate,
				Atencao:       models.DimensionAdequate,
				Comportamento: models.DimensionLagging,
				ConceitoGeral: models.ConceitoBom,
			},
			want: models.RiskMedium,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyRisk(tc.assessment))
		})
	}
}

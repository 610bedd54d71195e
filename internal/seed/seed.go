package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
	"github.com/noah-isme/simp-monitor-api/internal/service"
	"github.com/noah-isme/simp-monitor-api/pkg/config"
)

var firstNames = []string{
	"Ana", "Bruno", "Carla", "Diego", "Eduarda", "Felipe", "Gabriela", "Heitor",
	"Isabela", "João", "Larissa", "Miguel", "Natália", "Otávio", "Paula", "Rafael",
	"Sofia", "Thiago", "Valentina", "William",
}

var lastNames = []string{
	"Almeida", "Barbosa", "Costa", "Dias", "Ferreira", "Gomes", "Lima", "Martins",
	"Nascimento", "Oliveira", "Pereira", "Ribeiro", "Santos", "Silva", "Souza",
}

var classNames = []string{"1A", "1B", "2A", "2B", "3A", "3B"}

var levels = []models.DimensionLevel{
	models.DimensionAdequate,
	models.DimensionDeveloping,
	models.DimensionLagging,
}

var conceitos = []models.ConceitoGeral{
	models.ConceitoOtimo,
	models.ConceitoBom,
	models.ConceitoRegular,
	models.ConceitoInsuficiente,
}

// Load populates the student store with deterministic demo data. The store
// is in memory, so without seeding every restart begins empty.
func Load(ctx context.Context, repo *repository.StudentRepository, cfg config.SeedConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	count := cfg.StudentCount
	if count <= 0 {
		count = 24
	}

	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		student := buildStudent(rng, base, i)
		if err := repo.Create(ctx, student); err != nil {
			return fmt.Errorf("seed student %s: %w", student.Name, err)
		}
	}
	logger.Info("demo data seeded", zap.Int("students", count))
	return nil
}

func buildStudent(rng *rand.Rand, base time.Time, index int) *models.Student {
	name := fmt.Sprintf("%s %s",
		firstNames[rng.Intn(len(firstNames))],
		lastNames[rng.Intn(len(lastNames))])

	student := &models.Student{
		ID:               uuid.NewString(),
		Name:             name,
		Enrollment:       fmt.Sprintf("2025%04d", index+1),
		ClassName:        classNames[rng.Intn(len(classNames))],
		RiskLevel:        models.RiskLow,
		Assessments:      []models.Assessment{},
		PsychAssessments: []models.PsychAssessment{},
		Interventions:    []models.Intervention{},
		Timeline:         []models.TimelineEvent{},
		Documents:        []models.StudentDocument{},
	}

	assessmentCount := 1 + rng.Intn(2)
	for b := 1; b <= assessmentCount; b++ {
		assessment := buildAssessment(rng, base.AddDate(0, 2*(b-1), 0), b)
		student.Assessments = append(student.Assessments, assessment)
		student.RiskLevel = service.ClassifyRisk(assessment)
		student.Timeline = append(student.Timeline, models.TimelineEvent{
			ID:   uuid.NewString(),
			Type: models.TimelineAssessment,
			Date: assessment.Date,
			Description: fmt.Sprintf("Avaliação %dº bimestre/%d registrada por %s (conceito %s)",
				assessment.Bimester, assessment.Year, assessment.RecordedBy, assessment.ConceitoGeral),
		})
	}

	latest := student.LatestAssessment()
	if latest.DificuldadePercebida && student.RiskLevel == models.RiskHigh {
		student.PsychReferral = true
		student.ReferralReason = "Dificuldade percebida em avaliação com risco alto"
		student.FamilyContact = &models.FamilyContact{}
		student.Timeline = append(student.Timeline, models.TimelineEvent{
			ID:          uuid.NewString(),
			Type:        models.TimelineReferral,
			Date:        latest.Date,
			Description: fmt.Sprintf("Encaminhamento para psicologia por %s", latest.RecordedBy),
		})
	}

	// Roughly a third of referred students already have an intake record.
	if student.PsychReferral && rng.Intn(3) == 0 {
		record := models.PsychAssessment{
			ID:                      uuid.NewString(),
			Date:                    latest.Date.AddDate(0, 0, 7),
			Type:                    models.PsychInicial,
			Classification:          models.ClassificationIndicioLeve,
			NecessitaAcompanhamento: rng.Intn(2) == 0,
			Professional:            "Dra. Helena Prado",
		}
		student.PsychAssessments = append(student.PsychAssessments, record)
		student.Timeline = append(student.Timeline, models.TimelineEvent{
			ID:          uuid.NewString(),
			Type:        models.TimelinePsych,
			Date:        record.Date,
			Description: fmt.Sprintf("Avaliação psicológica (%s) registrada por %s", record.Type, record.Professional),
		})
	}

	if student.RiskLevel != models.RiskLow && rng.Intn(2) == 0 {
		student.Interventions = append(student.Interventions, buildIntervention(rng, student.ID, base))
	}

	return student
}

func buildAssessment(rng *rand.Rand, date time.Time, bimester int) models.Assessment {
	conceito := conceitos[rng.Intn(len(conceitos))]
	assessment := models.Assessment{
		ID:                   uuid.NewString(),
		Date:                 date,
		Year:                 date.Year(),
		Bimester:             bimester,
		Leitura:              levels[rng.Intn(len(levels))],
		Escrita:              levels[rng.Intn(len(levels))],
		Matematica:           levels[rng.Intn(len(levels))],
		Atencao:              levels[rng.Intn(len(levels))],
		Comportamento:        levels[rng.Intn(len(levels))],
		ConceitoGeral:        conceito,
		DificuldadePercebida: conceito == models.ConceitoInsuficiente || rng.Intn(4) == 0,
		RecordedBy:           "Prof. Marcos Vieira",
	}
	return assessment
}

func buildIntervention(rng *rand.Rand, studentID string, base time.Time) models.Intervention {
	categories := []models.ActionCategory{
		models.CategoryAcoesInternas,
		models.CategoryAcionarFamilia,
		models.CategoryAcionarPsicologia,
		models.CategoryEquipeMultidisciplinar,
	}
	category := categories[rng.Intn(len(categories))]
	created := base.AddDate(0, 0, rng.Intn(30))
	deadline := created.AddDate(0, 0, 14)

	intervention := models.Intervention{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		ActionCategory: category,
		Objective:      "Reforço dirigido e acompanhamento quinzenal",
		Responsible:    "Coord. Beatriz Ramos",
		Status:         models.InterventionAguardando,
		PendingUntil:   &deadline,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	if models.MultidisciplinaryCategories[category] {
		intervention.ActionTool = models.DefaultMultidisciplinaryTool
	}
	return intervention
}

package service

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/noah-isme/simp-monitor-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation. Domain gauges are
// refreshed from current state right before the registry is scraped.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	studentsTotal        prometheus.Gauge
	studentsByRisk       *prometheus.GaugeVec
	studentsByStage      *prometheus.GaugeVec
	openInterventions    prometheus.Gauge
	overdueInterventions prometheus.Gauge
	openOccurrences      prometheus.Gauge
	openPendingTasks     prometheus.Gauge

	dashboard *DashboardService
	logger    *zap.Logger
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService(dashboard *DashboardService, logger *zap.Logger) *MetricsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	studentsTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simp_students_total",
		Help: "Students under monitoring",
	})

	studentsByRisk := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "simp_students_by_risk",
		Help: "Students per computed risk level",
	}, []string{"risk"})

	studentsByStage := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "simp_students_by_stage",
		Help: "Students per triage queue",
	}, []string{"stage"})

	openInterventions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simp_interventions_open",
		Help: "Interventions not yet concluded",
	})

	overdueInterventions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simp_interventions_overdue",
		Help: "Interventions past their deadline",
	})

	openOccurrences := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simp_occurrences_open",
		Help: "Critical occurrences awaiting resolution",
	})

	openPendingTasks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simp_occurrence_tasks_open",
		Help: "Pending outreach tasks blocking resolution",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, studentsTotal, studentsByRisk,
		studentsByStage, openInterventions, overdueInterventions, openOccurrences,
		openPendingTasks, goroutines)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		studentsTotal:        studentsTotal,
		studentsByRisk:       studentsByRisk,
		studentsByStage:      studentsByStage,
		openInterventions:    openInterventions,
		overdueInterventions: overdueInterventions,
		openOccurrences:      openOccurrences,
		openPendingTasks:     openPendingTasks,
		dashboard:            dashboard,
		logger:               logger,
	}
}

// Handler refreshes the domain gauges and serves the registry.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.refresh(r.Context())
		m.handler.ServeHTTP(w, r)
	})
}

// ObserveHTTPRequest records per-request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *MetricsService) refresh(ctx context.Context) {
	if m.dashboard == nil {
		return
	}
	summary, err := m.dashboard.Summary(ctx)
	if err != nil {
		m.logger.Warn("failed to refresh domain metrics", zap.Error(err))
		return
	}

	m.studentsTotal.Set(float64(summary.TotalStudents))
	for _, risk := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		m.studentsByRisk.WithLabelValues(string(risk)).Set(float64(summary.RiskDistribution[risk]))
	}
	for _, stage := range []models.Stage{models.StageTriage, models.StageAssessment, models.StageFollowUp, models.StageCompleted} {
		m.studentsByStage.WithLabelValues(string(stage)).Set(float64(summary.StageCounts[stage]))
	}
	m.openInterventions.Set(float64(summary.OpenInterventions))
	m.overdueInterventions.Set(float64(summary.OverdueInterventions))
	m.openOccurrences.Set(float64(summary.OpenOccurrences))
	m.openPendingTasks.Set(float64(summary.OpenPendingTasks))
}

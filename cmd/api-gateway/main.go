package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/simp-monitor-api/api/swagger"
	"github.com/noah-isme/simp-monitor-api/internal/handler"
	"github.com/noah-isme/simp-monitor-api/internal/middleware"
	"github.com/noah-isme/simp-monitor-api/internal/repository"
	"github.com/noah-isme/simp-monitor-api/internal/seed"
	"github.com/noah-isme/simp-monitor-api/internal/service"
	"github.com/noah-isme/simp-monitor-api/pkg/config"
	"github.com/noah-isme/simp-monitor-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/simp-monitor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/simp-monitor-api/pkg/middleware/requestid"
	"github.com/noah-isme/simp-monitor-api/pkg/storage"
)

// @title SIMP Monitor API
// @version 0.1.0
// @description Sistema Integrado de Monitoramento Pedagógico
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := repository.NewNotifier()
	students := repository.NewStudentRepository(notifier)
	occurrences := repository.NewOccurrenceRepository(notifier)

	if cfg.Seed.Enabled {
		if err := seed.Load(ctx, students, cfg.Seed, logr); err != nil {
			logr.Sugar().Fatalw("failed to seed demo data", "error", err)
		}
	}

	studentSvc := service.NewStudentService(students, validator.New(), logr)
	interventionSvc := service.NewInterventionService(students, logr)
	occurrenceSvc := service.NewOccurrenceService(occurrences, students, logr)
	triageSvc := service.NewTriageService(students, logr)
	dashboardSvc := service.NewDashboardService(students, occurrences, logr)
	exportSvc := service.NewExportService(students, logr)
	metricsSvc := service.NewMetricsService(dashboardSvc, logr)

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportSvc = service.NewReportService(students, store, signer,
			cfg.Reports.WorkerConcurrency, cfg.Reports.WorkerRetries, logr)
		reportSvc.Start(ctx)
		defer reportSvc.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	studentHandler := handler.NewStudentHandler(studentSvc)
	api.GET("/students", studentHandler.List)
	api.POST("/students", studentHandler.Create)
	api.GET("/students/:id", studentHandler.Get)
	api.POST("/students/:id/assessments", studentHandler.RecordAssessment)
	api.POST("/students/:id/psych-assessments", studentHandler.RecordPsychAssessment)
	api.POST("/students/:id/referral", studentHandler.Refer)
	api.PUT("/students/:id/family-contact", studentHandler.UpdateFamilyContact)
	api.POST("/students/:id/documents", studentHandler.AddDocument)
	api.GET("/students/:id/timeline", studentHandler.Timeline)

	interventionHandler := handler.NewInterventionHandler(interventionSvc)
	api.GET("/interventions", interventionHandler.List)
	api.POST("/interventions", interventionHandler.Create)
	api.GET("/interventions/:id", interventionHandler.Get)
	api.POST("/interventions/:id/start", interventionHandler.StartPlan)
	api.POST("/interventions/:id/updates", interventionHandler.AddUpdate)
	api.POST("/interventions/:id/resolve", interventionHandler.Resolve)
	api.POST("/interventions/:id/assign", interventionHandler.Assign)

	occurrenceHandler := handler.NewOccurrenceHandler(occurrenceSvc)
	api.GET("/occurrences", occurrenceHandler.List)
	api.POST("/occurrences", occurrenceHandler.Report)
	api.GET("/occurrences/:id", occurrenceHandler.Get)
	api.POST("/occurrences/:id/assume", occurrenceHandler.Assume)
	api.POST("/occurrences/:id/family-attempts", occurrenceHandler.FamilyAttempt)
	api.POST("/occurrences/:id/returns", occurrenceHandler.LogReturn)
	api.POST("/occurrences/:id/escalate-psychology", occurrenceHandler.EscalatePsychology)
	api.POST("/occurrences/:id/accept-psychologist", occurrenceHandler.AcceptPsychologist)
	api.POST("/occurrences/:id/resolve", occurrenceHandler.Resolve)
	api.POST("/occurrences/:id/follow-up", occurrenceHandler.RecordFollowUp)
	api.POST("/occurrences/:id/archive", occurrenceHandler.Archive)

	queueHandler := handler.NewQueueHandler(triageSvc)
	api.GET("/queues", queueHandler.Queues)
	api.GET("/queues/:stage", queueHandler.ByStage)

	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	api.GET("/dashboard", dashboardHandler.Summary)

	exportHandler := handler.NewExportHandler(exportSvc)
	api.GET("/exports/interventions", exportHandler.Interventions)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		api.POST("/students/:id/reports", reportHandler.Request)
		api.GET("/reports/:id", reportHandler.Status)
		api.GET("/reports/download", reportHandler.Download)
	}

	eventsHandler := handler.NewEventsHandler(notifier)
	api.GET("/events", eventsHandler.Stream)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

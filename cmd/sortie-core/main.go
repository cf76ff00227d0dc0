package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/flightline-ops/sortie-core/api/swagger"
	"github.com/flightline-ops/sortie-core/internal/handler"
	"github.com/flightline-ops/sortie-core/internal/middleware"
	"github.com/flightline-ops/sortie-core/internal/repository"
	"github.com/flightline-ops/sortie-core/internal/service"
	"github.com/flightline-ops/sortie-core/pkg/cache"
	"github.com/flightline-ops/sortie-core/pkg/config"
	"github.com/flightline-ops/sortie-core/pkg/database"
	"github.com/flightline-ops/sortie-core/pkg/export"
	"github.com/flightline-ops/sortie-core/pkg/logger"
	corsmiddleware "github.com/flightline-ops/sortie-core/pkg/middleware/cors"
	reqidmiddleware "github.com/flightline-ops/sortie-core/pkg/middleware/requestid"
	"github.com/flightline-ops/sortie-core/pkg/storage"
)

// @title Sortie Core API
// @version 0.1.0
// @description Flight-training scheduling core: feasibility, scoring and replanning
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	validate := validator.New()

	assignments := repository.NewAssignmentRepository(db)
	alternatives := repository.NewAlternativeRepository(db)
	policies := repository.NewPolicyRepository(db)
	instructors := repository.NewInstructorRepository(db)
	students := repository.NewStudentRepository(db)
	aircraft := repository.NewAircraftRepository(db)
	lessons := repository.NewLessonRepository(db)
	availability := repository.NewAvailabilityRepository(db)
	environment := repository.NewEnvironmentRepository(redisClient)
	events := repository.NewEventRepository(db)
	audits := repository.NewAuditRepository(db)

	metricsSvc := service.NewMetricsService()

	notificationSvc := service.NewNotificationService(cfg.Notifications, service.NewLogSender(logr), logr)
	notificationSvc.Start(context.Background())
	defer notificationSvc.Stop()

	feasibilitySvc := service.NewFeasibilityService(
		policies, environment, assignments, instructors, students, aircraft, lessons, availability,
		validate, logr, cfg.Engine.LookupTimeout,
	)
	scoringSvc := service.NewScoringService(
		policies, environment, assignments, instructors, aircraft, lessons,
		validate, logr, cfg.Engine.LookupTimeout, cfg.Engine.RecentFlightsWindow,
	)
	disruptionSvc := service.NewDisruptionService(
		assignments, alternatives, instructors, aircraft, feasibilitySvc, scoringSvc,
		events, audits, notificationSvc, cfg.Engine, validate, logr,
	)
	alternativeSvc := service.NewAlternativeService(alternatives, assignments, audits, notificationSvc, logr)
	assignmentSvc := service.NewAssignmentService(assignments, feasibilitySvc, validate, logr)
	environmentSvc := service.NewEnvironmentService(environment, validate, logr)

	feasibilityH := handler.NewFeasibilityHandler(feasibilitySvc, metricsSvc)
	scoringH := handler.NewScoringHandler(scoringSvc, metricsSvc)
	disruptionH := handler.NewDisruptionHandler(disruptionSvc, metricsSvc)
	alternativeH := handler.NewAlternativeHandler(alternativeSvc)
	assignmentH := handler.NewAssignmentHandler(assignmentSvc)
	environmentH := handler.NewEnvironmentHandler(environmentSvc)
	metricsH := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsH.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.OrgAuth(cfg.Auth.TokenSecret))

	api.POST("/feasibility/check", feasibilityH.Check)
	api.POST("/scoring/score", scoringH.Score)
	api.POST("/disruptions", disruptionH.Report)

	api.POST("/assignments", assignmentH.Create)
	api.GET("/assignments", assignmentH.List)
	api.GET("/assignments/:id", assignmentH.Get)
	api.POST("/assignments/:id/confirm", assignmentH.Confirm)
	api.POST("/assignments/:id/cancel", assignmentH.Cancel)
	api.POST("/assignments/:id/complete", assignmentH.Complete)
	api.GET("/assignments/:id/alternatives", alternativeH.ListForAssignment)

	api.POST("/alternatives/:id/accept", alternativeH.Accept)
	api.POST("/alternatives/:id/reject", alternativeH.Reject)

	api.GET("/environment", environmentH.Get)
	api.PUT("/environment", environmentH.Put)

	if cfg.Export.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Export.SignSecret, cfg.Export.ResultTTL)
		exportSvc := service.NewExportService(
			assignments, exportStore, signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Export.ResultTTL},
			logr, export.NewCSVExporter(), export.NewPDFExporter(),
		)
		exportH := handler.NewExportHandler(exportSvc)

		api.POST("/export/dayboard", exportH.Generate)
		api.GET("/export/:token", exportH.Download)

		go runExportJanitor(exportSvc, cfg.Export.ResultTTL, logr.Sugar())
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// runExportJanitor periodically removes expired export files.
func runExportJanitor(svc *service.ExportService, ttl time.Duration, log *zap.SugaredLogger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		removed, err := svc.Cleanup(ttl)
		if err != nil {
			log.Warnw("export cleanup failed", "error", err)
			continue
		}
		if len(removed) > 0 {
			log.Infow("export cleanup removed files", "count", len(removed))
		}
	}
}

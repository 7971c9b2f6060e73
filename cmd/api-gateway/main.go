package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-ops/reflow-api/api/swagger"
	"github.com/campus-ops/reflow-api/internal/handler"
	"github.com/campus-ops/reflow-api/internal/middleware"
	"github.com/campus-ops/reflow-api/internal/repository"
	"github.com/campus-ops/reflow-api/internal/service"
	"github.com/campus-ops/reflow-api/pkg/cache"
	"github.com/campus-ops/reflow-api/pkg/config"
	"github.com/campus-ops/reflow-api/pkg/database"
	"github.com/campus-ops/reflow-api/pkg/jobs"
	"github.com/campus-ops/reflow-api/pkg/logger"
	corsmiddleware "github.com/campus-ops/reflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-ops/reflow-api/pkg/middleware/requestid"
	"github.com/campus-ops/reflow-api/pkg/storage"
)

// @title Reflow API
// @version 1.0.0
// @description Room reallocation engine: moves timetabled sessions off vacated rooms onto free windows elsewhere on campus.
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, plan cache disabled", "error", err)
		redisClient = nil
	}

	planStore, err := storage.NewLocalStorage(cfg.Reallocation.PlanStateDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init plan storage", "error", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	roomRepo := repository.NewRoomRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	planRepo := repository.NewPlanRepository(planStore)
	planCache := repository.NewPlanCache(redisClient, logr, cfg.Reallocation.PlanCacheTTL)
	exportJobRepo := repository.NewExportJobRepository(db)

	priorities, err := service.LoadPriorityTableFile(cfg.Reallocation.PriorityTablePath, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to load priority table", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	reallocationSvc := service.NewReallocationService(
		roomRepo, sessionRepo, planRepo, planCache,
		priorities, cfg.Reallocation, logr,
	).WithMetrics(metricsSvc)

	exportSvc := service.NewExportService(reallocationSvc, exportStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr).
		WithMetrics(metricsSvc)
	exportQueue := jobs.NewQueue("exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})

	exportJobSvc := service.NewExportJobService(exportJobRepo, reallocationSvc, exportQueue, exportSvc, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exportQueue.Start(rootCtx)
	defer exportQueue.Stop()
	exportJobSvc.RecoverPendingJobs(rootCtx)
	exportJobSvc.StartCleanup(rootCtx)

	reallocationHandler := handler.NewReallocationHandler(reallocationSvc)
	exportHandler := handler.NewExportHandler(exportJobSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	guard := middleware.JWT(cfg.JWT.Secret)

	api.POST("/reallocations", guard, reallocationHandler.Generate)
	api.GET("/reallocations", reallocationHandler.ListPlans)
	api.GET("/reallocations/:id", reallocationHandler.GetPlan)
	api.POST("/reallocations/:id/resume", guard, reallocationHandler.Resume)
	api.POST("/reallocations/:id/exports", guard, exportHandler.CreateExport)
	api.GET("/exports/:id", exportHandler.ExportStatus)
	api.GET("/exports/:id/download", exportHandler.Download)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

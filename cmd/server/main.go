package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-lineage-registry/internal/adapters/primary/http/handlers"
	"model-lineage-registry/internal/adapters/primary/http/middleware"
	"model-lineage-registry/internal/adapters/secondary/evalcluster"
	"model-lineage-registry/internal/adapters/secondary/objectstore"
	"model-lineage-registry/internal/adapters/secondary/piiscan"
	"model-lineage-registry/internal/adapters/secondary/postgres"
	"model-lineage-registry/internal/config"
	"model-lineage-registry/internal/core/domain"
	output "model-lineage-registry/internal/core/ports/output"
	"model-lineage-registry/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Secondary adapters
	modelRepo := postgres.NewModelRepository(pool)
	versionRepo := postgres.NewModelVersionRepository(pool)
	lineageRepo := postgres.NewLineageRepository(pool)
	provenanceRepo := postgres.NewProvenanceRepository(pool)
	evaluationRepo := postgres.NewEvaluationRepository(pool)

	// Evaluation cluster client (optional, based on config)
	var cluster output.EvaluationCluster
	if cfg.Evaluation.Enabled {
		client, err := evalcluster.NewClusterClient(&cfg.Evaluation)
		if err != nil {
			log.Warnf("evaluation cluster init failed (continuing without job dispatch): %v", err)
		} else {
			cluster = client
			log.Info("evaluation cluster client initialized")
		}
	} else {
		log.Info("evaluation cluster integration disabled")
	}

	scanner := piiscan.NewScannerClient(&cfg.PIIScanner)
	store := objectstore.NewStoreClient(&cfg.ObjectStore)

	// Core services
	modelSvc := services.NewModelService(modelRepo)
	lineageSvc := services.NewLineageService(lineageRepo)
	versionSvc := services.NewVersionService(versionRepo, modelRepo, provenanceRepo, lineageSvc, store, services.VersionPublishPolicy{
		RequireCompliant: cfg.Compliance.RequireCompliantPublish,
		Standards:        cfg.Compliance.PublishStandards,
	})
	provenanceSvc := services.NewProvenanceService(provenanceRepo, scanner)
	evaluationSvc := services.NewEvaluationService(evaluationRepo, versionRepo, modelRepo, cluster, domain.ScoreBounds{
		RefLatencyMs:     cfg.Evaluation.RefLatencyMs,
		MaxLatencyMs:     cfg.Evaluation.MaxLatencyMs,
		RefThroughputRPS: cfg.Evaluation.RefThroughputRPS,
	}, cfg.Evaluation.JobDeadline)
	comparisonSvc := services.NewComparisonService(versionRepo, evaluationRepo)

	// Background sweep failing versions whose evaluation job overran its
	// deadline.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cluster != nil {
		go evaluationSvc.RunTimeoutSweeper(sweepCtx, cfg.Evaluation.SweepInterval)
	}

	// Primary adapter
	h := handlers.New(modelSvc, versionSvc, lineageSvc, provenanceSvc, evaluationSvc, comparisonSvc)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/lineage-registry")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/run-plan/internal/api"
	"alcyxob/run-plan/internal/config"
	"alcyxob/run-plan/internal/logging"
	"alcyxob/run-plan/internal/metrics"
	"alcyxob/run-plan/internal/repository"
	"alcyxob/run-plan/internal/repository/mongo"
	"alcyxob/run-plan/internal/repository/objectstore"
	"alcyxob/run-plan/internal/service"
	"alcyxob/run-plan/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// @title Run Plan API
// @version 1.0
// @description 12-week running plan with safety limits and weekly adaptation.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.ToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Infof("starting run plan server, store backend: %s", cfg.Store.Backend)

	ctx := context.Background()

	// --- Object storage (S3 backend and snapshots) ---
	var blobs storage.BlobStorage
	if cfg.S3.Enabled() {
		blobs, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize s3 storage: %s", err)
		}
	} else {
		log.Warnln("s3 not configured, plan snapshots are disabled")
	}

	// --- Plan repository ---
	var planRepo repository.PlanRepository
	switch cfg.Store.Backend {
	case config.StoreS3:
		planRepo = objectstore.NewPlanRepository(blobs)
	default:
		dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			log.Fatalf("could not connect to mongodb: %s", err)
		}
		defer func() {
			log.Infoln("disconnecting mongodb...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Errorf("failed to disconnect mongodb: %s", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		log.Infoln("database connection established")

		go func() {
			indexCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := mongo.EnsurePlanIndexes(indexCtx, appDB); err != nil {
				log.Errorf("ensure plan indexes: %s", err)
			}
		}()
		planRepo = mongo.NewMongoPlanRepository(appDB)
	}

	// --- Services ---
	metricsManager := metrics.NewManager("runplan", "server", prometheus.DefaultRegisterer)
	authService := service.NewAuthService(cfg.Auth.Email, cfg.Auth.PasswordHash, cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanService(planRepo, blobs, metricsManager, service.PlanServiceConfig{
		PlanID:       cfg.Plan.ID,
		PlanName:     cfg.Plan.Name,
		SaveDebounce: cfg.Plan.SaveDebounce,
		SaveTimeout:  cfg.Plan.SaveTimeout,
	})

	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Plan.SaveTimeout)
	err = planService.Load(loadCtx)
	cancelLoad()
	if err != nil {
		log.Fatalf("could not load plan: %s", err)
	}

	// --- Gin engine ---
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, authService, planService, metricsManager, prometheus.DefaultGatherer)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infoln("shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}

	// Pending debounced edits are written before the store goes away.
	flushCtx, cancelFlush := context.WithTimeout(context.Background(), cfg.Plan.SaveTimeout)
	defer cancelFlush()
	if err := planService.Close(flushCtx); err != nil {
		log.Errorf("final plan save failed: %s", err)
	}

	log.Infoln("server exiting")
}

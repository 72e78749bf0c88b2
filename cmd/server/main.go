package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agri-advisor/internal/advisor"
	"agri-advisor/internal/config"
	"agri-advisor/internal/handlers"
	"agri-advisor/internal/repository"
	"agri-advisor/internal/services"
	"agri-advisor/pkg/database"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel := logging.InfoLevel
	if cfg.Logging.Level == "debug" {
		logLevel = logging.DebugLevel
	}

	logger := logging.NewStructuredLogger("advisor-api", "1.0.0", logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting agri advisor API server", logging.Fields{
		"version":     "1.0.0",
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_host":     cfg.Database.Host,
		"db_name":     cfg.Database.Database,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("agri_advisor")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repositories
	dataAccess := repository.NewDataAccess(db, logger, metricsCollector)
	modelStore := repository.NewModelStore(db, logger, metricsCollector)

	// Initialize advisor engines
	clock := clockwork.NewRealClock()
	forecaster := advisor.NewForecaster(dataAccess, modelStore, logger, metricsCollector, clock, advisor.ForecasterTuning{
		MinTrainingSamples: cfg.Advisor.MinTrainingSamples,
		DefaultHorizonDays: cfg.Advisor.ForecastHorizonDays,
	})
	spoilageEngine := advisor.NewSpoilageEngine(dataAccess, logger, metricsCollector, clock)
	harvestOptimizer := advisor.NewHarvestOptimizer(dataAccess, logger, metricsCollector, clock)
	mandiEngine := advisor.NewRecommendationEngine(forecaster, spoilageEngine, dataAccess, logger, metricsCollector, clock)

	// Preload trained models so first requests skip the store roundtrip
	warmed := forecaster.WarmCache(ctx)
	logger.Info(ctx, "[STARTUP] Model cache warmed", logging.Fields{
		"models_loaded": warmed,
	})

	// Initialize service and handlers
	advisoryService := services.NewAdvisoryService(forecaster, spoilageEngine, harvestOptimizer, mandiEngine, dataAccess, logger, metricsCollector, clock)
	advisoryHandler := handlers.NewAdvisoryHandler(advisoryService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	advisoryHandler.RegisterRoutes(router)

	// API documentation
	router.HandleFunc("/api/docs/openapi.json", handlers.OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", handlers.SwaggerUI).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}

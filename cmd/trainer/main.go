package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"agri-advisor/internal/advisor"
	"agri-advisor/internal/config"
	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"
	"agri-advisor/pkg/database"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

func main() {
	// Parse command-line flags
	commodities := flag.String("commodities", "", "Comma-separated commodities to train (default: all seeded crops)")
	district := flag.String("district", "", "Train on a single district's history (default: pooled across districts)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel := logging.InfoLevel
	if cfg.Logging.Level == "debug" {
		logLevel = logging.DebugLevel
	}

	logger := logging.NewStructuredLogger("advisor-trainer", "1.0.0", logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[TRAINER_START] Starting price model training", logging.Fields{
		"version":     "1.0.0",
		"commodities": *commodities,
		"district":    *district,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("advisor_trainer")

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
		logger.Fatal(ctx, "[TRAINER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repositories and forecaster
	dataAccess := repository.NewDataAccess(db, logger, metricsCollector)
	modelStore := repository.NewModelStore(db, logger, metricsCollector)
	forecaster := advisor.NewForecaster(dataAccess, modelStore, logger, metricsCollector, clockwork.NewRealClock(), advisor.ForecasterTuning{
		MinTrainingSamples: cfg.Advisor.MinTrainingSamples,
	})

	targets := resolveTargets(*commodities)

	startTime := time.Now()
	var reports []*models.TrainingReport
	var skipped, failed []string

	for _, commodity := range targets {
		trainCtx, cancel := context.WithTimeout(ctx, cfg.Advisor.TrainingTimeout)
		report, err := forecaster.Train(trainCtx, commodity, *district)
		cancel()

		if err != nil {
			var insufficient *models.InsufficientDataError
			if errors.As(err, &insufficient) {
				skipped = append(skipped, fmt.Sprintf("%s (%d samples, need %d)",
					commodity, insufficient.Samples, insufficient.Required))
				continue
			}
			failed = append(failed, fmt.Sprintf("%s: %v", commodity, err))
			logger.Error(ctx, "[TRAINING_ERROR] Training failed", logging.Fields{
				"commodity": commodity,
			}, err)
			continue
		}
		reports = append(reports, report)
	}

	duration := time.Since(startTime)

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("TRAINING COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Commodities Requested: %d\n", len(targets))
	fmt.Printf("Models Trained:        %d\n", len(reports))
	fmt.Printf("Skipped (data):        %d\n", len(skipped))
	fmt.Printf("Failed:                %d\n", len(failed))
	fmt.Printf("Duration:              %v\n", duration)

	if len(reports) > 0 {
		fmt.Println("\nTrained models:")
		for _, r := range reports {
			fmt.Printf("  %-14s samples=%-6d MAE=%-8.2f MAPE=%.2f%%\n",
				r.Commodity, r.Samples, r.MAE, r.MAPE)
		}
	}
	if len(skipped) > 0 {
		fmt.Println("\nSkipped for insufficient data:")
		for _, s := range skipped {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(failed) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range failed {
			fmt.Printf("  - %s\n", f)
		}
	}

	logger.Info(ctx, "[TRAINER_COMPLETE] Training run finished", logging.Fields{
		"trained":          len(reports),
		"skipped":          len(skipped),
		"failed":           len(failed),
		"duration_seconds": duration.Seconds(),
	})

	if len(failed) > 0 {
		os.Exit(1)
	}
}

// resolveTargets parses the -commodities flag, falling back to every
// crop with a seeded profile.
func resolveTargets(flagValue string) []string {
	if flagValue != "" {
		var targets []string
		for _, c := range strings.Split(flagValue, ",") {
			c = strings.ToLower(strings.TrimSpace(c))
			if c != "" {
				targets = append(targets, c)
			}
		}
		return targets
	}

	targets := make([]string, 0, len(models.CropMetaSeed))
	for _, seed := range models.CropMetaSeed {
		targets = append(targets, seed.Crop)
	}
	return targets
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agri-advisor/pkg/database"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// ModelStore persists trained per-commodity price models. Payloads are
// opaque JSON owned by the forecaster.
type ModelStore interface {
	Load(ctx context.Context, commodity string) (*StoredModel, error)
	Save(ctx context.Context, model *StoredModel) error
	ListCommodities(ctx context.Context) ([]string, error)
}

// StoredModel is a serialized trained model with its training metadata
type StoredModel struct {
	Commodity    string    `db:"commodity"`
	ModelVersion string    `db:"model_version"`
	Payload      []byte    `db:"payload"`
	Samples      int       `db:"samples"`
	MAE          float64   `db:"mae"`
	MAPE         float64   `db:"mape"`
	TrainedAt    time.Time `db:"trained_at"`
}

// postgresModelStore implements ModelStore against PostgreSQL
type postgresModelStore struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewModelStore creates a PostgreSQL-backed ModelStore
func NewModelStore(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ModelStore {
	return &postgresModelStore{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Load retrieves the stored model for a commodity
func (s *postgresModelStore) Load(ctx context.Context, commodity string) (*StoredModel, error) {
	query := `
		SELECT commodity, model_version, payload, samples, mae, mape, trained_at
		FROM price_models
		WHERE commodity = $1
	`

	var model StoredModel
	err := s.db.GetContext(ctx, "load_model", &model, query, commodity)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "price_model",
			ID:       commodity,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return &model, nil
}

// Save upserts the stored model for a commodity. Last writer wins:
// retraining is deterministic given identical history, so a concurrent
// double-train converges to the same payload.
func (s *postgresModelStore) Save(ctx context.Context, model *StoredModel) error {
	query := `
		INSERT INTO price_models (
			commodity, model_version, payload, samples, mae, mape, trained_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (commodity) DO UPDATE SET
			model_version = EXCLUDED.model_version,
			payload = EXCLUDED.payload,
			samples = EXCLUDED.samples,
			mae = EXCLUDED.mae,
			mape = EXCLUDED.mape,
			trained_at = EXCLUDED.trained_at
	`

	_, err := s.db.ExecContext(ctx, "save_model", query,
		model.Commodity,
		model.ModelVersion,
		model.Payload,
		model.Samples,
		model.MAE,
		model.MAPE,
		model.TrainedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}

	s.logger.Info(ctx, "[MODEL_STORE] Model saved", logging.Fields{
		"commodity":     model.Commodity,
		"model_version": model.ModelVersion,
		"samples":       model.Samples,
		"payload_bytes": len(model.Payload),
	})

	return nil
}

// ListCommodities returns all commodities that have a trained model
func (s *postgresModelStore) ListCommodities(ctx context.Context) ([]string, error) {
	query := `SELECT commodity FROM price_models ORDER BY commodity`

	var commodities []string
	err := s.db.SelectContext(ctx, "list_models", &commodities, query)

	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	return commodities, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agri-advisor/internal/models"
	"agri-advisor/pkg/database"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// DataAccess provides the read surface the advisory core consumes, plus
// the audit-log write. History queries return rows in ascending date
// order; "latest" lookups return the newest row first.
type DataAccess interface {
	QueryPriceHistory(ctx context.Context, commodity, district string, since time.Time) ([]*models.MandiPrice, error)
	QueryPriceHistoryAllDistricts(ctx context.Context, commodity string, since time.Time) ([]*models.MandiPrice, error)
	QueryWeatherHistory(ctx context.Context, district string, since time.Time) ([]*models.WeatherRecord, error)
	QueryNDVIHistory(ctx context.Context, district string, limit int) ([]*models.NDVIRecord, error)
	QuerySoilProfile(ctx context.Context, district string) (*models.SoilProfile, error)
	QueryTransportRoute(ctx context.Context, origin, destination string) (*models.TransportRoute, error)
	QueryCropMeta(ctx context.Context, crop string) (*models.CropMeta, error)

	LogPrediction(ctx context.Context, entry *models.PredictionLog) error

	HealthCheck(ctx context.Context) error
}

// postgresDataAccess implements DataAccess against PostgreSQL
type postgresDataAccess struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDataAccess creates a PostgreSQL-backed DataAccess
func NewDataAccess(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) DataAccess {
	return &postgresDataAccess{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// QueryPriceHistory retrieves mandi prices for a commodity in a district,
// ascending by arrival date
func (r *postgresDataAccess) QueryPriceHistory(ctx context.Context, commodity, district string, since time.Time) ([]*models.MandiPrice, error) {
	query := `
		SELECT id, commodity, state, district, market, variety, arrival_date,
		       min_price, max_price, modal_price, arrival_qty_tonnes, created_at
		FROM mandi_prices
		WHERE commodity = $1 AND district = $2 AND arrival_date >= $3
		ORDER BY arrival_date ASC
	`

	var prices []*models.MandiPrice
	err := r.db.SelectContext(ctx, "query_price_history", &prices, query,
		commodity, district, since)

	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}

	return prices, nil
}

// QueryPriceHistoryAllDistricts retrieves commodity prices across all
// districts, used when training without a district filter
func (r *postgresDataAccess) QueryPriceHistoryAllDistricts(ctx context.Context, commodity string, since time.Time) ([]*models.MandiPrice, error) {
	query := `
		SELECT id, commodity, state, district, market, variety, arrival_date,
		       min_price, max_price, modal_price, arrival_qty_tonnes, created_at
		FROM mandi_prices
		WHERE commodity = $1 AND arrival_date >= $2
		ORDER BY arrival_date ASC
	`

	var prices []*models.MandiPrice
	err := r.db.SelectContext(ctx, "query_price_history_all", &prices, query,
		commodity, since)

	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}

	return prices, nil
}

// QueryWeatherHistory retrieves district weather, ascending by record date
func (r *postgresDataAccess) QueryWeatherHistory(ctx context.Context, district string, since time.Time) ([]*models.WeatherRecord, error) {
	query := `
		SELECT id, district, state, lat, lon, record_date,
		       temp_min, temp_max, temp_avg, humidity, rainfall_mm,
		       solar_radiation, wind_speed, source, created_at
		FROM weather_records
		WHERE district = $1 AND record_date >= $2
		ORDER BY record_date ASC
	`

	var records []*models.WeatherRecord
	err := r.db.SelectContext(ctx, "query_weather_history", &records, query,
		district, since)

	if err != nil {
		return nil, fmt.Errorf("failed to query weather history: %w", err)
	}

	return records, nil
}

// QueryNDVIHistory retrieves the newest NDVI observations for a district
func (r *postgresDataAccess) QueryNDVIHistory(ctx context.Context, district string, limit int) ([]*models.NDVIRecord, error) {
	query := `
		SELECT id, lat, lon, district, record_date, ndvi_value,
		       ndvi_trend_30d, growth_plateau, source, created_at
		FROM ndvi_records
		WHERE district = $1
		ORDER BY record_date DESC
		LIMIT $2
	`

	var records []*models.NDVIRecord
	err := r.db.SelectContext(ctx, "query_ndvi_history", &records, query,
		district, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to query NDVI history: %w", err)
	}

	return records, nil
}

// QuerySoilProfile retrieves the soil health profile for a district
func (r *postgresDataAccess) QuerySoilProfile(ctx context.Context, district string) (*models.SoilProfile, error) {
	query := `
		SELECT id, district, state, block, soil_type, ph, organic_carbon_pct,
		       nitrogen_kg_ha, phosphorus_kg_ha, potassium_kg_ha,
		       soil_quality_index, created_at
		FROM soil_profiles
		WHERE district = $1
		LIMIT 1
	`

	var profile models.SoilProfile
	err := r.db.GetContext(ctx, "query_soil_profile", &profile, query, district)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "soil_profile",
			ID:       district,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query soil profile: %w", err)
	}

	return &profile, nil
}

// QueryTransportRoute retrieves a route between origin and destination,
// trying both directions
func (r *postgresDataAccess) QueryTransportRoute(ctx context.Context, origin, destination string) (*models.TransportRoute, error) {
	query := `
		SELECT id, origin_district, destination_market, distance_km,
		       estimated_time_hours, road_quality, fuel_cost_per_km,
		       spoilage_rate_per_hour
		FROM transport_routes
		WHERE origin_district = $1 AND destination_market = $2
		LIMIT 1
	`

	var route models.TransportRoute
	err := r.db.GetContext(ctx, "query_transport_route", &route, query, origin, destination)

	if err == sql.ErrNoRows {
		// Reverse direction
		err = r.db.GetContext(ctx, "query_transport_route", &route, query, destination, origin)
	}

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "transport_route",
			ID:       fmt.Sprintf("%s->%s", origin, destination),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query transport route: %w", err)
	}

	return &route, nil
}

// QueryCropMeta retrieves agronomic metadata for a crop
func (r *postgresDataAccess) QueryCropMeta(ctx context.Context, crop string) (*models.CropMeta, error) {
	query := `
		SELECT id, crop, maturity_days_min, maturity_days_max,
		       shelf_life_days_open, shelf_life_days_cold,
		       optimal_temp_min, optimal_temp_max,
		       optimal_humidity_min, optimal_humidity_max,
		       fao_post_harvest_loss_pct, base_price_per_quintal, category
		FROM crop_meta
		WHERE crop = $1
	`

	var meta models.CropMeta
	err := r.db.GetContext(ctx, "query_crop_meta", &meta, query, crop)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "crop_meta",
			ID:       crop,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query crop meta: %w", err)
	}

	return &meta, nil
}

// LogPrediction appends an audit row for a served advisory
func (r *postgresDataAccess) LogPrediction(ctx context.Context, entry *models.PredictionLog) error {
	query := `
		INSERT INTO prediction_logs (
			prediction_type, crop, district, input_params, output_result,
			confidence, model_version, data_sources_used, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		entry.PredictionType,
		entry.Crop,
		entry.District,
		entry.InputParams,
		entry.OutputResult,
		entry.Confidence,
		entry.ModelVersion,
		entry.DataSourcesUsed,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to log prediction: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_AUDIT] Prediction logged", logging.Fields{
		"prediction_type": entry.PredictionType,
		"crop":            entry.Crop,
		"district":        entry.District,
	})

	return nil
}

// HealthCheck performs a repository health check
func (r *postgresDataAccess) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}

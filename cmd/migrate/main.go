package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"agri-advisor/internal/config"
	"agri-advisor/internal/models"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	seed := flag.Bool("seed", false, "Seed reference data after migrating up")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("Connected to database successfully")

	// Read migration file
	var migrationFile string
	if *direction == "up" {
		migrationFile = "migrations/001_create_schema.up.sql"
	} else {
		migrationFile = "migrations/001_create_schema.down.sql"
	}

	migrationPath := filepath.Join(".", migrationFile)
	content, err := os.ReadFile(migrationPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read migration file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Running migration: %s\n", migrationFile)

	// Execute migration
	_, err = db.Exec(string(content))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")

	if *seed && *direction == "up" {
		if err := seedReferenceData(db); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed reference data: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Reference data seeded successfully")
	}
}

// seedReferenceData loads the curated crop, soil and transport tables.
// Inserts are idempotent so the seeder can re-run after schema resets.
func seedReferenceData(db *sqlx.DB) error {
	for _, crop := range models.CropMetaSeed {
		_, err := db.NamedExec(`
			INSERT INTO crop_meta (
				crop, maturity_days_min, maturity_days_max,
				shelf_life_days_open, shelf_life_days_cold,
				optimal_temp_min, optimal_temp_max,
				optimal_humidity_min, optimal_humidity_max,
				fao_post_harvest_loss_pct, base_price_per_quintal, category
			) VALUES (
				:crop, :maturity_days_min, :maturity_days_max,
				:shelf_life_days_open, :shelf_life_days_cold,
				:optimal_temp_min, :optimal_temp_max,
				:optimal_humidity_min, :optimal_humidity_max,
				:fao_post_harvest_loss_pct, :base_price_per_quintal, :category
			)
			ON CONFLICT (crop) DO NOTHING`,
			crop)
		if err != nil {
			return fmt.Errorf("seeding crop %s: %w", crop.Crop, err)
		}
	}
	fmt.Printf("Seeded %d crop profiles\n", len(models.CropMetaSeed))

	for _, soil := range models.SoilProfileSeed {
		_, err := db.NamedExec(`
			INSERT INTO soil_profiles (
				district, state, block, soil_type, ph, organic_carbon_pct,
				nitrogen_kg_ha, phosphorus_kg_ha, potassium_kg_ha, soil_quality_index
			) VALUES (
				:district, :state, :block, :soil_type, :ph, :organic_carbon_pct,
				:nitrogen_kg_ha, :phosphorus_kg_ha, :potassium_kg_ha, :soil_quality_index
			)
			ON CONFLICT (district) DO NOTHING`,
			soil)
		if err != nil {
			return fmt.Errorf("seeding soil profile %s: %w", soil.District, err)
		}
	}
	fmt.Printf("Seeded %d soil profiles\n", len(models.SoilProfileSeed))

	for _, route := range models.TransportRouteSeed {
		_, err := db.NamedExec(`
			INSERT INTO transport_routes (
				origin_district, destination_market, distance_km,
				estimated_time_hours, road_quality, fuel_cost_per_km,
				spoilage_rate_per_hour
			) VALUES (
				:origin_district, :destination_market, :distance_km,
				:estimated_time_hours, :road_quality, :fuel_cost_per_km,
				:spoilage_rate_per_hour
			)
			ON CONFLICT (origin_district, destination_market) DO NOTHING`,
			route)
		if err != nil {
			return fmt.Errorf("seeding route %s-%s: %w", route.OriginDistrict, route.DestinationMarket, err)
		}
	}
	fmt.Printf("Seeded %d transport routes\n", len(models.TransportRouteSeed))

	return nil
}

package models

import (
	"time"
)

// MandiPrice represents one historical mandi price record (Agmarknet style).
// Nullable columns are pointers.
type MandiPrice struct {
	ID               int64     `json:"id" db:"id"`
	Commodity        string    `json:"commodity" db:"commodity"`
	State            string    `json:"state" db:"state"`
	District         string    `json:"district" db:"district"`
	Market           string    `json:"market" db:"market"`
	Variety          *string   `json:"variety,omitempty" db:"variety"`
	ArrivalDate      time.Time `json:"arrival_date" db:"arrival_date"`
	MinPrice         *float64  `json:"min_price,omitempty" db:"min_price"`
	MaxPrice         *float64  `json:"max_price,omitempty" db:"max_price"`
	ModalPrice       float64   `json:"modal_price" db:"modal_price"`
	ArrivalQtyTonnes *float64  `json:"arrival_qty_tonnes,omitempty" db:"arrival_qty_tonnes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// WeatherRecord represents a daily district weather observation
type WeatherRecord struct {
	ID             int64     `json:"id" db:"id"`
	District       string    `json:"district" db:"district"`
	State          string    `json:"state" db:"state"`
	Lat            float64   `json:"lat" db:"lat"`
	Lon            float64   `json:"lon" db:"lon"`
	RecordDate     time.Time `json:"record_date" db:"record_date"`
	TempMin        *float64  `json:"temp_min,omitempty" db:"temp_min"`
	TempMax        *float64  `json:"temp_max,omitempty" db:"temp_max"`
	TempAvg        *float64  `json:"temp_avg,omitempty" db:"temp_avg"`
	Humidity       *float64  `json:"humidity,omitempty" db:"humidity"`
	RainfallMm     *float64  `json:"rainfall_mm,omitempty" db:"rainfall_mm"`
	SolarRadiation *float64  `json:"solar_radiation,omitempty" db:"solar_radiation"`
	WindSpeed      *float64  `json:"wind_speed,omitempty" db:"wind_speed"`
	Source         string    `json:"source" db:"source"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NDVIRecord represents a satellite vegetation-index observation for a district
type NDVIRecord struct {
	ID            int64     `json:"id" db:"id"`
	Lat           float64   `json:"lat" db:"lat"`
	Lon           float64   `json:"lon" db:"lon"`
	District      string    `json:"district" db:"district"`
	RecordDate    time.Time `json:"record_date" db:"record_date"`
	NDVIValue     float64   `json:"ndvi_value" db:"ndvi_value"`
	NDVITrend30d  *float64  `json:"ndvi_trend_30d,omitempty" db:"ndvi_trend_30d"`
	GrowthPlateau bool      `json:"growth_plateau" db:"growth_plateau"`
	Source        string    `json:"source" db:"source"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SoilProfile represents district-level soil health data
type SoilProfile struct {
	ID               int64     `json:"id" db:"id"`
	District         string    `json:"district" db:"district"`
	State            string    `json:"state" db:"state"`
	Block            *string   `json:"block,omitempty" db:"block"`
	SoilType         *string   `json:"soil_type,omitempty" db:"soil_type"`
	PH               *float64  `json:"ph,omitempty" db:"ph"`
	OrganicCarbonPct *float64  `json:"organic_carbon_pct,omitempty" db:"organic_carbon_pct"`
	NitrogenKgHa     *float64  `json:"nitrogen_kg_ha,omitempty" db:"nitrogen_kg_ha"`
	PhosphorusKgHa   *float64  `json:"phosphorus_kg_ha,omitempty" db:"phosphorus_kg_ha"`
	PotassiumKgHa    *float64  `json:"potassium_kg_ha,omitempty" db:"potassium_kg_ha"`
	SoilQualityIndex *float64  `json:"soil_quality_index,omitempty" db:"soil_quality_index"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// CropMeta holds per-crop agronomic metadata: maturity windows, shelf life,
// optimal storage conditions and the FAO post-harvest loss baseline.
type CropMeta struct {
	ID                 int64    `json:"id" db:"id"`
	Crop               string   `json:"crop" db:"crop"`
	MaturityDaysMin    int      `json:"maturity_days_min" db:"maturity_days_min"`
	MaturityDaysMax    int      `json:"maturity_days_max" db:"maturity_days_max"`
	ShelfLifeDaysOpen  int      `json:"shelf_life_days_open" db:"shelf_life_days_open"`
	ShelfLifeDaysCold  int      `json:"shelf_life_days_cold" db:"shelf_life_days_cold"`
	OptimalTempMin     *float64 `json:"optimal_temp_min,omitempty" db:"optimal_temp_min"`
	OptimalTempMax     *float64 `json:"optimal_temp_max,omitempty" db:"optimal_temp_max"`
	OptimalHumidityMin *float64 `json:"optimal_humidity_min,omitempty" db:"optimal_humidity_min"`
	OptimalHumidityMax *float64 `json:"optimal_humidity_max,omitempty" db:"optimal_humidity_max"`
	FAOLossPct         *float64 `json:"fao_post_harvest_loss_pct,omitempty" db:"fao_post_harvest_loss_pct"`
	BasePricePerQtl    *float64 `json:"base_price_per_quintal,omitempty" db:"base_price_per_quintal"`
	Category           *string  `json:"category,omitempty" db:"category"`
}

// TransportRoute represents a pre-computed origin-to-market route
type TransportRoute struct {
	ID                 int64    `json:"id" db:"id"`
	OriginDistrict     string   `json:"origin_district" db:"origin_district"`
	DestinationMarket  string   `json:"destination_market" db:"destination_market"`
	DistanceKm         float64  `json:"distance_km" db:"distance_km"`
	EstimatedTimeHours *float64 `json:"estimated_time_hours,omitempty" db:"estimated_time_hours"`
	RoadQuality        *string  `json:"road_quality,omitempty" db:"road_quality"`
	FuelCostPerKm      float64  `json:"fuel_cost_per_km" db:"fuel_cost_per_km"`
	SpoilageRatePerHr  *float64 `json:"spoilage_rate_per_hour,omitempty" db:"spoilage_rate_per_hour"`
}

// PredictionLog is the audit record appended for every served advisory
type PredictionLog struct {
	ID              int64     `json:"id" db:"id"`
	PredictionType  string    `json:"prediction_type" db:"prediction_type"`
	Crop            string    `json:"crop" db:"crop"`
	District        string    `json:"district" db:"district"`
	InputParams     string    `json:"input_params" db:"input_params"`
	OutputResult    string    `json:"output_result" db:"output_result"`
	Confidence      *float64  `json:"confidence,omitempty" db:"confidence"`
	ModelVersion    string    `json:"model_version" db:"model_version"`
	DataSourcesUsed *string   `json:"data_sources_used,omitempty" db:"data_sources_used"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

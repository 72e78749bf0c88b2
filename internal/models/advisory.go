package models

import (
	"time"
)

// Price direction labels
const (
	DirectionRising  = "rising"
	DirectionFalling = "falling"
	DirectionStable  = "stable"
)

// Forecast provenance labels
const (
	SourceMLModel             = "ml_model"
	SourceStatistical         = "statistical"
	SourceStatisticalFallback = "statistical_fallback"
)

// Risk tier labels, boundaries fixed at 8/20/40 percent
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// Harvest actions
const (
	ActionHarvestNow      = "harvest_now"
	ActionWait            = "wait"
	ActionUrgentHarvest   = "urgent_harvest"
	ActionSellImmediately = "sell_immediately"
)

// ForecastPoint is a single day of a price forecast with its interval
type ForecastPoint struct {
	Date           time.Time `json:"date"`
	PredictedPrice float64   `json:"predicted_price"`
	CILow          float64   `json:"ci_low"`
	CIHigh         float64   `json:"ci_high"`
	DayOffset      int       `json:"day_offset"`
}

// PriceForecast is the full N-day forecast for a commodity in a district
type PriceForecast struct {
	Commodity         string          `json:"commodity"`
	District          string          `json:"district"`
	CurrentPrice      float64         `json:"current_price"`
	Forecasts         []ForecastPoint `json:"forecasts"`
	Direction         string          `json:"direction"`
	PctChangeForecast float64         `json:"pct_change_forecast"`
	Confidence        float64         `json:"confidence"`
	ModelVersion      string          `json:"model_version"`
	DataPointsUsed    int             `json:"data_points_used"`
	Source            string          `json:"source"`
}

// FactorScore is one contributing spoilage factor with its impact label
type FactorScore struct {
	Score  float64 `json:"score"`
	Impact string  `json:"impact"`
}

// SpoilageFactors is the explainability breakdown of a spoilage assessment
type SpoilageFactors struct {
	Temperature         FactorScore `json:"temperature"`
	Humidity            FactorScore `json:"humidity"`
	Transit             FactorScore `json:"transit"`
	TimeDecay           FactorScore `json:"time_decay"`
	CropHealth          FactorScore `json:"crop_health"`
	StorageType         string      `json:"storage_type"`
	StorageMultiplier   float64     `json:"storage_multiplier"`
	Packaging           string      `json:"packaging"`
	PackagingMultiplier float64     `json:"packaging_multiplier"`
}

// SpoilageAssessment is the full risk assessment for a shipment
type SpoilageAssessment struct {
	Commodity              string          `json:"commodity"`
	District               string          `json:"district"`
	SpoilagePct            float64         `json:"spoilage_pct"`
	RiskLevel              string          `json:"risk_level"`
	LossEstimateKg         float64         `json:"loss_estimate_kg"`
	ShelfLifeRemainingDays int             `json:"shelf_life_remaining_days"`
	FAOBaselinePct         float64         `json:"fao_baseline_pct"`
	Factors                SpoilageFactors `json:"factors"`
	Recommendations        []string        `json:"recommendations"`
	Confidence             float64         `json:"confidence"`
	ModelVersion           string          `json:"model_version"`
}

// MaturitySignal assesses crop age against the maturity calendar
type MaturitySignal struct {
	Status         string  `json:"status"`
	Score          float64 `json:"score"`
	DaysToMaturity int     `json:"days_to_maturity,omitempty"`
	DaysOverdue    int     `json:"days_overdue,omitempty"`
	Detail         string  `json:"detail"`
}

// NDVISignal assesses satellite growth-curve harvest readiness
type NDVISignal struct {
	Status  string  `json:"status"`
	Score   float64 `json:"score"`
	NDVI    float64 `json:"ndvi,omitempty"`
	Trend   float64 `json:"trend,omitempty"`
	Plateau bool    `json:"plateau,omitempty"`
	Detail  string  `json:"detail"`
}

// WeatherSignal assesses harvest-operation weather risk
type WeatherSignal struct {
	Status        string  `json:"status"`
	Score         float64 `json:"score"`
	AvgRainfallMm float64 `json:"avg_rainfall_mm,omitempty"`
	MaxRainfallMm float64 `json:"max_rainfall_mm,omitempty"`
	AvgHumidity   float64 `json:"avg_humidity,omitempty"`
	AvgWind       float64 `json:"avg_wind,omitempty"`
	Detail        string  `json:"detail"`
}

// PriceSignal assesses whether waiting for better prices is worthwhile
type PriceSignal struct {
	Status     string  `json:"status"`
	Score      float64 `json:"score"`
	TrendPct   float64 `json:"trend_pct,omitempty"`
	CurrentAvg float64 `json:"current_avg,omitempty"`
	Detail     string  `json:"detail"`
}

// SoilSignal assesses soil support for timely maturity
type SoilSignal struct {
	Status           string  `json:"status"`
	Score            float64 `json:"score"`
	QualityIndex     float64 `json:"quality_index,omitempty"`
	PH               float64 `json:"ph,omitempty"`
	NitrogenKgHa     float64 `json:"nitrogen_kg_ha,omitempty"`
	OrganicCarbonPct float64 `json:"organic_carbon_pct,omitempty"`
	Detail           string  `json:"detail"`
}

// HarvestSignals groups the five independent timing signals
type HarvestSignals struct {
	Maturity MaturitySignal `json:"maturity"`
	NDVI     NDVISignal     `json:"ndvi"`
	Weather  WeatherSignal  `json:"weather"`
	Price    PriceSignal    `json:"price"`
	Soil     SoilSignal     `json:"soil"`
}

// HarvestWindow is the recommended date range for harvesting
type HarvestWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// HarvestDecision is the full harvest-timing recommendation
type HarvestDecision struct {
	Commodity     string         `json:"commodity"`
	District      string         `json:"district"`
	CropAgeDays   *int           `json:"crop_age_days,omitempty"`
	SowingDate    *time.Time     `json:"sowing_date,omitempty"`
	Action        string         `json:"action"`
	WaitDays      int            `json:"wait_days"`
	OptimalWindow HarvestWindow  `json:"optimal_window"`
	Reasoning     string         `json:"reasoning"`
	Priority      string         `json:"priority"`
	Signals       HarvestSignals `json:"signals"`
	Confidence    float64        `json:"confidence"`
	ModelVersion  string         `json:"model_version"`
}

// TransportEstimate is the cost model for one origin-to-mandi haul
type TransportEstimate struct {
	DistanceKm float64 `json:"distance_km"`
	TimeHours  float64 `json:"time_hours"`
	FuelCost   float64 `json:"fuel_cost"`
	LaborCost  float64 `json:"labor_cost"`
	Trucks     int     `json:"trucks"`
	TotalCost  float64 `json:"total_cost"`
	Estimated  bool    `json:"estimated,omitempty"`
}

// SpoilageSummary condenses a spoilage assessment for mandi ranking
type SpoilageSummary struct {
	RiskLevel    string  `json:"risk_level"`
	LossPct      float64 `json:"loss_pct"`
	LossKg       float64 `json:"loss_kg"`
	LossValueINR float64 `json:"loss_value_inr"`
}

// MandiOption is one evaluated candidate market
type MandiOption struct {
	Mandi                    string            `json:"mandi"`
	Rank                     int               `json:"rank"`
	PredictedPricePerQuintal float64           `json:"predicted_price_per_quintal"`
	PriceTrend               string            `json:"price_trend"`
	PriceConfidence          float64           `json:"price_confidence"`
	RevenueINR               float64           `json:"revenue_inr"`
	Transport                TransportEstimate `json:"transport"`
	Spoilage                 SpoilageSummary   `json:"spoilage"`
	NetProfitINR             float64           `json:"net_profit_inr"`
	ProfitMarginPct          float64           `json:"profit_margin_pct"`
	IsLocal                  bool              `json:"is_local"`
}

// MarketRanking is the ranked mandi recommendation set
type MarketRanking struct {
	Commodity            string        `json:"commodity"`
	OriginDistrict       string        `json:"origin_district"`
	QuantityQuintals     float64       `json:"quantity_quintals"`
	Recommendations      []MandiOption `json:"recommendations"`
	BestMandi            string        `json:"best_mandi"`
	BestNetProfit        float64       `json:"best_net_profit"`
	TotalMandisEvaluated int           `json:"total_mandis_evaluated"`
	Reasoning            string        `json:"reasoning"`
	ModelVersion         string        `json:"model_version"`
}

// PreservationAction is one tier of the cost-vs-savings action ladder
type PreservationAction struct {
	Rank              int     `json:"rank"`
	Tag               string  `json:"tag"`
	Action            string  `json:"action"`
	CostINRPerQuintal float64 `json:"cost_inr_per_quintal"`
	SavesPercent      float64 `json:"saves_percent"`
}

// SelectedMarket is the market chosen by the composer with its price band
type SelectedMarket struct {
	Name               string     `json:"name"`
	ExpectedPriceRange [2]float64 `json:"expected_price_range"`
}

// NetProfitComparison contrasts the best remote mandi against selling locally
type NetProfitComparison struct {
	BestMandi  float64 `json:"best_mandi"`
	LocalMandi float64 `json:"local_mandi"`
}

// Explanation is the farmer-facing reasoning for a composed decision
type Explanation struct {
	WeatherReason     string `json:"weather_reason"`
	MarketReason      string `json:"market_reason"`
	SupplyReason      string `json:"supply_reason"`
	ConfidenceMessage string `json:"confidence_message"`
}

// ComposedDecision is the final cross-signal advisory
type ComposedDecision struct {
	Action              string               `json:"action"`
	WaitDays            int                  `json:"wait_days"`
	BestMandi           SelectedMarket       `json:"best_mandi"`
	PreservationActions []PreservationAction `json:"preservation_actions"`
	NetProfitComparison NetProfitComparison  `json:"net_profit_comparison"`
	OverallConfidence   float64              `json:"overall_confidence"`
	Explanation         Explanation          `json:"explanation"`
}

// TrainingReport summarizes a model training run
type TrainingReport struct {
	Status       string    `json:"status"`
	Commodity    string    `json:"commodity"`
	District     string    `json:"district,omitempty"`
	Samples      int       `json:"samples"`
	MAE          float64   `json:"mae"`
	MAPE         float64   `json:"mape"`
	ModelVersion string    `json:"model_version"`
	TrainedAt    time.Time `json:"trained_at"`
}

// SpoilageRequest parameterizes a spoilage assessment
type SpoilageRequest struct {
	Commodity         string  `json:"commodity"`
	District          string  `json:"district"`
	DestinationMarket string  `json:"destination_market,omitempty"`
	StorageType       string  `json:"storage_type"`
	Packaging         string  `json:"packaging"`
	HarvestDaysAgo    int     `json:"harvest_days_ago"`
	QuantityKg        float64 `json:"quantity_kg"`
}

// HarvestRequest parameterizes a harvest-window optimization
type HarvestRequest struct {
	Commodity   string `json:"commodity"`
	District    string `json:"district"`
	SowingDate  string `json:"sowing_date,omitempty"`
	CropAgeDays *int   `json:"crop_age_days,omitempty"`
}

// MandiRequest parameterizes a mandi ranking
type MandiRequest struct {
	Commodity        string   `json:"commodity"`
	OriginDistrict   string   `json:"origin_district"`
	QuantityQuintals float64  `json:"quantity_quintals"`
	StorageType      string   `json:"storage_type"`
	Packaging        string   `json:"packaging"`
	TargetMandis     []string `json:"target_mandis,omitempty"`
	ForecastDays     int      `json:"forecast_days,omitempty"`
}

// AdvisoryRequest parameterizes the full composed advisory
type AdvisoryRequest struct {
	Commodity        string  `json:"commodity"`
	District         string  `json:"district"`
	SowingDate       string  `json:"sowing_date,omitempty"`
	CropAgeDays      *int    `json:"crop_age_days,omitempty"`
	QuantityQuintals float64 `json:"quantity_quintals"`
	StorageType      string  `json:"storage_type"`
	Packaging        string  `json:"packaging"`
	HarvestDaysAgo   int     `json:"harvest_days_ago"`
}

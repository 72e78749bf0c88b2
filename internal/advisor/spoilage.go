package advisor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jonboulle/clockwork"

	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// Storage and packaging modifiers from FAO technical papers and ICAR
// post-harvest technology bulletins
var storageMultipliers = map[string]float64{
	"open_air":              1.5,
	"covered":               1.2,
	"cold_storage":          0.4,
	"controlled_atmosphere": 0.2,
}

var packagingMultipliers = map[string]float64{
	"none":          1.3,
	"jute":          1.0,
	"plastic_crate": 0.8,
	"corrugated":    0.7,
	"vacuum":        0.4,
}

// SpoilageEngine is the multi-factor post-harvest spoilage risk model:
// FAO baseline loss scaled by temperature, humidity, transit, time-decay
// and crop-health factors, modulated by storage and packaging.
type SpoilageEngine struct {
	data    repository.DataAccess
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	clock   clockwork.Clock
}

// NewSpoilageEngine creates a spoilage risk engine
func NewSpoilageEngine(data repository.DataAccess, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, clock clockwork.Clock) *SpoilageEngine {
	return &SpoilageEngine{
		data:    data,
		logger:  logger,
		metrics: metricsCollector,
		clock:   clock,
	}
}

// Assess predicts spoilage risk for a shipment. Never fails: unknown
// crops get conservative defaults and missing data lowers confidence
// instead of erroring.
func (e *SpoilageEngine) Assess(ctx context.Context, req models.SpoilageRequest) *models.SpoilageAssessment {
	timer := e.clock.Now()
	defer func() {
		e.metrics.ForecastDuration.WithLabelValues("spoilage").Observe(e.clock.Since(timer).Seconds())
	}()

	crop := strings.ToLower(strings.TrimSpace(req.Commodity))
	district := strings.ToLower(strings.TrimSpace(req.District))

	meta, known := e.resolveCropMeta(ctx, crop)
	if !known {
		e.logger.Warn(ctx, "[SPOILAGE] Unknown crop, using defaults", logging.Fields{
			"commodity": req.Commodity,
		})
	}

	if req.QuantityKg <= 0 {
		req.QuantityKg = 1000
	}
	if req.HarvestDaysAgo < 0 {
		req.HarvestDaysAgo = 0
	}

	recentWeather := e.recentWeather(ctx, district, 3)

	tempFactor := e.temperatureFactor(recentWeather, meta)
	humidityFactor := e.humidityFactor(recentWeather, meta)
	transitFactor := e.transitFactor(ctx, district, strings.ToLower(req.DestinationMarket))
	timeFactor := timeDecayFactor(req.HarvestDaysAgo, meta.ShelfLifeDaysOpen)
	healthFactor := e.healthFactor(ctx, district)

	storageMult, ok := storageMultipliers[req.StorageType]
	if !ok {
		storageMult = 1.0
	}
	packagingMult, ok := packagingMultipliers[req.Packaging]
	if !ok {
		packagingMult = 1.0
	}

	baseRate := 0.15
	if meta.FAOLossPct != nil {
		baseRate = *meta.FAOLossPct / 100
	}

	// Environmental multiplier: factor weights 40/20/20/15/5
	envMultiplier := (1 + tempFactor*0.4) *
		(1 + humidityFactor*0.2) *
		(1 + transitFactor*0.2) *
		(1 + timeFactor*0.15) *
		(1 + healthFactor*0.05)

	effectiveRate := baseRate * envMultiplier * storageMult * packagingMult
	spoilagePct := clamp(effectiveRate*100, 0, 100)

	riskLevel := riskTier(spoilagePct)
	e.metrics.RecordRiskTier(riskLevel)

	confidence := 0.55
	if meta.Category != nil {
		confidence = 0.72
	}
	e.metrics.RecordConfidence("spoilage", confidence)

	faoBaseline := baseRate * 100

	return &models.SpoilageAssessment{
		Commodity:              req.Commodity,
		District:               req.District,
		SpoilagePct:            round2(spoilagePct),
		RiskLevel:              riskLevel,
		LossEstimateKg:         round1(req.QuantityKg * spoilagePct / 100),
		ShelfLifeRemainingDays: maxInt(0, meta.ShelfLifeDaysOpen-req.HarvestDaysAgo),
		FAOBaselinePct:         round2(faoBaseline),
		Factors: models.SpoilageFactors{
			Temperature:         factorScore(tempFactor),
			Humidity:            factorScore(humidityFactor),
			Transit:             factorScore(transitFactor),
			TimeDecay:           factorScore(timeFactor),
			CropHealth:          factorScore(healthFactor),
			StorageType:         req.StorageType,
			StorageMultiplier:   storageMult,
			Packaging:           req.Packaging,
			PackagingMultiplier: packagingMult,
		},
		Recommendations: buildRecommendations(meta, tempFactor, humidityFactor, transitFactor,
			req.StorageType, req.Packaging, spoilagePct),
		Confidence:   confidence,
		ModelVersion: ModelVersion,
	}
}

// resolveCropMeta looks a crop up in the database, then the seed table,
// then falls back to conservative defaults. The second return reports
// whether the crop was recognized.
func (e *SpoilageEngine) resolveCropMeta(ctx context.Context, crop string) (models.CropMeta, bool) {
	if e.data != nil {
		meta, err := e.data.QueryCropMeta(ctx, crop)
		if err == nil {
			return *meta, true
		}
	}

	for _, seed := range models.CropMetaSeed {
		if seed.Crop == crop {
			return seed, true
		}
	}

	return models.DefaultCropMeta(crop), false
}

// recentWeather returns the newest n weather records for a district,
// newest last. Empty on any data-access failure.
func (e *SpoilageEngine) recentWeather(ctx context.Context, district string, n int) []*models.WeatherRecord {
	if e.data == nil {
		return nil
	}

	since := e.clock.Now().AddDate(0, 0, -30)
	records, err := e.data.QueryWeatherHistory(ctx, district, since)
	if err != nil {
		return nil
	}
	if len(records) > n {
		records = records[len(records)-n:]
	}
	return records
}

// temperatureFactor measures deviation of recent average temperature from
// the crop's optimal range. Superlinear: deviation accelerates damage.
func (e *SpoilageEngine) temperatureFactor(recent []*models.WeatherRecord, meta models.CropMeta) float64 {
	if len(recent) == 0 {
		return 0.3
	}

	var sum float64
	for _, w := range recent {
		if w.TempAvg != nil {
			sum += *w.TempAvg
		} else {
			sum += 30.0
		}
	}
	avgTemp := sum / float64(len(recent))

	optMin, optMax := 10.0, 25.0
	if meta.OptimalTempMin != nil {
		optMin = *meta.OptimalTempMin
	}
	if meta.OptimalTempMax != nil {
		optMax = *meta.OptimalTempMax
	}

	if avgTemp >= optMin && avgTemp <= optMax {
		return 0
	}

	deviation := avgTemp - optMax
	if avgTemp < optMin {
		deviation = optMin - avgTemp
	}

	return math.Min(1.0, math.Pow(deviation/10.0, 1.5))
}

// humidityFactor measures humidity stress: above-range promotes fungal
// growth, below-range causes desiccation (a shallower slope)
func (e *SpoilageEngine) humidityFactor(recent []*models.WeatherRecord, meta models.CropMeta) float64 {
	if len(recent) == 0 {
		return 0.2
	}

	var sum float64
	for _, w := range recent {
		if w.Humidity != nil {
			sum += *w.Humidity
		} else {
			sum += 60.0
		}
	}
	avgHumidity := sum / float64(len(recent))

	optMin, optMax := 60.0, 80.0
	if meta.OptimalHumidityMin != nil {
		optMin = *meta.OptimalHumidityMin
	}
	if meta.OptimalHumidityMax != nil {
		optMax = *meta.OptimalHumidityMax
	}

	if avgHumidity >= optMin && avgHumidity <= optMax {
		return 0
	}

	var deviation float64
	if avgHumidity > optMax {
		deviation = (avgHumidity - optMax) / 20.0
	} else {
		deviation = (optMin - avgHumidity) / 30.0
	}

	return math.Min(1.0, deviation)
}

// transitFactor estimates handling and heat exposure on the route to the
// destination market
func (e *SpoilageEngine) transitFactor(ctx context.Context, origin, destination string) float64 {
	if destination == "" {
		return 0.2
	}
	if e.data == nil {
		return 0.25
	}

	route, err := e.data.QueryTransportRoute(ctx, origin, destination)
	if err != nil {
		return 0.25
	}

	hours := 4.0
	if route.EstimatedTimeHours != nil {
		hours = *route.EstimatedTimeHours
	}
	timeStress := math.Max(0, (hours-4)*0.05)

	roadFactor := 0.0
	if route.SpoilageRatePerHr != nil {
		roadFactor = *route.SpoilageRatePerHr
	}

	distance := route.DistanceKm
	if distance <= 0 {
		distance = 100
	}
	distanceFactor := math.Min(1.0, distance/500.0) * 0.3

	return math.Min(1.0, timeStress+roadFactor*hours/100+distanceFactor)
}

// timeDecayFactor is a step function of harvest age over shelf life
func timeDecayFactor(daysSinceHarvest, shelfLife int) float64 {
	if shelfLife <= 0 {
		return 0.5
	}

	ratio := float64(daysSinceHarvest) / float64(shelfLife)
	switch {
	case ratio < 0.3:
		return 0
	case ratio < 0.6:
		return 0.2
	case ratio < 0.8:
		return 0.5
	case ratio < 1.0:
		return 0.8
	default:
		return 1.0
	}
}

// healthFactor maps the latest NDVI reading to pre-harvest stress;
// a stressed crop loses more after harvest
func (e *SpoilageEngine) healthFactor(ctx context.Context, district string) float64 {
	if e.data == nil {
		return 0.1
	}

	records, err := e.data.QueryNDVIHistory(ctx, district, 1)
	if err != nil || len(records) == 0 {
		return 0.1
	}

	switch ndvi := records[0].NDVIValue; {
	case ndvi > 0.6:
		return 0
	case ndvi > 0.4:
		return 0.2
	case ndvi > 0.25:
		return 0.5
	default:
		return 0.8
	}
}

// riskTier classifies spoilage percentage into the fixed tiers
func riskTier(spoilagePct float64) string {
	switch {
	case spoilagePct < 8:
		return models.RiskLow
	case spoilagePct < 20:
		return models.RiskMedium
	case spoilagePct < 40:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

func factorScore(score float64) models.FactorScore {
	impact := "low"
	if score > 0.5 {
		impact = "high"
	} else if score > 0.2 {
		impact = "medium"
	}
	return models.FactorScore{Score: round3(score), Impact: impact}
}

// buildRecommendations produces the ordered preservation tip list:
// at most one tip per factor above 0.3, storage and packaging upgrades,
// a critical-window alert above 40%, and a crop-category tip
func buildRecommendations(meta models.CropMeta, tempFactor, humidityFactor, transitFactor float64,
	storageType, packaging string, spoilagePct float64) []string {

	var tips []string

	if tempFactor > 0.3 {
		optMin, optMax := 10.0, 25.0
		if meta.OptimalTempMin != nil {
			optMin = *meta.OptimalTempMin
		}
		if meta.OptimalTempMax != nil {
			optMax = *meta.OptimalTempMax
		}
		tips = append(tips, fmt.Sprintf(
			"Temperature outside optimal range (%.0f-%.0f C). Consider cold storage or pre-cooling before transport.",
			optMin, optMax))
	}

	if humidityFactor > 0.3 {
		tips = append(tips,
			"High humidity increases fungal risk. Use ventilated packaging and avoid sealed containers.")
	}

	if transitFactor > 0.3 {
		tips = append(tips,
			"Long transit expected. Ship during cooler hours (early morning / night) to reduce heat damage.")
	}

	if storageType == "open_air" {
		tips = append(tips,
			"Open-air storage increases losses by 50%. Move to covered or cold storage if available.")
	} else if storageType == "covered" && spoilagePct > 15 {
		tips = append(tips,
			"Consider cold storage. It can reduce losses by 60% compared to covered storage.")
	}

	if (packaging == "none" || packaging == "jute") && spoilagePct > 10 {
		tips = append(tips,
			"Upgrade packaging to plastic crates or corrugated boxes to reduce mechanical damage during transport.")
	}

	if spoilagePct > 40 {
		tips = append(tips,
			"CRITICAL: Sell within 24-48 hours or arrange cold storage immediately. Consider nearby markets to minimize transit time.")
	}

	if meta.Category != nil {
		switch *meta.Category {
		case "leafy_green":
			tips = append(tips,
				"Leafy greens: pre-cool to 4 C within 1 hour of harvest. Mist lightly to maintain turgor.")
		case "fruit":
			tips = append(tips,
				"Handle fruits gently. Bruising accelerates ethylene production and ripening; keep away from ethylene sources.")
		}
	}

	if len(tips) == 0 {
		tips = append(tips, "Current conditions are favorable. Maintain storage practices.")
	}

	return tips
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

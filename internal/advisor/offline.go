package advisor

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"agri-advisor/internal/models"
)

// Strategy is the advisory capability surface. The online strategy is
// backed by the database and trained models; the offline strategy runs
// entirely on seeded crop knowledge and deterministic rules.
type Strategy interface {
	Capability() string
	ForecastPrice(ctx context.Context, commodity, district string, horizonDays int) *models.PriceForecast
	AssessSpoilage(ctx context.Context, req models.SpoilageRequest) *models.SpoilageAssessment
	OptimizeHarvest(ctx context.Context, req models.HarvestRequest) *models.HarvestDecision
	Advise(ctx context.Context, req models.AdvisoryRequest) *models.ComposedDecision
}

// Storage regimes the offline rules understand. These are coarser than
// the online factor model on purpose: without sensor data, only the
// regime itself is knowable.
var offlineStorageRisk = map[string]float64{
	"open_air":              0.70,
	"open_field":            0.70,
	"covered":               0.40,
	"warehouse":             0.40,
	"cold_storage":          0.15,
	"controlled_atmosphere": 0.10,
}

// Relative perishability by crop, 1.0 = average.
var offlineCropDecay = map[string]float64{
	"tomato":    1.4,
	"onion":     0.8,
	"potato":    0.6,
	"grape":     1.5,
	"banana":    1.3,
	"sugarcane": 1.2,
	"wheat":     0.3,
	"rice":      0.3,
	"soybean":   0.3,
	"cotton":    0.2,
}

// OfflineAdvisor serves advisories without any database or trained
// model. It exists so the API degrades to deterministic seeded guidance
// instead of failing when the data platform is unreachable, and so the
// demo binary runs standalone.
type OfflineAdvisor struct {
	composer *DecisionComposer
	clock    clockwork.Clock
}

// NewOfflineAdvisor creates the database-free advisory strategy
func NewOfflineAdvisor(clock clockwork.Clock) *OfflineAdvisor {
	return &OfflineAdvisor{
		composer: NewDecisionComposer(),
		clock:    clock,
	}
}

// Capability names the data regime this strategy operates in
func (a *OfflineAdvisor) Capability() string { return "offline_demo" }

// ForecastPrice projects from the seeded base price with a small
// deterministic oscillation and a month-driven seasonal drift.
func (a *OfflineAdvisor) ForecastPrice(_ context.Context, commodity, district string, horizonDays int) *models.PriceForecast {
	if horizonDays < 1 {
		horizonDays = defaultHorizonDays
	}
	crop := strings.ToLower(strings.TrimSpace(commodity))
	base := seededBasePrice(crop)
	now := a.clock.Now()

	// Festival-season months carry upward drift, post-harvest glut
	// months downward.
	drift := seasonalDrift(now.Month())

	points := make([]models.ForecastPoint, 0, horizonDays)
	for day := 1; day <= horizonDays; day++ {
		osc := base * 0.01 * float64(day%3-1)
		predicted := base*(1+drift*float64(day)/100) + osc
		points = append(points, models.ForecastPoint{
			Date:           now.AddDate(0, 0, day),
			PredictedPrice: round2(predicted),
			CILow:          round2(predicted * 0.92),
			CIHigh:         round2(predicted * 1.08),
			DayOffset:      day,
		})
	}

	direction := models.DirectionStable
	if drift > 0.4 {
		direction = models.DirectionRising
	} else if drift < -0.4 {
		direction = models.DirectionFalling
	}

	return &models.PriceForecast{
		Commodity:         commodity,
		District:          district,
		CurrentPrice:      round2(base),
		Forecasts:         points,
		Direction:         direction,
		PctChangeForecast: round2(drift * float64(horizonDays)),
		Confidence:        0.35,
		ModelVersion:      models.SourceStatisticalFallback,
		DataPointsUsed:    0,
		Source:            models.SourceStatisticalFallback,
	}
}

// AssessSpoilage scores risk from storage regime, crop perishability
// and days since harvest alone.
func (a *OfflineAdvisor) AssessSpoilage(_ context.Context, req models.SpoilageRequest) *models.SpoilageAssessment {
	crop := strings.ToLower(strings.TrimSpace(req.Commodity))

	baseRisk, ok := offlineStorageRisk[strings.ToLower(req.StorageType)]
	if !ok {
		baseRisk = 0.70
	}
	decay, ok := offlineCropDecay[crop]
	if !ok {
		decay = 1.0
	}

	daysAgo := req.HarvestDaysAgo
	if daysAgo < 0 {
		daysAgo = 0
	}

	score := clamp(baseRisk*decay*(1+0.05*float64(daysAgo)), 0, 1)
	pct := round1(score * 45)
	tier := riskTier(pct)

	meta := seededCropMeta(crop)
	quantity := req.QuantityKg
	if quantity <= 0 {
		quantity = 1000
	}
	shelfRemaining := meta.ShelfLifeDaysOpen - daysAgo
	if shelfRemaining < 0 {
		shelfRemaining = 0
	}

	recs := []string{"Estimate is based on seeded crop profiles, not live sensor data."}
	if tier == models.RiskHigh || tier == models.RiskCritical {
		recs = append(recs, "Risk is elevated. Move produce to cold storage or sell within 24 hours.")
	}

	return &models.SpoilageAssessment{
		Commodity:             req.Commodity,
		District:              req.District,
		SpoilagePct:           pct,
		RiskLevel:             tier,
		LossEstimateKg:        round1(quantity * pct / 100),
		ShelfLifeRemainingDays: shelfRemaining,
		FAOBaselinePct:        faoBaseline(meta),
		Recommendations:       recs,
		Confidence:            0.45,
		ModelVersion:          ModelVersion,
	}
}

// OptimizeHarvest runs the signal cascade with only calendar maturity
// known; the remote-sensing and market signals report no_data.
func (a *OfflineAdvisor) OptimizeHarvest(_ context.Context, req models.HarvestRequest) *models.HarvestDecision {
	crop := strings.ToLower(strings.TrimSpace(req.Commodity))
	meta := seededCropMeta(crop)
	today := truncateDay(a.clock.Now())

	ageDays, sowDate := resolveCropAge(req, today)
	maturity := assessMaturity(ageDays, meta)

	signals := models.HarvestSignals{
		Maturity: maturity,
		NDVI:     models.NDVISignal{Status: "no_data", Score: 0.5, Detail: "Satellite data requires the online platform."},
		Weather:  models.WeatherSignal{Status: "no_data", Score: 0.5, Detail: "Weather data requires the online platform."},
		Price:    models.PriceSignal{Status: "insufficient_data", Score: 0.5, Detail: "Price history requires the online platform."},
		Soil:     models.SoilSignal{Status: "no_data", Score: 0.5, Detail: "Soil data requires the online platform."},
	}

	in := &ruleInput{
		maturity: maturity,
		ndvi:     signals.NDVI,
		weather:  signals.Weather,
		price:    signals.Price,
		meta:     meta,
		today:    today,
	}

	var outcome ruleOutcome
	switch {
	case guardOverMature(in):
		outcome = decideOverMature(in)
	case guardNotMature(in):
		outcome = decideNotMature(in)
	default:
		outcome = decideDefault(in)
	}

	return &models.HarvestDecision{
		Commodity:     req.Commodity,
		District:      req.District,
		CropAgeDays:   ageDays,
		SowingDate:    sowDate,
		Action:        outcome.action,
		WaitDays:      outcome.waitDays,
		OptimalWindow: outcome.window,
		Reasoning:     outcome.reasoning,
		Priority:      outcome.priority,
		Signals:       signals,
		Confidence:    harvestConfidence(maturity, signals.NDVI, signals.Weather, signals.Soil),
		ModelVersion:  ModelVersion,
	}
}

// Advise composes a full advisory from the offline primitives
func (a *OfflineAdvisor) Advise(ctx context.Context, req models.AdvisoryRequest) *models.ComposedDecision {
	price := a.ForecastPrice(ctx, req.Commodity, req.District, 7)
	harvest := a.OptimizeHarvest(ctx, models.HarvestRequest{
		Commodity:   req.Commodity,
		District:    req.District,
		SowingDate:  req.SowingDate,
		CropAgeDays: req.CropAgeDays,
	})
	spoilage := a.AssessSpoilage(ctx, models.SpoilageRequest{
		Commodity:      req.Commodity,
		District:       req.District,
		StorageType:    req.StorageType,
		Packaging:      req.Packaging,
		HarvestDaysAgo: req.HarvestDaysAgo,
		QuantityKg:     req.QuantityQuintals * 100,
	})

	quintals := req.QuantityQuintals
	if quintals <= 0 {
		quintals = 10
	}

	origin := strings.ToLower(strings.TrimSpace(req.District))
	best := origin
	if defaults, ok := models.DefaultMandis[origin]; ok && len(defaults) > 0 {
		best = defaults[0]
	}

	local := price.CurrentPrice
	bestPrice := local * 1.03
	distance := 150.0
	transport := distance * defaultFuelPerKm * math.Max(1, math.Ceil(quintals*100/truckCapacityKg))

	market := MarketFeatures{
		BestMandiName:         best,
		BestMandiPrice:        bestPrice,
		LocalMandiPrice:       local,
		EstimatedDistanceKm:   distance,
		TransportCostEstimate: transport,
		NetProfitBestMandi:    round2(bestPrice*quintals - transport),
		NetProfitLocal:        round2(local*quintals - localHandlingCost),
	}

	return a.composer.Compose(price, harvest, spoilage, market)
}

func seededCropMeta(crop string) models.CropMeta {
	for _, seed := range models.CropMetaSeed {
		if seed.Crop == crop {
			return seed
		}
	}
	return models.DefaultCropMeta(crop)
}

func seededBasePrice(crop string) float64 {
	meta := seededCropMeta(crop)
	if meta.BasePricePerQtl != nil && *meta.BasePricePerQtl > 0 {
		return *meta.BasePricePerQtl
	}
	return 2000
}

func faoBaseline(meta models.CropMeta) float64 {
	if meta.FAOLossPct != nil {
		return *meta.FAOLossPct
	}
	return 15
}

// seasonalDrift returns the per-day percentage price drift assumed for
// a month. October-December festival demand pushes up, the
// February-April harvest glut pushes down.
func seasonalDrift(month time.Month) float64 {
	switch month {
	case time.October, time.November, time.December:
		return 0.6
	case time.February, time.March, time.April:
		return -0.5
	default:
		return 0.1
	}
}

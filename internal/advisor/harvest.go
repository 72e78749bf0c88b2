package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// HarvestOptimizer fuses five independent timing signals into a harvest
// recommendation through a fixed priority cascade: biological
// over-ripeness and imminent weather damage always dominate price-timing
// optimization.
type HarvestOptimizer struct {
	data    repository.DataAccess
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	clock   clockwork.Clock
	rules   []harvestRule
}

// harvestRule is one guard -> decision step of the cascade. The first
// rule whose guard fires decides; order encodes priority.
type harvestRule struct {
	name   string
	guard  func(in *ruleInput) bool
	decide func(in *ruleInput) ruleOutcome
}

type ruleInput struct {
	maturity models.MaturitySignal
	ndvi     models.NDVISignal
	weather  models.WeatherSignal
	price    models.PriceSignal
	meta     models.CropMeta
	today    time.Time
}

type ruleOutcome struct {
	action    string
	waitDays  int
	window    models.HarvestWindow
	reasoning string
	priority  string
}

// NewHarvestOptimizer creates a harvest window optimizer
func NewHarvestOptimizer(data repository.DataAccess, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, clock clockwork.Clock) *HarvestOptimizer {
	o := &HarvestOptimizer{
		data:    data,
		logger:  logger,
		metrics: metricsCollector,
		clock:   clock,
	}
	o.rules = []harvestRule{
		{name: "over_mature", guard: guardOverMature, decide: decideOverMature},
		{name: "not_yet_mature", guard: guardNotMature, decide: decideNotMature},
		{name: "rain_risk", guard: guardRainRisk, decide: decideRainRisk},
		{name: "price_upside", guard: guardPriceUpside, decide: decidePriceUpside},
		{name: "harvest_now", guard: func(*ruleInput) bool { return true }, decide: decideDefault},
	}
	return o
}

// Optimize generates the harvest-timing recommendation. Never fails:
// every missing data source degrades to a no_data signal.
func (o *HarvestOptimizer) Optimize(ctx context.Context, req models.HarvestRequest) *models.HarvestDecision {
	timer := o.clock.Now()
	defer func() {
		o.metrics.ForecastDuration.WithLabelValues("harvest").Observe(o.clock.Since(timer).Seconds())
	}()

	crop := strings.ToLower(strings.TrimSpace(req.Commodity))
	district := strings.ToLower(strings.TrimSpace(req.District))
	today := truncateDay(o.clock.Now())

	meta := o.resolveCropMeta(ctx, crop)

	ageDays, sowDate := resolveCropAge(req, today)

	maturity := assessMaturity(ageDays, meta)
	ndvi := o.assessNDVI(ctx, district)
	weather := o.assessWeather(ctx, district)
	price := o.assessPriceTiming(ctx, crop, district, today)
	soil := o.assessSoil(ctx, district)

	in := &ruleInput{
		maturity: maturity,
		ndvi:     ndvi,
		weather:  weather,
		price:    price,
		meta:     meta,
		today:    today,
	}

	var outcome ruleOutcome
	for _, rule := range o.rules {
		if rule.guard(in) {
			outcome = rule.decide(in)
			o.logger.Debug(ctx, "[HARVEST] Cascade rule fired", logging.Fields{
				"rule":      rule.name,
				"commodity": crop,
				"action":    outcome.action,
			})
			break
		}
	}

	confidence := harvestConfidence(maturity, ndvi, weather, soil)
	o.metrics.RecordConfidence("harvest", confidence)

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
		Signals: models.HarvestSignals{
			Maturity: maturity,
			NDVI:     ndvi,
			Weather:  weather,
			Price:    price,
			Soil:     soil,
		},
		Confidence:   confidence,
		ModelVersion: ModelVersion,
	}
}

func (o *HarvestOptimizer) resolveCropMeta(ctx context.Context, crop string) models.CropMeta {
	if o.data != nil {
		meta, err := o.data.QueryCropMeta(ctx, crop)
		if err == nil {
			return *meta
		}
	}
	for _, seed := range models.CropMetaSeed {
		if seed.Crop == crop {
			return seed
		}
	}
	return models.DefaultCropMeta(crop)
}

// resolveCropAge derives crop age from the sowing date when parseable,
// else the explicit age. Both absent means age unknown.
func resolveCropAge(req models.HarvestRequest, today time.Time) (*int, *time.Time) {
	if req.SowingDate != "" {
		if sow, err := time.Parse("2006-01-02", req.SowingDate); err == nil {
			age := int(today.Sub(sow).Hours() / 24)
			return &age, &sow
		}
	}
	if req.CropAgeDays != nil {
		sow := today.AddDate(0, 0, -*req.CropAgeDays)
		return req.CropAgeDays, &sow
	}
	return nil, nil
}

// assessMaturity scores calendar age against the crop's maturity window
func assessMaturity(ageDays *int, meta models.CropMeta) models.MaturitySignal {
	if ageDays == nil {
		return models.MaturitySignal{
			Status: "unknown",
			Score:  0.5,
			Detail: "Sowing date not provided. Maturity estimated from NDVI.",
		}
	}

	age := *ageDays
	minDays := meta.MaturityDaysMin
	maxDays := meta.MaturityDaysMax

	switch {
	case float64(age) < float64(minDays)*0.8:
		remaining := minDays - age
		return models.MaturitySignal{
			Status:         "immature",
			Score:          0.0,
			DaysToMaturity: remaining,
			Detail: fmt.Sprintf("Crop is %d days old, needs %d-%d days. ~%d days to earliest harvest.",
				age, minDays, maxDays, remaining),
		}
	case age < minDays:
		progress := (float64(age) - float64(minDays)*0.8) / (float64(minDays) * 0.2)
		return models.MaturitySignal{
			Status:         "approaching",
			Score:          0.3 + 0.3*progress,
			DaysToMaturity: minDays - age,
			Detail:         fmt.Sprintf("Approaching maturity. %d days to earliest harvest.", minDays-age),
		}
	case age <= maxDays:
		span := maxDays - minDays
		if span < 1 {
			span = 1
		}
		progress := float64(age-minDays) / float64(span)
		return models.MaturitySignal{
			Status: "mature",
			Score:  0.8 + 0.2*progress,
			Detail: fmt.Sprintf("Crop is mature at %d days. Within optimal harvest window.", age),
		}
	default:
		return models.MaturitySignal{
			Status:      "over_mature",
			Score:       1.0,
			DaysOverdue: age - maxDays,
			Detail: fmt.Sprintf("Crop is %d days past optimal harvest. Quality degradation likely.",
				age-maxDays),
		}
	}
}

// assessNDVI reads the growth curve: a plateau or declining trend is a
// biological maturity proxy independent of sowing date
func (o *HarvestOptimizer) assessNDVI(ctx context.Context, district string) models.NDVISignal {
	noData := models.NDVISignal{
		Status: "no_data",
		Score:  0.5,
		Detail: "No NDVI satellite data available for this district.",
	}
	if o.data == nil {
		return noData
	}

	records, err := o.data.QueryNDVIHistory(ctx, district, 6)
	if err != nil || len(records) == 0 {
		return noData
	}

	latest := records[0]
	trend := 0.0
	if latest.NDVITrend30d != nil {
		trend = *latest.NDVITrend30d
	}

	switch {
	case latest.GrowthPlateau || trend < -0.01:
		return models.NDVISignal{
			Status:  "harvest_ready",
			Score:   0.85,
			NDVI:    round3(latest.NDVIValue),
			Trend:   trend,
			Plateau: latest.GrowthPlateau,
			Detail:  "NDVI shows plateau/decline. Crop likely reaching maturity.",
		}
	case trend < 0.005:
		return models.NDVISignal{
			Status: "near_ready",
			Score:  0.65,
			NDVI:   round3(latest.NDVIValue),
			Trend:  trend,
			Detail: "NDVI growth slowing. Approaching harvest readiness.",
		}
	default:
		return models.NDVISignal{
			Status: "growing",
			Score:  0.3,
			NDVI:   round3(latest.NDVIValue),
			Trend:  trend,
			Detail: fmt.Sprintf("NDVI still increasing (trend: +%.4f/day). Crop actively growing.", trend),
		}
	}
}

// assessWeather scores recent rainfall, humidity and wind for harvest
// operations
func (o *HarvestOptimizer) assessWeather(ctx context.Context, district string) models.WeatherSignal {
	noData := models.WeatherSignal{
		Status: "no_data",
		Score:  0.5,
		Detail: "No weather data available.",
	}
	if o.data == nil {
		return noData
	}

	since := o.clock.Now().AddDate(0, 0, -30)
	records, err := o.data.QueryWeatherHistory(ctx, district, since)
	if err != nil || len(records) == 0 {
		return noData
	}
	if len(records) > 7 {
		records = records[len(records)-7:]
	}

	var rainSum, rainMax, humiditySum, windSum float64
	for _, w := range records {
		rain := 0.0
		if w.RainfallMm != nil {
			rain = *w.RainfallMm
		}
		rainSum += rain
		if rain > rainMax {
			rainMax = rain
		}

		if w.Humidity != nil {
			humiditySum += *w.Humidity
		} else {
			humiditySum += 60.0
		}
		if w.WindSpeed != nil {
			windSum += *w.WindSpeed
		} else {
			windSum += 2.0
		}
	}

	n := float64(len(records))
	avgRain := rainSum / n
	avgHumidity := humiditySum / n
	avgWind := windSum / n

	switch {
	case rainMax > 20 || avgRain > 10:
		return models.WeatherSignal{
			Status:        "rain_risk",
			Score:         0.9,
			AvgRainfallMm: round1(avgRain),
			MaxRainfallMm: round1(rainMax),
			AvgHumidity:   round1(avgHumidity),
			Detail: fmt.Sprintf("Recent heavy rainfall (%.1fmm max). Wait for 2-3 dry days before harvesting.",
				rainMax),
		}
	case avgRain > 3 || avgHumidity > 85:
		return models.WeatherSignal{
			Status:        "moderate_rain",
			Score:         0.6,
			AvgRainfallMm: round1(avgRain),
			AvgHumidity:   round1(avgHumidity),
			Detail:        "Moderate moisture. Harvest possible but dry quickly.",
		}
	case avgHumidity < 50 && avgWind > 3:
		return models.WeatherSignal{
			Status:        "optimal",
			Score:         0.1,
			AvgRainfallMm: round1(avgRain),
			AvgHumidity:   round1(avgHumidity),
			AvgWind:       round1(avgWind),
			Detail:        "Excellent harvest conditions. Low humidity, good wind for drying.",
		}
	default:
		return models.WeatherSignal{
			Status:        "fair",
			Score:         0.3,
			AvgRainfallMm: round1(avgRain),
			AvgHumidity:   round1(avgHumidity),
			Detail:        "Fair conditions for harvesting.",
		}
	}
}

// assessPriceTiming compares the recent week's average against the prior
// week to decide whether waiting for better prices is worthwhile
func (o *HarvestOptimizer) assessPriceTiming(ctx context.Context, commodity, district string, today time.Time) models.PriceSignal {
	insufficient := models.PriceSignal{
		Status: "insufficient_data",
		Score:  0.5,
		Detail: "Not enough price data for timing analysis.",
	}
	if o.data == nil {
		return insufficient
	}

	cutoff := today.AddDate(0, 0, -30)
	prices, err := o.data.QueryPriceHistory(ctx, commodity, district, cutoff)
	if err != nil || len(prices) < 5 {
		return insufficient
	}

	modal := make([]float64, len(prices))
	for i, p := range prices {
		modal[i] = p.ModalPrice
	}

	recentAvg := tailMean(modal, 7)
	headLen := 7
	if len(modal) < headLen {
		headLen = len(modal)
	}
	earlierAvg := mean(modal[:headLen])

	trendPct := 0.0
	if earlierAvg > 0 {
		trendPct = (recentAvg - earlierAvg) / earlierAvg * 100
	}

	switch {
	case trendPct > 5:
		return models.PriceSignal{
			Status:     "prices_rising",
			Score:      0.7,
			TrendPct:   round2(trendPct),
			CurrentAvg: round2(recentAvg),
			Detail:     fmt.Sprintf("Prices rising (%+.1f%%). Consider waiting 3-5 days for better returns.", trendPct),
		}
	case trendPct < -5:
		return models.PriceSignal{
			Status:     "prices_falling",
			Score:      0.3,
			TrendPct:   round2(trendPct),
			CurrentAvg: round2(recentAvg),
			Detail:     fmt.Sprintf("Prices declining (%+.1f%%). Harvest and sell soon to lock in current rates.", trendPct),
		}
	default:
		return models.PriceSignal{
			Status:     "prices_stable",
			Score:      0.5,
			TrendPct:   round2(trendPct),
			CurrentAvg: round2(recentAvg),
			Detail:     fmt.Sprintf("Prices stable (%+.1f%%). Market timing is neutral.", trendPct),
		}
	}
}

// assessSoil scores how supportive the district's soil is for timely
// maturity: SQI 40%, nitrogen 30%, organic carbon 20%, pH penalty 10%
func (o *HarvestOptimizer) assessSoil(ctx context.Context, district string) models.SoilSignal {
	noData := models.SoilSignal{
		Status: "no_data",
		Score:  0.5,
		Detail: "No soil health data for this district.",
	}
	if o.data == nil {
		return noData
	}

	soil, err := o.data.QuerySoilProfile(ctx, district)
	if err != nil {
		return noData
	}

	sqi, ph, n, oc := 0.5, 7.0, 200.0, 0.5
	if soil.SoilQualityIndex != nil {
		sqi = *soil.SoilQualityIndex
	}
	if soil.PH != nil {
		ph = *soil.PH
	}
	if soil.NitrogenKgHa != nil {
		n = *soil.NitrogenKgHa
	}
	if soil.OrganicCarbonPct != nil {
		oc = *soil.OrganicCarbonPct
	}

	phPenalty := 0.0
	if ph < 6.0 || ph > 8.0 {
		phPenalty = 0.15
	} else if ph < 6.5 || ph > 7.5 {
		phPenalty = 0.05
	}

	nFactor := clamp(n/250, 0, 1)
	ocFactor := clamp(oc/0.75, 0, 1)

	score := clamp(sqi*0.4+nFactor*0.3+ocFactor*0.2+(1-phPenalty)*0.1, 0, 1)

	status := "poor"
	qualifier := "Expect delayed maturity and potentially lower yield quality."
	if score > 0.7 {
		status = "good"
		qualifier = "Supports timely crop maturity."
	} else if score > 0.5 {
		status = "moderate"
		qualifier = "Crop maturity may be slightly delayed."
	}

	return models.SoilSignal{
		Status:           status,
		Score:            round2(score),
		QualityIndex:     round2(sqi),
		PH:               ph,
		NitrogenKgHa:     n,
		OrganicCarbonPct: oc,
		Detail: fmt.Sprintf("Soil quality is %s (SQI: %.2f, pH: %g, N: %g kg/ha). %s",
			status, sqi, ph, n, qualifier),
	}
}

// harvestConfidence reflects data availability: base 0.5, +0.12 per core
// signal, +0.08 for soil, -0.08 when nothing reports harvest readiness
func harvestConfidence(maturity models.MaturitySignal, ndvi models.NDVISignal, weather models.WeatherSignal, soil models.SoilSignal) float64 {
	conf := 0.5
	if maturity.Status != "unknown" {
		conf += 0.12
	}
	if ndvi.Status != "no_data" {
		conf += 0.12
	}
	if weather.Status != "no_data" {
		conf += 0.12
	}
	if soil.Status != "no_data" {
		conf += 0.08
	}

	ready := maturity.Status == "mature" || maturity.Status == "over_mature" ||
		ndvi.Status == "harvest_ready"
	if !ready {
		conf -= 0.08
	}

	return round2(clamp(conf, 0, 0.95))
}

// Cascade rules, in priority order.

func guardOverMature(in *ruleInput) bool {
	return in.maturity.Status == "over_mature"
}

func decideOverMature(in *ruleInput) ruleOutcome {
	if in.weather.Status == "optimal" || in.weather.Status == "fair" {
		return ruleOutcome{
			action:   models.ActionUrgentHarvest,
			waitDays: 0,
			window: models.HarvestWindow{
				Start: in.today,
				End:   in.today.AddDate(0, 0, 2),
			},
			reasoning: "Crop is over-mature. Harvest immediately to prevent further quality loss.",
			priority:  "critical",
		}
	}
	return ruleOutcome{
		action:   models.ActionUrgentHarvest,
		waitDays: 1,
		window: models.HarvestWindow{
			Start: in.today.AddDate(0, 0, 1),
			End:   in.today.AddDate(0, 0, 3),
		},
		reasoning: "Over-mature crop plus rain risk. Wait for first dry window then harvest urgently.",
		priority:  "critical",
	}
}

func guardNotMature(in *ruleInput) bool {
	return in.maturity.Score < 0.5 && in.ndvi.Status != "harvest_ready"
}

func decideNotMature(in *ruleInput) ruleOutcome {
	wait := in.maturity.DaysToMaturity
	if wait == 0 {
		wait = 10
	}
	startOffset := wait - 5
	if startOffset < 0 {
		startOffset = 0
	}
	return ruleOutcome{
		action:   models.ActionWait,
		waitDays: wait,
		window: models.HarvestWindow{
			Start: in.today.AddDate(0, 0, startOffset),
			End:   in.today.AddDate(0, 0, wait+10),
		},
		reasoning: fmt.Sprintf("Crop not yet mature. %s Recommended wait: ~%d days.",
			in.maturity.Detail, wait),
		priority: "low",
	}
}

func guardRainRisk(in *ruleInput) bool {
	return in.weather.Status == "rain_risk"
}

func decideRainRisk(in *ruleInput) ruleOutcome {
	return ruleOutcome{
		action:   models.ActionWait,
		waitDays: 3,
		window: models.HarvestWindow{
			Start: in.today.AddDate(0, 0, 3),
			End:   in.today.AddDate(0, 0, 7),
		},
		reasoning: "Crop is mature but weather is unfavorable. Wait 2-3 days for dry conditions. " +
			in.weather.Detail,
		priority: "medium",
	}
}

func guardPriceUpside(in *ruleInput) bool {
	return in.price.Status == "prices_rising" && in.maturity.Status == "mature"
}

func decidePriceUpside(in *ruleInput) ruleOutcome {
	wait := in.meta.ShelfLifeDaysOpen / 2
	if wait > 5 {
		wait = 5
	}
	return ruleOutcome{
		action:   models.ActionWait,
		waitDays: wait,
		window: models.HarvestWindow{
			Start: in.today,
			End:   in.today.AddDate(0, 0, wait+3),
		},
		reasoning: fmt.Sprintf("Crop mature and weather favorable. Prices are rising (%+.1f%%). "+
			"Consider waiting %d days for better price. Can harvest anytime in window.",
			in.price.TrendPct, wait),
		priority: "low",
	}
}

func decideDefault(in *ruleInput) ruleOutcome {
	return ruleOutcome{
		action:   models.ActionHarvestNow,
		waitDays: 0,
		window: models.HarvestWindow{
			Start: in.today,
			End:   in.today.AddDate(0, 0, 5),
		},
		reasoning: "All signals favorable. Crop is mature, weather is good, and market conditions are acceptable. Harvest recommended.",
		priority:  "medium",
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package advisor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"

	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

const (
	truckCapacityKg    = 3000.0
	laborCostPerTruck  = 500.0
	localHandlingCost  = 200.0
	defaultFuelPerKm   = 8.0
	defaultForecastLen = 3
)

// RecommendationEngine ranks candidate mandis by projected net profit:
// forecast revenue at each destination minus transport cost minus the
// value lost to spoilage in transit.
type RecommendationEngine struct {
	forecaster *Forecaster
	spoilage   *SpoilageEngine
	data       repository.DataAccess
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
	clock      clockwork.Clock
}

// NewRecommendationEngine creates a mandi recommendation engine
func NewRecommendationEngine(forecaster *Forecaster, spoilage *SpoilageEngine, data repository.DataAccess, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, clock clockwork.Clock) *RecommendationEngine {
	return &RecommendationEngine{
		forecaster: forecaster,
		spoilage:   spoilage,
		data:       data,
		logger:     logger,
		metrics:    metricsCollector,
		clock:      clock,
	}
}

// RankMandis evaluates every candidate market and returns them ordered
// by net profit, best first. The origin district is always evaluated so
// the farmer can see what selling locally is worth.
func (e *RecommendationEngine) RankMandis(ctx context.Context, req models.MandiRequest) *models.MarketRanking {
	timer := e.clock.Now()
	defer func() {
		e.metrics.ForecastDuration.WithLabelValues("mandi_ranking").Observe(e.clock.Since(timer).Seconds())
	}()

	crop := strings.ToLower(strings.TrimSpace(req.Commodity))
	origin := strings.ToLower(strings.TrimSpace(req.OriginDistrict))

	quintals := req.QuantityQuintals
	if quintals <= 0 {
		quintals = 10
	}
	forecastDays := req.ForecastDays
	if forecastDays <= 0 {
		forecastDays = defaultForecastLen
	}

	candidates := e.candidateMandis(origin, req.TargetMandis)

	options := make([]models.MandiOption, 0, len(candidates))
	for _, mandi := range candidates {
		opt := e.evaluateMandi(ctx, crop, origin, mandi, quintals, forecastDays, req.StorageType, req.Packaging)
		options = append(options, opt)
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].NetProfitINR > options[j].NetProfitINR
	})
	for i := range options {
		options[i].Rank = i + 1
	}

	ranking := &models.MarketRanking{
		Commodity:           req.Commodity,
		OriginDistrict:      req.OriginDistrict,
		QuantityQuintals:    quintals,
		Recommendations:     options,
		TotalMandisEvaluated: len(options),
		ModelVersion:        ModelVersion,
	}
	if len(options) > 0 {
		ranking.BestMandi = options[0].Mandi
		ranking.BestNetProfit = options[0].NetProfitINR
		ranking.Reasoning = buildRankingSummary(options, quintals)
	}

	e.logger.Info(ctx, "[MANDI] Ranking complete", logging.Fields{
		"commodity": crop,
		"origin":    origin,
		"evaluated": len(options),
		"best":      ranking.BestMandi,
	})

	return ranking
}

// candidateMandis resolves the evaluation set: explicit targets win,
// else the curated per-district defaults, else just the origin itself.
func (e *RecommendationEngine) candidateMandis(origin string, targets []string) []string {
	var candidates []string
	if len(targets) > 0 {
		for _, t := range targets {
			candidates = append(candidates, strings.ToLower(strings.TrimSpace(t)))
		}
	} else if defaults, ok := models.DefaultMandis[origin]; ok {
		candidates = append(candidates, defaults...)
	} else {
		candidates = []string{origin}
	}

	for _, c := range candidates {
		if c == origin {
			return candidates
		}
	}
	return append([]string{origin}, candidates...)
}

func (e *RecommendationEngine) evaluateMandi(ctx context.Context, crop, origin, mandi string, quintals float64, forecastDays int, storageType, packaging string) models.MandiOption {
	forecast := e.forecaster.Forecast(ctx, crop, mandi, forecastDays)

	price := forecast.CurrentPrice
	if len(forecast.Forecasts) > 0 {
		sum := 0.0
		for _, p := range forecast.Forecasts {
			sum += p.PredictedPrice
		}
		price = sum / float64(len(forecast.Forecasts))
	}

	revenue := price * quintals
	quantityKg := quintals * 100

	transport := e.estimateTransport(ctx, origin, mandi, quantityKg)

	assessment := e.spoilage.Assess(ctx, models.SpoilageRequest{
		Commodity:         crop,
		District:          origin,
		DestinationMarket: mandi,
		StorageType:       storageType,
		Packaging:         packaging,
		QuantityKg:        quantityKg,
	})

	lossKg := quantityKg * assessment.SpoilagePct / 100
	lossValue := (lossKg / 100) * price

	netProfit := revenue - transport.TotalCost - lossValue
	margin := 0.0
	if revenue > 0 {
		margin = netProfit / revenue * 100
	}

	return models.MandiOption{
		Mandi:                    mandi,
		PredictedPricePerQuintal: round2(price),
		PriceTrend:               forecast.Direction,
		PriceConfidence:          forecast.Confidence,
		RevenueINR:               round2(revenue),
		Transport:                transport,
		Spoilage: models.SpoilageSummary{
			RiskLevel:    assessment.RiskLevel,
			LossPct:      assessment.SpoilagePct,
			LossKg:       round1(lossKg),
			LossValueINR: round2(lossValue),
		},
		NetProfitINR:    round2(netProfit),
		ProfitMarginPct: round2(margin),
		IsLocal:         mandi == origin,
	}
}

// estimateTransport costs a trip with the known route when one exists,
// otherwise falls back to a flagged 150km estimate.
func (e *RecommendationEngine) estimateTransport(ctx context.Context, origin, destination string, quantityKg float64) models.TransportEstimate {
	trucks := int(math.Ceil(quantityKg / truckCapacityKg))
	if trucks < 1 {
		trucks = 1
	}

	if destination == origin {
		return models.TransportEstimate{
			DistanceKm: 0,
			TimeHours:  0,
			FuelCost:   0,
			LaborCost:  0,
			Trucks:     trucks,
			TotalCost:  localHandlingCost,
		}
	}

	var route *models.TransportRoute
	if e.data != nil {
		r, err := e.data.QueryTransportRoute(ctx, origin, destination)
		if err == nil {
			route = r
		}
	}

	if route == nil {
		distance := 150.0
		fuel := distance * defaultFuelPerKm * float64(trucks)
		labor := laborCostPerTruck
		return models.TransportEstimate{
			DistanceKm: distance,
			TimeHours:  round1(distance / 40),
			FuelCost:   round2(fuel),
			LaborCost:  labor,
			Trucks:     trucks,
			TotalCost:  round2(fuel + labor),
			Estimated:  true,
		}
	}

	distance := route.DistanceKm
	if distance <= 0 {
		distance = 100
	}
	hours := distance / 40
	if route.EstimatedTimeHours != nil {
		hours = *route.EstimatedTimeHours
	}
	fuelPerKm := route.FuelCostPerKm
	if fuelPerKm <= 0 {
		fuelPerKm = defaultFuelPerKm
	}

	fuel := distance * fuelPerKm * float64(trucks)
	labor := laborCostPerTruck * float64(trucks)

	return models.TransportEstimate{
		DistanceKm: distance,
		TimeHours:  round1(hours),
		FuelCost:   round2(fuel),
		LaborCost:  labor,
		Trucks:     trucks,
		TotalCost:  round2(fuel + labor),
	}
}

func buildRankingSummary(options []models.MandiOption, quintals float64) string {
	best := options[0]
	var parts []string

	parts = append(parts, fmt.Sprintf("Best option: %s with net profit of Rs %.0f for %.0f quintals.",
		best.Mandi, best.NetProfitINR, quintals))

	if len(options) > 1 {
		worst := options[len(options)-1]
		saved := best.NetProfitINR - worst.NetProfitINR
		if saved > 0 {
			parts = append(parts, fmt.Sprintf("Choosing %s over %s saves Rs %.0f.",
				best.Mandi, worst.Mandi, saved))
		}
	}

	if !best.IsLocal {
		for _, opt := range options {
			if opt.IsLocal {
				extra := best.NetProfitINR - opt.NetProfitINR
				if extra > 0 {
					parts = append(parts, fmt.Sprintf("Transporting beats selling locally by Rs %.0f despite transport and spoilage costs.", extra))
				}
				break
			}
		}
	}

	var risky []string
	for _, opt := range options {
		if opt.Spoilage.RiskLevel == models.RiskHigh || opt.Spoilage.RiskLevel == models.RiskCritical {
			risky = append(risky, opt.Mandi)
			if len(risky) == 2 {
				break
			}
		}
	}
	if len(risky) > 0 {
		parts = append(parts, fmt.Sprintf("Note: spoilage risk is elevated for %s. Use better packaging or cold transport.",
			strings.Join(risky, ", ")))
	}

	return strings.Join(parts, " ")
}

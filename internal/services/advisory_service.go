package services

import (
	"context"
	"encoding/json"

	"github.com/jonboulle/clockwork"

	"agri-advisor/internal/advisor"
	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// Weather and supply alert thresholds, matched to the upstream
// forecast-feature pipeline this service replaces.
const (
	extremeAvgTempC   = 36.5
	extremeMaxTempC   = 40.0
	extremeHumidity   = 86.0
	rainAlertMm       = 8.0
	arrivalHighRatio  = 1.2
	arrivalLowRatio   = 0.8
	weatherWindowDays = 7
	arrivalWindowDays = 14
)

// AdvisoryService orchestrates the advisor engines behind the API. It
// owns the audit trail: every prediction served is logged best-effort
// to prediction_logs so model behavior can be reviewed against actual
// outcomes later.
type AdvisoryService struct {
	forecaster *advisor.Forecaster
	spoilage   *advisor.SpoilageEngine
	harvest    *advisor.HarvestOptimizer
	mandi      *advisor.RecommendationEngine
	composer   *advisor.DecisionComposer
	data       repository.DataAccess
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
	clock      clockwork.Clock
}

// NewAdvisoryService creates the advisory orchestration layer
func NewAdvisoryService(
	forecaster *advisor.Forecaster,
	spoilage *advisor.SpoilageEngine,
	harvest *advisor.HarvestOptimizer,
	mandi *advisor.RecommendationEngine,
	data repository.DataAccess,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	clock clockwork.Clock,
) *AdvisoryService {
	return &AdvisoryService{
		forecaster: forecaster,
		spoilage:   spoilage,
		harvest:    harvest,
		mandi:      mandi,
		composer:   advisor.NewDecisionComposer(),
		data:       data,
		logger:     logger,
		metrics:    metricsCollector,
		clock:      clock,
	}
}

// Capability names the data regime this service operates in
func (s *AdvisoryService) Capability() string { return "online" }

// ForecastPrice returns a price forecast for a commodity in a district
func (s *AdvisoryService) ForecastPrice(ctx context.Context, commodity, district string, horizonDays int) *models.PriceForecast {
	forecast := s.forecaster.Forecast(ctx, commodity, district, horizonDays)
	s.audit(ctx, "price_forecast", commodity, district,
		map[string]any{"horizon_days": horizonDays},
		forecast, forecast.Confidence, forecast.ModelVersion)
	return forecast
}

// AssessSpoilage returns the spoilage risk assessment
func (s *AdvisoryService) AssessSpoilage(ctx context.Context, req models.SpoilageRequest) *models.SpoilageAssessment {
	assessment := s.spoilage.Assess(ctx, req)
	s.audit(ctx, "spoilage", req.Commodity, req.District, req, assessment,
		assessment.Confidence, assessment.ModelVersion)
	return assessment
}

// OptimizeHarvest returns the harvest-timing decision
func (s *AdvisoryService) OptimizeHarvest(ctx context.Context, req models.HarvestRequest) *models.HarvestDecision {
	decision := s.harvest.Optimize(ctx, req)
	s.audit(ctx, "harvest", req.Commodity, req.District, req, decision,
		decision.Confidence, decision.ModelVersion)
	return decision
}

// RankMandis returns candidate markets ordered by net profit
func (s *AdvisoryService) RankMandis(ctx context.Context, req models.MandiRequest) *models.MarketRanking {
	ranking := s.mandi.RankMandis(ctx, req)
	conf := 0.0
	if len(ranking.Recommendations) > 0 {
		conf = ranking.Recommendations[0].PriceConfidence
	}
	s.audit(ctx, "mandi_ranking", req.Commodity, req.OriginDistrict, req, ranking,
		conf, ranking.ModelVersion)
	return ranking
}

// Advise runs every engine and composes the combined advisory
func (s *AdvisoryService) Advise(ctx context.Context, req models.AdvisoryRequest) *models.ComposedDecision {
	price := s.forecaster.Forecast(ctx, req.Commodity, req.District, 0)

	harvest := s.harvest.Optimize(ctx, models.HarvestRequest{
		Commodity:   req.Commodity,
		District:    req.District,
		SowingDate:  req.SowingDate,
		CropAgeDays: req.CropAgeDays,
	})

	spoilage := s.spoilage.Assess(ctx, models.SpoilageRequest{
		Commodity:      req.Commodity,
		District:       req.District,
		StorageType:    req.StorageType,
		Packaging:      req.Packaging,
		HarvestDaysAgo: req.HarvestDaysAgo,
		QuantityKg:     req.QuantityQuintals * 100,
	})

	ranking := s.mandi.RankMandis(ctx, models.MandiRequest{
		Commodity:        req.Commodity,
		OriginDistrict:   req.District,
		QuantityQuintals: req.QuantityQuintals,
		StorageType:      req.StorageType,
		Packaging:        req.Packaging,
	})

	decision := s.composer.Compose(price, harvest, spoilage, s.marketFeatures(ctx, req.Commodity, req.District, price, ranking))

	s.audit(ctx, "advisory", req.Commodity, req.District, req, decision,
		decision.OverallConfidence, advisor.ModelVersion)

	return decision
}

// TrainPriceModel trains or retrains the forecast model for a commodity
func (s *AdvisoryService) TrainPriceModel(ctx context.Context, commodity, district string) (*models.TrainingReport, error) {
	report, err := s.forecaster.Train(ctx, commodity, district)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "training", commodity, district,
		map[string]any{"district": district}, report, 0, report.ModelVersion)
	return report, nil
}

// marketFeatures derives the composer's market context: weather alerts
// and supply pressure from recent district data, plus the economics of
// the ranking already computed for this advisory.
func (s *AdvisoryService) marketFeatures(ctx context.Context, commodity, district string, price *models.PriceForecast, ranking *models.MarketRanking) advisor.MarketFeatures {
	features := advisor.MarketFeatures{
		LocalMandiPrice: price.CurrentPrice,
	}
	s.weatherFeatures(ctx, district, &features)
	features.ArrivalPressure = s.arrivalPressure(ctx, commodity, district)

	var local *models.MandiOption
	for i := range ranking.Recommendations {
		if ranking.Recommendations[i].IsLocal {
			local = &ranking.Recommendations[i]
			break
		}
	}

	if len(ranking.Recommendations) > 0 {
		best := ranking.Recommendations[0]
		features.BestMandiName = best.Mandi
		features.BestMandiPrice = best.PredictedPricePerQuintal
		features.EstimatedDistanceKm = best.Transport.DistanceKm
		features.TransportCostEstimate = best.Transport.TotalCost
		features.NetProfitBestMandi = best.NetProfitINR
	}
	if local != nil {
		features.LocalMandiPrice = local.PredictedPricePerQuintal
		features.NetProfitLocal = local.NetProfitINR
	}

	return features
}

// weatherFeatures fills the weather alert fields from the trailing
// observation window. Missing data leaves the alerts unset.
func (s *AdvisoryService) weatherFeatures(ctx context.Context, district string, features *advisor.MarketFeatures) {
	now := s.clock.Now()
	records, err := s.data.QueryWeatherHistory(ctx, district, now.AddDate(0, 0, -weatherWindowDays))
	if err != nil || len(records) == 0 {
		if err != nil {
			s.logger.Warn(ctx, "[ADVISORY] Weather history unavailable for alerts", logging.Fields{
				"district": district,
				"error":    err.Error(),
			})
		}
		return
	}

	var tempSum, humSum, tempMax, rainRecent float64
	var tempCount, humCount int
	rainCutoff := now.AddDate(0, 0, -3)

	for _, rec := range records {
		if rec.TempAvg != nil {
			tempSum += *rec.TempAvg
			tempCount++
		}
		if rec.TempMax != nil && *rec.TempMax > tempMax {
			tempMax = *rec.TempMax
		}
		if rec.Humidity != nil {
			humSum += *rec.Humidity
			humCount++
		}
		if rec.RainfallMm != nil && !rec.RecordDate.Before(rainCutoff) {
			rainRecent += *rec.RainfallMm
		}
	}

	var avgTemp, avgHumidity float64
	if tempCount > 0 {
		avgTemp = tempSum / float64(tempCount)
	}
	if humCount > 0 {
		avgHumidity = humSum / float64(humCount)
	}

	features.AvgTemp = avgTemp
	features.RainIn3Days = rainRecent >= rainAlertMm
	features.ExtremeWeather = avgTemp >= extremeAvgTempC ||
		tempMax >= extremeMaxTempC ||
		avgHumidity >= extremeHumidity
}

// arrivalPressure compares the latest market arrival against the
// trailing average. No usable arrivals reads as normal supply.
func (s *AdvisoryService) arrivalPressure(ctx context.Context, commodity, district string) string {
	now := s.clock.Now()
	prices, err := s.data.QueryPriceHistory(ctx, commodity, district, now.AddDate(0, 0, -arrivalWindowDays))
	if err != nil || len(prices) == 0 {
		return "normal"
	}

	var sum, latest float64
	var count int
	for _, p := range prices {
		if p.ArrivalQtyTonnes == nil || *p.ArrivalQtyTonnes <= 0 {
			continue
		}
		sum += *p.ArrivalQtyTonnes
		latest = *p.ArrivalQtyTonnes
		count++
	}
	if count == 0 || sum <= 0 {
		return "normal"
	}

	ratio := latest / (sum / float64(count))
	switch {
	case ratio > arrivalHighRatio:
		return "high"
	case ratio < arrivalLowRatio:
		return "low"
	default:
		return "normal"
	}
}

// audit writes the prediction to the log table. Failures are logged and
// swallowed: auditing must never break an advisory response.
func (s *AdvisoryService) audit(ctx context.Context, predictionType, commodity, district string, input, output any, confidence float64, modelVersion string) {
	if s.data == nil {
		return
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		inputJSON = []byte("{}")
	}
	outputJSON, err := json.Marshal(output)
	if err != nil {
		outputJSON = []byte("{}")
	}

	entry := &models.PredictionLog{
		PredictionType: predictionType,
		Crop:           commodity,
		District:       district,
		InputParams:    string(inputJSON),
		OutputResult:   string(outputJSON),
		ModelVersion:   modelVersion,
	}
	if confidence > 0 {
		entry.Confidence = &confidence
	}

	if err := s.data.LogPrediction(ctx, entry); err != nil {
		s.logger.Warn(ctx, "[AUDIT] Failed to persist prediction log", logging.Fields{
			"prediction_type": predictionType,
			"commodity":       commodity,
			"error":           err.Error(),
		})
	}
}

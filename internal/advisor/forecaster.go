package advisor

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// ModelVersion tags trained models and forecast outputs
const ModelVersion = "1.0.0"

// defaultMinTrainingSamples is the hard floor below which training
// fails loudly, unless tuned higher
const defaultMinTrainingSamples = 50

// defaultHorizonDays is the forecast length when the caller asks for
// none, unless tuned
const defaultHorizonDays = 7

// minForecastHistory is the model path's minimum usable price history;
// below it the statistical fallback answers instead
const minForecastHistory = 14

const cvFolds = 3

// ForecasterTuning overrides the training floor and default forecast
// horizon. Zero values keep the package defaults.
type ForecasterTuning struct {
	MinTrainingSamples int
	DefaultHorizonDays int
}

// Forecaster produces N-day modal price forecasts per commodity and
// district. Trained models are cached per commodity behind a RWMutex;
// concurrent retrains are last-writer-wins.
type Forecaster struct {
	data           repository.DataAccess
	store          repository.ModelStore
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
	clock          clockwork.Clock
	minSamples     int
	defaultHorizon int

	mu     sync.RWMutex
	models map[string]*GBTModel
}

// NewForecaster creates a price forecaster
func NewForecaster(data repository.DataAccess, store repository.ModelStore, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, clock clockwork.Clock, tuning ForecasterTuning) *Forecaster {
	minSamples := tuning.MinTrainingSamples
	if minSamples <= 0 {
		minSamples = defaultMinTrainingSamples
	}
	horizon := tuning.DefaultHorizonDays
	if horizon <= 0 {
		horizon = defaultHorizonDays
	}

	return &Forecaster{
		data:           data,
		store:          store,
		logger:         logger,
		metrics:        metricsCollector,
		clock:          clock,
		minSamples:     minSamples,
		defaultHorizon: horizon,
		models:         make(map[string]*GBTModel),
	}
}

// WarmCache loads every stored model into the in-process cache.
// Called once at startup; failures are logged and skipped.
func (f *Forecaster) WarmCache(ctx context.Context) int {
	if f.store == nil {
		return 0
	}

	commodities, err := f.store.ListCommodities(ctx)
	if err != nil {
		f.logger.Warn(ctx, "[FORECASTER_WARM] Failed to list stored models", logging.Fields{
			"error": err.Error(),
		})
		return 0
	}

	loaded := 0
	for _, commodity := range commodities {
		if f.loadModel(ctx, commodity) != nil {
			loaded++
		}
	}

	f.logger.Info(ctx, "[FORECASTER_WARM] Model cache warmed", logging.Fields{
		"loaded": loaded,
	})
	return loaded
}

// Train fits a fresh model for a commodity on stored history, scoring it
// with expanding chronological cross-validation before the final refit.
// The only loud failure in the advisory core: fewer than 50 feature rows
// returns InsufficientDataError.
func (f *Forecaster) Train(ctx context.Context, commodity, district string) (*models.TrainingReport, error) {
	start := f.clock.Now()
	defer func() {
		f.metrics.TrainingDuration.Observe(f.clock.Since(start).Seconds())
	}()

	var prices []*models.MandiPrice
	var err error
	if district != "" {
		prices, err = f.data.QueryPriceHistory(ctx, commodity, district, time.Time{})
	} else {
		prices, err = f.data.QueryPriceHistoryAllDistricts(ctx, commodity, time.Time{})
	}
	if err != nil {
		f.metrics.RecordTrainingError("price_query")
		return nil, err
	}

	weatherDistrict := district
	if weatherDistrict == "" {
		weatherDistrict = "nashik"
	}
	weather, err := f.data.QueryWeatherHistory(ctx, weatherDistrict, time.Time{})
	if err != nil {
		// Weather enriches features but is not required to train
		f.logger.Warn(ctx, "[TRAIN] Weather history unavailable, using defaults", logging.Fields{
			"commodity": commodity,
			"district":  weatherDistrict,
			"error":     err.Error(),
		})
		weather = nil
	}

	x, y := buildTrainingSet(prices, weather)
	if len(x) < f.minSamples {
		f.metrics.RecordTrainingError("insufficient_data")
		return nil, &models.InsufficientDataError{
			Commodity: commodity,
			Samples:   len(x),
			Required:  f.minSamples,
		}
	}

	params := DefaultGBTParams()

	// Expanding chronological cross-validation, never shuffled
	var maeSum, mapeSum float64
	splits := expandingSplits(len(x), cvFolds)
	for _, split := range splits {
		foldModel := TrainGBT(x[:split.trainEnd], y[:split.trainEnd], params)

		actual := y[split.testStart:split.testEnd]
		predicted := make([]float64, len(actual))
		for i, row := range x[split.testStart:split.testEnd] {
			predicted[i] = foldModel.Predict(row)
		}

		maeSum += meanAbsoluteError(actual, predicted)
		mapeSum += meanAbsolutePctError(actual, predicted)
	}

	avgMAE := maeSum / float64(len(splits))
	avgMAPE := mapeSum / float64(len(splits)) * 100

	// Final refit on all data
	final := TrainGBT(x, y, params)

	f.mu.Lock()
	f.models[commodity] = final
	f.mu.Unlock()

	if f.store != nil {
		payload, marshalErr := json.Marshal(final)
		if marshalErr != nil {
			f.metrics.RecordTrainingError("serialize")
			return nil, marshalErr
		}

		saveErr := f.store.Save(ctx, &repository.StoredModel{
			Commodity:    commodity,
			ModelVersion: ModelVersion,
			Payload:      payload,
			Samples:      len(x),
			MAE:          avgMAE,
			MAPE:         avgMAPE,
			TrainedAt:    f.clock.Now().UTC(),
		})
		if saveErr != nil {
			f.metrics.RecordTrainingError("persist")
			return nil, saveErr
		}
	}

	f.metrics.TrainingSamples.Observe(float64(len(x)))
	f.logger.Info(ctx, "[TRAIN] Price model trained", logging.Fields{
		"commodity": commodity,
		"district":  district,
		"samples":   len(x),
		"mae":       avgMAE,
		"mape":      avgMAPE,
	})

	return &models.TrainingReport{
		Status:       "trained",
		Commodity:    commodity,
		District:     district,
		Samples:      len(x),
		MAE:          round2(avgMAE),
		MAPE:         round2(avgMAPE),
		ModelVersion: ModelVersion,
		TrainedAt:    f.clock.Now().UTC(),
	}, nil
}

// Forecast produces an N-day price forecast. Never fails: with under 14
// days of usable history, a missing model, or an unreachable store it
// degrades to the statistical path or fallback instead of erroring.
func (f *Forecaster) Forecast(ctx context.Context, commodity, district string, horizonDays int) *models.PriceForecast {
	timer := f.clock.Now()
	defer func() {
		f.metrics.ForecastDuration.WithLabelValues("price_forecast").Observe(f.clock.Since(timer).Seconds())
	}()

	if horizonDays < 1 {
		horizonDays = f.defaultHorizon
	}

	today := f.clock.Now()
	cutoff := today.AddDate(0, 0, -60)

	prices, err := f.data.QueryPriceHistory(ctx, commodity, district, cutoff)
	if err != nil {
		f.logger.Warn(ctx, "[FORECAST] Price history query failed, falling back", logging.Fields{
			"commodity": commodity,
			"district":  district,
			"error":     err.Error(),
		})
		f.metrics.RecordFallback("price_forecast", "data_access_error")
		return f.statisticalFallback(ctx, commodity, district, horizonDays)
	}

	if len(prices) < minForecastHistory {
		f.metrics.RecordFallback("price_forecast", "short_history")
		return f.statisticalFallback(ctx, commodity, district, horizonDays)
	}

	model := f.loadModel(ctx, commodity)

	priceList := make([]float64, len(prices))
	arrivals := make([]float64, len(prices))
	for i, p := range prices {
		priceList[i] = p.ModalPrice
		if p.ArrivalQtyTonnes != nil {
			arrivals[i] = *p.ArrivalQtyTonnes
		}
	}

	var lastWeather *models.WeatherRecord
	weather, werr := f.data.QueryWeatherHistory(ctx, district, cutoff)
	if werr == nil && len(weather) > 0 {
		lastWeather = weather[len(weather)-1]
	}
	avgTemp, rainfall, humidity := weatherDefaults(lastWeather)

	// Recursive one-step forecast: each day's prediction is appended to
	// the history that feeds the next day's features
	current := make([]float64, len(priceList))
	copy(current, priceList)
	arrivalMa := tailMean(arrivals, 7)

	forecasts := make([]models.ForecastPoint, 0, horizonDays)
	for offset := 1; offset <= horizonDays; offset++ {
		forecastDate := today.AddDate(0, 0, offset)

		vec := featureVector(current, arrivals, forecastDate, avgTemp, rainfall, humidity)
		// The live path has no per-day arrival reading; both arrival
		// features carry the trailing average
		vec[9] = arrivalMa

		ma7 := vec[4]
		momentum := vec[7]
		volatility := vec[8]

		var predicted float64
		if model != nil {
			predicted = model.Predict(vec)
		} else {
			predicted = ma7 * (1 + momentum*0.3)
		}

		uncertainty := math.Max(predicted*volatility, predicted*0.03)
		forecasts = append(forecasts, models.ForecastPoint{
			Date:           forecastDate,
			PredictedPrice: round2(predicted),
			CILow:          round2(predicted - 2*uncertainty),
			CIHigh:         round2(predicted + 2*uncertainty),
			DayOffset:      offset,
		})

		current = append(current, predicted)
	}

	startPrice := priceList[len(priceList)-1]
	endPrice := forecasts[len(forecasts)-1].PredictedPrice
	pctChange := 0.0
	if startPrice > 0 {
		pctChange = (endPrice - startPrice) / startPrice * 100
	}

	direction := models.DirectionStable
	if pctChange > 3 {
		direction = models.DirectionRising
	} else if pctChange < -3 {
		direction = models.DirectionFalling
	}

	confidence := 0.55
	source := models.SourceStatistical
	version := models.SourceStatisticalFallback
	if model != nil {
		confidence = 0.75
		source = models.SourceMLModel
		version = ModelVersion
	}
	if len(prices) > 60 {
		confidence = math.Min(0.90, confidence+0.10)
	}

	f.metrics.RecordConfidence("price_forecast", confidence)

	return &models.PriceForecast{
		Commodity:         commodity,
		District:          district,
		CurrentPrice:      round2(startPrice),
		Forecasts:         forecasts,
		Direction:         direction,
		PctChangeForecast: round2(pctChange),
		Confidence:        confidence,
		ModelVersion:      version,
		DataPointsUsed:    len(prices),
		Source:            source,
	}
}

// statisticalFallback is the degraded forecast path: recent mean price,
// else crop base price, else a flat default, with a fixed 0.35 confidence.
func (f *Forecaster) statisticalFallback(ctx context.Context, commodity, district string, horizonDays int) *models.PriceForecast {
	today := f.clock.Now()

	basePrice := 2000.0
	dataPoints := 0

	prices, err := f.data.QueryPriceHistoryAllDistricts(ctx, commodity, today.AddDate(0, 0, -30))
	if err == nil && len(prices) > 0 {
		var sum float64
		for _, p := range prices {
			sum += p.ModalPrice
		}
		basePrice = sum / float64(len(prices))
		dataPoints = len(prices)
	} else {
		meta, metaErr := f.data.QueryCropMeta(ctx, commodity)
		if metaErr == nil && meta.BasePricePerQtl != nil {
			basePrice = *meta.BasePricePerQtl
		}
	}

	forecasts := make([]models.ForecastPoint, 0, horizonDays)
	for day := 1; day <= horizonDays; day++ {
		// Mild mean-reverting oscillation around the base price
		predicted := round2(basePrice + basePrice*0.01*float64(day%3-1))
		forecasts = append(forecasts, models.ForecastPoint{
			Date:           today.AddDate(0, 0, day),
			PredictedPrice: predicted,
			CILow:          round2(predicted * 0.92),
			CIHigh:         round2(predicted * 1.08),
			DayOffset:      day,
		})
	}

	f.metrics.RecordConfidence("price_forecast", 0.35)

	return &models.PriceForecast{
		Commodity:         commodity,
		District:          district,
		CurrentPrice:      round2(basePrice),
		Forecasts:         forecasts,
		Direction:         models.DirectionStable,
		PctChangeForecast: 0,
		Confidence:        0.35,
		ModelVersion:      models.SourceStatisticalFallback,
		DataPointsUsed:    dataPoints,
		Source:            models.SourceStatisticalFallback,
	}
}

// loadModel fetches the cached model for a commodity, pulling it from the
// store on a cache miss. Returns nil when no trained model exists.
func (f *Forecaster) loadModel(ctx context.Context, commodity string) *GBTModel {
	f.mu.RLock()
	model, ok := f.models[commodity]
	f.mu.RUnlock()
	if ok {
		f.metrics.ModelCacheHits.Inc()
		return model
	}

	f.metrics.ModelCacheMisses.Inc()
	if f.store == nil {
		return nil
	}

	stored, err := f.store.Load(ctx, commodity)
	if err != nil {
		return nil
	}

	var decoded GBTModel
	if err := json.Unmarshal(stored.Payload, &decoded); err != nil {
		f.logger.Error(ctx, "[FORECASTER] Stored model payload is corrupt", logging.Fields{
			"commodity": commodity,
		}, err)
		return nil
	}

	f.mu.Lock()
	f.models[commodity] = &decoded
	f.mu.Unlock()

	return &decoded
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-advisor/internal/models"
)

func newTestForecaster(data *stubDataAccess, store *stubModelStore, now time.Time) *Forecaster {
	return NewForecaster(data, store, testLogger, testMetrics, clockwork.NewFakeClockAt(now), ForecasterTuning{})
}

func TestForecastShortHistoryUsesFallback(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 10, func(i int) float64 { return 1500 }),
	}
	f := newTestForecaster(data, newStubModelStore(), now)

	forecast := f.Forecast(context.Background(), "onion", "nashik", 7)

	require.NotNil(t, forecast)
	assert.Equal(t, models.SourceStatisticalFallback, forecast.Source)
	assert.Equal(t, 0.35, forecast.Confidence)
	assert.Len(t, forecast.Forecasts, 7)
	for _, p := range forecast.Forecasts {
		assert.Greater(t, p.PredictedPrice, 0.0)
		assert.LessOrEqual(t, p.CILow, p.PredictedPrice)
		assert.GreaterOrEqual(t, p.CIHigh, p.PredictedPrice)
	}
}

func TestForecastDataErrorUsesFallback(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{priceErr: errors.New("connection refused")}
	f := newTestForecaster(data, newStubModelStore(), now)

	forecast := f.Forecast(context.Background(), "onion", "nashik", 5)

	require.NotNil(t, forecast)
	assert.Equal(t, models.SourceStatisticalFallback, forecast.Source)
	assert.Equal(t, 0.35, forecast.Confidence)
}

func TestForecastFallbackBasePrice(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	f := newTestForecaster(&stubDataAccess{}, newStubModelStore(), now)

	// Unknown crop with no history anywhere lands on the 2000 default.
	forecast := f.Forecast(context.Background(), "dragonfruit", "nashik", 3)

	require.Len(t, forecast.Forecasts, 3)
	for _, p := range forecast.Forecasts {
		assert.InDelta(t, 2000, p.PredictedPrice, 2000*0.05)
	}
}

func TestForecastStatisticalWithoutModel(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 30, func(i int) float64 { return 1500 + 2*float64(i) }),
	}
	f := newTestForecaster(data, newStubModelStore(), now)

	forecast := f.Forecast(context.Background(), "onion", "nashik", 7)

	assert.Equal(t, models.SourceStatistical, forecast.Source)
	assert.Equal(t, 0.55, forecast.Confidence)
	assert.Equal(t, 30, forecast.DataPointsUsed)
}

func TestForecastConfidenceBonusForLongHistory(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		// Only the last 60 days are inside the query cutoff, so pad
		// well past it.
		prices: priceSeries("onion", "nashik", now, 59, func(i int) float64 { return 1500 }),
	}
	f := newTestForecaster(data, newStubModelStore(), now)

	forecast := f.Forecast(context.Background(), "onion", "nashik", 7)
	assert.Equal(t, 0.55, forecast.Confidence, "59 points earn no bonus")
}

func TestForecastDefaultsHorizon(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 30, func(i int) float64 { return 1500 }),
	}
	f := newTestForecaster(data, newStubModelStore(), now)

	forecast := f.Forecast(context.Background(), "onion", "nashik", 0)
	assert.Len(t, forecast.Forecasts, 7)
}

func TestForecastDirectionThresholds(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	// The statistical path mean-reverts toward ma7, so a step in the
	// last week is what moves the projection beyond the 3% band.
	step := func(level float64) func(int) float64 {
		return func(i int) float64 {
			if i >= 33 {
				return level
			}
			return 1000
		}
	}

	rising := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 40, step(1500)),
	}
	f := newTestForecaster(rising, newStubModelStore(), now)
	assert.Equal(t, models.DirectionRising, f.Forecast(context.Background(), "onion", "nashik", 7).Direction)

	falling := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 40, step(700)),
	}
	f = newTestForecaster(falling, newStubModelStore(), now)
	assert.Equal(t, models.DirectionFalling, f.Forecast(context.Background(), "onion", "nashik", 7).Direction)

	flat := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 40, func(i int) float64 { return 1500 }),
	}
	f = newTestForecaster(flat, newStubModelStore(), now)
	assert.Equal(t, models.DirectionStable, f.Forecast(context.Background(), "onion", "nashik", 7).Direction)
}

func TestTrainInsufficientData(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 40, func(i int) float64 { return 1500 }),
	}
	f := newTestForecaster(data, newStubModelStore(), now)

	_, err := f.Train(context.Background(), "onion", "nashik")

	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Samples, "40 rows leave 10 after the 30-day feature warmup")
	assert.Equal(t, defaultMinTrainingSamples, insufficient.Required)
}

func TestForecasterTuningOverrides(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 120, func(i int) float64 { return 1500 }),
	}
	f := NewForecaster(data, newStubModelStore(), testLogger, testMetrics,
		clockwork.NewFakeClockAt(now), ForecasterTuning{
			MinTrainingSamples: 200,
			DefaultHorizonDays: 3,
		})

	// 120 rows leave 90 samples, below the raised floor
	_, err := f.Train(context.Background(), "onion", "nashik")
	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 90, insufficient.Samples)
	assert.Equal(t, 200, insufficient.Required)

	// Horizon 0 resolves to the configured default, not the package one
	forecast := f.Forecast(context.Background(), "onion", "nashik", 0)
	assert.Len(t, forecast.Forecasts, 3)
}

func TestTrainSavesModelAndForecastUsesIt(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 120, func(i int) float64 {
			return 1400 + 100*float64(i%7)/7
		}),
	}
	store := newStubModelStore()
	f := newTestForecaster(data, store, now)

	report, err := f.Train(context.Background(), "onion", "nashik")
	require.NoError(t, err)
	assert.Equal(t, "trained", report.Status)
	assert.Equal(t, "onion", report.Commodity)
	assert.Greater(t, report.Samples, 0)
	assert.GreaterOrEqual(t, report.MAE, 0.0)
	require.Contains(t, store.saved, "onion")

	forecast := f.Forecast(context.Background(), "onion", "nashik", 7)
	assert.Equal(t, models.SourceMLModel, forecast.Source)
	// 60 days of history inside the cutoff is not >60 points.
	assert.Equal(t, 0.75, forecast.Confidence)
}

func TestForecastIsIdempotent(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 45, func(i int) float64 { return 1200 + 3*float64(i) }),
	}
	f := newTestForecaster(data, newStubModelStore(), now)

	first := f.Forecast(context.Background(), "onion", "nashik", 7)
	second := f.Forecast(context.Background(), "onion", "nashik", 7)

	require.Equal(t, len(first.Forecasts), len(second.Forecasts))
	for i := range first.Forecasts {
		assert.Equal(t, first.Forecasts[i].PredictedPrice, second.Forecasts[i].PredictedPrice)
	}
}

func TestWarmCacheLoadsStoredModels(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &stubDataAccess{
		prices: priceSeries("onion", "nashik", now, 120, func(i int) float64 {
			return 1400 + 100*float64(i%7)/7
		}),
	}
	store := newStubModelStore()

	trainer := newTestForecaster(data, store, now)
	_, err := trainer.Train(context.Background(), "onion", "nashik")
	require.NoError(t, err)

	fresh := newTestForecaster(data, store, now)
	assert.Equal(t, 1, fresh.WarmCache(context.Background()))
}

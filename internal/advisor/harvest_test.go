package advisor

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-advisor/internal/models"
)

var harvestNow = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

func newTestHarvestOptimizer(data *stubDataAccess) *HarvestOptimizer {
	return NewHarvestOptimizer(data, testLogger, testMetrics, clockwork.NewFakeClockAt(harvestNow))
}

func TestAssessMaturityStatuses(t *testing.T) {
	meta := models.CropMeta{MaturityDaysMin: 100, MaturityDaysMax: 130}

	tests := []struct {
		age  int
		want string
	}{
		{50, "immature"},    // under 80% of min
		{90, "approaching"}, // inside the 80%..min band
		{100, "mature"},
		{130, "mature"},
		{140, "over_mature"},
	}

	for _, tt := range tests {
		got := assessMaturity(&tt.age, meta)
		assert.Equal(t, tt.want, got.Status, "age=%d", tt.age)
	}

	unknown := assessMaturity(nil, meta)
	assert.Equal(t, "unknown", unknown.Status)
	assert.Equal(t, 0.5, unknown.Score)
}

func TestOverMaturePriorityIsCritical(t *testing.T) {
	o := newTestHarvestOptimizer(&stubDataAccess{})

	decision := o.Optimize(context.Background(), models.HarvestRequest{
		Commodity:   "onion",
		District:    "nashik",
		CropAgeDays: ip(160), // past the 140-day max
	})

	assert.Equal(t, models.ActionUrgentHarvest, decision.Action)
	assert.Equal(t, "critical", decision.Priority)
	assert.LessOrEqual(t, decision.WaitDays, 1)
	assert.False(t, decision.OptimalWindow.End.Before(decision.OptimalWindow.Start))
}

func TestOverMatureWithRainWaitsOneDay(t *testing.T) {
	rain := 30.0
	o := newTestHarvestOptimizer(&stubDataAccess{
		weather: []*models.WeatherRecord{
			{RainfallMm: &rain, RecordDate: harvestNow.AddDate(0, 0, -1)},
		},
	})

	decision := o.Optimize(context.Background(), models.HarvestRequest{
		Commodity:   "onion",
		District:    "nashik",
		CropAgeDays: ip(160),
	})

	assert.Equal(t, models.ActionUrgentHarvest, decision.Action)
	assert.Equal(t, 1, decision.WaitDays, "first dry window after heavy rain")
	assert.Equal(t, "critical", decision.Priority)
}

func TestImmatureCropWaits(t *testing.T) {
	o := newTestHarvestOptimizer(&stubDataAccess{})

	decision := o.Optimize(context.Background(), models.HarvestRequest{
		Commodity:   "onion",
		District:    "nashik",
		CropAgeDays: ip(60), // needs 110+
	})

	assert.Equal(t, models.ActionWait, decision.Action)
	assert.Equal(t, "low", decision.Priority)
	assert.Equal(t, 50, decision.WaitDays, "days to earliest maturity")
}

func TestNDVIHarvestReadyOverridesImmatureWait(t *testing.T) {
	trend := -0.02
	o := newTestHarvestOptimizer(&stubDataAccess{
		ndvi: []*models.NDVIRecord{
			{NDVIValue: 0.55, NDVITrend30d: &trend, RecordDate: harvestNow.AddDate(0, 0, -2)},
		},
	})

	decision := o.Optimize(context.Background(), models.HarvestRequest{
		Commodity:   "onion",
		District:    "nashik",
		CropAgeDays: ip(95), // approaching, score under 0.5
	})

	assert.Equal(t, "harvest_ready", decision.Signals.NDVI.Status)
	assert.NotEqual(t, models.ActionWait, decision.Action,
		"plateaued NDVI suppresses the not-yet-mature wait rule")
}

func TestRainRiskDelaysMatureHarvest(t *testing.T) {
	rain := 25.0
	o := newTestHarvestOptimizer(&stubDataAccess{
		weather: []*models.WeatherRecord{
			{RainfallMm: &rain, RecordDate: harvestNow.AddDate(0, 0, -1)},
		},
	})

	decision := o.Optimize(context.Background(), models.HarvestRequest{
		Commodity:   "onion",
		District:    "nashik",
		CropAgeDays: ip(120), // mature
	})

	assert.Equal(t, models.ActionWait, decision.Action)
	assert.Equal(t, 3, decision.WaitDays)
	assert.Equal(t, "medium", decision.Priority)
}

func TestRisingPricesExtendMatureWindow(t *testing.T) {
	// Prices step up in the final week to trip the rising signal.
	prices := priceSeries("onion", "nashik", harvestNow, 20, func(i int) float64 {
		if i >= 13 {
			return 2000
		}
		return 1500
	})
	o := newTestHarvestOptimizer(&stubDataAccess{prices: prices})

	decision := o.Optimize(context.Background(), models.HarvestRequest{
		Commodity:   "onion",
		District:    "nashik",
		CropAgeDays: ip(120),
	})

	require.Equal(t, "prices_rising", decision.Signals.Price.Status)
	assert.Equal(t, models.ActionWait, decision.Action)
	assert.LessOrEqual(t, decision.WaitDays, 5, "wait is capped by half the shelf life")
	assert.Equal(t, "low", decision.Priority)
}

func TestAllClearHarvestNow(t *testing.T) {
	o := newTestHarvestOptimizer(&stubDataAccess{})

	decision := o.Optimize(context.Background(), models.HarvestRequest{
		Commodity:   "onion",
		District:    "nashik",
		CropAgeDays: ip(120),
	})

	assert.Equal(t, models.ActionHarvestNow, decision.Action)
	assert.Equal(t, 0, decision.WaitDays)
	assert.Equal(t, "medium", decision.Priority)
}

func TestSowingDateDerivesAge(t *testing.T) {
	o := newTestHarvestOptimizer(&stubDataAccess{})

	decision := o.Optimize(context.Background(), models.HarvestRequest{
		Commodity:  "onion",
		District:   "nashik",
		SowingDate: "2026-03-03", // 120 days before the fake clock
	})

	require.NotNil(t, decision.CropAgeDays)
	assert.Equal(t, 120, *decision.CropAgeDays)
	assert.Equal(t, "mature", decision.Signals.Maturity.Status)
}

func TestHarvestConfidenceBounds(t *testing.T) {
	noSignals := harvestConfidence(
		models.MaturitySignal{Status: "unknown"},
		models.NDVISignal{Status: "no_data"},
		models.WeatherSignal{Status: "no_data"},
		models.SoilSignal{Status: "no_data"},
	)
	assert.Equal(t, 0.42, noSignals, "base minus the not-ready penalty")

	allSignals := harvestConfidence(
		models.MaturitySignal{Status: "mature"},
		models.NDVISignal{Status: "harvest_ready"},
		models.WeatherSignal{Status: "fair"},
		models.SoilSignal{Status: "good"},
	)
	assert.Equal(t, 0.94, allSignals)
	assert.LessOrEqual(t, allSignals, 0.95)
}

func TestSoilSignalScoring(t *testing.T) {
	o := newTestHarvestOptimizer(&stubDataAccess{
		soil: &models.SoilProfile{
			District:         "nashik",
			SoilQualityIndex: fp(0.8),
			PH:               fp(7.0),
			NitrogenKgHa:     fp(250),
			OrganicCarbonPct: fp(0.75),
		},
	})

	signal := o.assessSoil(context.Background(), "nashik")

	// 0.8*0.4 + 1*0.3 + 1*0.2 + 1*0.1
	assert.Equal(t, "good", signal.Status)
	assert.InDelta(t, 0.92, signal.Score, 0.001)

	missing := newTestHarvestOptimizer(&stubDataAccess{})
	assert.Equal(t, "no_data", missing.assessSoil(context.Background(), "nashik").Status)
}

func TestWeatherSignalOptimal(t *testing.T) {
	wind := 4.0
	humidity := 45.0
	o := newTestHarvestOptimizer(&stubDataAccess{
		weather: []*models.WeatherRecord{
			{Humidity: &humidity, WindSpeed: &wind, RecordDate: harvestNow.AddDate(0, 0, -1)},
		},
	})

	signal := o.assessWeather(context.Background(), "nashik")
	assert.Equal(t, "optimal", signal.Status)
	assert.Equal(t, 0.1, signal.Score)
}

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

func newTestOfflineAdvisor() *OfflineAdvisor {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	return NewOfflineAdvisor(clockwork.NewFakeClockAt(now))
}

func TestOfflineCapability(t *testing.T) {
	assert.Equal(t, "offline_demo", newTestOfflineAdvisor().Capability())
}

func TestOfflineAdvisorSatisfiesStrategy(t *testing.T) {
	var _ Strategy = newTestOfflineAdvisor()
}

func TestOfflineForecastIsDeterministic(t *testing.T) {
	a := newTestOfflineAdvisor()
	ctx := context.Background()

	first := a.ForecastPrice(ctx, "onion", "nashik", 7)
	second := a.ForecastPrice(ctx, "onion", "nashik", 7)

	require.Len(t, first.Forecasts, 7)
	assert.Equal(t, models.SourceStatisticalFallback, first.Source)
	assert.Equal(t, 0.35, first.Confidence)
	for i := range first.Forecasts {
		assert.Equal(t, first.Forecasts[i].PredictedPrice, second.Forecasts[i].PredictedPrice)
	}
}

func TestOfflineForecastUsesSeededBase(t *testing.T) {
	a := newTestOfflineAdvisor()

	onion := a.ForecastPrice(context.Background(), "onion", "nashik", 3)
	assert.Equal(t, 2100.0, onion.CurrentPrice, "seeded onion base price")

	unknown := a.ForecastPrice(context.Background(), "dragonfruit", "nashik", 3)
	assert.Equal(t, 2000.0, unknown.CurrentPrice, "default base for unknown crops")
}

func TestOfflineSpoilageStorageOrdering(t *testing.T) {
	a := newTestOfflineAdvisor()
	ctx := context.Background()

	req := func(storage string) models.SpoilageRequest {
		return models.SpoilageRequest{
			Commodity:      "tomato",
			District:       "pune",
			StorageType:    storage,
			HarvestDaysAgo: 2,
		}
	}

	openAir := a.AssessSpoilage(ctx, req("open_air")).SpoilagePct
	warehouse := a.AssessSpoilage(ctx, req("warehouse")).SpoilagePct
	cold := a.AssessSpoilage(ctx, req("cold_storage")).SpoilagePct

	assert.Greater(t, openAir, warehouse)
	assert.Greater(t, warehouse, cold)
}

func TestOfflineSpoilageTierMatchesReportedPct(t *testing.T) {
	a := newTestOfflineAdvisor()

	// cold-stored tomato two days after harvest: 0.15*1.4*1.1 = 0.231,
	// reported as 10.4%, which sits in the medium band
	assessment := a.AssessSpoilage(context.Background(), models.SpoilageRequest{
		Commodity:      "tomato",
		District:       "pune",
		StorageType:    "cold_storage",
		HarvestDaysAgo: 2,
	})

	assert.InDelta(t, 10.4, assessment.SpoilagePct, 0.01)
	assert.Equal(t, models.RiskMedium, assessment.RiskLevel)
	assert.Equal(t, riskTier(assessment.SpoilagePct), assessment.RiskLevel)
}

func TestOfflineHarvestUsesMaturityOnly(t *testing.T) {
	a := newTestOfflineAdvisor()

	decision := a.OptimizeHarvest(context.Background(), models.HarvestRequest{
		Commodity:   "onion",
		District:    "nashik",
		CropAgeDays: ip(160),
	})

	assert.Equal(t, models.ActionUrgentHarvest, decision.Action)
	assert.Equal(t, "no_data", decision.Signals.NDVI.Status)
	assert.Equal(t, "no_data", decision.Signals.Weather.Status)
}

func TestOfflineAdviseEndToEnd(t *testing.T) {
	a := newTestOfflineAdvisor()

	decision := a.Advise(context.Background(), models.AdvisoryRequest{
		Commodity:        "onion",
		District:         "nashik",
		CropAgeDays:      ip(120),
		QuantityQuintals: 20,
		StorageType:      "covered",
		Packaging:        "jute",
	})

	require.NotNil(t, decision)
	assert.NotEmpty(t, decision.Action)
	assert.NotEmpty(t, decision.BestMandi.Name)
	assert.GreaterOrEqual(t, decision.OverallConfidence, 0.5)
	assert.LessOrEqual(t, decision.OverallConfidence, 0.95)
	assert.Len(t, decision.PreservationActions, 3)
	assert.NotEmpty(t, decision.Explanation.MarketReason)
	assert.NotEmpty(t, decision.Explanation.ConfidenceMessage)
}

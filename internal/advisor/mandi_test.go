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

func newTestRecommendationEngine(data *stubDataAccess) *RecommendationEngine {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	forecaster := NewForecaster(data, newStubModelStore(), testLogger, testMetrics, clock, ForecasterTuning{})
	spoilage := NewSpoilageEngine(data, testLogger, testMetrics, clock)
	return NewRecommendationEngine(forecaster, spoilage, data, testLogger, testMetrics, clock)
}

func TestRankMandisOrderingAndRanks(t *testing.T) {
	e := newTestRecommendationEngine(&stubDataAccess{})

	ranking := e.RankMandis(context.Background(), models.MandiRequest{
		Commodity:        "onion",
		OriginDistrict:   "nashik",
		QuantityQuintals: 20,
		StorageType:      "covered",
		Packaging:        "jute",
	})

	require.NotEmpty(t, ranking.Recommendations)
	assert.Equal(t, len(ranking.Recommendations), ranking.TotalMandisEvaluated)

	for i, opt := range ranking.Recommendations {
		assert.Equal(t, i+1, opt.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t,
				ranking.Recommendations[i-1].NetProfitINR, opt.NetProfitINR,
				"options must be sorted by net profit descending")
		}
	}

	assert.Equal(t, ranking.Recommendations[0].Mandi, ranking.BestMandi)
	assert.Equal(t, ranking.Recommendations[0].NetProfitINR, ranking.BestNetProfit)
}

func TestRankMandisOriginAlwaysEvaluated(t *testing.T) {
	e := newTestRecommendationEngine(&stubDataAccess{})

	ranking := e.RankMandis(context.Background(), models.MandiRequest{
		Commodity:      "onion",
		OriginDistrict: "nashik",
		TargetMandis:   []string{"Mumbai", "Pune"},
	})

	var foundLocal bool
	for _, opt := range ranking.Recommendations {
		if opt.Mandi == "nashik" {
			foundLocal = true
			assert.True(t, opt.IsLocal)
		}
	}
	assert.True(t, foundLocal, "origin must be injected into explicit target lists")
	assert.Equal(t, 3, ranking.TotalMandisEvaluated)
}

func TestRankMandisUnknownOriginFallsBackToItself(t *testing.T) {
	e := newTestRecommendationEngine(&stubDataAccess{})

	ranking := e.RankMandis(context.Background(), models.MandiRequest{
		Commodity:      "onion",
		OriginDistrict: "indore",
	})

	require.Equal(t, 1, ranking.TotalMandisEvaluated)
	assert.True(t, ranking.Recommendations[0].IsLocal)
}

func TestEstimateTransportTruckBoundary(t *testing.T) {
	e := newTestRecommendationEngine(&stubDataAccess{})
	ctx := context.Background()

	// Local sale uses a flat handling charge regardless of load.
	local := e.estimateTransport(ctx, "nashik", "nashik", 9000)
	assert.Equal(t, localHandlingCost, local.TotalCost)

	exactlyOne := e.estimateTransport(ctx, "nashik", "mumbai", 3000)
	assert.Equal(t, 1, exactlyOne.Trucks)

	justOver := e.estimateTransport(ctx, "nashik", "mumbai", 3001)
	assert.Equal(t, 2, justOver.Trucks)
	assert.Greater(t, justOver.TotalCost, exactlyOne.TotalCost)
}

func TestEstimateTransportWithoutRouteIsFlagged(t *testing.T) {
	e := newTestRecommendationEngine(&stubDataAccess{})

	estimate := e.estimateTransport(context.Background(), "nashik", "mumbai", 3000)

	assert.True(t, estimate.Estimated)
	assert.Equal(t, 150.0, estimate.DistanceKm)
	assert.Equal(t, 150.0*defaultFuelPerKm, estimate.FuelCost)
	assert.Equal(t, laborCostPerTruck, estimate.LaborCost)
}

func TestEstimateTransportWithRoute(t *testing.T) {
	hours := 4.5
	data := &stubDataAccess{
		route: &models.TransportRoute{
			OriginDistrict:     "nashik",
			DestinationMarket:  "mumbai",
			DistanceKm:         180,
			EstimatedTimeHours: &hours,
			FuelCostPerKm:      6.5,
		},
	}
	e := newTestRecommendationEngine(data)

	estimate := e.estimateTransport(context.Background(), "nashik", "mumbai", 6000)

	assert.False(t, estimate.Estimated)
	assert.Equal(t, 2, estimate.Trucks)
	assert.Equal(t, 180.0, estimate.DistanceKm)
	assert.Equal(t, 4.5, estimate.TimeHours)
	assert.Equal(t, 180*6.5*2, estimate.FuelCost)
	assert.Equal(t, laborCostPerTruck*2, estimate.LaborCost)
}

func TestRankMandisSummaryNamesBestOption(t *testing.T) {
	e := newTestRecommendationEngine(&stubDataAccess{})

	ranking := e.RankMandis(context.Background(), models.MandiRequest{
		Commodity:        "onion",
		OriginDistrict:   "nashik",
		QuantityQuintals: 10,
	})

	require.NotEmpty(t, ranking.Reasoning)
	assert.Contains(t, ranking.Reasoning, ranking.BestMandi)
}

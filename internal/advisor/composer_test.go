package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-advisor/internal/models"
)

func composerFixture(direction, risk, harvestAction string, waitDays int) (*models.PriceForecast, *models.HarvestDecision, *models.SpoilageAssessment) {
	price := &models.PriceForecast{
		Commodity:  "onion",
		Direction:  direction,
		Confidence: 0.75,
	}
	harvest := &models.HarvestDecision{
		Action:     harvestAction,
		WaitDays:   waitDays,
		Confidence: 0.7,
	}
	spoilage := &models.SpoilageAssessment{
		RiskLevel:   risk,
		SpoilagePct: 12,
		Confidence:  0.72,
	}
	return price, harvest, spoilage
}

func TestComposeExtremeWeatherOverridesEverything(t *testing.T) {
	c := NewDecisionComposer()
	price, harvest, spoilage := composerFixture(models.DirectionRising, models.RiskLow, models.ActionWait, 5)

	decision := c.Compose(price, harvest, spoilage, MarketFeatures{ExtremeWeather: true})

	assert.Equal(t, models.ActionSellImmediately, decision.Action)
	assert.Equal(t, 0, decision.WaitDays)
}

func TestComposeFallingPricesForceSale(t *testing.T) {
	c := NewDecisionComposer()
	price, harvest, spoilage := composerFixture(models.DirectionFalling, models.RiskLow, models.ActionWait, 5)

	decision := c.Compose(price, harvest, spoilage, MarketFeatures{})
	assert.Equal(t, models.ActionSellImmediately, decision.Action)
}

func TestComposeSpoilagePressureForcesSale(t *testing.T) {
	c := NewDecisionComposer()

	for _, risk := range []string{models.RiskHigh, models.RiskCritical} {
		price, harvest, spoilage := composerFixture(models.DirectionStable, risk, models.ActionHarvestNow, 0)
		decision := c.Compose(price, harvest, spoilage, MarketFeatures{})
		assert.Equal(t, models.ActionSellImmediately, decision.Action, "risk=%s", risk)
	}
}

func TestComposeRisingPricesEscalateToWait(t *testing.T) {
	c := NewDecisionComposer()
	price, harvest, spoilage := composerFixture(models.DirectionRising, models.RiskLow, models.ActionHarvestNow, 0)

	decision := c.Compose(price, harvest, spoilage, MarketFeatures{})

	assert.Equal(t, models.ActionWait, decision.Action)
	assert.Equal(t, 3, decision.WaitDays)
}

func TestComposeRisingPricesKeepExistingWait(t *testing.T) {
	c := NewDecisionComposer()
	price, harvest, spoilage := composerFixture(models.DirectionRising, models.RiskLow, models.ActionWait, 6)

	decision := c.Compose(price, harvest, spoilage, MarketFeatures{})

	assert.Equal(t, models.ActionWait, decision.Action)
	assert.Equal(t, 6, decision.WaitDays, "an existing wait is not shortened to 3")
}

func TestComposeNeverRelaxesUrgentHarvest(t *testing.T) {
	c := NewDecisionComposer()
	price, harvest, spoilage := composerFixture(models.DirectionRising, models.RiskLow, models.ActionUrgentHarvest, 0)

	decision := c.Compose(price, harvest, spoilage, MarketFeatures{})

	assert.Equal(t, models.ActionUrgentHarvest, decision.Action)
	assert.Equal(t, 0, decision.WaitDays)
}

func TestComposePassesThroughHarvestDecision(t *testing.T) {
	c := NewDecisionComposer()
	price, harvest, spoilage := composerFixture(models.DirectionStable, models.RiskMedium, models.ActionWait, 4)

	decision := c.Compose(price, harvest, spoilage, MarketFeatures{})

	assert.Equal(t, models.ActionWait, decision.Action)
	assert.Equal(t, 4, decision.WaitDays)
}

func TestSelectMarketDistantMandiLosesToLocal(t *testing.T) {
	c := NewDecisionComposer()

	market := MarketFeatures{
		BestMandiName:         "mumbai",
		BestMandiPrice:        2100,
		LocalMandiPrice:       2080,
		EstimatedDistanceKm:   180,
		TransportCostEstimate: 9000, // dwarfs the 2000 premium
	}

	selected := c.selectMarket(market)
	assert.Equal(t, "Local Mandi", selected.Name)
	assert.Equal(t, [2]float64{2080 * 0.98, 2080 * 1.02}, selected.ExpectedPriceRange)
}

func TestSelectMarketBestMandiWins(t *testing.T) {
	c := NewDecisionComposer()

	market := MarketFeatures{
		BestMandiName:         "pune",
		BestMandiPrice:        2500,
		LocalMandiPrice:       2000,
		EstimatedDistanceKm:   60,
		TransportCostEstimate: 4000,
	}

	selected := c.selectMarket(market)
	assert.Equal(t, "pune", selected.Name)
	assert.Equal(t, [2]float64{2400, 2600}, selected.ExpectedPriceRange)
}

func TestPreservationLadderBounds(t *testing.T) {
	c := NewDecisionComposer()

	low := c.preservationLadder(&models.SpoilageAssessment{SpoilagePct: 0})
	high := c.preservationLadder(&models.SpoilageAssessment{SpoilagePct: 100})

	require.Len(t, low, 3)
	require.Len(t, high, 3)

	assert.Equal(t, 15.0, low[0].SavesPercent)
	assert.Equal(t, 45.0, high[0].SavesPercent)
	assert.Equal(t, 72.0, low[1].SavesPercent)
	assert.Equal(t, 90.0, high[1].SavesPercent)
	assert.Equal(t, 84.0, low[2].SavesPercent)
	assert.Equal(t, 96.0, high[2].SavesPercent)

	assert.Equal(t, 0.0, low[0].CostINRPerQuintal)
	assert.Equal(t, 450.0, low[1].CostINRPerQuintal)
	assert.Equal(t, 780.0, low[2].CostINRPerQuintal)
}

func TestOverallConfidenceClamped(t *testing.T) {
	low := overallConfidence(
		&models.PriceForecast{Confidence: 0.35},
		&models.HarvestDecision{Confidence: 0.42},
		&models.SpoilageAssessment{Confidence: 0.45},
	)
	assert.Equal(t, 0.5, low, "floor at 0.5")

	mid := overallConfidence(
		&models.PriceForecast{Confidence: 0.75},
		&models.HarvestDecision{Confidence: 0.70},
		&models.SpoilageAssessment{Confidence: 0.72},
	)
	assert.InDelta(t, 0.72, mid, 0.005)
}

func TestGenerateExplanationTemplates(t *testing.T) {
	price := &models.PriceForecast{Commodity: "onion", Direction: models.DirectionRising}
	spoilage := &models.SpoilageAssessment{RiskLevel: models.RiskLow}

	expl := GenerateExplanation(price, spoilage, MarketFeatures{RainIn3Days: true, ArrivalPressure: "high"}, 0.8)
	assert.Contains(t, expl.WeatherReason, "Heavy rain expected in 3 days")
	assert.Contains(t, expl.MarketReason, "onion")
	assert.Contains(t, expl.SupplyReason, "15-20%")
	assert.Contains(t, expl.ConfidenceMessage, "strong data")

	hot := GenerateExplanation(price, spoilage, MarketFeatures{AvgTemp: 38}, 0.6)
	assert.Contains(t, hot.WeatherReason, "High temperatures")
	assert.Contains(t, hot.ConfidenceMessage, "reasonable data")

	calm := GenerateExplanation(
		&models.PriceForecast{Commodity: "onion", Direction: models.DirectionStable},
		spoilage, MarketFeatures{ArrivalPressure: "low"}, 0.4)
	assert.Contains(t, calm.WeatherReason, "stable")
	assert.Contains(t, calm.SupplyReason, "Less competition")
	assert.Contains(t, calm.ConfidenceMessage, "Limited data")
}

package advisor

import (
	"agri-advisor/internal/models"
)

// MarketFeatures carries the cross-engine context the composer needs
// beyond the three core assessments: weather alerts, supply pressure
// and the economics of the best-ranked mandi versus selling locally.
type MarketFeatures struct {
	ExtremeWeather        bool
	RainIn3Days           bool
	AvgTemp               float64
	ArrivalPressure       string
	BestMandiName         string
	BestMandiPrice        float64
	LocalMandiPrice       float64
	EstimatedDistanceKm   float64
	TransportCostEstimate float64
	NetProfitBestMandi    float64
	NetProfitLocal        float64
}

// DecisionComposer merges the price forecast, harvest decision and
// spoilage assessment into one actionable advisory. Safety dominates
// optimization: weather emergencies and spoilage pressure override any
// price-driven reason to wait.
type DecisionComposer struct{}

// NewDecisionComposer creates a decision composer
func NewDecisionComposer() *DecisionComposer {
	return &DecisionComposer{}
}

// Compose resolves the final action and assembles the advisory payload
func (c *DecisionComposer) Compose(price *models.PriceForecast, harvest *models.HarvestDecision, spoilage *models.SpoilageAssessment, market MarketFeatures) *models.ComposedDecision {
	action, waitDays := c.resolveAction(price, harvest, spoilage, market)

	return &models.ComposedDecision{
		Action:              action,
		WaitDays:            waitDays,
		BestMandi:           c.selectMarket(market),
		PreservationActions: c.preservationLadder(spoilage),
		NetProfitComparison: models.NetProfitComparison{
			BestMandi:  market.NetProfitBestMandi,
			LocalMandi: market.NetProfitLocal,
		},
		OverallConfidence: overallConfidence(price, harvest, spoilage),
		Explanation:       GenerateExplanation(price, spoilage, market, overallConfidence(price, harvest, spoilage)),
	}
}

// resolveAction applies the override policy in strict order: weather
// emergency, then spoilage or falling prices, then price-driven
// patience, then whatever the harvest cascade decided.
func (c *DecisionComposer) resolveAction(price *models.PriceForecast, harvest *models.HarvestDecision, spoilage *models.SpoilageAssessment, market MarketFeatures) (string, int) {
	if market.ExtremeWeather {
		return models.ActionSellImmediately, 0
	}

	spoilagePressure := spoilage.RiskLevel == models.RiskHigh || spoilage.RiskLevel == models.RiskCritical
	if price.Direction == models.DirectionFalling || spoilagePressure {
		return models.ActionSellImmediately, 0
	}

	if price.Direction == models.DirectionRising && spoilage.RiskLevel == models.RiskLow {
		// Urgent harvest is never relaxed for price reasons.
		if harvest.Action == models.ActionUrgentHarvest {
			return harvest.Action, harvest.WaitDays
		}
		if harvest.Action == models.ActionWait {
			return harvest.Action, harvest.WaitDays
		}
		return models.ActionWait, 3
	}

	return harvest.Action, harvest.WaitDays
}

// selectMarket picks the mandi to recommend. A distant best mandi whose
// transport cost eats the price premium loses to the local market.
func (c *DecisionComposer) selectMarket(market MarketFeatures) models.SelectedMarket {
	premium := (market.BestMandiPrice - market.LocalMandiPrice) * 100
	if premium < 0 {
		premium = 0
	}

	if market.EstimatedDistanceKm > 95 && market.TransportCostEstimate > premium {
		return models.SelectedMarket{
			Name: "Local Mandi",
			ExpectedPriceRange: [2]float64{
				round2(market.LocalMandiPrice * 0.98),
				round2(market.LocalMandiPrice * 1.02),
			},
		}
	}

	name := market.BestMandiName
	if name == "" {
		name = "Local Mandi"
	}
	base := market.BestMandiPrice
	if base <= 0 {
		base = market.LocalMandiPrice
	}
	return models.SelectedMarket{
		Name: name,
		ExpectedPriceRange: [2]float64{
			round2(base * 0.96),
			round2(base * 1.04),
		},
	}
}

// preservationLadder offers three cost tiers whose effectiveness scales
// with the assessed risk
func (c *DecisionComposer) preservationLadder(spoilage *models.SpoilageAssessment) []models.PreservationAction {
	risk := spoilage.SpoilagePct / 100

	return []models.PreservationAction{
		{
			Rank:              1,
			Tag:               "no_cost",
			Action:            "Sell immediately at local market",
			CostINRPerQuintal: 0,
			SavesPercent:      round1(clamp(15+30*risk, 12, 45)),
		},
		{
			Rank:              2,
			Tag:               "cold_storage",
			Action:            "Move produce to nearest cold storage facility",
			CostINRPerQuintal: 450,
			SavesPercent:      round1(clamp(72+22*risk, 70, 90)),
		},
		{
			Rank:              3,
			Tag:               "grade_and_store",
			Action:            "Sort and grade produce, store premium lots in warehouse",
			CostINRPerQuintal: 780,
			SavesPercent:      round1(clamp(84+14*risk, 82, 96)),
		},
	}
}

func overallConfidence(price *models.PriceForecast, harvest *models.HarvestDecision, spoilage *models.SpoilageAssessment) float64 {
	avg := (price.Confidence + harvest.Confidence + spoilage.Confidence) / 3
	return round2(clamp(avg, 0.5, 0.95))
}

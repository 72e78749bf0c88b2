package advisor

import (
	"fmt"

	"agri-advisor/internal/models"
)

// GenerateExplanation renders the advisory's drivers in farmer-facing
// language. Each reason is a single plain sentence with no jargon.
func GenerateExplanation(price *models.PriceForecast, spoilage *models.SpoilageAssessment, market MarketFeatures, confidence float64) models.Explanation {
	return models.Explanation{
		WeatherReason:     weatherReason(market),
		MarketReason:      marketReason(price, market),
		SupplyReason:      supplyReason(market),
		ConfidenceMessage: confidenceMessage(confidence),
	}
}

func weatherReason(market MarketFeatures) string {
	if market.RainIn3Days {
		return "Heavy rain expected in 3 days. Harvesting before the rain protects crop quality."
	}
	if market.AvgTemp > 35 {
		return "High temperatures will increase spoilage risk rapidly."
	}
	return "Weather is stable for the next 7 days. Safe window."
}

func marketReason(price *models.PriceForecast, market MarketFeatures) string {
	switch {
	case price.Direction == models.DirectionRising:
		return fmt.Sprintf("Mandi prices for %s have been rising for 7 days. Waiting may get you better rates.",
			price.Commodity)
	case price.Direction == models.DirectionFalling:
		return "Prices are dropping. Selling soon locks in better value."
	case market.ArrivalPressure == "high":
		return "Heavy arrivals are creating oversupply. Prices are under pressure."
	default:
		return "Prices are stable. Current rates are a fair reflection of the market."
	}
}

func supplyReason(market MarketFeatures) string {
	switch market.ArrivalPressure {
	case "high":
		return "High supply from nearby districts may reduce prices by 15-20%."
	case "low":
		return "Less competition in market this week. Good time to sell."
	default:
		return "Supply levels are normal for this time of year."
	}
}

func confidenceMessage(confidence float64) string {
	switch {
	case confidence > 0.75:
		return "This advice is backed by strong data from prices, weather and satellite imagery."
	case confidence > 0.55:
		return "This advice is based on reasonable data, though some sources were limited."
	default:
		return "Limited data was available. Treat this as general guidance and verify locally."
	}
}

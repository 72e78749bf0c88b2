package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"agri-advisor/internal/advisor"
	"agri-advisor/internal/models"
)

// DemoOfflineAdvisory demonstrates the advisory pipeline without a database
func main() {
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("AGRI ADVISOR - OFFLINE ADVISORY DEMONSTRATION")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()

	ctx := context.Background()
	strategy := advisor.NewOfflineAdvisor(clockwork.NewRealClock())

	fmt.Printf("Strategy capability: %s\n\n", strategy.Capability())

	scenarios := []models.AdvisoryRequest{
		{
			Commodity:        "onion",
			District:         "nashik",
			CropAgeDays:      intPtr(95),
			QuantityQuintals: 30,
			StorageType:      "open_air",
			Packaging:        "jute",
			HarvestDaysAgo:   0,
		},
		{
			Commodity:        "tomato",
			District:         "pune",
			CropAgeDays:      intPtr(70),
			QuantityQuintals: 15,
			StorageType:      "covered",
			Packaging:        "plastic_crate",
			HarvestDaysAgo:   2,
		},
		{
			Commodity:        "grape",
			District:         "sangli",
			CropAgeDays:      intPtr(40),
			QuantityQuintals: 20,
			StorageType:      "cold_storage",
			Packaging:        "corrugated",
			HarvestDaysAgo:   0,
		},
	}

	for _, req := range scenarios {
		fmt.Printf("─────────────────────────────────────────────────────────────\n")
		fmt.Printf("Scenario: %s in %s (%v quintals, %s storage)\n",
			req.Commodity, req.District, req.QuantityQuintals, req.StorageType)
		fmt.Printf("─────────────────────────────────────────────────────────────\n")

		forecast := strategy.ForecastPrice(ctx, req.Commodity, req.District, 7)
		fmt.Printf("  Price: Rs %.0f/qtl now, direction %s (confidence %.2f)\n",
			forecast.CurrentPrice, forecast.Direction, forecast.Confidence)

		spoilage := strategy.AssessSpoilage(ctx, models.SpoilageRequest{
			Commodity:      req.Commodity,
			District:       req.District,
			StorageType:    req.StorageType,
			Packaging:      req.Packaging,
			HarvestDaysAgo: req.HarvestDaysAgo,
			QuantityKg:     req.QuantityQuintals * 100,
		})
		fmt.Printf("  Spoilage: %.1f%% expected loss, risk %s, %d shelf days left\n",
			spoilage.SpoilagePct, spoilage.RiskLevel, spoilage.ShelfLifeRemainingDays)

		harvest := strategy.OptimizeHarvest(ctx, models.HarvestRequest{
			Commodity:   req.Commodity,
			District:    req.District,
			CropAgeDays: req.CropAgeDays,
		})
		fmt.Printf("  Harvest: %s (wait %d days, priority %s)\n",
			harvest.Action, harvest.WaitDays, harvest.Priority)
		fmt.Printf("           %s\n", harvest.Reasoning)

		decision := strategy.Advise(ctx, req)
		fmt.Printf("  Decision: %s, sell at %s, confidence %.2f\n",
			decision.Action, decision.BestMandi.Name, decision.OverallConfidence)
		fmt.Printf("            %s\n", decision.Explanation.MarketReason)
		fmt.Println()
	}

	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("Offline advisories are deterministic demo guidance only.")
	fmt.Println("Run the API server against the data platform for live advice.")
	fmt.Println("════════════════════════════════════════════════════════════════")
}

func intPtr(v int) *int { return &v }

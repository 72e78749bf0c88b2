package models

import (
	"testing"
)

func TestCropMetaSeedComplete(t *testing.T) {
	if len(CropMetaSeed) != 10 {
		t.Fatalf("CropMetaSeed has %d crops, want 10", len(CropMetaSeed))
	}

	seen := make(map[string]bool)
	for _, crop := range CropMetaSeed {
		if seen[crop.Crop] {
			t.Errorf("duplicate crop %q in seed", crop.Crop)
		}
		seen[crop.Crop] = true

		if crop.MaturityDaysMin <= 0 || crop.MaturityDaysMax < crop.MaturityDaysMin {
			t.Errorf("%s: invalid maturity window %d-%d", crop.Crop, crop.MaturityDaysMin, crop.MaturityDaysMax)
		}
		if crop.ShelfLifeDaysOpen <= 0 {
			t.Errorf("%s: shelf life must be positive", crop.Crop)
		}
		if crop.ShelfLifeDaysCold < crop.ShelfLifeDaysOpen {
			t.Errorf("%s: cold storage shelf life %d shorter than open %d",
				crop.Crop, crop.ShelfLifeDaysCold, crop.ShelfLifeDaysOpen)
		}
		if crop.FAOLossPct == nil || *crop.FAOLossPct <= 0 || *crop.FAOLossPct >= 100 {
			t.Errorf("%s: FAO loss percentage missing or out of range", crop.Crop)
		}
		if crop.BasePricePerQtl == nil || *crop.BasePricePerQtl <= 0 {
			t.Errorf("%s: base price missing or non-positive", crop.Crop)
		}
	}
}

func TestDefaultCropMeta(t *testing.T) {
	meta := DefaultCropMeta("dragonfruit")

	if meta.Crop != "dragonfruit" {
		t.Errorf("Crop = %q, want dragonfruit", meta.Crop)
	}
	if meta.Category != nil {
		t.Error("unknown crops must not carry a category")
	}
	if meta.ShelfLifeDaysOpen <= 0 {
		t.Error("default shelf life must be positive")
	}
}

func TestDefaultMandisContainOrigin(t *testing.T) {
	for origin, mandis := range DefaultMandis {
		if len(mandis) == 0 {
			t.Errorf("%s: empty candidate list", origin)
			continue
		}

		found := false
		for _, m := range mandis {
			if m == origin {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s: origin missing from its own candidate list", origin)
		}
	}
}

func TestTransportRouteSeedValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, route := range TransportRouteSeed {
		key := route.OriginDistrict + "->" + route.DestinationMarket
		if seen[key] {
			t.Errorf("duplicate route %s", key)
		}
		seen[key] = true

		if route.DistanceKm <= 0 {
			t.Errorf("%s: non-positive distance", key)
		}
		if route.FuelCostPerKm <= 0 {
			t.Errorf("%s: non-positive fuel cost", key)
		}
	}
}

func TestSoilProfileSeedDistrictsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, soil := range SoilProfileSeed {
		if seen[soil.District] {
			t.Errorf("duplicate soil profile for %s", soil.District)
		}
		seen[soil.District] = true

		if soil.SoilQualityIndex != nil && (*soil.SoilQualityIndex < 0 || *soil.SoilQualityIndex > 1) {
			t.Errorf("%s: soil quality index out of [0,1]", soil.District)
		}
	}
}

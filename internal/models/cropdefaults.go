package models

// Reference data recovered from FAO post-harvest loss studies and ICAR
// soil health surveys. Used for seeding and as in-process fallback when
// the crop_meta table has no row for a crop.

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

// CropMetaSeed is the baseline crop parameter set
var CropMetaSeed = []CropMeta{
	{Crop: "onion", MaturityDaysMin: 110, MaturityDaysMax: 140,
		ShelfLifeDaysOpen: 21, ShelfLifeDaysCold: 90,
		OptimalTempMin: f(0), OptimalTempMax: f(5),
		OptimalHumidityMin: f(65), OptimalHumidityMax: f(70),
		FAOLossPct: f(15.2), BasePricePerQtl: f(2100), Category: s("vegetable")},
	{Crop: "tomato", MaturityDaysMin: 80, MaturityDaysMax: 110,
		ShelfLifeDaysOpen: 7, ShelfLifeDaysCold: 28,
		OptimalTempMin: f(10), OptimalTempMax: f(15),
		OptimalHumidityMin: f(85), OptimalHumidityMax: f(95),
		FAOLossPct: f(25.3), BasePricePerQtl: f(1800), Category: s("vegetable")},
	{Crop: "wheat", MaturityDaysMin: 110, MaturityDaysMax: 130,
		ShelfLifeDaysOpen: 180, ShelfLifeDaysCold: 365,
		OptimalTempMin: f(10), OptimalTempMax: f(20),
		OptimalHumidityMin: f(12), OptimalHumidityMax: f(14),
		FAOLossPct: f(6.8), BasePricePerQtl: f(2650), Category: s("cereal")},
	{Crop: "rice", MaturityDaysMin: 120, MaturityDaysMax: 150,
		ShelfLifeDaysOpen: 180, ShelfLifeDaysCold: 365,
		OptimalTempMin: f(10), OptimalTempMax: f(20),
		OptimalHumidityMin: f(12), OptimalHumidityMax: f(14),
		FAOLossPct: f(8.1), BasePricePerQtl: f(3100), Category: s("cereal")},
	{Crop: "potato", MaturityDaysMin: 75, MaturityDaysMax: 120,
		ShelfLifeDaysOpen: 14, ShelfLifeDaysCold: 120,
		OptimalTempMin: f(4), OptimalTempMax: f(8),
		OptimalHumidityMin: f(90), OptimalHumidityMax: f(95),
		FAOLossPct: f(18.6), BasePricePerQtl: f(1600), Category: s("vegetable")},
	{Crop: "soybean", MaturityDaysMin: 90, MaturityDaysMax: 120,
		ShelfLifeDaysOpen: 150, ShelfLifeDaysCold: 365,
		OptimalTempMin: f(10), OptimalTempMax: f(15),
		OptimalHumidityMin: f(10), OptimalHumidityMax: f(14),
		FAOLossPct: f(7.2), BasePricePerQtl: f(5200), Category: s("oilseed")},
	{Crop: "cotton", MaturityDaysMin: 150, MaturityDaysMax: 180,
		ShelfLifeDaysOpen: 365, ShelfLifeDaysCold: 365,
		OptimalTempMin: f(15), OptimalTempMax: f(25),
		OptimalHumidityMin: f(40), OptimalHumidityMax: f(55),
		FAOLossPct: f(4.5), BasePricePerQtl: f(6800), Category: s("fiber")},
	{Crop: "grape", MaturityDaysMin: 120, MaturityDaysMax: 150,
		ShelfLifeDaysOpen: 3, ShelfLifeDaysCold: 21,
		OptimalTempMin: f(0), OptimalTempMax: f(2),
		OptimalHumidityMin: f(90), OptimalHumidityMax: f(95),
		FAOLossPct: f(22.0), BasePricePerQtl: f(4500), Category: s("fruit")},
	{Crop: "sugarcane", MaturityDaysMin: 270, MaturityDaysMax: 365,
		ShelfLifeDaysOpen: 3, ShelfLifeDaysCold: 14,
		OptimalTempMin: f(5), OptimalTempMax: f(10),
		OptimalHumidityMin: f(80), OptimalHumidityMax: f(90),
		FAOLossPct: f(12.0), BasePricePerQtl: f(310), Category: s("cash_crop")},
	{Crop: "banana", MaturityDaysMin: 270, MaturityDaysMax: 365,
		ShelfLifeDaysOpen: 5, ShelfLifeDaysCold: 21,
		OptimalTempMin: f(13), OptimalTempMax: f(15),
		OptimalHumidityMin: f(85), OptimalHumidityMax: f(95),
		FAOLossPct: f(20.0), BasePricePerQtl: f(2200), Category: s("fruit")},
}

// DefaultCropMeta returns conservative parameters for an unknown crop
func DefaultCropMeta(crop string) CropMeta {
	return CropMeta{
		Crop:               crop,
		MaturityDaysMin:    60,
		MaturityDaysMax:    90,
		ShelfLifeDaysOpen:  7,
		ShelfLifeDaysCold:  28,
		OptimalTempMin:     f(10),
		OptimalTempMax:     f(25),
		OptimalHumidityMin: f(60),
		OptimalHumidityMax: f(80),
		FAOLossPct:         f(15.0),
		BasePricePerQtl:    f(2000),
		Category:           nil,
	}
}

// DefaultMandis maps an origin district to its usual candidate markets
var DefaultMandis = map[string][]string{
	"nashik":     {"nashik", "pune", "mumbai"},
	"pune":       {"pune", "mumbai", "solapur"},
	"nagpur":     {"nagpur", "amravati", "akola"},
	"ahmednagar": {"ahmednagar", "pune", "nashik"},
	"solapur":    {"solapur", "pune", "kolhapur"},
	"kolhapur":   {"kolhapur", "pune", "sangli"},
	"aurangabad": {"aurangabad", "nashik", "pune"},
	"jalgaon":    {"jalgaon", "nashik", "nagpur"},
	"amravati":   {"amravati", "nagpur", "akola"},
	"sangli":     {"sangli", "kolhapur", "pune"},
}

// SoilProfileSeed holds ICAR district-average soil health values (Maharashtra)
var SoilProfileSeed = []SoilProfile{
	{District: "nashik", State: "Maharashtra", SoilType: s("Medium Black"),
		PH: f(7.8), OrganicCarbonPct: f(0.52), NitrogenKgHa: f(210),
		PhosphorusKgHa: f(18.5), PotassiumKgHa: f(320), SoilQualityIndex: f(0.61)},
	{District: "pune", State: "Maharashtra", SoilType: s("Laterite"),
		PH: f(6.5), OrganicCarbonPct: f(0.65), NitrogenKgHa: f(245),
		PhosphorusKgHa: f(22.0), PotassiumKgHa: f(280), SoilQualityIndex: f(0.68)},
	{District: "nagpur", State: "Maharashtra", SoilType: s("Deep Black"),
		PH: f(8.1), OrganicCarbonPct: f(0.48), NitrogenKgHa: f(195),
		PhosphorusKgHa: f(15.0), PotassiumKgHa: f(380), SoilQualityIndex: f(0.58)},
	{District: "aurangabad", State: "Maharashtra", SoilType: s("Medium Black"),
		PH: f(7.9), OrganicCarbonPct: f(0.42), NitrogenKgHa: f(180),
		PhosphorusKgHa: f(14.0), PotassiumKgHa: f(290), SoilQualityIndex: f(0.52)},
	{District: "solapur", State: "Maharashtra", SoilType: s("Shallow Black"),
		PH: f(8.3), OrganicCarbonPct: f(0.38), NitrogenKgHa: f(165),
		PhosphorusKgHa: f(12.0), PotassiumKgHa: f(340), SoilQualityIndex: f(0.45)},
	{District: "kolhapur", State: "Maharashtra", SoilType: s("Laterite"),
		PH: f(6.2), OrganicCarbonPct: f(0.72), NitrogenKgHa: f(260),
		PhosphorusKgHa: f(25.0), PotassiumKgHa: f(310), SoilQualityIndex: f(0.72)},
	{District: "amravati", State: "Maharashtra", SoilType: s("Medium Black"),
		PH: f(7.6), OrganicCarbonPct: f(0.45), NitrogenKgHa: f(190),
		PhosphorusKgHa: f(16.0), PotassiumKgHa: f(350), SoilQualityIndex: f(0.55)},
	{District: "jalgaon", State: "Maharashtra", SoilType: s("Deep Black"),
		PH: f(8.0), OrganicCarbonPct: f(0.50), NitrogenKgHa: f(200),
		PhosphorusKgHa: f(17.0), PotassiumKgHa: f(360), SoilQualityIndex: f(0.57)},
	{District: "sangli", State: "Maharashtra", SoilType: s("Medium Black"),
		PH: f(7.5), OrganicCarbonPct: f(0.55), NitrogenKgHa: f(220),
		PhosphorusKgHa: f(20.0), PotassiumKgHa: f(300), SoilQualityIndex: f(0.63)},
	{District: "ahmednagar", State: "Maharashtra", SoilType: s("Shallow Black"),
		PH: f(8.2), OrganicCarbonPct: f(0.40), NitrogenKgHa: f(175),
		PhosphorusKgHa: f(13.0), PotassiumKgHa: f(330), SoilQualityIndex: f(0.48)},
}

// TransportRouteSeed holds pre-computed routes from key districts to major mandis
var TransportRouteSeed = []TransportRoute{
	{OriginDistrict: "nashik", DestinationMarket: "nashik", DistanceKm: 12, EstimatedTimeHours: f(0.5), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "nashik", DestinationMarket: "lasalgaon", DistanceKm: 35, EstimatedTimeHours: f(1.0), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "nashik", DestinationMarket: "pimpalgaon", DistanceKm: 28, EstimatedTimeHours: f(0.8), RoadQuality: s("moderate"), FuelCostPerKm: 6.5},
	{OriginDistrict: "nashik", DestinationMarket: "mumbai", DistanceKm: 168, EstimatedTimeHours: f(4.5), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "nashik", DestinationMarket: "pune", DistanceKm: 212, EstimatedTimeHours: f(5.0), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "pune", DestinationMarket: "pune", DistanceKm: 8, EstimatedTimeHours: f(0.4), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "pune", DestinationMarket: "mumbai", DistanceKm: 150, EstimatedTimeHours: f(3.5), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "pune", DestinationMarket: "solapur", DistanceKm: 252, EstimatedTimeHours: f(5.5), RoadQuality: s("moderate"), FuelCostPerKm: 6.5},
	{OriginDistrict: "nagpur", DestinationMarket: "nagpur", DistanceKm: 10, EstimatedTimeHours: f(0.4), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "nagpur", DestinationMarket: "amravati", DistanceKm: 155, EstimatedTimeHours: f(3.5), RoadQuality: s("moderate"), FuelCostPerKm: 6.5},
	{OriginDistrict: "nagpur", DestinationMarket: "akola", DistanceKm: 250, EstimatedTimeHours: f(5.0), RoadQuality: s("moderate"), FuelCostPerKm: 6.5},
	{OriginDistrict: "aurangabad", DestinationMarket: "aurangabad", DistanceKm: 8, EstimatedTimeHours: f(0.3), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "aurangabad", DestinationMarket: "pune", DistanceKm: 235, EstimatedTimeHours: f(5.0), RoadQuality: s("moderate"), FuelCostPerKm: 6.5},
	{OriginDistrict: "solapur", DestinationMarket: "solapur", DistanceKm: 6, EstimatedTimeHours: f(0.3), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "solapur", DestinationMarket: "pune", DistanceKm: 252, EstimatedTimeHours: f(5.5), RoadQuality: s("moderate"), FuelCostPerKm: 6.5},
	{OriginDistrict: "kolhapur", DestinationMarket: "kolhapur", DistanceKm: 5, EstimatedTimeHours: f(0.2), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "kolhapur", DestinationMarket: "pune", DistanceKm: 230, EstimatedTimeHours: f(5.0), RoadQuality: s("moderate"), FuelCostPerKm: 6.5},
	{OriginDistrict: "amravati", DestinationMarket: "amravati", DistanceKm: 8, EstimatedTimeHours: f(0.3), RoadQuality: s("good"), FuelCostPerKm: 6.5},
	{OriginDistrict: "amravati", DestinationMarket: "nagpur", DistanceKm: 155, EstimatedTimeHours: f(3.5), RoadQuality: s("moderate"), FuelCostPerKm: 6.5},
}

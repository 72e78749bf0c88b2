package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-advisor/internal/advisor"
	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// One collector for the whole test binary: promauto registers against
// the default registry and re-registration panics.
var testMetrics = metrics.NewCollector("services_test")

var testLogger = logging.NewStructuredLogger("services-test", "0.0.0", logging.ErrorLevel)

// fakeDataAccess returns canned data and captures audit writes.
type fakeDataAccess struct {
	prices  []*models.MandiPrice
	weather []*models.WeatherRecord
	logged  []*models.PredictionLog
}

func (f *fakeDataAccess) QueryPriceHistory(ctx context.Context, commodity, district string, since time.Time) ([]*models.MandiPrice, error) {
	var out []*models.MandiPrice
	for _, p := range f.prices {
		if !p.ArrivalDate.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDataAccess) QueryPriceHistoryAllDistricts(ctx context.Context, commodity string, since time.Time) ([]*models.MandiPrice, error) {
	return nil, nil
}

func (f *fakeDataAccess) QueryWeatherHistory(ctx context.Context, district string, since time.Time) ([]*models.WeatherRecord, error) {
	return f.weather, nil
}

func (f *fakeDataAccess) QueryNDVIHistory(ctx context.Context, district string, limit int) ([]*models.NDVIRecord, error) {
	return nil, nil
}

func (f *fakeDataAccess) QuerySoilProfile(ctx context.Context, district string) (*models.SoilProfile, error) {
	return nil, &repository.NotFoundError{Resource: "soil_profile", ID: district}
}

func (f *fakeDataAccess) QueryTransportRoute(ctx context.Context, origin, destination string) (*models.TransportRoute, error) {
	return nil, &repository.NotFoundError{Resource: "transport_route", ID: origin + "-" + destination}
}

func (f *fakeDataAccess) QueryCropMeta(ctx context.Context, crop string) (*models.CropMeta, error) {
	return nil, &repository.NotFoundError{Resource: "crop_meta", ID: crop}
}

func (f *fakeDataAccess) LogPrediction(ctx context.Context, entry *models.PredictionLog) error {
	f.logged = append(f.logged, entry)
	return nil
}

func (f *fakeDataAccess) HealthCheck(ctx context.Context) error { return nil }

type fakeModelStore struct{}

func (fakeModelStore) Load(ctx context.Context, commodity string) (*repository.StoredModel, error) {
	return nil, &repository.NotFoundError{Resource: "price_model", ID: commodity}
}

func (fakeModelStore) Save(ctx context.Context, model *repository.StoredModel) error { return nil }

func (fakeModelStore) ListCommodities(ctx context.Context) ([]string, error) { return nil, nil }

func newTestService(data *fakeDataAccess, now time.Time) *AdvisoryService {
	clock := clockwork.NewFakeClockAt(now)
	forecaster := advisor.NewForecaster(data, fakeModelStore{}, testLogger, testMetrics, clock, advisor.ForecasterTuning{})
	spoilage := advisor.NewSpoilageEngine(data, testLogger, testMetrics, clock)
	harvest := advisor.NewHarvestOptimizer(data, testLogger, testMetrics, clock)
	mandi := advisor.NewRecommendationEngine(forecaster, spoilage, data, testLogger, testMetrics, clock)
	return NewAdvisoryService(forecaster, spoilage, harvest, mandi, data, testLogger, testMetrics, clock)
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

// weatherWeek builds seven daily records ending the day before now.
func weatherWeek(now time.Time, tempAvg, tempMax, humidity, dailyRainMm float64) []*models.WeatherRecord {
	records := make([]*models.WeatherRecord, 0, 7)
	for i := 7; i >= 1; i-- {
		records = append(records, &models.WeatherRecord{
			District:   "nashik",
			RecordDate: now.AddDate(0, 0, -i),
			TempAvg:    fp(tempAvg),
			TempMax:    fp(tempMax),
			Humidity:   fp(humidity),
			RainfallMm: fp(dailyRainMm),
		})
	}
	return records
}

func arrivalSeries(now time.Time, arrivals []float64) []*models.MandiPrice {
	prices := make([]*models.MandiPrice, 0, len(arrivals))
	for i, qty := range arrivals {
		prices = append(prices, &models.MandiPrice{
			Commodity:        "onion",
			District:         "nashik",
			Market:           "nashik",
			ArrivalDate:      now.AddDate(0, 0, i-len(arrivals)),
			ModalPrice:       1500,
			ArrivalQtyTonnes: fp(qty),
		})
	}
	return prices
}

func TestMarketFeaturesDeriveWeatherAlerts(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &fakeDataAccess{
		weather: weatherWeek(now, 38, 41, 60, 5),
	}
	svc := newTestService(data, now)

	features := svc.marketFeatures(context.Background(), "onion", "nashik",
		&models.PriceForecast{CurrentPrice: 1500}, &models.MarketRanking{})

	assert.True(t, features.ExtremeWeather, "38C average crosses the heat threshold")
	assert.True(t, features.RainIn3Days, "15mm over the last three days crosses the rain threshold")
	assert.InDelta(t, 38.0, features.AvgTemp, 0.001)
}

func TestMarketFeaturesMildWeatherNoAlerts(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &fakeDataAccess{
		weather: weatherWeek(now, 28, 33, 55, 1),
	}
	svc := newTestService(data, now)

	features := svc.marketFeatures(context.Background(), "onion", "nashik",
		&models.PriceForecast{CurrentPrice: 1500}, &models.MarketRanking{})

	assert.False(t, features.ExtremeWeather)
	assert.False(t, features.RainIn3Days)
	assert.Equal(t, "normal", features.ArrivalPressure)
}

func TestMarketFeaturesArrivalPressure(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	high := &fakeDataAccess{prices: arrivalSeries(now, []float64{100, 100, 100, 200})}
	assert.Equal(t, "high", newTestService(high, now).arrivalPressure(context.Background(), "onion", "nashik"))

	low := &fakeDataAccess{prices: arrivalSeries(now, []float64{100, 100, 100, 50})}
	assert.Equal(t, "low", newTestService(low, now).arrivalPressure(context.Background(), "onion", "nashik"))

	empty := &fakeDataAccess{}
	assert.Equal(t, "normal", newTestService(empty, now).arrivalPressure(context.Background(), "onion", "nashik"))
}

func TestAdviseExtremeWeatherForcesImmediateSale(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &fakeDataAccess{
		weather: weatherWeek(now, 38, 42, 88, 0),
	}
	svc := newTestService(data, now)

	decision := svc.Advise(context.Background(), models.AdvisoryRequest{
		Commodity:        "onion",
		District:         "nashik",
		CropAgeDays:      ip(120),
		QuantityQuintals: 10,
		StorageType:      "covered",
		Packaging:        "jute",
	})

	require.NotNil(t, decision)
	assert.Equal(t, models.ActionSellImmediately, decision.Action)
	assert.Equal(t, 0, decision.WaitDays)
}

func TestAuditRecordsModelVersion(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	data := &fakeDataAccess{}
	svc := newTestService(data, now)

	forecast := svc.ForecastPrice(context.Background(), "onion", "nashik", 7)

	require.Len(t, data.logged, 1)
	entry := data.logged[0]
	assert.Equal(t, "price_forecast", entry.PredictionType)
	assert.Equal(t, "onion", entry.Crop)
	assert.Equal(t, forecast.ModelVersion, entry.ModelVersion)
	assert.NotEmpty(t, entry.ModelVersion)
	assert.NotEmpty(t, entry.InputParams)
	assert.NotEmpty(t, entry.OutputResult)
}

package advisor

import (
	"context"
	"time"

	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// One collector for the whole test binary: promauto registers against
// the default registry and re-registration panics.
var testMetrics = metrics.NewCollector("advisor_test")

var testLogger = logging.NewStructuredLogger("advisor-test", "0.0.0", logging.ErrorLevel)

// stubDataAccess returns canned data per district/commodity. A nil
// slice means the query reports no rows.
type stubDataAccess struct {
	prices       []*models.MandiPrice
	allPrices    []*models.MandiPrice
	weather      []*models.WeatherRecord
	ndvi         []*models.NDVIRecord
	soil         *models.SoilProfile
	route        *models.TransportRoute
	cropMeta     *models.CropMeta
	priceErr     error
	loggedCount  int
}

func (s *stubDataAccess) QueryPriceHistory(ctx context.Context, commodity, district string, since time.Time) ([]*models.MandiPrice, error) {
	if s.priceErr != nil {
		return nil, s.priceErr
	}
	var out []*models.MandiPrice
	for _, p := range s.prices {
		if !p.ArrivalDate.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubDataAccess) QueryPriceHistoryAllDistricts(ctx context.Context, commodity string, since time.Time) ([]*models.MandiPrice, error) {
	return s.allPrices, nil
}

func (s *stubDataAccess) QueryWeatherHistory(ctx context.Context, district string, since time.Time) ([]*models.WeatherRecord, error) {
	return s.weather, nil
}

func (s *stubDataAccess) QueryNDVIHistory(ctx context.Context, district string, limit int) ([]*models.NDVIRecord, error) {
	if len(s.ndvi) > limit {
		return s.ndvi[:limit], nil
	}
	return s.ndvi, nil
}

func (s *stubDataAccess) QuerySoilProfile(ctx context.Context, district string) (*models.SoilProfile, error) {
	if s.soil == nil {
		return nil, &repository.NotFoundError{Resource: "soil_profile", ID: district}
	}
	return s.soil, nil
}

func (s *stubDataAccess) QueryTransportRoute(ctx context.Context, origin, destination string) (*models.TransportRoute, error) {
	if s.route == nil {
		return nil, &repository.NotFoundError{Resource: "transport_route", ID: origin + "-" + destination}
	}
	return s.route, nil
}

func (s *stubDataAccess) QueryCropMeta(ctx context.Context, crop string) (*models.CropMeta, error) {
	if s.cropMeta == nil {
		return nil, &repository.NotFoundError{Resource: "crop_meta", ID: crop}
	}
	return s.cropMeta, nil
}

func (s *stubDataAccess) LogPrediction(ctx context.Context, entry *models.PredictionLog) error {
	s.loggedCount++
	return nil
}

func (s *stubDataAccess) HealthCheck(ctx context.Context) error { return nil }

// stubModelStore keeps models in memory.
type stubModelStore struct {
	saved map[string]*repository.StoredModel
}

func newStubModelStore() *stubModelStore {
	return &stubModelStore{saved: make(map[string]*repository.StoredModel)}
}

func (s *stubModelStore) Load(ctx context.Context, commodity string) (*repository.StoredModel, error) {
	m, ok := s.saved[commodity]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "price_model", ID: commodity}
	}
	return m, nil
}

func (s *stubModelStore) Save(ctx context.Context, model *repository.StoredModel) error {
	s.saved[model.Commodity] = model
	return nil
}

func (s *stubModelStore) ListCommodities(ctx context.Context) ([]string, error) {
	var out []string
	for c := range s.saved {
		out = append(out, c)
	}
	return out, nil
}

// priceSeries builds a daily ascending price history ending the day
// before ref.
func priceSeries(commodity, district string, ref time.Time, days int, priceAt func(i int) float64) []*models.MandiPrice {
	series := make([]*models.MandiPrice, 0, days)
	arrival := 50.0
	for i := 0; i < days; i++ {
		date := ref.AddDate(0, 0, i-days)
		series = append(series, &models.MandiPrice{
			Commodity:        commodity,
			State:            "maharashtra",
			District:         district,
			Market:           district,
			ArrivalDate:      date,
			ModalPrice:       priceAt(i),
			ArrivalQtyTonnes: &arrival,
		})
	}
	return series
}

func fp(v float64) *float64 { return &v }

func ip(v int) *int { return &v }

package advisor

import (
	"math"
	"sort"
	"time"

	"agri-advisor/internal/models"
)

// Feature vector layout, 17 dimensions per row:
//
//	[0]  price_lag_1        yesterday's modal price
//	[1]  price_lag_7
//	[2]  price_lag_14
//	[3]  price_lag_30
//	[4]  ma_7               7-day moving average
//	[5]  ma_14
//	[6]  ma_21
//	[7]  price_momentum     (ma_7 - ma_21) / ma_21
//	[8]  price_volatility   std(last 7) / mean(last 7)
//	[9]  arrival_qty        daily arrival quantity
//	[10] arrival_ma_7       7-day average arrivals
//	[11] month_sin          seasonality
//	[12] month_cos
//	[13] day_of_week        0-6
//	[14] avg_temp
//	[15] rainfall_7d
//	[16] humidity
const featureCount = 17

// featureWindow is the preceding history a row needs before it can be
// featurized; rows earlier than this are consumed as lags only.
const featureWindow = 30

// buildTrainingSet turns price history plus weather into a feature matrix
// and a target vector. Returns empty slices when history is too short to
// produce a single row.
func buildTrainingSet(prices []*models.MandiPrice, weather []*models.WeatherRecord) ([][]float64, []float64) {
	if len(prices) < featureWindow+5 {
		return nil, nil
	}

	sorted := make([]*models.MandiPrice, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].ArrivalDate.Before(sorted[b].ArrivalDate)
	})

	weatherByDate := make(map[string]*models.WeatherRecord, len(weather))
	for _, w := range weather {
		weatherByDate[w.RecordDate.Format("2006-01-02")] = w
	}

	modal := make([]float64, len(sorted))
	arrivals := make([]float64, len(sorted))
	for i, p := range sorted {
		modal[i] = p.ModalPrice
		if p.ArrivalQtyTonnes != nil {
			arrivals[i] = *p.ArrivalQtyTonnes
		}
	}

	var x [][]float64
	var y []float64

	for i := featureWindow; i < len(sorted); i++ {
		row := sorted[i]

		w := weatherByDate[row.ArrivalDate.Format("2006-01-02")]
		avgTemp, rainfall, humidity := weatherDefaults(w)

		vec := featureVector(
			modal[:i], arrivals[:i], row.ArrivalDate,
			avgTemp, rainfall, humidity,
		)

		x = append(x, vec)
		y = append(y, row.ModalPrice)
	}

	return x, y
}

// featureVector builds one 17-dim row from the price history strictly
// preceding the target date. Lags fall back to the oldest price when
// history is shorter than the lag.
func featureVector(prices, arrivals []float64, targetDate time.Time, avgTemp, rainfall, humidity float64) []float64 {
	n := len(prices)

	lagOr := func(lag int) float64 {
		if n >= lag {
			return prices[n-lag]
		}
		return prices[0]
	}

	lag1 := lagOr(1)
	lag7 := lagOr(7)
	lag14 := lagOr(14)
	lag30 := lagOr(30)

	ma7 := tailMean(prices, 7)
	ma14 := tailMean(prices, 14)
	ma21 := tailMean(prices, 21)

	momentum := 0.0
	if ma21 > 0 {
		momentum = (ma7 - ma21) / ma21
	}

	volatility := 0.0
	if ma7 > 0 {
		volatility = tailStd(prices, 7, ma7) / ma7
	}

	arrivalMa7 := tailMean(arrivals, 7)
	arrival := 0.0
	if len(arrivals) > 0 {
		arrival = arrivals[len(arrivals)-1]
	}

	month := float64(targetDate.Month())
	monthSin := math.Sin(2 * math.Pi * month / 12)
	monthCos := math.Cos(2 * math.Pi * month / 12)
	dow := float64((int(targetDate.Weekday()) + 6) % 7) // Monday = 0

	return []float64{
		lag1, lag7, lag14, lag30,
		ma7, ma14, ma21,
		momentum, volatility,
		arrival, arrivalMa7,
		monthSin, monthCos, dow,
		avgTemp, rainfall, humidity,
	}
}

// weatherDefaults extracts the weather features, substituting typical
// regional values when a field or the whole record is missing
func weatherDefaults(w *models.WeatherRecord) (avgTemp, rainfall, humidity float64) {
	avgTemp, rainfall, humidity = 30.0, 0.0, 60.0
	if w == nil {
		return
	}
	if w.TempAvg != nil {
		avgTemp = *w.TempAvg
	}
	if w.RainfallMm != nil {
		rainfall = *w.RainfallMm
	}
	if w.Humidity != nil {
		humidity = *w.Humidity
	}
	return
}

// expandingSplits yields chronological train/test index boundaries:
// fold k trains on [0, testSize*(k+1)) and tests on the next testSize rows.
// Never shuffles.
type cvSplit struct {
	trainEnd  int
	testStart int
	testEnd   int
}

func expandingSplits(n, folds int) []cvSplit {
	testSize := n / (folds + 1)
	if testSize < 1 {
		return nil
	}

	splits := make([]cvSplit, 0, folds)
	for k := 0; k < folds; k++ {
		trainEnd := testSize * (k + 1)
		testEnd := trainEnd + testSize
		if k == folds-1 {
			testEnd = n
		}
		splits = append(splits, cvSplit{
			trainEnd:  trainEnd,
			testStart: trainEnd,
			testEnd:   testEnd,
		})
	}
	return splits
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

func meanAbsolutePctError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		denom := math.Abs(actual[i])
		if denom < 1e-9 {
			denom = 1e-9
		}
		sum += math.Abs(actual[i]-predicted[i]) / denom
	}
	return sum / float64(len(actual))
}

// tailMean averages the last k values, or all of them when fewer exist
func tailMean(values []float64, k int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < k {
		k = len(values)
	}
	return mean(values[len(values)-k:])
}

// tailStd is the population standard deviation of the last k values around
// a supplied center
func tailStd(values []float64, k int, center float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < k {
		k = len(values)
	}
	window := values[len(values)-k:]
	var sq float64
	for _, v := range window {
		d := v - center
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(window)))
}

package advisor

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticRegression(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a := float64(i % 13)
		b := float64((i * 7) % 29)
		x[i] = []float64{a, b, float64(i % 5)}
		y[i] = 3*a - 2*b + 10
	}
	return x, y
}

func TestTrainGBTDeterministic(t *testing.T) {
	x, y := syntheticRegression(200)
	params := DefaultGBTParams()

	m1 := TrainGBT(x, y, params)
	m2 := TrainGBT(x, y, params)

	for i := range x {
		assert.Equal(t, m1.Predict(x[i]), m2.Predict(x[i]),
			"same seed must produce identical predictions")
	}
}

func TestTrainGBTFitsSignal(t *testing.T) {
	x, y := syntheticRegression(300)
	model := TrainGBT(x, y, DefaultGBTParams())

	var absErr float64
	for i := range x {
		absErr += math.Abs(model.Predict(x[i]) - y[i])
	}
	mae := absErr / float64(len(x))

	// The target is a noiseless linear function of the features, so
	// training error should be far below the target's spread.
	assert.Less(t, mae, stddev(y)/4)
}

func TestGBTModelJSONRoundTrip(t *testing.T) {
	x, y := syntheticRegression(120)
	model := TrainGBT(x, y, DefaultGBTParams())

	payload, err := json.Marshal(model)
	require.NoError(t, err)

	var restored GBTModel
	require.NoError(t, json.Unmarshal(payload, &restored))

	for i := 0; i < 10; i++ {
		assert.InDelta(t, model.Predict(x[i]), restored.Predict(x[i]), 1e-12)
	}
}

func TestGBTConstantTarget(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}, {9}, {10}, {11}, {12}}
	y := make([]float64, len(x))
	for i := range y {
		y[i] = 42
	}

	model := TrainGBT(x, y, DefaultGBTParams())
	assert.InDelta(t, 42, model.Predict([]float64{6}), 1e-9)
}

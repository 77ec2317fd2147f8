package phase

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoherenceTime(t *testing.T) {
	series := &LockSeries{
		Times:  []float64{0.5, 0.75, 1.0, 1.25},
		Values: []float64{0.2, 0.6, 0.5, 0.9},
	}

	tests := []struct {
		threshold float64
		want      float64
	}{
		{0.0, 1.0},
		{0.5, 0.75},
		{0.6, 0.5},
		{0.95, 0.0},
	}
	for _, tt := range tests {
		got, err := CoherenceTime(series, tt.threshold)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "threshold %g", tt.threshold)
	}
}

func TestCoherenceTimeMonotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 9))
	series := &LockSeries{}
	for k := range 200 {
		series.Times = append(series.Times, 0.5+0.25*float64(k))
		series.Values = append(series.Values, rng.Float64())
	}

	prev, err := CoherenceTime(series, 0)
	require.NoError(t, err)
	for th := 0.05; th <= 1.0; th += 0.05 {
		got, err := CoherenceTime(series, th)
		require.NoError(t, err)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
}

func TestCoherenceTimeShortSeries(t *testing.T) {
	got, err := CoherenceTime(&LockSeries{}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = CoherenceTime(nil, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = CoherenceTime(&LockSeries{Times: []float64{1}, Values: []float64{0.9}}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestCoherenceTimeInvalid(t *testing.T) {
	series := &LockSeries{Times: []float64{0, 1}, Values: []float64{0.9, 0.9}}
	for _, th := range []float64{-0.1, 1.1} {
		_, err := CoherenceTime(series, th)
		assert.True(t, errors.Is(err, common.ErrInvalidParameter))
	}

	_, err := CoherenceTime(&LockSeries{Times: []float64{0, 1}, Values: []float64{0.9}}, 0.5)
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))
}

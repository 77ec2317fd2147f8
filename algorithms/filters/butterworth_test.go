package filters

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButterworthBandpassResponse(t *testing.T) {
	bp, err := NewButterworthBandpass(4, 30, 50, 1000)
	require.NoError(t, err)
	assert.Equal(t, 8, bp.Order())
	assert.Len(t, bp.Sections(), 4)

	centre := math.Sqrt(30 * 50)
	mag, _ := bp.FrequencyResponse(centre)
	assert.InDelta(t, 1.0, mag, 1e-6)

	// Butterworth edges sit at -3 dB
	lo, _ := bp.FrequencyResponse(30)
	hi, _ := bp.FrequencyResponse(50)
	assert.InDelta(t, math.Sqrt(0.5), lo, 1e-3)
	assert.InDelta(t, math.Sqrt(0.5), hi, 1e-3)

	far, _ := bp.FrequencyResponse(200)
	assert.Less(t, far, 1e-3)
	dc, _ := bp.FrequencyResponse(0)
	assert.Less(t, dc, 1e-9)
}

func TestButterworthBandpassNarrowBand(t *testing.T) {
	bp, err := NewButterworthBandpass(4, 41.5, 42.5, 1000)
	require.NoError(t, err)

	mag, _ := bp.FrequencyResponse(math.Sqrt(41.5 * 42.5))
	assert.InDelta(t, 1.0, mag, 1e-6)

	for _, s := range bp.Sections() {
		// stable: conjugate pole radius below one
		assert.Less(t, s.A2, 1.0)
	}
	assert.Greater(t, bp.SettlingSamples(), 100)
}

func TestButterworthBandpassInvalid(t *testing.T) {
	cases := []struct {
		name          string
		order         int
		low, high, fs float64
	}{
		{name: "zero order", order: 0, low: 10, high: 20, fs: 100},
		{name: "no sample rate", order: 2, low: 10, high: 20, fs: 0},
		{name: "inverted band", order: 2, low: 20, high: 10, fs: 100},
		{name: "above nyquist", order: 2, low: 10, high: 60, fs: 100},
		{name: "zero low edge", order: 2, low: 0, high: 20, fs: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewButterworthBandpass(tc.order, tc.low, tc.high, tc.fs)
			assert.True(t, errors.Is(err, common.ErrInvalidParameter))
		})
	}
}

func TestFiltFiltZeroPhase(t *testing.T) {
	fs := 1000.0
	n := 4000
	in := make([]float64, n)
	for i := range in {
		ti := float64(i) / fs
		in[i] = math.Sin(2*math.Pi*40*ti+0.4) + math.Sin(2*math.Pi*200*ti)
	}

	out, err := BandpassZeroPhase(in, fs, 30, 50, 4)
	require.NoError(t, err)
	require.Len(t, out, n)

	// away from the edges the 40 Hz component passes with no phase shift and
	// the 200 Hz component is gone
	for i := 1000; i < 3000; i += 7 {
		ti := float64(i) / fs
		want := math.Sin(2*math.Pi*40*ti + 0.4)
		assert.InDelta(t, want, out[i], 2e-2, "sample %d", i)
	}
}

func TestFiltFiltShortInput(t *testing.T) {
	bp, err := NewButterworthBandpass(2, 10, 20, 100)
	require.NoError(t, err)

	_, err = bp.FiltFilt([]float64{1})
	assert.True(t, errors.Is(err, common.ErrInsufficientData))

	out, err := bp.FiltFilt([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestBandpassZeroPhaseClampsEdges(t *testing.T) {
	x := make([]float64, 512)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.3)
	}
	// negative low edge and high edge past Nyquist are clamped instead of rejected
	out, err := BandpassZeroPhase(x, 100, -1, 80, 2)
	require.NoError(t, err)
	assert.True(t, common.IsFinite(out))
}

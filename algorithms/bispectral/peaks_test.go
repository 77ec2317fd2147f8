package bispectral

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFindPeak(t *testing.T) {
	b2 := mat.NewDense(3, 3, []float64{
		0.1, 0.2, 0.0,
		0.3, 0.9, 0.0,
		0.4, 0.0, 0.0,
	})
	freqs := []float64{0, 10, 20}

	peak, err := FindPeak(b2, freqs)
	require.NoError(t, err)
	assert.Equal(t, Peak{F1: 10, F2: 10, B2: 0.9, I: 1, J: 1}, peak)
}

func TestFindPeakFirstOccurrenceWins(t *testing.T) {
	b2 := mat.NewDense(3, 3, []float64{
		0.1, 0.5, 0.0,
		0.5, 0.2, 0.0,
		0.0, 0.0, 0.5,
	})
	peak, err := FindPeak(b2, []float64{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0, peak.I)
	assert.Equal(t, 1, peak.J)
}

func TestFindPeakWithoutRawRows(t *testing.T) {
	b2 := mat.NewDense(2, 2, []float64{0.1, 0.2, 0.7, 0.3})
	// a transpose does not expose raw rows
	peak, err := FindPeak(b2.T(), []float64{0, 5})
	require.NoError(t, err)
	assert.Equal(t, 0, peak.I)
	assert.Equal(t, 1, peak.J)
	assert.Equal(t, 0.7, peak.B2)
}

func TestFindPeakErrors(t *testing.T) {
	_, err := FindPeak(nil, nil)
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))

	_, err = FindPeak(mat.NewDense(2, 2, nil), []float64{0})
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))
}

func TestDominantFrequencies(t *testing.T) {
	fs := 1000.0
	n := 1000
	x := make([]float64, n)
	for i := range x {
		ti := float64(i) / fs
		x[i] = 0.5 + 3*math.Sin(2*math.Pi*50*ti) + 2*math.Sin(2*math.Pi*120*ti)
	}

	freqs, mags, err := DominantFrequencies(x, fs, 2)
	require.NoError(t, err)
	require.Len(t, freqs, 2)
	assert.InDelta(t, 50.0, freqs[0], 1.0)
	assert.InDelta(t, 120.0, freqs[1], 1.0)
	assert.Greater(t, mags[0], mags[1])

	// the DC offset is never reported
	for _, f := range freqs {
		assert.NotEqual(t, 0.0, f)
	}
}

func TestDominantFrequencyClampsCount(t *testing.T) {
	x := []float64{0, 1, 0, -1, 0, 1, 0, -1}
	freqs, _, err := DominantFrequencies(x, 8, 100)
	require.NoError(t, err)
	assert.Len(t, freqs, 5)

	f, err := DominantFrequency(x, 8)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, f, 1e-9)
}

func TestDominantFrequenciesErrors(t *testing.T) {
	_, _, err := DominantFrequencies([]float64{1, 2, 3}, 0, 1)
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))
	_, _, err = DominantFrequencies([]float64{1, 2, 3}, 10, 0)
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))
	_, _, err = DominantFrequencies([]float64{1}, 10, 1)
	assert.True(t, errors.Is(err, common.ErrInsufficientData))
}

package phase

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPLVLockedPair(t *testing.T) {
	fs := 500.0
	n := 5001
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range n {
		ti := float64(i) / fs
		a[i] = math.Sin(2 * math.Pi * 10 * ti)
		b[i] = -0.5 * math.Sin(2*math.Pi*10*ti)
	}

	plv, err := PLV(a, b, fs, 8, 12)
	require.NoError(t, err)
	assert.Greater(t, plv, 0.95)
}

func TestPLVIndependentNoise(t *testing.T) {
	rng := rand.New(rand.NewPCG(10, 11))
	n := 10000
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range n {
		a[i] = rng.NormFloat64()
		b[i] = rng.NormFloat64()
	}

	plv, err := PLV(a, b, 500, 8, 12)
	require.NoError(t, err)
	assert.Less(t, plv, 0.5)
}

func TestModulationIndex(t *testing.T) {
	fs := 1000.0
	n := 10000
	low := make([]float64, n)
	coupled := make([]float64, n)
	flat := make([]float64, n)
	for i := range n {
		ti := float64(i) / fs
		lowPhase := 2 * math.Pi * 6 * ti
		low[i] = math.Cos(lowPhase)
		carrier := math.Cos(2 * math.Pi * 80 * ti)
		coupled[i] = (1 + 0.8*math.Cos(lowPhase)) * carrier
		flat[i] = carrier
	}

	phaseBand := [2]float64{4, 8}
	ampBand := [2]float64{65, 95}

	miCoupled, err := ModulationIndex(low, coupled, fs, phaseBand, ampBand, DefaultModulationBins)
	require.NoError(t, err)
	miFlat, err := ModulationIndex(low, flat, fs, phaseBand, ampBand, DefaultModulationBins)
	require.NoError(t, err)

	assert.Greater(t, miCoupled, 0.02)
	assert.Less(t, miFlat, 0.005)
	assert.GreaterOrEqual(t, miFlat, 0.0)
}

func TestPairwiseErrors(t *testing.T) {
	x := make([]float64, 100)

	_, err := PLV(x, x[:10], 100, 5, 10)
	assert.True(t, errors.Is(err, common.ErrChannelLengthMismatch))

	_, err = ModulationIndex(x, x, 100, [2]float64{1, 4}, [2]float64{20, 30}, 1)
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))

	_, err = ModulationIndex(x, x[:50], 100, [2]float64{1, 4}, [2]float64{20, 30}, 18)
	assert.True(t, errors.Is(err, common.ErrChannelLengthMismatch))
}

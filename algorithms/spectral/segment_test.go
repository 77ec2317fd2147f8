package spectral

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentCount(t *testing.T) {
	tests := []struct {
		name                string
		n, seglen, step, ok int
	}{
		{name: "exact fit", n: 8, seglen: 8, step: 4, ok: 1},
		{name: "half overlap", n: 16, seglen: 8, step: 4, ok: 3},
		{name: "remainder dropped", n: 17, seglen: 8, step: 4, ok: 3},
		{name: "too short", n: 7, seglen: 8, step: 4, ok: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, SegmentCount(tt.n, tt.seglen, tt.step))
		})
	}
}

func TestSegmentDefaultStep(t *testing.T) {
	x := make([]float64, 10)
	for i := range x {
		x[i] = float64(i)
	}

	segs, err := Segment(x, 4, 0)
	require.NoError(t, err)
	require.Len(t, segs, 4)
	assert.Equal(t, []float64{0, 1, 2, 3}, segs[0])
	assert.Equal(t, []float64{2, 3, 4, 5}, segs[1])
	assert.Equal(t, []float64{6, 7, 8, 9}, segs[3])
}

func TestSegmentErrors(t *testing.T) {
	_, err := Segment(make([]float64, 4), 8, 0)
	assert.True(t, errors.Is(err, common.ErrInsufficientData))

	_, err = Segment(make([]float64, 4), 0, 0)
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))

	_, err = Segment(make([]float64, 4), 1, 0)
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))

	_, err = Segment(make([]float64, 4), 2, -1)
	assert.True(t, errors.Is(err, common.ErrInvalidParameter))
}

func TestDetrend(t *testing.T) {
	out := Detrend([]float64{1, 2, 3})
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, out, 1e-12)
}

func TestSegmentSpectraShape(t *testing.T) {
	x := make([]float64, 1000)
	for i := range x {
		x[i] = math.Sin(2*math.Pi*50*float64(i)/1000) + 3
	}

	set, err := SegmentSpectra(x, 100, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 19, set.Count())
	assert.Equal(t, 51, set.Bins)
	assert.Equal(t, 50, set.Step)
	for _, row := range set.Spectra {
		assert.Len(t, row, 51)
	}

	// 50 Hz at fs=1000 and seglen=100 lands on bin 5
	peak := 0
	for k := 1; k < set.Bins; k++ {
		if cmplx.Abs(set.Spectra[0][k]) > cmplx.Abs(set.Spectra[0][peak]) {
			peak = k
		}
	}
	assert.Equal(t, 5, peak)
}

func TestFrequencies(t *testing.T) {
	f := Frequencies(8, 1000)
	assert.InDeltaSlice(t, []float64{0, 125, 250, 375, 500}, f, 1e-9)
	assert.Len(t, Frequencies(9, 9), 5)
}

func TestRealTransformRoundTrip(t *testing.T) {
	transform := NewFFT()
	for _, n := range []int{7, 8, 33} {
		x := make([]float64, n)
		for i := range x {
			x[i] = math.Cos(float64(i)*0.7) + 0.1*float64(i)
		}
		coeffs := transform.ComputeReal(x)
		require.Len(t, coeffs, n/2+1)
		back := transform.ComputeInverseReal(coeffs, n)
		assert.InDeltaSlice(t, x, back, 1e-9, "n=%d", n)
	}
}

func TestRealTransformMatchesComplex(t *testing.T) {
	transform := NewFFT()
	x := []float64{1, -2, 3, 0.5, 4, -1}
	half := transform.ComputeReal(x)
	full := transform.Compute(x)
	for k := range half {
		assert.InDelta(t, real(full[k]), real(half[k]), 1e-9)
		assert.InDelta(t, imag(full[k]), imag(half[k]), 1e-9)
	}
}

func TestInstantaneousPhaseOfCosine(t *testing.T) {
	// 8 full cycles over 256 samples keeps the analytic signal exact
	n := 256
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * 8 * float64(i) / float64(n))
	}

	phase := InstantaneousPhase(x)
	env := Envelope(x)
	for i := range x {
		want := math.Remainder(2*math.Pi*8*float64(i)/float64(n), 2*math.Pi)
		diff := math.Remainder(phase[i]-want, 2*math.Pi)
		assert.InDelta(t, 0, diff, 1e-9, "sample %d", i)
		assert.InDelta(t, 1, env[i], 1e-9)
	}
}

package bispectral

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/algorithms/spectral"
	"github.com/RyanBlaney/sonido-triad/algorithms/windowing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Peak is the location and value of the bicoherence maximum
type Peak struct {
	F1 float64 `json:"f1"`
	F2 float64 `json:"f2"`
	B2 float64 `json:"b2_peak"`
	I  int     `json:"i"`
	J  int     `json:"j"`
}

// FindPeak returns the argmax of b2 over the whole matrix. Ties resolve to the
// first occurrence in row-major order. freqs maps indices to Hz and must cover
// both dimensions.
func FindPeak(b2 mat.Matrix, freqs []float64) (Peak, error) {
	if b2 == nil {
		return Peak{}, fmt.Errorf("nil bicoherence matrix: %w", common.ErrInvalidParameter)
	}
	rows, cols := b2.Dims()
	if rows == 0 || cols == 0 {
		return Peak{}, fmt.Errorf("empty bicoherence matrix: %w", common.ErrInsufficientData)
	}
	if len(freqs) < max(rows, cols) {
		return Peak{}, fmt.Errorf("%d frequencies for a %dx%d matrix: %w",
			len(freqs), rows, cols, common.ErrInvalidParameter)
	}

	bestI, bestJ := 0, 0
	best := b2.At(0, 0)

	raw, hasRows := b2.(mat.RawRowViewer)
	for i := range rows {
		var j int
		var v float64
		if hasRows {
			row := raw.RawRowView(i)
			j = floats.MaxIdx(row)
			v = row[j]
		} else {
			j, v = 0, b2.At(i, 0)
			for c := 1; c < cols; c++ {
				if x := b2.At(i, c); x > v {
					j, v = c, x
				}
			}
		}
		if v > best {
			best, bestI, bestJ = v, i, j
		}
	}

	return Peak{
		F1: freqs[bestI],
		F2: freqs[bestJ],
		B2: best,
		I:  bestI,
		J:  bestJ,
	}, nil
}

// DominantFrequencies returns the nmax frequencies with the largest magnitude in
// the Hann-tapered spectrum of signal, strongest first, with their magnitudes.
// The DC bin is zeroed before ranking and never reported.
func DominantFrequencies(signal []float64, fs float64, nmax int) ([]float64, []float64, error) {
	if fs <= 0 {
		return nil, nil, fmt.Errorf("sample rate %g: %w", fs, common.ErrInvalidParameter)
	}
	if nmax <= 0 {
		return nil, nil, fmt.Errorf("peak count %d: %w", nmax, common.ErrInvalidParameter)
	}
	if len(signal) < 2 {
		return nil, nil, fmt.Errorf("dominant frequency needs at least 2 samples: %w", common.ErrInsufficientData)
	}

	window := windowing.NewHann(len(signal), true)
	spectrum := spectral.NewFFT().ComputeReal(window.Apply(signal))
	freqs := spectral.Frequencies(len(signal), fs)

	mags := make([]float64, len(spectrum))
	for k, v := range spectrum {
		mags[k] = cmplx.Abs(v)
	}
	mags[0] = 0

	// floats.Argsort sorts ascending in place
	sorted := make([]float64, len(mags))
	copy(sorted, mags)
	inds := make([]int, len(sorted))
	floats.Argsort(sorted, inds)

	nmax = min(nmax, len(inds))
	topF := make([]float64, nmax)
	topM := make([]float64, nmax)
	for r := range nmax {
		k := inds[len(inds)-1-r]
		topF[r] = freqs[k]
		topM[r] = mags[k]
	}
	return topF, topM, nil
}

// DominantFrequency returns the single strongest non-DC frequency of signal
func DominantFrequency(signal []float64, fs float64) (float64, error) {
	f, _, err := DominantFrequencies(signal, fs, 1)
	if err != nil {
		return 0, err
	}
	return f[0], nil
}

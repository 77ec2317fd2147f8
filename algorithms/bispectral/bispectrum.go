// Package bispectral estimates segment-averaged bispectra and bicoherence for
// one channel (auto) or three channels (cross), and locates their peaks.
package bispectral

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/algorithms/spectral"
	"gonum.org/v1/gonum/mat"
)

const (
	// segmentEpsilon keeps the S2 divisor away from zero
	segmentEpsilon = 1e-12

	// Epsilon stabilizes b2 = |S3|^2 / (S2^2 + Epsilon) in empty bins
	Epsilon = 1e-20
)

// Params configures segmentation for the estimators
type Params struct {
	SegLen int `json:"seglen"`
	Step   int `json:"step"` // 0 means SegLen/2

	// KeepMean skips the mean removal applied to every channel before segmenting
	KeepMean bool `json:"keep_mean,omitempty"`
}

// DefaultParams returns half-overlapping segments of seglen with detrending
func DefaultParams(seglen int) Params {
	return Params{SegLen: seglen}
}

// Result holds the averaged bispectrum, its normalizer and the bicoherence.
//
// All matrices are nF x nF with nF = SegLen/2+1. Cells with i+j >= nF lie outside
// the Nyquist-limited region and are exactly zero.
type Result struct {
	Freqs    []float64   `json:"freqs"`
	S3       *mat.CDense `json:"-"`
	S2       *mat.Dense  `json:"-"`
	B2       *mat.Dense  `json:"-"`
	Segments int         `json:"segments"`
	SegLen   int         `json:"seglen"`
	Step     int         `json:"step"`
}

// Bins returns nF, the matrix dimension
func (r *Result) Bins() int {
	return len(r.Freqs)
}

// Resolution returns the bin spacing in Hz
func (r *Result) Resolution() float64 {
	if len(r.Freqs) < 2 {
		return 0
	}
	return r.Freqs[1] - r.Freqs[0]
}

// Auto computes the auto-bispectrum of x:
// S3[i,j] = <X[i] X[j] conj(X[i+j])>, S2[i,j] = <|X[i]| |X[j]| |X[i+j]|>.
func Auto(x []float64, fs float64, p Params) (*Result, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate %g: %w", fs, common.ErrInvalidParameter)
	}

	set, err := spectral.SegmentSpectra(x, p.SegLen, p.Step, !p.KeepMean)
	if err != nil {
		return nil, fmt.Errorf("auto-bispectrum: %w", err)
	}

	return accumulate(set, set, set, fs), nil
}

// Cross computes the cross-bispectrum of three channels:
// S3[i,j] = <A[i] B[j] conj(C[i+j])>, S2[i,j] = <|A[i]| |B[j]| |C[i+j]|>.
// The channels must have the same length.
func Cross(a, b, c []float64, fs float64, p Params) (*Result, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate %g: %w", fs, common.ErrInvalidParameter)
	}
	if len(a) != len(b) || len(a) != len(c) {
		return nil, fmt.Errorf("cross-bispectrum lengths %d, %d, %d: %w",
			len(a), len(b), len(c), common.ErrChannelLengthMismatch)
	}

	setA, err := spectral.SegmentSpectra(a, p.SegLen, p.Step, !p.KeepMean)
	if err != nil {
		return nil, fmt.Errorf("cross-bispectrum: %w", err)
	}
	setB, err := spectral.SegmentSpectra(b, p.SegLen, p.Step, !p.KeepMean)
	if err != nil {
		return nil, fmt.Errorf("cross-bispectrum: %w", err)
	}
	setC, err := spectral.SegmentSpectra(c, p.SegLen, p.Step, !p.KeepMean)
	if err != nil {
		return nil, fmt.Errorf("cross-bispectrum: %w", err)
	}

	return accumulate(setA, setB, setC, fs), nil
}

// accumulate sums the triple product and the magnitude product over segments.
// The three sets share seglen and step, so their segment counts match.
func accumulate(a, b, c *spectral.SpectrumSet, fs float64) *Result {
	nF := a.Bins
	s3 := make([]complex128, nF*nF)
	s2 := make([]float64, nF*nF)

	magA := make([]float64, nF)
	magB := make([]float64, nF)
	magC := make([]float64, nF)

	for seg := range a.Spectra {
		xa, xb, xc := a.Spectra[seg], b.Spectra[seg], c.Spectra[seg]
		for k := range nF {
			magA[k] = cmplx.Abs(xa[k])
			magB[k] = cmplx.Abs(xb[k])
			magC[k] = cmplx.Abs(xc[k])
		}

		for i := range nF {
			row := i * nF
			for j := 0; i+j < nF; j++ {
				k := i + j
				s3[row+j] += xa[i] * xb[j] * cmplx.Conj(xc[k])
				s2[row+j] += magA[i] * magB[j] * magC[k]
			}
		}
	}

	count := float64(a.Count())
	b2 := make([]float64, nF*nF)
	for idx := range s3 {
		s3[idx] /= complex(count, 0)
		s2[idx] /= count + segmentEpsilon

		re, im := real(s3[idx]), imag(s3[idx])
		b2[idx] = (re*re + im*im) / (s2[idx]*s2[idx] + Epsilon)
	}

	return &Result{
		Freqs:    spectral.Frequencies(a.SegLen, fs),
		S3:       mat.NewCDense(nF, nF, s3),
		S2:       mat.NewDense(nF, nF, s2),
		B2:       mat.NewDense(nF, nF, b2),
		Segments: a.Count(),
		SegLen:   a.SegLen,
		Step:     a.Step,
	}
}

// MaxBicoherence returns the largest b2 value in r
func (r *Result) MaxBicoherence() float64 {
	peak, err := FindPeak(r.B2, r.Freqs)
	if err != nil {
		return 0
	}
	return peak.B2
}

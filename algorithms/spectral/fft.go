package spectral

import (
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT provides the forward and inverse transforms used across the module.
//
// Real-input transforms return the half spectrum (n/2+1 bins, DC first) through
// gonum's real FFT. Complex transforms go through go-dsp, which handles any
// length including non powers of two.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the full complex spectrum of a real signal
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// ComputeInverse computes the normalized inverse FFT
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.IFFT(x)
}

// ComputeReal returns the n/2+1 non-negative frequency bins of a real signal.
func (f *FFT) ComputeReal(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	t := fourier.NewFFT(len(x))
	return t.Coefficients(nil, x)
}

// ComputeInverseReal reconstructs a real sequence of length n from its half
// spectrum. The imaginary parts of the DC bin (and of the Nyquist bin for even n)
// do not contribute to a real sequence.
func (f *FFT) ComputeInverseReal(coeffs []complex128, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}

	half := make([]complex128, n/2+1)
	copy(half, coeffs)

	t := fourier.NewFFT(n)
	seq := t.Sequence(nil, half)

	// gonum leaves the inverse unnormalized
	scale := 1.0 / float64(n)
	for i := range seq {
		seq[i] *= scale
	}
	return seq
}

// Frequencies returns the bin frequencies in Hz of a length-n real transform
// sampled at fs, i.e. k*fs/n for k = 0..n/2.
func Frequencies(n int, fs float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	freqs := make([]float64, n/2+1)
	for k := range freqs {
		freqs[k] = float64(k) * fs / float64(n)
	}
	return freqs
}

package spectral

import (
	"math/cmplx"
)

// AnalyticSignal returns x + i*H{x} computed in the frequency domain: positive
// frequencies doubled, negative frequencies zeroed, DC (and Nyquist for even
// lengths) left untouched.
func AnalyticSignal(x []float64) []complex128 {
	n := len(x)
	if n == 0 {
		return []complex128{}
	}

	transform := NewFFT()
	spectrum := transform.Compute(x)

	h := make([]float64, n)
	h[0] = 1
	if n%2 == 0 {
		h[n/2] = 1
		for k := 1; k < n/2; k++ {
			h[k] = 2
		}
	} else {
		for k := 1; k < (n+1)/2; k++ {
			h[k] = 2
		}
	}

	for k := range spectrum {
		spectrum[k] *= complex(h[k], 0)
	}

	return transform.ComputeInverse(spectrum)
}

// InstantaneousPhase returns the wrapped phase in (-pi, pi] of the analytic signal of x
func InstantaneousPhase(x []float64) []float64 {
	analytic := AnalyticSignal(x)
	phase := make([]float64, len(analytic))
	for i, v := range analytic {
		phase[i] = cmplx.Phase(v)
	}
	return phase
}

// Envelope returns the magnitude of the analytic signal of x
func Envelope(x []float64) []float64 {
	analytic := AnalyticSignal(x)
	env := make([]float64, len(analytic))
	for i, v := range analytic {
		env[i] = cmplx.Abs(v)
	}
	return env
}

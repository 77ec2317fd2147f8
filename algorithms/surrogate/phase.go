// Package surrogate builds phase-randomized surrogates and the null
// distribution of peak bicoherence they induce.
package surrogate

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/RyanBlaney/sonido-triad/algorithms/spectral"
	"gonum.org/v1/gonum/stat/distuv"
)

// streamMix decorrelates the two PCG words derived from one seed
const streamMix = 0x9e3779b97f4a7c15

// NewSource returns a deterministic source for seed. Equal seeds yield equal
// streams.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^streamMix)
}

// entropySource returns a source seeded from the runtime's entropy
func entropySource() rand.Source {
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// PhaseRandomize returns a copy of x whose real transform keeps the magnitude
// of every bin of x while the phases are drawn uniformly from [0, 2*pi).
//
// The DC bin, and the Nyquist bin for even lengths, must stay real; they keep
// their magnitude and only receive a random sign. A nil src draws fresh
// entropy.
func PhaseRandomize(x []float64, src rand.Source) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}
	if src == nil {
		src = entropySource()
	}
	rng := rand.New(src)
	phase := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}

	coeffs := spectral.NewFFT().ComputeReal(x)
	for k, c := range coeffs {
		mag := cmplx.Abs(c)
		if k == 0 || (n%2 == 0 && k == n/2) {
			if rng.Uint64()&1 == 1 {
				mag = -mag
			}
			coeffs[k] = complex(mag, 0)
			continue
		}
		coeffs[k] = cmplx.Rect(mag, phase.Rand())
	}

	return spectral.NewFFT().ComputeInverseReal(coeffs, n)
}

package filters

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
)

// Section is one normalized second-order section (a0 = 1).
//
// The difference equation is:
// y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
type Section struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Response evaluates the section's transfer function at normalized angular frequency w (rad/sample)
func (s Section) Response(w float64) complex128 {
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	num := complex(s.B0, 0) + complex(s.B1, 0)*z1 + complex(s.B2, 0)*z2
	den := 1 + complex(s.A1, 0)*z1 + complex(s.A2, 0)*z2
	return num / den
}

// ButterworthBandpass is a digital Butterworth band-pass designed through the
// bilinear transform and stored as a cascade of second-order sections.
//
// An order-N prototype gives a band-pass of order 2N made of N sections, each
// with one zero at z=1 and one at z=-1.
type ButterworthBandpass struct {
	sampleRate float64
	lowHz      float64
	highHz     float64
	order      int
	sections   []Section
}

// NewButterworthBandpass designs an order-N Butterworth band-pass with edges
// lowHz < highHz strictly inside (0, sampleRate/2).
func NewButterworthBandpass(order int, lowHz, highHz, sampleRate float64) (*ButterworthBandpass, error) {
	if order <= 0 {
		return nil, fmt.Errorf("filter order %d: %w", order, common.ErrInvalidParameter)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %g: %w", sampleRate, common.ErrInvalidParameter)
	}
	nyquist := sampleRate / 2
	if lowHz <= 0 || highHz >= nyquist || lowHz >= highHz {
		return nil, fmt.Errorf("band [%g, %g] Hz outside (0, %g): %w",
			lowHz, highHz, nyquist, common.ErrInvalidParameter)
	}

	bp := &ButterworthBandpass{
		sampleRate: sampleRate,
		lowHz:      lowHz,
		highHz:     highHz,
		order:      order,
	}
	bp.design()
	return bp, nil
}

// design computes the section coefficients.
func (bp *ButterworthBandpass) design() {
	fs2 := 2.0 * bp.sampleRate

	// Prewarp the band edges so they land exactly after the bilinear transform
	wl := fs2 * math.Tan(math.Pi*bp.lowHz/bp.sampleRate)
	wh := fs2 * math.Tan(math.Pi*bp.highHz/bp.sampleRate)
	bw := wh - wl
	w0sq := wl * wh

	// Analog prototype poles on the left half of the unit circle, shifted to the
	// band-pass and mapped to the z-plane.
	poles := make([]complex128, 0, 2*bp.order)
	for k := range bp.order {
		theta := math.Pi * float64(2*k+1) / float64(2*bp.order)
		p := complex(-math.Sin(theta), math.Cos(theta))

		half := p * complex(bw/2, 0)
		root := cmplx.Sqrt(half*half - complex(w0sq, 0))
		for _, s := range []complex128{half + root, half - root} {
			poles = append(poles, (complex(fs2, 0)+s)/(complex(fs2, 0)-s))
		}
	}

	// Digital centre frequency, used to normalize every section to unity gain
	wc := 2 * math.Atan(math.Sqrt(w0sq)/fs2)

	bp.sections = make([]Section, 0, bp.order)
	for _, pair := range pairPoles(poles) {
		sec := Section{
			B0: 1,
			B1: 0,
			B2: -1,
			A1: -real(pair[0] + pair[1]),
			A2: real(pair[0] * pair[1]),
		}
		gain := cmplx.Abs(sec.Response(wc))
		if gain > 0 {
			sec.B0 /= gain
			sec.B2 /= gain
		}
		bp.sections = append(bp.sections, sec)
	}
}

// pairPoles groups poles into conjugate pairs; leftover real poles are paired
// with each other.
func pairPoles(poles []complex128) [][2]complex128 {
	const tol = 1e-12

	var upper, reals []complex128
	for _, p := range poles {
		switch {
		case imag(p) > tol:
			upper = append(upper, p)
		case math.Abs(imag(p)) <= tol:
			reals = append(reals, complex(real(p), 0))
		}
	}

	pairs := make([][2]complex128, 0, len(poles)/2)
	for _, p := range upper {
		pairs = append(pairs, [2]complex128{p, cmplx.Conj(p)})
	}

	sort.Slice(reals, func(i, j int) bool { return real(reals[i]) < real(reals[j]) })
	for i := 0; i+1 < len(reals); i += 2 {
		pairs = append(pairs, [2]complex128{reals[i], reals[i+1]})
	}
	return pairs
}

// Sections returns a copy of the cascade
func (bp *ButterworthBandpass) Sections() []Section {
	out := make([]Section, len(bp.sections))
	copy(out, bp.sections)
	return out
}

// Order returns the order of the digital filter (twice the prototype order)
func (bp *ButterworthBandpass) Order() int {
	return 2 * len(bp.sections)
}

// FrequencyResponse returns magnitude (linear) and phase (radians) of the cascade at frequency Hz
func (bp *ButterworthBandpass) FrequencyResponse(frequency float64) (magnitude, phase float64) {
	w := 2.0 * math.Pi * frequency / bp.sampleRate
	h := complex(1, 0)
	for _, s := range bp.sections {
		h *= s.Response(w)
	}
	return cmplx.Abs(h), cmplx.Phase(h)
}

// SettlingSamples estimates how many samples the cascade needs before its
// response to a band edge has decayed, from the slowest pole radius.
func (bp *ButterworthBandpass) SettlingSamples() int {
	slowest := 0.0
	for _, s := range bp.sections {
		// |p|^2 = a2 for a conjugate pair
		r := math.Sqrt(math.Abs(s.A2))
		slowest = max(slowest, r)
	}
	if slowest <= 0 || slowest >= 1 {
		return 0
	}
	// samples for the transient to fall by e^-3
	return int(math.Ceil(3 / -math.Log(slowest)))
}

// processSection filters buf in place, transposed direct form II
func processSection(s Section, buf []float64) {
	var z1, z2 float64
	for i, x := range buf {
		y := s.B0*x + z1
		z1 = s.B1*x - s.A1*y + z2
		z2 = s.B2*x - s.A2*y
		buf[i] = y
	}
}

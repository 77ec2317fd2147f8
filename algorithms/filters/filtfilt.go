package filters

import (
	"fmt"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
)

// FiltFilt applies the cascade forward and then backward so the result has
// zero phase and squared magnitude response.
//
// Both ends are padded with an odd reflection of the signal (2*x[0]-x[k]) to
// move start-up transients out of the data. The pad length is the filter's
// settling estimate, capped at len(x)-1.
func (bp *ButterworthBandpass) FiltFilt(x []float64) ([]float64, error) {
	n := len(x)
	if n < 2 {
		return nil, fmt.Errorf("zero-phase filtering needs at least 2 samples, got %d: %w",
			n, common.ErrInsufficientData)
	}

	padlen := min(n-1, max(bp.SettlingSamples(), 3*(bp.Order()+1)))

	ext := make([]float64, n+2*padlen)
	for i := range padlen {
		ext[i] = 2*x[0] - x[padlen-i]
	}
	copy(ext[padlen:], x)
	for i := range padlen {
		ext[padlen+n+i] = 2*x[n-1] - x[n-2-i]
	}

	for _, s := range bp.sections {
		processSection(s, ext)
	}
	reverse(ext)
	for _, s := range bp.sections {
		processSection(s, ext)
	}
	reverse(ext)

	out := make([]float64, n)
	copy(out, ext[padlen:padlen+n])
	return out, nil
}

// BandpassZeroPhase designs an order-N Butterworth band-pass for [lowHz, highHz]
// and applies it with FiltFilt. The band edges are clamped the way a normalized
// design would be: low edge at least 1e-6 of Nyquist, high edge at most 0.999 of it.
func BandpassZeroPhase(x []float64, sampleRate, lowHz, highHz float64, order int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %g: %w", sampleRate, common.ErrInvalidParameter)
	}
	nyquist := sampleRate / 2
	lo := max(1e-6*nyquist, lowHz)
	hi := min(0.999*nyquist, highHz)

	bp, err := NewButterworthBandpass(order, lo, hi, sampleRate)
	if err != nil {
		return nil, err
	}
	return bp.FiltFilt(x)
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}

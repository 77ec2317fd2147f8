// Package phase measures phase coupling between band-limited channels: the
// three-wave triad lock index, its sliding form and coherence time, plus the
// pairwise phase-locking value and phase-amplitude modulation index.
package phase

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/algorithms/filters"
	"github.com/RyanBlaney/sonido-triad/algorithms/spectral"
)

// LockConfig holds the band and window settings of the triad lock estimator
type LockConfig struct {
	Bandwidth     float64 `json:"bandwidth"` // Hz, centred on each mode frequency
	WindowSeconds float64 `json:"window_s"`
	StepSeconds   float64 `json:"step_s"`
	Order         int     `json:"order"` // Butterworth prototype order
}

// DefaultLockConfig returns a 1 Hz band, 1 s windows every 0.25 s and an
// order-4 prototype
func DefaultLockConfig() LockConfig {
	return LockConfig{
		Bandwidth:     1.0,
		WindowSeconds: 1.0,
		StepSeconds:   0.25,
		Order:         4,
	}
}

func (c LockConfig) validate() error {
	if !(c.Bandwidth > 0) {
		return fmt.Errorf("lock bandwidth %g: %w", c.Bandwidth, common.ErrInvalidParameter)
	}
	if c.Order <= 0 {
		return fmt.Errorf("lock filter order %d: %w", c.Order, common.ErrInvalidParameter)
	}
	return nil
}

// BandPhase band-passes x around [lowHz, highHz] with zero phase and returns
// the instantaneous phase of the result.
func BandPhase(x []float64, fs, lowHz, highHz float64, order int) ([]float64, error) {
	filtered, err := filters.BandpassZeroPhase(x, fs, lowHz, highHz, order)
	if err != nil {
		return nil, err
	}
	return spectral.InstantaneousPhase(filtered), nil
}

// LockIndex returns |mean(exp(i*(phi1 + phi2 - phi3)))|, clamped to [0, 1]
func LockIndex(phi1, phi2, phi3 []float64) (float64, error) {
	n := len(phi1)
	if len(phi2) != n || len(phi3) != n {
		return 0, fmt.Errorf("phase lengths %d, %d, %d: %w",
			len(phi1), len(phi2), len(phi3), common.ErrChannelLengthMismatch)
	}
	if n == 0 {
		return 0, fmt.Errorf("lock index of empty phases: %w", common.ErrInsufficientData)
	}

	var re, im float64
	for k := range n {
		s, c := math.Sincos(phi1[k] + phi2[k] - phi3[k])
		re += c
		im += s
	}
	return common.Clamp(math.Hypot(re, im)/float64(n), 0, 1), nil
}

// TriadLock returns the static lock index over the whole record of three
// equal-length channels. Channel 1 is filtered around f1, channel 2 around f2
// and channel 3 around f1+f2.
func TriadLock(x1, x2, x3 []float64, fs, f1, f2 float64, cfg LockConfig) (float64, error) {
	if err := cfg.validate(); err != nil {
		return 0, err
	}
	if len(x1) != len(x2) || len(x1) != len(x3) {
		return 0, fmt.Errorf("triad lock lengths %d, %d, %d: %w",
			len(x1), len(x2), len(x3), common.ErrChannelLengthMismatch)
	}
	return triadLock(x1, x2, x3, fs, f1, f2, cfg)
}

func triadLock(x1, x2, x3 []float64, fs, f1, f2 float64, cfg LockConfig) (float64, error) {
	half := cfg.Bandwidth / 2
	f3 := f1 + f2

	phi1, err := BandPhase(x1, fs, f1-half, f1+half, cfg.Order)
	if err != nil {
		return 0, fmt.Errorf("mode 1 at %g Hz: %w", f1, err)
	}
	phi2, err := BandPhase(x2, fs, f2-half, f2+half, cfg.Order)
	if err != nil {
		return 0, fmt.Errorf("mode 2 at %g Hz: %w", f2, err)
	}
	phi3, err := BandPhase(x3, fs, f3-half, f3+half, cfg.Order)
	if err != nil {
		return 0, fmt.Errorf("mode 3 at %g Hz: %w", f3, err)
	}

	return LockIndex(phi1, phi2, phi3)
}

// LockSeries is a sliding lock index sampled at window centre times
type LockSeries struct {
	Times  []float64 `json:"t"`
	Values []float64 `json:"L"`
}

// Len returns the number of windows
func (s *LockSeries) Len() int {
	return len(s.Times)
}

// TriadLockSliding evaluates TriadLock on windows of int(WindowSeconds*fs)
// samples every int(StepSeconds*fs) samples. Each window is filtered on its
// own. Times are window centres in seconds.
func TriadLockSliding(x1, x2, x3 []float64, fs, f1, f2 float64, cfg LockConfig) (*LockSeries, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate %g: %w", fs, common.ErrInvalidParameter)
	}
	n := len(x1)
	if len(x2) != n || len(x3) != n {
		return nil, fmt.Errorf("triad lock lengths %d, %d, %d: %w",
			len(x1), len(x2), len(x3), common.ErrChannelLengthMismatch)
	}

	win := int(cfg.WindowSeconds * fs)
	step := int(cfg.StepSeconds * fs)
	if win < 2 {
		return nil, fmt.Errorf("lock window of %d samples: %w", win, common.ErrInvalidParameter)
	}
	if step < 1 {
		return nil, fmt.Errorf("lock step of %d samples: %w", step, common.ErrInvalidParameter)
	}
	if win > n {
		return nil, fmt.Errorf("lock window of %d samples exceeds series length %d: %w",
			win, n, common.ErrInsufficientData)
	}

	count := 1 + (n-win)/step
	series := &LockSeries{
		Times:  make([]float64, 0, count),
		Values: make([]float64, 0, count),
	}
	for start := 0; start+win <= n; start += step {
		end := start + win
		value, err := triadLock(x1[start:end], x2[start:end], x3[start:end], fs, f1, f2, cfg)
		if err != nil {
			return nil, fmt.Errorf("window at sample %d: %w", start, err)
		}
		series.Times = append(series.Times, float64(start+end)/2/fs)
		series.Values = append(series.Values, value)
	}
	return series, nil
}

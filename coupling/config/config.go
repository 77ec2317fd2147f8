// Package config holds the scalars that drive one coupling analysis.
package config

import (
	"fmt"
	"math/rand/v2"

	"github.com/RyanBlaney/sonido-triad/algorithms/bispectral"
	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/algorithms/phase"
	"github.com/RyanBlaney/sonido-triad/algorithms/surrogate"
)

// Defaults shared by the CLI flags and DefaultAnalysisConfig
const (
	DefaultSegLen        = 4096
	DefaultSurrogates    = 50
	DefaultSeed          = 7
	DefaultBandwidth     = 1.0
	DefaultWindowSeconds = 1.0
	DefaultStepSeconds   = 0.25
	DefaultFilterOrder   = 4
	DefaultBatchWorkers  = 2
	DefaultDominantPeaks = 3
)

// Default bands of the pairwise metrics in Hz
var (
	DefaultLowBand  = [2]float64{0.2, 0.5}
	DefaultMidBand  = [2]float64{40, 45}
	DefaultHighBand = [2]float64{120, 140}
)

// DefaultChannels are the column names of the three modes of a triad recording
var DefaultChannels = []string{"mode1_I", "mode2_I", "mode3_I"}

// AnalysisConfig configures the bispectral and lock paths of an analysis
type AnalysisConfig struct {
	// Bispectral path
	SegLen     int     `json:"seglen" mapstructure:"seglen"`
	Step       int     `json:"step" mapstructure:"step"` // 0 means seglen/2
	Detrend    bool    `json:"detrend" mapstructure:"detrend"`
	SampleRate float64 `json:"fs,omitempty" mapstructure:"fs"` // 0 infers it from the time column

	// Surrogate null
	Surrogates int   `json:"surrogates" mapstructure:"surrogates"`
	Seed       int64 `json:"seed" mapstructure:"seed"` // negative draws fresh entropy
	Workers    int   `json:"workers" mapstructure:"workers"`

	// Lock path
	Bandwidth     float64 `json:"bandwidth" mapstructure:"bandwidth"`
	WindowSeconds float64 `json:"window_s" mapstructure:"window-s"`
	StepSeconds   float64 `json:"step_s" mapstructure:"step-s"`
	FilterOrder   int     `json:"filter_order" mapstructure:"filter-order"`
	LockThreshold float64 `json:"lock_threshold" mapstructure:"lock-threshold"`

	// Input and batch
	Channels      []string `json:"channels" mapstructure:"channels"`
	DominantPeaks int      `json:"dominant_peaks" mapstructure:"dominant-peaks"`
	BatchWorkers  int      `json:"batch_workers" mapstructure:"batch-workers"`

	// Path selection
	EnableBispectrum bool `json:"enable_bispectrum" mapstructure:"bispectrum"`
	EnableLock       bool `json:"enable_lock" mapstructure:"lock"`
	KeepLockSeries   bool `json:"keep_lock_series" mapstructure:"keep-lock-series"`
	EnablePairwise   bool `json:"enable_pairwise" mapstructure:"pairwise"`

	// Pairwise PLV and phase-amplitude coupling bands
	LowBand  [2]float64 `json:"low_band" mapstructure:"low-band"`
	MidBand  [2]float64 `json:"mid_band" mapstructure:"mid-band"`
	HighBand [2]float64 `json:"high_band" mapstructure:"high-band"`
}

// DefaultAnalysisConfig returns the configuration of the reference batch runs
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		SegLen:           DefaultSegLen,
		Step:             0,
		Detrend:          true,
		Surrogates:       DefaultSurrogates,
		Seed:             DefaultSeed,
		Workers:          0,
		Bandwidth:        DefaultBandwidth,
		WindowSeconds:    DefaultWindowSeconds,
		StepSeconds:      DefaultStepSeconds,
		FilterOrder:      DefaultFilterOrder,
		LockThreshold:    phase.DefaultCoherenceThreshold,
		Channels:         append([]string(nil), DefaultChannels...),
		DominantPeaks:    DefaultDominantPeaks,
		BatchWorkers:     DefaultBatchWorkers,
		EnableBispectrum: true,
		EnableLock:       true,
		LowBand:          DefaultLowBand,
		MidBand:          DefaultMidBand,
		HighBand:         DefaultHighBand,
	}
}

// Validate reports the first out-of-range field
func (c *AnalysisConfig) Validate() error {
	if c.SegLen <= 0 {
		return invalid("seglen", c.SegLen)
	}
	if c.Step < 0 {
		return invalid("step", c.Step)
	}
	if c.SampleRate < 0 {
		return invalid("fs", c.SampleRate)
	}
	if c.EnableBispectrum && c.Surrogates <= 0 {
		return invalid("surrogates", c.Surrogates)
	}
	if c.Workers < 0 {
		return invalid("workers", c.Workers)
	}
	if c.BatchWorkers < 0 {
		return invalid("batch_workers", c.BatchWorkers)
	}
	if c.EnableLock {
		if !(c.Bandwidth > 0) {
			return invalid("bandwidth", c.Bandwidth)
		}
		if !(c.WindowSeconds > 0) {
			return invalid("window_s", c.WindowSeconds)
		}
		if !(c.StepSeconds > 0) {
			return invalid("step_s", c.StepSeconds)
		}
		if c.FilterOrder <= 0 {
			return invalid("filter_order", c.FilterOrder)
		}
	}
	if !(c.LockThreshold >= 0 && c.LockThreshold <= 1) {
		return invalid("lock_threshold", c.LockThreshold)
	}
	if len(c.Channels) != 0 && len(c.Channels) != 3 {
		return fmt.Errorf("channels must name 3 columns, got %d: %w", len(c.Channels), common.ErrInvalidParameter)
	}
	if c.DominantPeaks < 1 {
		return invalid("dominant_peaks", c.DominantPeaks)
	}
	if c.EnablePairwise {
		bands := []struct {
			name string
			band [2]float64
		}{{"low_band", c.LowBand}, {"mid_band", c.MidBand}, {"high_band", c.HighBand}}
		for _, b := range bands {
			if !(b.band[0] >= 0 && b.band[1] > b.band[0]) {
				return invalid(b.name, b.band)
			}
		}
	}
	if !c.EnableBispectrum && !c.EnableLock {
		return fmt.Errorf("both bispectrum and lock paths are disabled: %w", common.ErrInvalidParameter)
	}
	return nil
}

// BispectralParams returns the segmentation parameters of the estimators
func (c *AnalysisConfig) BispectralParams() bispectral.Params {
	return bispectral.Params{
		SegLen:   c.SegLen,
		Step:     c.Step,
		KeepMean: !c.Detrend,
	}
}

// NullConfig returns the surrogate trial settings
func (c *AnalysisConfig) NullConfig() surrogate.NullConfig {
	return surrogate.NullConfig{
		Trials:  c.Surrogates,
		Workers: c.Workers,
		Params:  c.BispectralParams(),
	}
}

// LockConfig returns the band and window settings of the lock estimator
func (c *AnalysisConfig) LockConfig() phase.LockConfig {
	return phase.LockConfig{
		Bandwidth:     c.Bandwidth,
		WindowSeconds: c.WindowSeconds,
		StepSeconds:   c.StepSeconds,
		Order:         c.FilterOrder,
	}
}

// Source returns the master random source of the surrogate null. A negative
// seed returns nil, which draws fresh entropy.
func (c *AnalysisConfig) Source() rand.Source {
	if c.Seed < 0 {
		return nil
	}
	return surrogate.NewSource(uint64(c.Seed))
}

func invalid(field string, value any) error {
	return fmt.Errorf("%s = %v: %w", field, value, common.ErrInvalidParameter)
}

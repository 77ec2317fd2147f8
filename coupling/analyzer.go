// Package coupling runs the bispectral significance test and the triad lock
// estimator on three-channel recordings and merges them into one record.
package coupling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-triad/algorithms/bispectral"
	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/algorithms/phase"
	"github.com/RyanBlaney/sonido-triad/algorithms/stats"
	"github.com/RyanBlaney/sonido-triad/algorithms/surrogate"
	"github.com/RyanBlaney/sonido-triad/coupling/config"
	"github.com/RyanBlaney/sonido-triad/logging"
	"github.com/RyanBlaney/sonido-triad/timeseries"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Result is the merged record of one analyzed recording
type Result struct {
	RunID     string    `json:"run_id"`
	File      string    `json:"file"`
	Timestamp time.Time `json:"timestamp"`
	Elapsed   float64   `json:"elapsed_s"`

	FS       float64  `json:"fs"`
	Samples  int      `json:"samples"`
	Channels []string `json:"channels"`

	// Bispectral path
	SegLen       int                 `json:"seglen"`
	Segments     int                 `json:"segments,omitempty"`
	Peak         *bispectral.Peak    `json:"peak,omitempty"`
	AutoPeak     *bispectral.Peak    `json:"auto_peak,omitempty"`
	F3Est        float64             `json:"f3_est,omitempty"`
	Significance *stats.Significance `json:"significance,omitempty"`
	Dominant     [][]float64         `json:"dominant,omitempty"` // top frequencies per channel

	// Lock path
	F1Est         float64           `json:"f1_est,omitempty"`
	F2Est         float64           `json:"f2_est,omitempty"`
	LockStatic    *float64          `json:"L_static,omitempty"`
	CoherenceTime *float64          `json:"coh_time,omitempty"`
	LockSeries    *phase.LockSeries `json:"lock_series,omitempty"`

	Pairwise *Pairwise `json:"pairwise,omitempty"`
}

// Pairwise holds the band-limited phase-locking values and phase-amplitude
// coupling indices between channel pairs. Channels are numbered from 1.
type Pairwise struct {
	PLVLow12     float64 `json:"plv_low_12"`
	PLVMid23     float64 `json:"plv_mid_23"`
	PLVHigh13    float64 `json:"plv_high_13"`
	PACLowHigh13 float64 `json:"pac_low_high_13"`
	PACLowMid12  float64 `json:"pac_low_mid_12"`
}

// Significant reports whether the normal-approximation p-value is below alpha
func (r *Result) Significant(alpha float64) bool {
	return r.Significance != nil && r.Significance.P < alpha
}

// Analyzer runs configured analyses. All results it produces share one run ID.
type Analyzer struct {
	config *config.AnalysisConfig
	runID  string
	logger logging.Logger
}

// NewAnalyzer validates cfg and creates an analyzer. A nil config uses the
// defaults.
func NewAnalyzer(cfg *config.AnalysisConfig) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	return &Analyzer{
		config: cfg,
		runID:  runID,
		logger: logging.WithFields(logging.Fields{
			"component": "coupling_analyzer",
			"run_id":    runID,
		}),
	}, nil
}

// RunID returns the identifier stamped on every result of this analyzer
func (a *Analyzer) RunID() string {
	return a.runID
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() *config.AnalysisConfig {
	return a.config
}

// AnalyzeFile loads path and analyzes it
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	series, err := timeseries.Load(path)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSeries(ctx, path, series)
}

// AnalyzeSeries runs the enabled paths on the three configured channels of
// series. The bispectral, lock and pairwise paths run concurrently and fill
// disjoint parts of the record.
func (a *Analyzer) AnalyzeSeries(ctx context.Context, name string, series *timeseries.Series) (*Result, error) {
	start := time.Now()
	logger := a.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "AnalyzeSeries",
		"file":     name,
	})

	fs := a.config.SampleRate
	if fs == 0 {
		var err error
		if fs, err = series.SampleRate(); err != nil {
			return nil, err
		}
	}

	channels, err := series.Select(a.config.Channels)
	if err != nil {
		return nil, err
	}
	if len(channels) != 3 {
		return nil, fmt.Errorf("triad analysis needs 3 channels, %s has %d: %w",
			name, len(channels), common.ErrInvalidParameter)
	}

	result := &Result{
		RunID:     a.runID,
		File:      name,
		Timestamp: start.UTC(),
		FS:        fs,
		Samples:   series.Len(),
		Channels:  a.channelNames(series),
		SegLen:    a.config.SegLen,
	}

	logger.Debug("Starting triad analysis", logging.Fields{
		"fs":       fs,
		"samples":  series.Len(),
		"channels": result.Channels,
	})

	g, gctx := errgroup.WithContext(ctx)
	if a.config.EnableBispectrum {
		g.Go(func() error {
			return a.bispectralPath(gctx, result, channels, fs)
		})
	}
	if a.config.EnableLock {
		g.Go(func() error {
			return a.lockPath(result, channels, fs, logger)
		})
	}
	if a.config.EnablePairwise {
		g.Go(func() error {
			return a.pairwisePath(result, channels, fs)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start).Seconds()

	fields := logging.Fields{"elapsed_s": result.Elapsed}
	if result.Peak != nil && result.Significance != nil {
		fields["b2_peak"] = result.Peak.B2
		fields["z"] = result.Significance.Z
	}
	if result.LockStatic != nil {
		fields["L_static"] = *result.LockStatic
	}
	logger.Debug("Triad analysis completed", fields)

	return result, nil
}

// bispectralPath computes the cross-bicoherence peak, its surrogate
// significance, the auto-bicoherence peak of channel 1 and the dominant
// frequencies of every channel
func (a *Analyzer) bispectralPath(ctx context.Context, result *Result, ch [][]float64, fs float64) error {
	params := a.config.BispectralParams()

	cross, err := bispectral.Cross(ch[0], ch[1], ch[2], fs, params)
	if err != nil {
		return fmt.Errorf("cross-bispectrum: %w", err)
	}
	peak, err := bispectral.FindPeak(cross.B2, cross.Freqs)
	if err != nil {
		return err
	}

	auto, err := bispectral.Auto(ch[0], fs, params)
	if err != nil {
		return fmt.Errorf("auto-bispectrum: %w", err)
	}
	autoPeak, err := bispectral.FindPeak(auto.B2, auto.Freqs)
	if err != nil {
		return err
	}

	dominant := make([][]float64, len(ch))
	for c := range ch {
		if dominant[c], _, err = bispectral.DominantFrequencies(ch[c], fs, a.config.DominantPeaks); err != nil {
			return fmt.Errorf("dominant frequencies of channel %d: %w", c+1, err)
		}
	}

	null, err := surrogate.CrossNull(ctx, ch[0], ch[1], ch[2], fs, a.config.NullConfig(), a.config.Source())
	if err != nil {
		return err
	}
	sig, err := stats.PeakZScore(peak.B2, null)
	if err != nil {
		return err
	}

	result.Segments = cross.Segments
	result.Peak = &peak
	result.AutoPeak = &autoPeak
	result.F3Est = dominant[2][0]
	result.Dominant = dominant
	result.Significance = sig
	return nil
}

// lockPath estimates the mode frequencies of channels 1 and 2 and computes the
// static lock, the sliding lock and the coherence time. A record shorter than
// one window has no sliding points and a coherence time of 0.
func (a *Analyzer) lockPath(result *Result, ch [][]float64, fs float64, logger logging.Logger) error {
	f1, err := bispectral.DominantFrequency(ch[0], fs)
	if err != nil {
		return fmt.Errorf("mode 1 frequency: %w", err)
	}
	f2, err := bispectral.DominantFrequency(ch[1], fs)
	if err != nil {
		return fmt.Errorf("mode 2 frequency: %w", err)
	}

	lockCfg := a.config.LockConfig()
	static, err := phase.TriadLock(ch[0], ch[1], ch[2], fs, f1, f2, lockCfg)
	if err != nil {
		return fmt.Errorf("static lock: %w", err)
	}

	series, err := phase.TriadLockSliding(ch[0], ch[1], ch[2], fs, f1, f2, lockCfg)
	switch {
	case errors.Is(err, common.ErrInsufficientData):
		logger.Warn("Record shorter than one lock window", logging.Fields{
			"window_s": lockCfg.WindowSeconds,
		})
		series = &phase.LockSeries{}
	case err != nil:
		return fmt.Errorf("sliding lock: %w", err)
	}

	coh, err := phase.CoherenceTime(series, a.config.LockThreshold)
	if err != nil {
		return err
	}

	result.F1Est = f1
	result.F2Est = f2
	result.LockStatic = &static
	result.CoherenceTime = &coh
	if a.config.KeepLockSeries {
		result.LockSeries = series
	}
	return nil
}

// pairwisePath fills the PLV and modulation index metrics
func (a *Analyzer) pairwisePath(result *Result, ch [][]float64, fs float64) error {
	low, mid, high := a.config.LowBand, a.config.MidBand, a.config.HighBand
	pw := &Pairwise{}

	var err error
	if pw.PLVLow12, err = phase.PLV(ch[0], ch[1], fs, low[0], low[1]); err != nil {
		return fmt.Errorf("plv low 1-2: %w", err)
	}
	if pw.PLVMid23, err = phase.PLV(ch[1], ch[2], fs, mid[0], mid[1]); err != nil {
		return fmt.Errorf("plv mid 2-3: %w", err)
	}
	if pw.PLVHigh13, err = phase.PLV(ch[0], ch[2], fs, high[0], high[1]); err != nil {
		return fmt.Errorf("plv high 1-3: %w", err)
	}
	if pw.PACLowHigh13, err = phase.ModulationIndex(ch[0], ch[2], fs, low, high, phase.DefaultModulationBins); err != nil {
		return fmt.Errorf("pac low-high 1-3: %w", err)
	}
	if pw.PACLowMid12, err = phase.ModulationIndex(ch[0], ch[1], fs, low, mid, phase.DefaultModulationBins); err != nil {
		return fmt.Errorf("pac low-mid 1-2: %w", err)
	}

	result.Pairwise = pw
	return nil
}

func (a *Analyzer) channelNames(series *timeseries.Series) []string {
	tokens := a.config.Channels
	if len(tokens) == 0 {
		n := min(3, len(series.Names))
		return append([]string(nil), series.Names[:n]...)
	}
	names := make([]string, len(tokens))
	for i, tok := range tokens {
		names[i] = tok
		if idx, err := series.Index(tok); err == nil && idx < len(series.Names) {
			names[i] = series.Names[idx]
		}
	}
	return names
}

package coupling

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/coupling/config"
	"github.com/RyanBlaney/sonido-triad/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coupledConfig resolves 42, 7 and 49 Hz to bin centres 6, 1 and 7 at 1 kHz
func coupledConfig() *config.AnalysisConfig {
	cfg := config.DefaultAnalysisConfig()
	cfg.SegLen = 143
	cfg.Surrogates = 50
	cfg.Seed = 11
	return cfg
}

// driftingTriad wanders modes 1 and 3 together; steady tones would keep their
// surrogates coherent too and the null could not be rejected.
func driftingTriad(t *testing.T) *timeseries.Series {
	t.Helper()
	synth := timeseries.DefaultSynthConfig()
	synth.Duration = 4
	synth.Noise = 0.5
	synth.PhaseDrift = 0.11
	series, err := timeseries.SynthTriad(synth)
	require.NoError(t, err)
	return series
}

func TestNewAnalyzer(t *testing.T) {
	a, err := NewAnalyzer(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, a.RunID())
	assert.Equal(t, config.DefaultSegLen, a.Config().SegLen)

	b, err := NewAnalyzer(nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID(), b.RunID())

	bad := config.DefaultAnalysisConfig()
	bad.SegLen = 0
	_, err = NewAnalyzer(bad)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestAnalyzeSeriesCoupledTriad(t *testing.T) {
	a, err := NewAnalyzer(coupledConfig())
	require.NoError(t, err)

	res, err := a.AnalyzeSeries(context.Background(), "synthetic", driftingTriad(t))
	require.NoError(t, err)

	assert.Equal(t, a.RunID(), res.RunID)
	assert.Equal(t, "synthetic", res.File)
	assert.InDelta(t, 1000, res.FS, 1e-6)
	assert.Equal(t, 4000, res.Samples)
	assert.Equal(t, timeseries.TriadNames, res.Channels)
	assert.Equal(t, 55, res.Segments)

	require.NotNil(t, res.Peak)
	assert.InDelta(t, 6, res.Peak.I, 1)
	assert.InDelta(t, 1, res.Peak.J, 1)

	require.NotNil(t, res.Significance)
	assert.Equal(t, 50, res.Significance.Trials)
	assert.Greater(t, res.Significance.Z, 3.0)
	assert.True(t, res.Significant(0.01))
	assert.InDelta(t, 1.0/51, res.Significance.PEmpirical, 1e-12)

	require.NotNil(t, res.AutoPeak)
	require.Len(t, res.Dominant, 3)
	for _, freqs := range res.Dominant {
		assert.Len(t, freqs, config.DefaultDominantPeaks)
	}
	assert.InDelta(t, 7, res.Dominant[1][0], 0.5)
	assert.InDelta(t, 49, res.F3Est, 3)

	require.NotNil(t, res.LockStatic)
	assert.GreaterOrEqual(t, *res.LockStatic, 0.0)
	assert.LessOrEqual(t, *res.LockStatic, 1.0)
	require.NotNil(t, res.CoherenceTime)
	assert.GreaterOrEqual(t, *res.CoherenceTime, 0.0)
	assert.Nil(t, res.LockSeries)
	assert.InDelta(t, 7, res.F2Est, 0.5)
}

func TestAnalyzeSeriesIsSeeded(t *testing.T) {
	series := driftingTriad(t)
	cfg := coupledConfig()
	cfg.Surrogates = 10
	cfg.EnableLock = false

	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)
	first, err := a.AnalyzeSeries(context.Background(), "a", series)
	require.NoError(t, err)
	second, err := a.AnalyzeSeries(context.Background(), "b", series)
	require.NoError(t, err)

	assert.Equal(t, first.Significance.NullMean, second.Significance.NullMean)
	assert.Equal(t, first.Significance.Z, second.Significance.Z)
	assert.Nil(t, first.LockStatic)
	assert.Nil(t, first.CoherenceTime)
}

func TestAnalyzeSeriesWhiteNoise(t *testing.T) {
	synth := timeseries.DefaultSynthConfig()
	synth.Duration = 4
	synth.Amps = [3]float64{0, 0, 0}
	synth.Noise = 1
	series, err := timeseries.SynthTriad(synth)
	require.NoError(t, err)

	cfg := coupledConfig()
	cfg.EnableLock = false
	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	res, err := a.AnalyzeSeries(context.Background(), "noise", series)
	require.NoError(t, err)
	assert.Less(t, res.Significance.Z, 3.5)
	assert.Less(t, res.Peak.B2, 0.5)
}

func TestAnalyzeSeriesLockedTriad(t *testing.T) {
	synth := timeseries.DefaultSynthConfig()
	synth.Duration = 10
	synth.Noise = 0.1
	series, err := timeseries.SynthTriad(synth)
	require.NoError(t, err)

	cfg := config.DefaultAnalysisConfig()
	cfg.EnableBispectrum = false
	cfg.KeepLockSeries = true
	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	res, err := a.AnalyzeSeries(context.Background(), "locked", series)
	require.NoError(t, err)

	assert.Nil(t, res.Peak)
	assert.Nil(t, res.Significance)
	assert.False(t, res.Significant(0.05))
	assert.InDelta(t, 42, res.F1Est, 0.2)
	assert.InDelta(t, 7, res.F2Est, 0.2)

	require.NotNil(t, res.LockStatic)
	assert.Greater(t, *res.LockStatic, 0.8)
	require.NotNil(t, res.LockSeries)
	assert.Equal(t, 37, res.LockSeries.Len())
	assert.Greater(t, *res.CoherenceTime, 5.0)
}

func TestAnalyzeSeriesPairwise(t *testing.T) {
	series := driftingTriad(t)

	cfg := config.DefaultAnalysisConfig()
	cfg.EnableBispectrum = false
	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)
	res, err := a.AnalyzeSeries(context.Background(), "plain", series)
	require.NoError(t, err)
	assert.Nil(t, res.Pairwise)

	cfg = config.DefaultAnalysisConfig()
	cfg.EnableBispectrum = false
	cfg.EnablePairwise = true
	cfg.LowBand = [2]float64{5, 9}
	cfg.MidBand = [2]float64{40, 44}
	cfg.HighBand = [2]float64{47, 51}
	a, err = NewAnalyzer(cfg)
	require.NoError(t, err)
	res, err = a.AnalyzeSeries(context.Background(), "pairwise", series)
	require.NoError(t, err)

	require.NotNil(t, res.Pairwise)
	require.NotNil(t, res.LockStatic)
	for _, plv := range []float64{res.Pairwise.PLVLow12, res.Pairwise.PLVMid23, res.Pairwise.PLVHigh13} {
		assert.GreaterOrEqual(t, plv, 0.0)
		assert.LessOrEqual(t, plv, 1.0)
	}
	assert.GreaterOrEqual(t, res.Pairwise.PACLowHigh13, 0.0)
	assert.GreaterOrEqual(t, res.Pairwise.PACLowMid12, 0.0)
}

func TestAnalyzeSeriesPairwiseBandAboveNyquist(t *testing.T) {
	cfg := config.DefaultAnalysisConfig()
	cfg.EnableBispectrum = false
	cfg.EnablePairwise = true
	cfg.HighBand = [2]float64{520, 560}
	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	_, err = a.AnalyzeSeries(context.Background(), "nyquist", driftingTriad(t))
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestAnalyzeSeriesShorterThanLockWindow(t *testing.T) {
	synth := timeseries.DefaultSynthConfig()
	synth.Duration = 0.5
	series, err := timeseries.SynthTriad(synth)
	require.NoError(t, err)

	cfg := config.DefaultAnalysisConfig()
	cfg.EnableBispectrum = false
	cfg.KeepLockSeries = true
	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	res, err := a.AnalyzeSeries(context.Background(), "short", series)
	require.NoError(t, err)
	require.NotNil(t, res.LockStatic)
	require.NotNil(t, res.LockSeries)
	assert.Zero(t, res.LockSeries.Len())
	assert.Zero(t, *res.CoherenceTime)
}

func TestAnalyzeSeriesChannelSelection(t *testing.T) {
	series := &timeseries.Series{
		Time:     []float64{0, 0.001, 0.002, 0.003},
		Channels: [][]float64{{1, 2, 3, 4}, {4, 3, 2, 1}},
		Names:    []string{"a", "b"},
	}

	a, err := NewAnalyzer(config.DefaultAnalysisConfig())
	require.NoError(t, err)
	_, err = a.AnalyzeSeries(context.Background(), "missing", series)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)

	cfg := config.DefaultAnalysisConfig()
	cfg.Channels = nil
	a, err = NewAnalyzer(cfg)
	require.NoError(t, err)
	_, err = a.AnalyzeSeries(context.Background(), "two", series)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestAnalyzeSeriesChannelIndices(t *testing.T) {
	series := driftingTriad(t)
	// reversed order through zero-based indices
	cfg := coupledConfig()
	cfg.Channels = []string{"2", "1", "0"}
	cfg.EnableBispectrum = false
	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	res, err := a.AnalyzeSeries(context.Background(), "indexed", series)
	require.NoError(t, err)
	assert.Equal(t, []string{"mode3_I", "mode2_I", "mode1_I"}, res.Channels)
}

func TestAnalyzeFile(t *testing.T) {
	path := writeTriad(t, t.TempDir(), "triad.csv", 1)

	cfg := coupledConfig()
	cfg.Surrogates = 5
	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	res, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.File)
	assert.InDelta(t, 1000, res.FS, 1e-6)

	_, err = a.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func writeTriad(t *testing.T, dir, name string, seed uint64) string {
	t.Helper()
	synth := timeseries.DefaultSynthConfig()
	synth.Duration = 2
	synth.Seed = seed
	series, err := timeseries.SynthTriad(synth)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, series.WriteCSV(f))
	return path
}

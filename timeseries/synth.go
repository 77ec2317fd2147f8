package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
)

// TriadNames are the channel names of a synthetic triad
var TriadNames = []string{"mode1_I", "mode2_I", "mode3_I"}

// Fixed initial phases of the three modes; their triad sum is constant
var triadPhases = [3]float64{0.1, -0.2, 0.3}

// SynthConfig describes a synthetic three-wave triad: sine modes at F1, F2 and
// F1+F2 plus white noise.
type SynthConfig struct {
	FS       float64    `json:"fs"`
	Duration float64    `json:"duration"` // seconds
	F1       float64    `json:"f1"`
	F2       float64    `json:"f2"`
	Amps     [3]float64 `json:"amps"`
	Noise    float64    `json:"noise"` // standard deviation
	Seed     uint64     `json:"seed"`

	// PhaseDrift is the per-sample standard deviation of a random-walk phase
	// shared by modes 1 and 3. The triad phase sum stays constant while the
	// individual phases wander.
	PhaseDrift float64 `json:"phase_drift"`
}

// DefaultSynthConfig returns a 42 + 7 -> 49 Hz triad sampled at 1 kHz for
// 4.096 s with noise 0.3
func DefaultSynthConfig() SynthConfig {
	return SynthConfig{
		FS:       1000,
		Duration: 4.096,
		F1:       42,
		F2:       7,
		Amps:     [3]float64{1, 1, 1},
		Noise:    0.3,
		Seed:     7,
	}
}

// Validate checks that the config describes at least one sample and that all
// three modes sit below Nyquist
func (c SynthConfig) Validate() error {
	if !(c.FS > 0) || !(c.Duration > 0) {
		return fmt.Errorf("synthetic triad fs %g, duration %g: %w", c.FS, c.Duration, common.ErrInvalidParameter)
	}
	if int(c.Duration*c.FS) < 1 {
		return fmt.Errorf("synthetic triad has no samples: %w", common.ErrInsufficientData)
	}
	if c.F1 < 0 || c.F2 < 0 || c.F1+c.F2 >= c.FS/2 {
		return fmt.Errorf("synthetic modes %g + %g Hz exceed Nyquist %g: %w",
			c.F1, c.F2, c.FS/2, common.ErrInvalidParameter)
	}
	if c.Noise < 0 || c.PhaseDrift < 0 {
		return fmt.Errorf("negative noise or drift: %w", common.ErrInvalidParameter)
	}
	return nil
}

// SynthTriad generates the three-channel series described by cfg
func SynthTriad(cfg SynthConfig) (*Series, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5851f42d4c957f2d))
	n := int(cfg.Duration * cfg.FS)

	series := &Series{
		Time:     make([]float64, n),
		Channels: [][]float64{make([]float64, n), make([]float64, n), make([]float64, n)},
		Names:    append([]string(nil), TriadNames...),
	}

	w1 := 2 * math.Pi * cfg.F1
	w2 := 2 * math.Pi * cfg.F2
	w3 := 2 * math.Pi * (cfg.F1 + cfg.F2)
	drift := 0.0
	for i := range n {
		t := float64(i) / cfg.FS
		series.Time[i] = t
		if i > 0 && cfg.PhaseDrift > 0 {
			drift += cfg.PhaseDrift * rng.NormFloat64()
		}
		series.Channels[0][i] = cfg.Amps[0] * math.Sin(w1*t+triadPhases[0]+drift)
		series.Channels[1][i] = cfg.Amps[1] * math.Sin(w2*t+triadPhases[1])
		series.Channels[2][i] = cfg.Amps[2] * math.Sin(w3*t+triadPhases[2]+drift)
	}

	if cfg.Noise > 0 {
		for c := range series.Channels {
			for i := range n {
				series.Channels[c][i] += cfg.Noise * rng.NormFloat64()
			}
		}
	}
	return series, nil
}

// WriteCSV writes the series with a leading time column
func (s *Series) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, s.Names...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, t := range s.Time {
		record[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for c, ch := range s.Channels {
			record[c+1] = strconv.FormatFloat(ch[i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Package stats converts an observed peak bicoherence and its surrogate null
// into significance figures.
package stats

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// sdEpsilon keeps z finite when every surrogate maximum is identical
const sdEpsilon = 1e-12

// MinTrials is the smallest null size for which a sample standard deviation
// exists. Smaller nulls are flagged Degenerate.
const MinTrials = 2

// Significance summarizes an observed peak against its null distribution.
//
// P treats the null maxima as normal, which is an approximation that holds
// reasonably for B around 50 and is not an exact test. PEmpirical makes no
// distributional assumption but cannot go below 1/(B+1).
type Significance struct {
	Peak       float64 `json:"peak"`
	Z          float64 `json:"z"`
	P          float64 `json:"p"`
	PEmpirical float64 `json:"p_emp"`
	NullMean   float64 `json:"null_mean"`
	NullSD     float64 `json:"null_sd"`
	NullQ95    float64 `json:"null_q95"`
	Trials     int     `json:"trials"`

	// Degenerate marks nulls with fewer than MinTrials values. Z and P are
	// still computed but should not be trusted.
	Degenerate bool `json:"degenerate"`
}

// PeakZScore computes z = (peak - mean) / (sd + eps) against null and the
// one-sided p-value 1 - Phi(z).
func PeakZScore(peak float64, null []float64) (*Significance, error) {
	if len(null) == 0 {
		return nil, fmt.Errorf("empty surrogate null: %w", common.ErrInvalidParameter)
	}

	mean := common.Mean(null)
	sd := common.SampleStdDev(null)
	z := (peak - mean) / (sd + sdEpsilon)

	return &Significance{
		Peak:       peak,
		Z:          z,
		P:          distuv.UnitNormal.Survival(z),
		PEmpirical: EmpiricalPValue(peak, null),
		NullMean:   mean,
		NullSD:     sd,
		NullQ95:    Quantile(null, 0.95),
		Trials:     len(null),
		Degenerate: len(null) < MinTrials,
	}, nil
}

// EmpiricalPValue returns (1 + #{null >= peak}) / (B + 1)
func EmpiricalPValue(peak float64, null []float64) float64 {
	exceed := 0
	for _, v := range null {
		if v >= peak {
			exceed++
		}
	}
	return float64(1+exceed) / float64(len(null)+1)
}

// Quantile returns the empirical p-quantile of values without reordering them
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(common.Clamp(p, 0, 1), stat.Empirical, sorted, nil)
}

// DegenerateError reports a flagged result as ErrDegenerateNull, for callers
// that prefer to reject it outright.
func (s *Significance) DegenerateError() error {
	if !s.Degenerate {
		return nil
	}
	return fmt.Errorf("%d surrogate trials: %w", s.Trials, common.ErrDegenerateNull)
}

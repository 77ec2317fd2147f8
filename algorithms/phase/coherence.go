package phase

import (
	"fmt"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
)

// DefaultCoherenceThreshold is the lock level counted as coherent
const DefaultCoherenceThreshold = 0.5

// CoherenceTime returns the time in seconds the lock series spends at or
// above threshold, approximated as the number of qualifying points times the
// median spacing of the window centres. A series with fewer than two points
// has no spacing and yields 0.
func CoherenceTime(series *LockSeries, threshold float64) (float64, error) {
	if !(threshold >= 0 && threshold <= 1) {
		return 0, fmt.Errorf("coherence threshold %g outside [0, 1]: %w", threshold, common.ErrInvalidParameter)
	}
	if series == nil || series.Len() == 0 {
		return 0, nil
	}
	if len(series.Values) != len(series.Times) {
		return 0, fmt.Errorf("lock series has %d times and %d values: %w",
			len(series.Times), len(series.Values), common.ErrInvalidParameter)
	}
	if series.Len() < 2 {
		return 0, nil
	}

	dt := common.Median(common.Diff(series.Times))

	count := 0
	for _, v := range series.Values {
		if v >= threshold {
			count++
		}
	}
	return float64(count) * dt, nil
}

package spectral

import (
	"fmt"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/algorithms/windowing"
)

// SegmentCount returns how many full segments of seglen fit in n samples with
// the given stride: 1 + (n-seglen)/step, or 0 when seglen > n.
func SegmentCount(n, seglen, step int) int {
	if seglen <= 0 || step <= 0 || seglen > n {
		return 0
	}
	return 1 + (n-seglen)/step
}

// ResolveStep applies the default stride of seglen/2 when step is 0 and
// validates the result.
func ResolveStep(seglen, step int) (int, error) {
	if seglen <= 0 {
		return 0, fmt.Errorf("segment length %d: %w", seglen, common.ErrInvalidParameter)
	}
	if step < 0 {
		return 0, fmt.Errorf("segment step %d: %w", step, common.ErrInvalidParameter)
	}
	if step == 0 {
		step = seglen / 2
	}
	if step < 1 {
		return 0, fmt.Errorf("segment length %d leaves no default step: %w", seglen, common.ErrInvalidParameter)
	}
	return step, nil
}

// Detrend returns a copy of x with its mean removed
func Detrend(x []float64) []float64 {
	out := make([]float64, len(x))
	mean := common.Mean(x)
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}

// Segment splits x into overlapping windows of seglen samples every step
// samples. The returned segments share memory with x.
func Segment(x []float64, seglen, step int) ([][]float64, error) {
	step, err := ResolveStep(seglen, step)
	if err != nil {
		return nil, err
	}

	count := SegmentCount(len(x), seglen, step)
	if count == 0 {
		return nil, fmt.Errorf("segment length %d exceeds series length %d: %w",
			seglen, len(x), common.ErrInsufficientData)
	}

	segments := make([][]float64, count)
	for i := range count {
		start := i * step
		segments[i] = x[start : start+seglen : start+seglen]
	}
	return segments, nil
}

// SpectrumSet holds one Hann-tapered half spectrum per segment
type SpectrumSet struct {
	Spectra [][]complex128 `json:"-"`
	SegLen  int            `json:"seg_len"`
	Step    int            `json:"step"`
	Bins    int            `json:"bins"` // seglen/2 + 1, bin 0 is DC
}

// Count returns the number of segments in the set
func (s *SpectrumSet) Count() int {
	return len(s.Spectra)
}

// SegmentSpectra optionally removes the mean of x, segments it and returns
// the tapered spectrum of every segment.
func SegmentSpectra(x []float64, seglen, step int, detrend bool) (*SpectrumSet, error) {
	step, err := ResolveStep(seglen, step)
	if err != nil {
		return nil, err
	}

	src := x
	if detrend {
		src = Detrend(x)
	}

	segments, err := Segment(src, seglen, step)
	if err != nil {
		return nil, err
	}

	window := windowing.NewHann(seglen, true)
	transform := NewFFT()

	set := &SpectrumSet{
		Spectra: make([][]complex128, len(segments)),
		SegLen:  seglen,
		Step:    step,
		Bins:    seglen/2 + 1,
	}

	for i, seg := range segments {
		set.Spectra[i] = transform.ComputeReal(window.Apply(seg))
	}

	return set, nil
}

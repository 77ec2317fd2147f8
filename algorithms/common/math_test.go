package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{name: "empty", data: []float64{}, expected: 0},
		{name: "odd", data: []float64{3, 1, 2}, expected: 2},
		{name: "even", data: []float64{4, 1, 3, 2}, expected: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Median(tt.data), 1e-12)
		})
	}
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, SampleStdDev([]float64{5}))
	// n-1 denominator: var = ((1-2)^2 + (3-2)^2) / 1 = 2
	assert.InDelta(t, 1.4142135623730951, SampleStdDev([]float64{1, 3}), 1e-12)
}

func TestDiff(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, Diff([]float64{0, 1, 3, 6}))
	assert.Empty(t, Diff([]float64{1}))
}

func TestErrorKindsWrap(t *testing.T) {
	err := fmt.Errorf("seglen 0: %w", ErrInvalidParameter)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.False(t, errors.Is(err, ErrInsufficientData))
}

// Package timeseries loads multi-channel recordings and generates synthetic
// triads for the coupling analyzer.
package timeseries

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
)

// Series is a time column plus equally long data channels
type Series struct {
	Source   string      `json:"source,omitempty"`
	Time     []float64   `json:"time"`
	Channels [][]float64 `json:"-"` // Channels[c][i] is sample i of channel c
	Names    []string    `json:"colnames"`
}

// Len returns the number of samples
func (s *Series) Len() int {
	return len(s.Time)
}

// NumChannels returns the number of data channels
func (s *Series) NumChannels() int {
	return len(s.Channels)
}

// SampleRate infers the rate as 1 / median(diff(time))
func (s *Series) SampleRate() (float64, error) {
	if len(s.Time) < 2 {
		return 0, fmt.Errorf("sample rate needs at least 2 time stamps, got %d: %w",
			len(s.Time), common.ErrInsufficientData)
	}
	dt := common.Median(common.Diff(s.Time))
	if !(dt > 0) {
		return 0, fmt.Errorf("median time step %g is not positive: %w", dt, common.ErrInvalidParameter)
	}
	return 1 / dt, nil
}

// Duration returns the last time stamp minus the first
func (s *Series) Duration() float64 {
	if len(s.Time) == 0 {
		return 0
	}
	return s.Time[len(s.Time)-1] - s.Time[0]
}

// Index resolves a channel token: a token made only of digits is a zero-based
// index, anything else is a column name.
func (s *Series) Index(token string) (int, error) {
	token = strings.TrimSpace(token)
	if isDigits(token) {
		idx, err := strconv.Atoi(token)
		if err != nil || idx >= len(s.Channels) {
			return 0, fmt.Errorf("channel index %s out of range [0, %d): %w",
				token, len(s.Channels), common.ErrInvalidParameter)
		}
		return idx, nil
	}
	for i, name := range s.Names {
		if name == token {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no channel named %q (have %s): %w",
		token, strings.Join(s.Names, ", "), common.ErrInvalidParameter)
}

// Channel returns the samples of the channel named or indexed by token
func (s *Series) Channel(token string) ([]float64, error) {
	idx, err := s.Index(token)
	if err != nil {
		return nil, err
	}
	return s.Channels[idx], nil
}

// Select resolves every token in order. An empty token list selects up to
// the first three channels.
func (s *Series) Select(tokens []string) ([][]float64, error) {
	if len(tokens) == 0 {
		n := min(3, len(s.Channels))
		return s.Channels[:n:n], nil
	}
	out := make([][]float64, 0, len(tokens))
	for _, tok := range tokens {
		ch, err := s.Channel(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// ParseChannels splits a comma-separated channel list, dropping empty tokens
func ParseChannels(list string) []string {
	var tokens []string
	for tok := range strings.SplitSeq(list, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package phase

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/algorithms/filters"
	"github.com/RyanBlaney/sonido-triad/algorithms/spectral"
)

const (
	// DefaultModulationBins is the phase histogram size of ModulationIndex
	DefaultModulationBins = 18

	defaultOrder = 4
	miEpsilon    = 1e-12
)

// PLV returns the phase-locking value |mean(exp(i*(phi1 - phi2)))| of two
// channels band-passed to [lowHz, highHz].
func PLV(sig1, sig2 []float64, fs, lowHz, highHz float64) (float64, error) {
	if len(sig1) != len(sig2) {
		return 0, fmt.Errorf("plv lengths %d, %d: %w", len(sig1), len(sig2), common.ErrChannelLengthMismatch)
	}
	phi1, err := BandPhase(sig1, fs, lowHz, highHz, defaultOrder)
	if err != nil {
		return 0, err
	}
	phi2, err := BandPhase(sig2, fs, lowHz, highHz, defaultOrder)
	if err != nil {
		return 0, err
	}

	var re, im float64
	for k := range phi1 {
		s, c := math.Sincos(phi1[k] - phi2[k])
		re += c
		im += s
	}
	return common.Clamp(math.Hypot(re, im)/float64(len(phi1)), 0, 1), nil
}

// ModulationIndex returns the Tort phase-amplitude coupling index: the
// envelope of ampSig in ampBand is averaged per phase bin of phaseSig in
// phaseBand, and the KL divergence of that profile from uniform is divided by
// log(nBins). Typical values are below 0.3.
func ModulationIndex(phaseSig, ampSig []float64, fs float64, phaseBand, ampBand [2]float64, nBins int) (float64, error) {
	if len(phaseSig) != len(ampSig) {
		return 0, fmt.Errorf("modulation index lengths %d, %d: %w",
			len(phaseSig), len(ampSig), common.ErrChannelLengthMismatch)
	}
	if nBins < 2 {
		return 0, fmt.Errorf("modulation index bins %d: %w", nBins, common.ErrInvalidParameter)
	}

	phi, err := BandPhase(phaseSig, fs, phaseBand[0], phaseBand[1], defaultOrder)
	if err != nil {
		return 0, err
	}
	high, err := filters.BandpassZeroPhase(ampSig, fs, ampBand[0], ampBand[1], defaultOrder)
	if err != nil {
		return 0, err
	}
	amp := spectral.Envelope(high)

	width := 2 * math.Pi / float64(nBins)
	sums := make([]float64, nBins)
	counts := make([]int, nBins)
	for k, p := range phi {
		bin := int(math.Floor((p + math.Pi) / width))
		bin = min(max(bin, 0), nBins-1)
		sums[bin] += amp[k]
		counts[bin]++
	}

	meanAmp := make([]float64, nBins)
	total := 0.0
	for b := range nBins {
		if counts[b] > 0 {
			meanAmp[b] = sums[b] / float64(counts[b])
		}
		total += meanAmp[b]
	}

	logUniform := math.Log(1 / float64(nBins))
	kl := 0.0
	for _, m := range meanAmp {
		p := m / (total + miEpsilon)
		kl += p * (math.Log(p+miEpsilon) - logUniform)
	}
	return max(0, kl/math.Log(float64(nBins))), nil
}

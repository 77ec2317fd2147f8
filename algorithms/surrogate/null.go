package surrogate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/RyanBlaney/sonido-triad/algorithms/bispectral"
	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"golang.org/x/sync/errgroup"
)

// NullConfig controls how many surrogate trials are drawn and how many run at
// once
type NullConfig struct {
	Trials  int               `json:"trials"`
	Workers int               `json:"workers"` // <= 0 means GOMAXPROCS
	Params  bispectral.Params `json:"params"`
}

// DefaultNullConfig returns 50 trials on every available CPU
func DefaultNullConfig(seglen int) NullConfig {
	return NullConfig{
		Trials: 50,
		Params: bispectral.DefaultParams(seglen),
	}
}

func (c NullConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// AutoNull returns the maximum auto-bicoherence of cfg.Trials phase-randomized
// copies of x, in trial order.
func AutoNull(ctx context.Context, x []float64, fs float64, cfg NullConfig, src rand.Source) ([]float64, error) {
	return run(ctx, cfg, src, 1, func(sources []rand.Source) (*bispectral.Result, error) {
		return bispectral.Auto(PhaseRandomize(x, sources[0]), fs, cfg.Params)
	})
}

// CrossNull returns the maximum cross-bicoherence of cfg.Trials trials, each
// randomizing a, b and c independently.
func CrossNull(ctx context.Context, a, b, c []float64, fs float64, cfg NullConfig, src rand.Source) ([]float64, error) {
	if len(a) != len(b) || len(a) != len(c) {
		return nil, fmt.Errorf("surrogate channels %d, %d, %d: %w",
			len(a), len(b), len(c), common.ErrChannelLengthMismatch)
	}
	return run(ctx, cfg, src, 3, func(sources []rand.Source) (*bispectral.Result, error) {
		return bispectral.Cross(
			PhaseRandomize(a, sources[0]),
			PhaseRandomize(b, sources[1]),
			PhaseRandomize(c, sources[2]),
			fs, cfg.Params)
	})
}

// run draws every trial seed from src before starting any worker, so the null
// does not depend on scheduling.
func run(ctx context.Context, cfg NullConfig, src rand.Source, perTrial int,
	trial func([]rand.Source) (*bispectral.Result, error)) ([]float64, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("surrogate count %d: %w", cfg.Trials, common.ErrInvalidParameter)
	}
	if src == nil {
		src = entropySource()
	}

	master := rand.New(src)
	seeds := make([]uint64, cfg.Trials*perTrial)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	null := make([]float64, cfg.Trials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())

	for t := range cfg.Trials {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sources := make([]rand.Source, perTrial)
			for s := range sources {
				sources[s] = NewSource(seeds[t*perTrial+s])
			}
			res, err := trial(sources)
			if err != nil {
				return fmt.Errorf("surrogate trial %d: %w", t, err)
			}
			null[t] = res.MaxBicoherence()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return null, nil
}

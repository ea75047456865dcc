package gen

import (
	"errors"
	"fmt"

	"github.com/graphbench/graphgen/internal/dist"
	"github.com/graphbench/graphgen/internal/progress"
)

// Config describes one generation run. It is populated by the command line
// and validated before any file is touched.
type Config struct {
	// Nodes is the total node count; ids are dense over [0, Nodes).
	Nodes uint64
	// MinProp and MaxProp bound the sampled property byte length.
	MinProp int
	MaxProp int

	EdgeDist     dist.Kind
	NodePropDist dist.Kind
	EdgePropDist dist.Kind

	// OutDir receives the destination tables and the per-chunk files.
	OutDir string
	// Workers is the fixed parallelism degree; the id space is split into
	// exactly this many chunks before any work starts.
	Workers int

	// Incremental keeps the per-chunk files as the final deliverable and
	// restricts edge destinations to the edge's own chunk, so streaming
	// consumers never see a forward reference.
	Incremental bool

	// Seed makes every worker's random state reproducible. 0 seeds each
	// worker from OS entropy instead.
	Seed uint64

	// Progress receives monotonic counters. Optional.
	Progress *progress.Counters
}

func (cfg *Config) validate() error {
	if cfg.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if cfg.MinProp < 0 {
		return errors.New("min property size must not be negative")
	}
	if cfg.MaxProp < cfg.MinProp {
		return fmt.Errorf("max property size %d is below min %d", cfg.MaxProp, cfg.MinProp)
	}
	if cfg.OutDir == "" {
		return errors.New("outdir must be specified")
	}
	return nil
}

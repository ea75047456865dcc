package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/graphbench/graphgen/internal/dist"
	"github.com/graphbench/graphgen/internal/gen"
	"github.com/graphbench/graphgen/internal/progress"
)

var (
	optNodes        = flag.Uint64("n", 0, "number of nodes to generate")
	optMinProp      = flag.Int("min-prop", 0, "minimum property size (bytes)")
	optMaxProp      = flag.Int("max-prop", 0, "maximum property size (bytes)")
	optEdgeDist     = flag.String("edge-dist", "none", "edge count distribution (none|uniform|normal|exp)")
	optNodePropDist = flag.String("node-prop-dist", "none", "node property distribution (none|uniform|normal|exp)")
	optEdgePropDist = flag.String("edge-prop-dist", "none", "edge property distribution (none|uniform|normal|exp)")
	optOutDir       = flag.String("outdir", ".", "output directory")
	optWorkers      = flag.Int("workers", 8, "number of generation workers")
	optIncremental  = flag.Bool("incremental", false, "keep per-chunk files, skip the merge")
	optSeed         = flag.Uint64("seed", 0, "RNG seed, 0 seeds from OS entropy")
	optInterval     = flag.Duration("progress-interval", 3*time.Second, "interval between progress lines")
	optVersion      = flag.Bool("version", false, "show version")
)

var version string

func main() {
	flag.Parse()

	if *optVersion {
		fmt.Println(version)
		return
	}

	if err := run(); err != nil {
		log.Fatalf("*** %v", err)
	}
}

func run() error {
	if *optNodes == 0 {
		return errors.New("-n must be specified")
	}

	edgeDist, err := dist.ParseKind(*optEdgeDist)
	if err != nil {
		return fmt.Errorf("-edge-dist: %w", err)
	}
	nodePropDist, err := dist.ParseKind(*optNodePropDist)
	if err != nil {
		return fmt.Errorf("-node-prop-dist: %w", err)
	}
	edgePropDist, err := dist.ParseKind(*optEdgePropDist)
	if err != nil {
		return fmt.Errorf("-edge-prop-dist: %w", err)
	}

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	counters := &progress.Counters{}
	repCtx, repCancel := context.WithCancel(context.Background())
	repDone := make(chan struct{})
	go func() {
		defer close(repDone)
		progress.Report(repCtx, counters, *optInterval)
	}()

	runID := uuid.NewString()
	log.Printf("run=%s n=%d workers=%d outdir=%s incremental=%v",
		runID, *optNodes, *optWorkers, *optOutDir, *optIncremental)

	from := time.Now()
	err = gen.Run(ctx, gen.Config{
		Nodes:        *optNodes,
		MinProp:      *optMinProp,
		MaxProp:      *optMaxProp,
		EdgeDist:     edgeDist,
		NodePropDist: nodePropDist,
		EdgePropDist: edgePropDist,
		OutDir:       *optOutDir,
		Workers:      *optWorkers,
		Incremental:  *optIncremental,
		Seed:         *optSeed,
		Progress:     counters,
	})
	repCancel()
	<-repDone
	if err != nil {
		return err
	}

	log.Printf("run=%s dur=%s", runID, time.Since(from))
	return nil
}

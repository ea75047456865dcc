package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Headers of the two destination tables.
const (
	nodeHeader = "NodeID|data\n"
	edgeHeader = "SrcID|DstID\n"
)

// Run executes one full generation: create the destination tables with
// their headers, run one generator per chunk in parallel, and, unless the
// run is incremental, plan the destination offsets and merge every chunk
// into its disjoint byte range. Each phase joins completely before the
// next starts, and the first unrecoverable error aborts the whole run.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	nodeDest := filepath.Join(cfg.OutDir, "nodes")
	edgeDest := filepath.Join(cfg.OutDir, "edges")
	if err := os.WriteFile(nodeDest, []byte(nodeHeader), 0644); err != nil {
		return fmt.Errorf("write %s: %w", nodeDest, err)
	}
	if err := os.WriteFile(edgeDest, []byte(edgeHeader), 0644); err != nil {
		return fmt.Errorf("write %s: %w", edgeDest, err)
	}

	chunks := Partition(cfg.Nodes, cfg.Workers)

	eg, genCtx := errgroup.WithContext(ctx)
	for _, c := range chunks {
		g, err := newGenerator(cfg, c)
		if err != nil {
			return err
		}
		eg.Go(func() error { return g.run(genCtx) })
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if cfg.Incremental {
		// The per-chunk files are the deliverable; nothing to merge.
		return nil
	}

	nodeFiles := make([]string, len(chunks))
	edgeFiles := make([]string, len(chunks))
	for i, c := range chunks {
		nodeFiles[i] = c.nodeFile(cfg.OutDir)
		edgeFiles[i] = c.edgeFile(cfg.OutDir)
	}

	// Serial planning; both destinations are pre-sized here, before the
	// first merger opens them for writing.
	nodeOffsets, err := planDest(nodeDest, nodeFiles)
	if err != nil {
		return fmt.Errorf("plan nodes: %w", err)
	}
	edgeOffsets, err := planDest(edgeDest, edgeFiles)
	if err != nil {
		return fmt.Errorf("plan edges: %w", err)
	}

	var mg errgroup.Group
	for i := range chunks {
		i := i
		mg.Go(func() error {
			if err := mergeChunk(nodeDest, nodeFiles[i], nodeOffsets[i], cfg.Progress); err != nil {
				return err
			}
			return mergeChunk(edgeDest, edgeFiles[i], edgeOffsets[i], cfg.Progress)
		})
	}
	if err := mg.Wait(); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

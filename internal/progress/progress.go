// Package progress holds best-effort monotonic counters for long runs.
// Counters only ever feed log lines; they never influence control flow.
package progress

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Counters is safe for concurrent use. A nil *Counters is a valid sink
// that discards everything.
type Counters struct {
	nodes  atomic.Int64
	edges  atomic.Int64
	merged atomic.Int64
}

func (c *Counters) AddNodes(n int64) {
	if c != nil {
		c.nodes.Add(n)
	}
}

func (c *Counters) AddEdges(n int64) {
	if c != nil {
		c.edges.Add(n)
	}
}

func (c *Counters) AddMergedBytes(n int64) {
	if c != nil {
		c.merged.Add(n)
	}
}

func (c *Counters) Nodes() int64 { return c.nodes.Load() }
func (c *Counters) Edges() int64 { return c.edges.Load() }

// MergedBytes reports how much row data mergers have transferred so far.
func (c *Counters) MergedBytes() int64 { return c.merged.Load() }

// Report logs the counters every interval until ctx is done, then emits a
// final line.
func Report(ctx context.Context, c *Counters, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	line := func(tag string) {
		log.Printf("%s: nodes=%s edges=%s merged=%s",
			tag,
			humanize.Comma(c.Nodes()),
			humanize.Comma(c.Edges()),
			humanize.Bytes(uint64(c.MergedBytes())))
	}
	for {
		select {
		case <-ctx.Done():
			line("total")
			return
		case <-t.C:
			line("progress")
		}
	}
}

package gen

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"golang.org/x/exp/rand"

	"github.com/graphbench/graphgen/internal/dist"
)

// rawPropScale divides the sampled property length before raw bytes are
// drawn. Tuning constant; the encoded form grows again when the bytes are
// percent-escaped.
const rawPropScale = 3

// workerSeed derives one seed per chunk so workers never share random
// state. A zero configured seed falls back to OS entropy.
func workerSeed(seed uint64, index int) (uint64, error) {
	if seed != 0 {
		return seed + uint64(index), nil
	}
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("crypto/rand.Read: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// generator produces the node, edge and stats streams for one chunk. It
// owns its files and its random state exclusively; nothing is shared with
// other workers.
type generator struct {
	cfg   Config
	chunk Chunk

	rnd      *rand.Rand
	nodeProp *dist.Sampler
	edgeProp *dist.Sampler
	edges    *dist.Sampler

	raw []byte
	row []byte
}

func newGenerator(cfg Config, chunk Chunk) (*generator, error) {
	seed, err := workerSeed(cfg.Seed, chunk.Index)
	if err != nil {
		return nil, err
	}
	src := rand.NewSource(seed)
	return &generator{
		cfg:      cfg,
		chunk:    chunk,
		rnd:      rand.New(src),
		nodeProp: dist.NewSampler(cfg.NodePropDist, src),
		edgeProp: dist.NewSampler(cfg.EdgePropDist, src),
		edges:    dist.NewSampler(cfg.EdgeDist, src),
	}, nil
}

// prop samples a property length, draws that many raw bytes scaled down by
// rawPropScale, and returns the percent-escaped text form.
func (g *generator) prop(s *dist.Sampler) (string, error) {
	n := s.PropLen(g.cfg.MinProp, g.cfg.MaxProp) / rawPropScale
	if cap(g.raw) < n {
		g.raw = make([]byte, n)
	}
	g.raw = g.raw[:n]
	if _, err := g.rnd.Read(g.raw); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return url.QueryEscape(string(g.raw)), nil
}

func (g *generator) run(ctx context.Context) (retErr error) {
	nodes, err := newTableWriter(g.chunk.nodeFile(g.cfg.OutDir))
	if err != nil {
		return err
	}
	defer nodes.closeOnError(&retErr)
	edges, err := newTableWriter(g.chunk.edgeFile(g.cfg.OutDir))
	if err != nil {
		return err
	}
	defer edges.closeOnError(&retErr)
	stats, err := newTableWriter(g.chunk.statsFile(g.cfg.OutDir))
	if err != nil {
		return err
	}
	defer stats.closeOnError(&retErr)

	// Destinations are drawn from the whole id space, except in
	// incremental mode where they stay inside the chunk so every edge
	// points at an id the stream has already produced.
	dstLimit := g.cfg.Nodes
	if g.cfg.Incremental {
		dstLimit = g.chunk.End
	}

	for id := g.chunk.Start; id < g.chunk.End; id++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		g.row = strconv.AppendUint(g.row[:0], id, 10)
		if g.cfg.NodePropDist != dist.None {
			p, err := g.prop(g.nodeProp)
			if err != nil {
				return err
			}
			g.row = append(g.row, '|')
			g.row = append(g.row, p...)
		}
		g.row = append(g.row, '\n')
		if _, err := nodes.Write(g.row); err != nil {
			return fmt.Errorf("write node: %w", err)
		}

		n := g.edges.EdgeCount()
		g.row = strconv.AppendUint(g.row[:0], id, 10)
		g.row = append(g.row, ' ')
		g.row = strconv.AppendInt(g.row, int64(n), 10)
		g.row = append(g.row, '\n')
		if _, err := stats.Write(g.row); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}

		for i := 0; i < n; i++ {
			dst := g.rnd.Uint64n(dstLimit)
			g.row = strconv.AppendUint(g.row[:0], id, 10)
			g.row = append(g.row, '|')
			g.row = strconv.AppendUint(g.row, dst, 10)
			if g.cfg.EdgePropDist != dist.None {
				p, err := g.prop(g.edgeProp)
				if err != nil {
					return err
				}
				g.row = append(g.row, '|')
				g.row = append(g.row, p...)
			}
			g.row = append(g.row, '\n')
			if _, err := edges.Write(g.row); err != nil {
				return fmt.Errorf("write edge: %w", err)
			}
		}

		g.cfg.Progress.AddNodes(1)
		g.cfg.Progress.AddEdges(int64(n))
	}

	for _, w := range []*tableWriter{nodes, edges, stats} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// tableWriter is a buffered append-only file stream, reused for the three
// per-chunk tables.
type tableWriter struct {
	name string
	f    *os.File
	buf  []byte
}

const tableBufSize = 1 << 20

func newTableWriter(name string) (*tableWriter, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("os.Create: %w", err)
	}
	return &tableWriter{name: name, f: f, buf: make([]byte, 0, tableBufSize)}, nil
}

func (w *tableWriter) Write(p []byte) (int, error) {
	if len(w.buf)+len(p) > cap(w.buf) {
		if err := w.flush(); err != nil {
			return 0, err
		}
	}
	if len(p) > cap(w.buf) {
		return w.f.Write(p)
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *tableWriter) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if _, err := w.f.Write(w.buf); err != nil {
		return fmt.Errorf("write %s: %w", w.name, err)
	}
	w.buf = w.buf[:0]
	return nil
}

func (w *tableWriter) Close() error {
	if w.f == nil {
		return nil
	}
	if err := w.flush(); err != nil {
		w.f.Close()
		w.f = nil
		return err
	}
	err := w.f.Close()
	w.f = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", w.name, err)
	}
	return nil
}

// closeOnError releases the file when the surrounding call is already
// failing; the close error never masks the original one.
func (w *tableWriter) closeOnError(retErr *error) {
	if *retErr != nil {
		w.Close()
	}
}

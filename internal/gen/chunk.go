package gen

import (
	"path/filepath"
	"strconv"
)

// Chunk is a contiguous half-open id range [Start, End) owned by exactly
// one worker, and names the three files that worker produces.
type Chunk struct {
	Index int
	Start uint64
	End   uint64
}

// Partition splits [0, n) into p contiguous chunks of floor(n/p) ids each.
// The last chunk absorbs the remainder so the ranges always cover [0, n)
// exactly, in order.
func Partition(n uint64, p int) []Chunk {
	size := n / uint64(p)
	chunks := make([]Chunk, p)
	for i := 0; i < p; i++ {
		start := size * uint64(i)
		end := start + size
		if i == p-1 {
			end = n
		}
		chunks[i] = Chunk{Index: i, Start: start, End: end}
	}
	return chunks
}

func (c Chunk) nodeFile(dir string) string {
	return filepath.Join(dir, "nodes_"+strconv.Itoa(c.Index))
}

func (c Chunk) edgeFile(dir string) string {
	return filepath.Join(dir, "edges_"+strconv.Itoa(c.Index))
}

func (c Chunk) statsFile(dir string) string {
	return filepath.Join(dir, "stats_"+strconv.Itoa(c.Index))
}

package gen

import (
	"fmt"
	"os"
)

// planOffsets builds the cumulative byte-length table that assigns each
// chunk a disjoint destination range. offsets[0] is the header length
// already written to the destination; offsets[i] and offsets[i+1] bound
// the range reserved for chunk i. This table is computed exactly once,
// before any merger opens the destination — a defect here corrupts data
// silently rather than crashing.
func planOffsets(headerLen int64, sizes []int64) []int64 {
	offsets := make([]int64, len(sizes)+1)
	offsets[0] = headerLen
	for i, s := range sizes {
		offsets[i+1] = offsets[i] + s
	}
	return offsets
}

// chunkSizes stats each chunk file; content is never read during planning.
func chunkSizes(files []string) ([]int64, error) {
	sizes := make([]int64, len(files))
	for i, name := range files {
		fi, err := os.Stat(name)
		if err != nil {
			return nil, fmt.Errorf("os.Stat: %w", err)
		}
		sizes[i] = fi.Size()
	}
	return sizes, nil
}

// planDest computes the offset table for one destination and pre-extends
// the destination file to the final length, so every reserved range is
// valid file space before the first merger opens it.
func planDest(dest string, files []string) ([]int64, error) {
	fi, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("os.Stat: %w", err)
	}
	sizes, err := chunkSizes(files)
	if err != nil {
		return nil, err
	}
	offsets := planOffsets(fi.Size(), sizes)
	if err := os.Truncate(dest, offsets[len(offsets)-1]); err != nil {
		return nil, fmt.Errorf("os.Truncate: %w", err)
	}
	return offsets, nil
}

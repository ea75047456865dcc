package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanOffsets(t *testing.T) {
	cases := []struct {
		name   string
		header int64
		sizes  []int64
	}{
		{"empty", 12, nil},
		{"one", 12, []int64{100}},
		{"several", 12, []int64{100, 0, 37, 1}},
		{"all_zero", 5, []int64{0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offsets := planOffsets(tc.header, tc.sizes)
			require.Len(t, offsets, len(tc.sizes)+1)
			assert.Equal(t, tc.header, offsets[0])

			var sum int64
			for i, s := range tc.sizes {
				// Adjacent entries bound chunk i's range; equality of
				// offsets[i+1] and offsets[i]+s means no overlap, no gap.
				assert.Equal(t, offsets[i]+s, offsets[i+1])
				sum += s
			}
			assert.Equal(t, tc.header+sum, offsets[len(offsets)-1])
		})
	}
}

func TestPlanDestPreSizes(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "nodes")
	require.NoError(t, os.WriteFile(dest, []byte(nodeHeader), 0644))

	contents := []string{"0|aa\n1|b\n", "", "2|cccc\n"}
	files := make([]string, len(contents))
	for i, c := range contents {
		files[i] = filepath.Join(dir, "chunk_"+string(rune('0'+i)))
		require.NoError(t, os.WriteFile(files[i], []byte(c), 0644))
	}

	offsets, err := planDest(dest, files)
	require.NoError(t, err)

	want := int64(len(nodeHeader))
	assert.Equal(t, want, offsets[0])
	for i, c := range contents {
		want += int64(len(c))
		assert.Equal(t, want, offsets[i+1])
	}

	fi, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, want, fi.Size(), "destination must be pre-extended to the final length")
}

func TestPlanDestMissingChunk(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "nodes")
	require.NoError(t, os.WriteFile(dest, []byte(nodeHeader), 0644))

	_, err := planDest(dest, []string{filepath.Join(dir, "absent")})
	assert.Error(t, err)
}

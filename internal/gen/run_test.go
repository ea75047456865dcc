package gen

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphbench/graphgen/internal/dist"
)

func baseConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		EdgeDist:     dist.None,
		NodePropDist: dist.None,
		EdgePropDist: dist.None,
		OutDir:       t.TempDir(),
		Workers:      2,
	}
}

func readLines(t *testing.T, name string) []string {
	t.Helper()
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	s := string(b)
	require.True(t, s == "" || strings.HasSuffix(s, "\n"), "%s must end with a newline", name)
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestRunBareIDs(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Nodes = 10

	require.NoError(t, Run(context.Background(), cfg))

	nodes := readLines(t, filepath.Join(cfg.OutDir, "nodes"))
	require.Len(t, nodes, 11)
	assert.Equal(t, "NodeID|data", nodes[0])
	for i := 0; i < 10; i++ {
		assert.Equal(t, strconv.Itoa(i), nodes[i+1], "bare id rows, no property suffix")
	}

	edges, err := os.ReadFile(filepath.Join(cfg.OutDir, "edges"))
	require.NoError(t, err)
	assert.Equal(t, edgeHeader, string(edges), "edge table holds only the header")

	// Chunk node/edge files are consumed by the merge; stats survive.
	for i := 0; i < cfg.Workers; i++ {
		_, err := os.Stat(filepath.Join(cfg.OutDir, "nodes_"+strconv.Itoa(i)))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(cfg.OutDir, "edges_"+strconv.Itoa(i)))
		assert.True(t, os.IsNotExist(err))

		stats := readLines(t, filepath.Join(cfg.OutDir, "stats_"+strconv.Itoa(i)))
		for _, line := range stats {
			assert.True(t, strings.HasSuffix(line, " 0"), "edge dist none gives zero out-degree: %q", line)
		}
	}
}

func TestRunIncrementalKeepsChunks(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Nodes = 9
	cfg.Workers = 3
	cfg.Incremental = true

	require.NoError(t, Run(context.Background(), cfg))

	wantRanges := [][2]uint64{{0, 3}, {3, 6}, {6, 9}}
	for i, r := range wantRanges {
		lines := readLines(t, filepath.Join(cfg.OutDir, "nodes_"+strconv.Itoa(i)))
		require.Len(t, lines, int(r[1]-r[0]))
		for j, line := range lines {
			assert.Equal(t, strconv.FormatUint(r[0]+uint64(j), 10), line)
		}
	}

	// Destinations stay at their headers; nothing was merged.
	nodes, err := os.ReadFile(filepath.Join(cfg.OutDir, "nodes"))
	require.NoError(t, err)
	assert.Equal(t, nodeHeader, string(nodes))
	edges, err := os.ReadFile(filepath.Join(cfg.OutDir, "edges"))
	require.NoError(t, err)
	assert.Equal(t, edgeHeader, string(edges))
}

func TestRunIncrementalEdgesStayInChunk(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Nodes = 60
	cfg.Workers = 3
	cfg.Incremental = true
	cfg.EdgeDist = dist.Uniform
	cfg.Seed = 7

	require.NoError(t, Run(context.Background(), cfg))

	for _, c := range Partition(cfg.Nodes, cfg.Workers) {
		edgeLines := readLines(t, c.edgeFile(cfg.OutDir))
		if len(edgeLines) == 1 && edgeLines[0] == "" {
			continue
		}
		for _, line := range edgeLines {
			parts := strings.Split(line, "|")
			require.Len(t, parts, 2)
			src, err := strconv.ParseUint(parts[0], 10, 64)
			require.NoError(t, err)
			dst, err := strconv.ParseUint(parts[1], 10, 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, src, c.Start)
			assert.Less(t, src, c.End)
			assert.Less(t, dst, c.End, "incremental edges must never point past their own chunk")
		}
	}
}

func TestRunMergedTables(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Nodes = 50
	cfg.Workers = 4
	cfg.EdgeDist = dist.Uniform
	cfg.NodePropDist = dist.Uniform
	cfg.MinProp = 4
	cfg.MaxProp = 20
	cfg.Seed = 11

	require.NoError(t, Run(context.Background(), cfg))

	nodes := readLines(t, filepath.Join(cfg.OutDir, "nodes"))
	require.Len(t, nodes, int(cfg.Nodes)+1)
	assert.Equal(t, "NodeID|data", nodes[0])
	for i, line := range nodes[1:] {
		parts := strings.SplitN(line, "|", 2)
		require.Len(t, parts, 2, "uniform node dist emits a property field: %q", line)
		assert.Equal(t, strconv.Itoa(i), parts[0], "ids stay dense and ordered across the merge")
		_, err := url.QueryUnescape(parts[1])
		require.NoError(t, err, "property must stay reversibly encoded")
	}

	edgeLines := readLines(t, filepath.Join(cfg.OutDir, "edges"))
	assert.Equal(t, "SrcID|DstID", edgeLines[0])
	edgeCount := 0
	for _, line := range edgeLines[1:] {
		parts := strings.Split(line, "|")
		require.Len(t, parts, 2)
		src, err := strconv.ParseUint(parts[0], 10, 64)
		require.NoError(t, err)
		dst, err := strconv.ParseUint(parts[1], 10, 64)
		require.NoError(t, err)
		assert.Less(t, src, cfg.Nodes)
		assert.Less(t, dst, cfg.Nodes)
		edgeCount++
	}

	// Stats are never merged; their out-degrees account for every edge row.
	statTotal := 0
	for i := 0; i < cfg.Workers; i++ {
		for _, line := range readLines(t, filepath.Join(cfg.OutDir, "stats_"+strconv.Itoa(i))) {
			parts := strings.Split(line, " ")
			require.Len(t, parts, 2)
			n, err := strconv.Atoi(parts[1])
			require.NoError(t, err)
			statTotal += n
		}
	}
	assert.Equal(t, edgeCount, statTotal)
}

func TestRunSeedIsReproducible(t *testing.T) {
	run := func(dir string) {
		cfg := baseConfig(t)
		cfg.Nodes = 40
		cfg.Workers = 3
		cfg.EdgeDist = dist.Normal
		cfg.NodePropDist = dist.Exp
		cfg.EdgePropDist = dist.Uniform
		cfg.MinProp = 2
		cfg.MaxProp = 30
		cfg.Seed = 5
		cfg.OutDir = dir
		require.NoError(t, Run(context.Background(), cfg))
	}

	dirA, dirB := t.TempDir(), t.TempDir()
	run(dirA)
	run(dirB)

	for _, name := range []string{"nodes", "edges"} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, "seeded runs must produce identical %s tables", name)
	}
}

func TestRunConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero_workers", func(c *Config) { c.Workers = 0 }},
		{"negative_min", func(c *Config) { c.MinProp = -1 }},
		{"max_below_min", func(c *Config) { c.MinProp = 10; c.MaxProp = 5 }},
		{"empty_outdir", func(c *Config) { c.OutDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig(t)
			cfg.Nodes = 5
			tc.mutate(&cfg)
			assert.Error(t, Run(context.Background(), cfg))
		})
	}
}

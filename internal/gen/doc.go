// Package gen produces large artificial node/edge tables for graph-engine
// benchmarks.
//
// The id space [0, n) is statically partitioned into one chunk per worker.
// Generators run fully parallel with zero shared state, each writing its
// own nodes_N, edges_N and stats_N files. A serial planning step then
// stats the chunk files, computes a prefix-sum offset table, and
// pre-extends the destination tables so that every chunk owns a valid,
// disjoint byte range. Mergers write their ranges concurrently without
// locking and delete their chunk files when done. Stats files are never
// merged.
//
// In incremental mode the per-chunk files are the final deliverable and
// edge destinations never point past the chunk's own end, so a consumer
// streaming the chunks in order never sees a forward reference.
package gen

package gen

import (
	"bufio"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/graphbench/graphgen/internal/progress"
)

// Scanner headroom for rows carrying large encoded properties.
const (
	mergeScanBuf = 1 << 20
	mergeScanMax = 64 << 20
)

// mergeChunk streams one chunk file into its reserved byte range of the
// shared destination, then deletes the chunk file. Rows are re-framed line
// by line, each terminated by exactly one newline, instead of raw-copied.
// The destination is already pre-sized and every worker's range is
// disjoint, so concurrent mergers need no lock.
func mergeChunk(dest, src string, offset int64, prog *progress.Counters) (retErr error) {
	out, err := os.OpenFile(dest, os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("os.OpenFile: %w", err)
	}
	defer func() {
		if err := out.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("close %s: %w", dest, err)
		}
	}()
	if _, err := out.Seek(offset, 0); err != nil {
		return fmt.Errorf("seek %s: %w", dest, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}

	w := bufio.NewWriterSize(out, mergeScanBuf)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, mergeScanBuf), mergeScanMax)
	for sc.Scan() {
		row := sc.Bytes()
		if _, err := w.Write(row); err != nil {
			in.Close()
			return fmt.Errorf("write %s: %w", dest, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			in.Close()
			return fmt.Errorf("write %s: %w", dest, err)
		}
		prog.AddMergedBytes(int64(len(row)) + 1)
	}

	var merr error
	if err := sc.Err(); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("scan %s: %w", src, err))
	}
	if err := w.Flush(); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("flush %s: %w", dest, err))
	}
	if err := in.Close(); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("close %s: %w", src, err))
	}
	if merr != nil {
		return merr
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("os.Remove: %w", err)
	}
	return nil
}

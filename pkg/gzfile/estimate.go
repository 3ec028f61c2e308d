package gzfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// SampleLines is the number of leading lines EstimateRecords inspects.
const SampleLines = 1000

// EstimateRecords approximates the number of lines in a gzip file without
// decompressing all of it. The first SampleLines lines are recompressed on
// their own and the observed compression ratio and mean line length are
// extrapolated to the compressed size of the whole file.
//
// The result is only good enough for progress reporting.
func EstimateRecords(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	gzSize := float64(info.Size())

	rc, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	var sample bytes.Buffer
	gw := gzip.NewWriter(&sample)

	r := bufio.NewReaderSize(rc, 64<<10)
	lines := 0
	sampleSize := 0
	for lines < SampleLines {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			lines++
			sampleSize += len(line)
			if _, werr := gw.Write(line); werr != nil {
				return 0, werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("sample %s: %w", path, err)
		}
	}
	if err := gw.Close(); err != nil {
		return 0, err
	}

	if lines == 0 || sample.Len() == 0 {
		return 0, nil
	}
	sampleGzSize := float64(sample.Len())
	uncompressed := float64(sampleSize)

	return int(gzSize * (uncompressed / sampleGzSize) * (float64(lines) / uncompressed)), nil
}

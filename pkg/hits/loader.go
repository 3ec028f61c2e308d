package hits

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yumyai/genemerge/logger"
	"github.com/yumyai/genemerge/pkg/gzfile"
	"github.com/yumyai/genemerge/pkg/progress"
	"go.uber.org/zap"
)

type Options struct {
	TopHits            int
	MinAlignmentLength int
}

var DefaultOptions = Options{
	TopHits:            NumberOfTopHitsToKeep,
	MinAlignmentLength: MinAlignmentLength,
}

// Load reads a (gzip) tab-separated alignment file sorted best hit first
// and returns the capped hit lists per gene. label names the source in
// log output.
func Load(path string, label string, opts Options) (*HitMap, error) {
	logger.Info("Loading alignment hits", zap.String("source", label), zap.String("path", path))

	approx, err := gzfile.EstimateRecords(path)
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", path, err)
	}
	logger.Info("Approx. number of records", zap.String("source", label), zap.Int("approx", approx))

	rc, err := gzfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	m, rows, err := read(rc, opts, progress.New(label, approx, progress.LoaderMask))
	if err != nil {
		return nil, fmt.Errorf("%s alignment %s: %w", label, path, err)
	}

	logger.Info("Loaded alignment hits",
		zap.String("source", label),
		zap.Int("genes", m.Len()),
		zap.Int("hits", m.Hits()),
		zap.Int("rows", rows),
	)
	return m, nil
}

// Read is Load without file handling or progress output. It returns the
// map and the number of rows read.
func Read(r io.Reader, opts Options) (*HitMap, int, error) {
	return read(r, opts, nil)
}

func read(r io.Reader, opts Options, rep *progress.Reporter) (*HitMap, int, error) {
	minLen := opts.MinAlignmentLength
	acc := NewAccumulator[string, Hit](opts.TopHits, func(h Hit) bool {
		return h.ALength >= minLen
	})

	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	rows := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rows, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		rows++
		if rep != nil {
			rep.Tick(rows)
		}

		h, err := ParseRow(fields)
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				rowErr.Row = rows
			}
			return nil, rows, err
		}
		acc.Observe(strings.Clone(GeneID(fields[0])), h)
	}

	return newHitMap(acc.Lists()), rows, nil
}

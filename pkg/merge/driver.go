// Package merge streams a gene record file through the annotation
// extender.
//
// The record file interleaves one header line with one data line per gene.
// Header lines are copied byte for byte; data lines are JSON objects that
// are extended and re-encoded compactly. Output has exactly the input's
// line count and order.
package merge

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/yumyai/genemerge/pkg/annotate"
	"github.com/yumyai/genemerge/pkg/model"
	"github.com/yumyai/genemerge/pkg/progress"
)

var ErrFraming = errors.New("record stream framing error")

type lineRole int

const (
	expectHeader lineRole = iota
	expectData
)

// Stats summarizes one pass.
type Stats struct {
	Lines   int
	Headers int
	annotate.Stats
}

// Driver runs the merge pass over one record stream.
type Driver struct {
	ext *annotate.Extender
}

func NewDriver(idx annotate.Indexes) *Driver {
	return &Driver{ext: annotate.NewExtender(idx)}
}

// Run copies r to w, extending every data line. approx is the estimated
// line count used for progress output; 0 disables percentages.
//
// A header with no following data line at the end of input is an
// ErrFraming. Nothing written before an error is rolled back.
func (d *Driver) Run(r io.Reader, w io.Writer, approx int) (Stats, error) {
	var stats Stats
	rep := progress.New("merge", approx, progress.MergeMask)

	br := bufio.NewReaderSize(r, 1<<20)
	bw := bufio.NewWriterSize(w, 1<<20)

	role := expectHeader
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			stats.Lines++
			switch role {
			case expectHeader:
				if _, werr := bw.Write(line); werr != nil {
					return d.stats(stats), werr
				}
				stats.Headers++
				role = expectData
			case expectData:
				if xerr := d.extendLine(bw, line); xerr != nil {
					return d.stats(stats), fmt.Errorf("line %d: %w", stats.Lines, xerr)
				}
				role = expectHeader
			}
			rep.Tick(stats.Lines)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return d.stats(stats), err
		}
	}

	if err := bw.Flush(); err != nil {
		return d.stats(stats), err
	}
	if role != expectHeader {
		return d.stats(stats), fmt.Errorf("%w: input ends after header line %d without a data line", ErrFraming, stats.Lines)
	}
	return d.stats(stats), nil
}

func (d *Driver) extendLine(w *bufio.Writer, line []byte) error {
	rec, err := model.DecodeGeneRecord(line)
	if err != nil {
		return err
	}
	if err := d.ext.Extend(rec); err != nil {
		return err
	}
	out, err := rec.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func (d *Driver) stats(s Stats) Stats {
	s.Stats = d.ext.Stats()
	return s
}

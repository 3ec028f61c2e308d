// Package progress logs an approximate percent-complete figure while a
// large file is streamed. It is cosmetic: nothing reads its output.
package progress

import (
	"time"

	"github.com/yumyai/genemerge/logger"
	"go.uber.org/zap"
)

const (
	// LoaderMask checks the clock every 2^20 rows.
	LoaderMask = (1 << 20) - 1
	// MergeMask checks the clock every 2^14 rows.
	MergeMask = (1 << 14) - 1

	DefaultInterval = 5 * time.Second
)

type Reporter struct {
	label      string
	onePercent int
	mask       int
	interval   time.Duration
	stamp      time.Time
	now        func() time.Time

	reports int
}

// New creates a Reporter for a stream of roughly approx rows. mask must be
// of the form 2^k-1.
func New(label string, approx int, mask int) *Reporter {
	r := &Reporter{
		label:      label,
		onePercent: approx / 100,
		mask:       mask,
		interval:   DefaultInterval,
		now:        time.Now,
	}
	r.stamp = r.now()
	return r
}

// Tick is called once per row with the 1-based row count.
func (r *Reporter) Tick(row int) {
	if row&r.mask != r.mask {
		return
	}
	now := r.now()
	if !now.After(r.stamp.Add(r.interval)) {
		return
	}
	r.stamp = now
	if r.onePercent <= 0 {
		return
	}
	r.reports++
	logger.Info("Progress", zap.String("stage", r.label), zap.Int("percent", row/r.onePercent), zap.Int("rows", row))
}

// Reports returns how many progress lines were logged.
func (r *Reporter) Reports() int {
	return r.reports
}

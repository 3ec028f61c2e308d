package hits

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MinAlignmentLength is the shortest alignment kept in a hit list.
	MinAlignmentLength = 15
	// NumberOfTopHitsToKeep caps every gene's hit list.
	NumberOfTopHitsToKeep = 10
	// GeneIDPrefixLength is the fixed prefix stripped from column 0.
	GeneIDPrefixLength = 10

	numColumns = 12
)

var (
	ErrMalformedRow = errors.New("malformed alignment row")
	errNotFinite    = errors.New("value is not finite")
)

// RowError reports where in an alignment file a row failed to parse.
type RowError struct {
	Row    int    // 1-based row number
	Column int    // 0-based column, -1 when the row is short
	Value  string // offending value
	Err    error
}

func (e *RowError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("%s: row %d: %v", ErrMalformedRow, e.Row, e.Err)
	}
	return fmt.Sprintf("%s: row %d column %d (%q): %v", ErrMalformedRow, e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRow, e.Err}
}

// Hit is one row of a BLAST tabular (outfmt 6) result.
type Hit struct {
	ID       string  `json:"id"`
	Ident    float64 `json:"ident"`
	ALength  int     `json:"alength"`
	Mismatch int     `json:"mismatch"`
	GapOpen  int     `json:"gapopen"`
	QStart   int     `json:"qstart"`
	QEnd     int     `json:"qend"`
	SStart   int     `json:"sstart"`
	SEnd     int     `json:"send"`
	EValue   float64 `json:"evalue"`
	BitScore float64 `json:"bitscore"`
}

// GeneID strips the fixed-length prefix from the query column.
func GeneID(query string) string {
	if len(query) <= GeneIDPrefixLength {
		return ""
	}
	return query[GeneIDPrefixLength:]
}

// ParseRow converts the tab-separated fields of one row into a Hit. Row
// numbers in errors are filled in by the caller.
func ParseRow(fields []string) (Hit, error) {
	if len(fields) < numColumns {
		return Hit{}, &RowError{Column: -1, Err: fmt.Errorf("want %d columns, got %d", numColumns, len(fields))}
	}

	p := rowParser{fields: fields}
	h := Hit{
		ID:       strings.Clone(fields[1]),
		Ident:    p.parseFloat(2),
		ALength:  p.parseInt(3),
		Mismatch: p.parseInt(4),
		GapOpen:  p.parseInt(5),
		QStart:   p.parseInt(6),
		QEnd:     p.parseInt(7),
		SStart:   p.parseInt(8),
		SEnd:     p.parseInt(9),
		EValue:   p.parseFloat(10),
		BitScore: p.parseFloat(11),
	}
	if p.err != nil {
		return Hit{}, p.err
	}
	return h, nil
}

// rowParser keeps the first conversion error so ParseRow reads linearly.
type rowParser struct {
	fields []string
	err    *RowError
}

func (p *rowParser) parseInt(col int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(p.fields[col]))
	if err != nil {
		p.err = &RowError{Column: col, Value: p.fields[col], Err: err}
	}
	return v
}

func (p *rowParser) parseFloat(col int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(p.fields[col]), 64)
	if err == nil && (math.IsInf(v, 0) || math.IsNaN(v)) {
		err = errNotFinite
	}
	if err != nil {
		p.err = &RowError{Column: col, Value: p.fields[col], Err: err}
		return 0
	}
	return v
}

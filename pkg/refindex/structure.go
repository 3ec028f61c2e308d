package refindex

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yumyai/genemerge/logger"
	"go.uber.org/zap"
)

const (
	// StructureHeaderLines is the number of preamble lines in compound.idx.
	StructureHeaderLines = 4
	// StructurePrefixLength is how much of a hit id identifies the entry.
	StructurePrefixLength = 4
)

// StructureIndex maps PDB ids to their compound description.
type StructureIndex struct {
	labels map[string]string
}

func NewStructureIndex(labels map[string]string) *StructureIndex {
	if labels == nil {
		labels = map[string]string{}
	}
	return &StructureIndex{labels: labels}
}

// Label looks up a hit id by its first four characters.
func (idx *StructureIndex) Label(hitID string) (string, bool) {
	if idx == nil {
		return "", false
	}
	key := hitID
	if len(key) > StructurePrefixLength {
		key = key[:StructurePrefixLength]
	}
	label, ok := idx.labels[key]
	return label, ok
}

func (idx *StructureIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.labels)
}

// LoadStructures reads the PDB compound index at path.
func LoadStructures(path string) (*StructureIndex, error) {
	logger.Info("Loading data from PDB ID map file", zap.String("path", path))

	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	idx, rows, err := ReadStructures(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Info("Loaded PDB ID map", zap.Int("entries", idx.Len()), zap.Int("rows", rows))
	return idx, nil
}

// ReadStructures skips the header and parses id<TAB>description rows.
func ReadStructures(r io.Reader) (*StructureIndex, int, error) {
	br := bufio.NewReader(r)
	for i := 0; i < StructureHeaderLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return NewStructureIndex(nil), 0, nil
			}
			return nil, 0, err
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	labels := make(map[string]string)
	rows := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rows++
		if err != nil {
			return nil, rows, fmt.Errorf("%w: row %d: %v", ErrMalformedReferenceFile, rows, err)
		}
		if len(fields) < 2 {
			return nil, rows, fmt.Errorf("%w: row %d: want 2 columns, got %d", ErrMalformedReferenceFile, rows, len(fields))
		}
		labels[strings.TrimSpace(fields[0])] = strings.TrimSpace(fields[1])
	}
	return NewStructureIndex(labels), rows, nil
}

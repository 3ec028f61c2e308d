package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var ErrMissingField = errors.New("missing record field")

const (
	FieldGeneID = "geneid"
	FieldECs    = "ecs"
	FieldPDB    = "x_pdb"
	Field3DM    = "x_3dm"
)

// GeneRecord is one decoded data line. Values stay raw JSON so fields the
// merge does not touch are written back unchanged and in input order.
type GeneRecord struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

// DecodeGeneRecord parses a single JSON object.
func DecodeGeneRecord(line []byte) (*GeneRecord, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return nil, fmt.Errorf("gene record is not a JSON object")
	}
	if !json.Valid(line) {
		return nil, fmt.Errorf("gene record is not valid JSON")
	}
	fields := orderedmap.New[string, json.RawMessage]()
	if err := fields.UnmarshalJSON(line); err != nil {
		return nil, fmt.Errorf("decode gene record: %w", err)
	}
	return &GeneRecord{fields: fields}, nil
}

// GeneID returns the record's geneid, which must be a string.
func (g *GeneRecord) GeneID() (string, error) {
	var id string
	if err := g.get(FieldGeneID, &id); err != nil {
		return "", err
	}
	return id, nil
}

// ECs returns the record's enzyme commission numbers. A null value reads as
// an empty list.
func (g *GeneRecord) ECs() ([]string, error) {
	var ecs []string
	if err := g.get(FieldECs, &ecs); err != nil {
		return nil, err
	}
	return ecs, nil
}

func (g *GeneRecord) get(key string, v any) error {
	raw, ok := g.fields.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	return nil
}

// Has reports whether key is present.
func (g *GeneRecord) Has(key string) bool {
	_, ok := g.fields.Get(key)
	return ok
}

// Keys returns field names in output order.
func (g *GeneRecord) Keys() []string {
	keys := make([]string, 0, g.fields.Len())
	for pair := g.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Set encodes v under key. An existing key keeps its position, a new one
// is appended.
func (g *GeneRecord) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	g.fields.Set(key, raw)
	return nil
}

// MarshalJSON writes the record compactly.
func (g *GeneRecord) MarshalJSON() ([]byte, error) {
	return g.fields.MarshalJSON()
}

// DedupECs sorts ecs and removes duplicates. The result is never nil.
func DedupECs(ecs []string) []string {
	out := make([]string, len(ecs))
	copy(out, ecs)
	slices.Sort(out)
	return slices.Compact(out)
}

package refindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/yumyai/genemerge/logger"
	"go.uber.org/zap"
)

var ErrMalformedReferenceFile = errors.New("malformed reference file")

// Substrings rewritten when turning a 3DM file name into the family id
// used by the alignment database.
const (
	familyFileSuffix = ".json"
	marketingToken   = "_virusx"
)

// Percentages maps a cross-reference id to its relevance percentage as
// found in the file (usually a string such as "12.570"). Key order is the
// file order.
type Percentages = orderedmap.OrderedMap[string, any]

// FamilyGroup holds the attributes shared by a family and its superfamily.
type FamilyGroup struct {
	NiceName       json.RawMessage `json:"nice_name"`
	SeqCount       json.RawMessage `json:"seq_count"`
	StructureCount json.RawMessage `json:"structure_count"`

	ECNumbers   *Percentages `json:"ec_numbers"`
	TaxonomyIDs *Percentages `json:"taxonomyids"`
	GeneNames   *Percentages `json:"gene_names"`
	GOTerms     *Percentages `json:"go_terms"`
}

// Family is the metadata object of one 3DM family file.
type Family struct {
	FamilyGroup
	Superfamily *FamilyGroup `json:"superfamily"`
}

// FamilyKey derives the family id from a metadata file name.
func FamilyKey(filename string) string {
	key := strings.ReplaceAll(filename, familyFileSuffix, "")
	key = strings.ReplaceAll(key, marketingToken, "")
	key = strings.ReplaceAll(key, "fam", "f")
	key = strings.ReplaceAll(key, "sub", "s")
	return key
}

// FamilyIndex maps family ids to their metadata. Read-only after loading.
type FamilyIndex struct {
	families map[string]*Family
}

func NewFamilyIndex(families map[string]*Family) *FamilyIndex {
	if families == nil {
		families = map[string]*Family{}
	}
	return &FamilyIndex{families: families}
}

func (idx *FamilyIndex) Get(id string) (*Family, bool) {
	if idx == nil {
		return nil, false
	}
	f, ok := idx.families[id]
	return f, ok
}

func (idx *FamilyIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.families)
}

// LoadFamilies parses every regular file directly inside dir. Any file that
// is not a non-empty JSON array of family objects aborts the load.
func LoadFamilies(dir string) (*FamilyIndex, error) {
	logger.Info("Loading data from 3DM metadata files", zap.String("dir", dir))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	families := make(map[string]*Family, len(entries))
	files := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files++
		fam, err := ParseFamilyFile(path)
		if err != nil {
			return nil, err
		}
		families[FamilyKey(entry.Name())] = fam
	}

	logger.Info("Loaded 3DM families", zap.Int("entries", len(families)), zap.Int("files", files))
	return NewFamilyIndex(families), nil
}

// ParseFamilyFile returns the first element of the JSON array in path.
func ParseFamilyFile(path string) (*Family, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc []*Family
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedReferenceFile, path, err)
	}
	if len(doc) == 0 || doc[0] == nil {
		return nil, fmt.Errorf("%w: %s: no family object", ErrMalformedReferenceFile, path)
	}
	return doc[0], nil
}

package annotate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yumyai/genemerge/pkg/hits"
	"github.com/yumyai/genemerge/pkg/model"
	"github.com/yumyai/genemerge/pkg/refindex"
)

var ErrMissingFamilyReference = errors.New("3DM hit references unknown family")

// Stats counts what an Extender did.
type Stats struct {
	Records      int
	WithPDB      int
	With3DM      int
	PDBUnlabeled int // PDB hits whose id had no catalog entry
}

// Extender attaches annotations to gene records.
type Extender struct {
	idx   Indexes
	stats Stats
}

func NewExtender(idx Indexes) *Extender {
	return &Extender{idx: idx}
}

func (e *Extender) Stats() Stats {
	return e.stats
}

// Extend enriches rec in place: x_pdb, x_3dm, then ecs normalization.
func (e *Extender) Extend(rec *model.GeneRecord) error {
	geneID, err := rec.GeneID()
	if err != nil {
		return err
	}

	if err := e.extendPDB(rec, geneID); err != nil {
		return err
	}
	if err := e.extend3DM(rec, geneID); err != nil {
		return err
	}
	e.extendPfam(rec, geneID)

	ecs, err := rec.ECs()
	if err != nil {
		return err
	}
	if err := rec.Set(model.FieldECs, model.DedupECs(ecs)); err != nil {
		return err
	}

	e.stats.Records++
	return nil
}

func (e *Extender) extendPDB(rec *model.GeneRecord, geneID string) error {
	list, ok := e.idx.PDBHits.Get(geneID)
	if !ok {
		return nil
	}

	out := make([]model.PDBAnnotation, len(list))
	for i, h := range list {
		out[i] = model.PDBAnnotation{Hit: h}
		label, ok := e.idx.Structures.Label(h.ID)
		if !ok {
			e.stats.PDBUnlabeled++
			continue
		}
		out[i].Label = label
	}

	e.stats.WithPDB++
	return rec.Set(model.FieldPDB, out)
}

func (e *Extender) extend3DM(rec *model.GeneRecord, geneID string) error {
	list, ok := e.idx.TDMHits.Get(geneID)
	if !ok {
		return nil
	}

	out := make([]model.TDMAnnotation, len(list))
	for i, h := range list {
		fam, ok := e.idx.Families.Get(h.ID)
		if !ok {
			return fmt.Errorf("%w: gene %s hit %s", ErrMissingFamilyReference, geneID, h.ID)
		}
		ann, err := familyAnnotation(h, fam)
		if err != nil {
			return fmt.Errorf("family %s: %w", h.ID, err)
		}
		out[i] = ann
	}

	e.stats.With3DM++
	return rec.Set(model.Field3DM, out)
}

// extendPfam is where Pfam hits would be attached. Pfam alignments are not
// merged yet.
func (e *Extender) extendPfam(_ *model.GeneRecord, _ string) {}

func familyAnnotation(h hits.Hit, fam *refindex.Family) (model.TDMAnnotation, error) {
	ann := model.TDMAnnotation{Hit: h}

	single := []struct {
		name string
		src  json.RawMessage
		dst  *json.RawMessage
	}{
		{"nice_name", fam.NiceName, &ann.Label},
		{"seq_count", fam.SeqCount, &ann.SeqCount},
		{"structure_count", fam.StructureCount, &ann.StructureCount},
	}
	for _, f := range single {
		if len(f.src) == 0 {
			return ann, fmt.Errorf("%w: no %s", refindex.ErrMalformedReferenceFile, f.name)
		}
		*f.dst = f.src
	}

	sf := fam.Superfamily
	multi := []struct {
		name  string
		group func(*refindex.FamilyGroup) *refindex.Percentages
		dst   *[]model.XRef
	}{
		{"ec_numbers", func(g *refindex.FamilyGroup) *refindex.Percentages { return g.ECNumbers }, &ann.EC},
		{"taxonomyids", func(g *refindex.FamilyGroup) *refindex.Percentages { return g.TaxonomyIDs }, &ann.Tax},
		{"gene_names", func(g *refindex.FamilyGroup) *refindex.Percentages { return g.GeneNames }, &ann.Gene},
		{"go_terms", func(g *refindex.FamilyGroup) *refindex.Percentages { return g.GOTerms }, &ann.GO},
	}
	for _, f := range multi {
		src := f.group(&fam.FamilyGroup)
		if (src == nil || src.Len() == 0) && sf != nil {
			src = f.group(sf)
		}
		refs, err := xrefs(src)
		if err != nil {
			return ann, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = refs
	}
	return ann, nil
}

// xrefs reshapes an id -> percentage group into a list in file order.
func xrefs(group *refindex.Percentages) ([]model.XRef, error) {
	refs := []model.XRef{}
	if group == nil {
		return refs, nil
	}
	for pair := group.Oldest(); pair != nil; pair = pair.Next() {
		perc, err := percentage(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", refindex.ErrMalformedReferenceFile, pair.Key, err)
		}
		refs = append(refs, model.XRef{ID: pair.Key, Perc: perc})
	}
	return refs, nil
}

func percentage(v any) (float64, error) {
	switch p := v.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(p), 64)
	case float64:
		return p, nil
	default:
		return 0, fmt.Errorf("unexpected percentage %v", v)
	}
}

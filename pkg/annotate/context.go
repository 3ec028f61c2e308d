package annotate

import (
	"github.com/yumyai/genemerge/pkg/hits"
	"github.com/yumyai/genemerge/pkg/refindex"
)

// Indexes bundles everything loaded before the streaming pass. None of it
// is modified afterwards, so one value can serve any number of records.
type Indexes struct {
	Families   *refindex.FamilyIndex
	Structures *refindex.StructureIndex
	TDMHits    *hits.HitMap
	PDBHits    *hits.HitMap
}

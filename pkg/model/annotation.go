package model

import (
	"encoding/json"

	"github.com/yumyai/genemerge/pkg/hits"
)

// PDBAnnotation is a PDB hit as written to x_pdb.
type PDBAnnotation struct {
	hits.Hit
	Label string `json:"label,omitempty"`
}

// XRef is one cross reference of a 3DM family with its relevance.
type XRef struct {
	ID   string  `json:"id"`
	Perc float64 `json:"perc"`
}

// TDMAnnotation is a 3DM hit with its family's attributes, as written to
// x_3dm.
type TDMAnnotation struct {
	hits.Hit
	Label          json.RawMessage `json:"label"`
	SeqCount       json.RawMessage `json:"seq_count"`
	StructureCount json.RawMessage `json:"structure_count"`
	EC             []XRef          `json:"ec"`
	Tax            []XRef          `json:"tax"`
	Gene           []XRef          `json:"gene"`
	GO             []XRef          `json:"go"`
}

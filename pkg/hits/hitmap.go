package hits

// HitMap maps a gene id to its capped, best-first list of hits. It is
// read-only once loading has finished.
type HitMap struct {
	lists map[string][]Hit
	total int
}

func newHitMap(lists map[string][]Hit) *HitMap {
	m := &HitMap{lists: lists}
	for _, l := range lists {
		m.total += len(l)
	}
	return m
}

// NewHitMap builds a HitMap directly from lists. Mostly useful in tests.
func NewHitMap(lists map[string][]Hit) *HitMap {
	if lists == nil {
		lists = map[string][]Hit{}
	}
	return newHitMap(lists)
}

// Get returns the gene's hit list. ok is true for genes that appeared in
// the alignment file even if none of their rows qualified. Callers must not
// modify the returned slice.
func (m *HitMap) Get(geneID string) (list []Hit, ok bool) {
	if m == nil {
		return nil, false
	}
	list, ok = m.lists[geneID]
	return list, ok
}

// Len is the number of distinct genes seen.
func (m *HitMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.lists)
}

// Hits is the number of retained hits across all genes.
func (m *HitMap) Hits() int {
	if m == nil {
		return 0
	}
	return m.total
}

package hits

// Accumulator keeps, per key, the first Cap values accepted by Keep, in
// arrival order. Input is expected best-first so the kept prefix is the
// top-N.
type Accumulator[K comparable, V any] struct {
	Cap  int
	Keep func(V) bool

	lists map[K][]V
}

func NewAccumulator[K comparable, V any](limit int, keep func(V) bool) *Accumulator[K, V] {
	return &Accumulator[K, V]{
		Cap:   limit,
		Keep:  keep,
		lists: make(map[K][]V),
	}
}

// Observe registers key even when v is rejected, so a key seen only with
// filtered values maps to an empty list. It reports whether v was kept.
func (a *Accumulator[K, V]) Observe(key K, v V) bool {
	list, ok := a.lists[key]
	if !ok {
		list = []V{}
	}
	kept := false
	if len(list) < a.Cap && (a.Keep == nil || a.Keep(v)) {
		list = append(list, v)
		kept = true
	}
	a.lists[key] = list
	return kept
}

// Lists hands over the accumulated lists. The accumulator must not be used
// afterwards.
func (a *Accumulator[K, V]) Lists() map[K][]V {
	lists := a.lists
	a.lists = nil
	return lists
}

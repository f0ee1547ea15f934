package digest

import "sort"

// tally counts keys and remembers the order in which they were first seen,
// so that ranking ties keep that order.
type tally[K comparable] struct {
	order  []K
	counts map[K]int
}

func newTally[K comparable]() *tally[K] {
	return &tally[K]{counts: make(map[K]int)}
}

func (t *tally[K]) add(k K) {
	if _, ok := t.counts[k]; !ok {
		t.order = append(t.order, k)
	}
	t.counts[k]++
}

type ranked[K comparable] struct {
	key   K
	total int
}

// top returns at most n keys by count descending. Equal counts keep
// first-seen order. n <= 0 means no limit.
func (t *tally[K]) top(n int) []ranked[K] {
	out := make([]ranked[K], 0, len(t.order))
	for _, k := range t.order {
		out = append(out, ranked[K]{key: k, total: t.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].total > out[j].total })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

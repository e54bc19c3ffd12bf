package game

import "sort"

// Rand is the randomness the game draws from. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Selector draws items with probability proportional to their weight.
type Selector[T any] struct {
	rng    Rand
	bounds []float64
	items  []T
	total  float64
}

func NewSelector[T any](rng Rand) *Selector[T] {
	return &Selector[T]{rng: rng}
}

// Add registers item with weight. Non-positive weights are ignored.
func (s *Selector[T]) Add(weight float64, item T) *Selector[T] {
	if weight <= 0 {
		return s
	}
	s.total += weight
	s.bounds = append(s.bounds, s.total)
	s.items = append(s.items, item)
	return s
}

func (s *Selector[T]) Len() int { return len(s.items) }

func (s *Selector[T]) Total() float64 { return s.total }

// Next draws one item. It returns false when nothing was added.
func (s *Selector[T]) Next() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	u := s.rng.Float64() * s.total
	idx := sort.Search(len(s.bounds), func(i int) bool { return s.bounds[i] > u })
	if idx >= len(s.items) {
		idx = len(s.items) - 1
	}
	return s.items[idx], true
}

// shuffle is a Fisher-Yates shuffle driven by rng.
func shuffle[T any](rng Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

package graphdb

import "iter"

// Sequence is the traverser collection flowing between steps. It is either a
// pending lazy transformation or a concrete slice; Materialize realises it.
type Sequence struct {
	lazy  iter.Seq[Traverser]
	items []Traverser
}

// NewSequence wraps a concrete slice of traversers
func NewSequence(items []Traverser) *Sequence {
	if items == nil {
		items = []Traverser{}
	}
	return &Sequence{items: items}
}

// LazySequence wraps a pending transformation
func LazySequence(seq iter.Seq[Traverser]) *Sequence {
	return &Sequence{lazy: seq}
}

// IsMaterialized reports whether the sequence is backed by a concrete slice
func (s *Sequence) IsMaterialized() bool { return s.lazy == nil }

// All iterates the sequence without forcing materialization
func (s *Sequence) All() iter.Seq[Traverser] {
	if s.lazy != nil {
		return s.lazy
	}
	items := s.items
	return func(yield func(Traverser) bool) {
		for _, t := range items {
			if !yield(t) {
				return
			}
		}
	}
}

// Materialize evaluates any pending transformation once and caches the result
func (s *Sequence) Materialize() []Traverser {
	if s.lazy != nil {
		items := []Traverser{}
		for t := range s.lazy {
			items = append(items, t)
		}
		s.items = items
		s.lazy = nil
	}
	return s.items
}

// Filter returns a lazy sequence of the traversers satisfying keep
func (s *Sequence) Filter(keep func(Traverser) bool) *Sequence {
	src := s.All()
	return LazySequence(func(yield func(Traverser) bool) {
		for t := range src {
			if keep(t) && !yield(t) {
				return
			}
		}
	})
}

// FlatMap returns a lazy sequence of every traverser produced by expand
func (s *Sequence) FlatMap(expand func(Traverser) []Traverser) *Sequence {
	src := s.All()
	return LazySequence(func(yield func(Traverser) bool) {
		for t := range src {
			for _, next := range expand(t) {
				if !yield(next) {
					return
				}
			}
		}
	})
}

// Take returns a lazy sequence of at most n traversers
func (s *Sequence) Take(n int) *Sequence {
	src := s.All()
	return LazySequence(func(yield func(Traverser) bool) {
		if n <= 0 {
			return
		}
		taken := 0
		for t := range src {
			if !yield(t) {
				return
			}
			taken++
			if taken >= n {
				return
			}
		}
	})
}

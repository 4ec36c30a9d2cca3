// Package postingset implements the ordered posting set: a sorted set of
// document IDs backed by a randomized skip list, giving expected O(log n)
// insert/remove/contains and O(n) ascending iteration.
package postingset

import (
	"cmp"
	"iter"
	"math/rand/v2"

	"github.com/adithya-search/boolsearch/pkg/errors"
)

const (
	maxLevel    = 16
	probability = 0.5
)

type node[T cmp.Ordered] struct {
	value   T
	forward []*node[T]
}

// Set is an ordered set of T backed by a skip list. Nodes are owned
// exclusively by the Set that created them; there is no shared ownership or
// external node reference, so a plain forward-linked pointer structure is
// sufficient — nothing here needs reference counting.
type Set[T cmp.Ordered] struct {
	header *node[T]
	level  int
	size   int
}

// New creates an empty Set.
func New[T cmp.Ordered]() *Set[T] {
	return &Set[T]{
		header: &node[T]{forward: make([]*node[T], maxLevel+1)},
	}
}

func randomLevel() int {
	lvl := 0
	for rand.Float64() < probability && lvl < maxLevel {
		lvl++
	}
	return lvl
}

// Insert adds x to the set, returning true if it was newly inserted and
// false if it was already present.
func (s *Set[T]) Insert(x T) bool {
	update := make([]*node[T], maxLevel+1)
	cur := s.header
	for i := s.level; i >= 0; i-- {
		for cur.forward[i] != nil && cur.forward[i].value < x {
			cur = cur.forward[i]
		}
		update[i] = cur
	}
	cur = cur.forward[0]
	if cur != nil && cur.value == x {
		return false
	}

	newLevel := randomLevel()
	if newLevel > s.level {
		for i := s.level + 1; i <= newLevel; i++ {
			update[i] = s.header
		}
		s.level = newLevel
	}

	n := &node[T]{value: x, forward: make([]*node[T], newLevel+1)}
	for i := 0; i <= newLevel; i++ {
		n.forward[i] = update[i].forward[i]
		update[i].forward[i] = n
	}
	s.size++
	return true
}

// Remove deletes x from the set, returning true if it was present.
func (s *Set[T]) Remove(x T) bool {
	update := make([]*node[T], maxLevel+1)
	cur := s.header
	for i := s.level; i >= 0; i-- {
		for cur.forward[i] != nil && cur.forward[i].value < x {
			cur = cur.forward[i]
		}
		update[i] = cur
	}
	cur = cur.forward[0]
	if cur == nil || cur.value != x {
		return false
	}

	for i := 0; i <= s.level; i++ {
		if update[i].forward[i] != cur {
			continue
		}
		update[i].forward[i] = cur.forward[i]
	}
	for s.level > 0 && s.header.forward[s.level] == nil {
		s.level--
	}
	s.size--
	return true
}

// Contains reports whether x is a member of the set.
func (s *Set[T]) Contains(x T) bool {
	cur := s.header
	for i := s.level; i >= 0; i-- {
		for cur.forward[i] != nil && cur.forward[i].value < x {
			cur = cur.forward[i]
		}
	}
	cur = cur.forward[0]
	return cur != nil && cur.value == x
}

// Size returns the exact number of elements in the set.
func (s *Set[T]) Size() int {
	return s.size
}

// Empty reports whether the set has no elements.
func (s *Set[T]) Empty() bool {
	return s.size == 0
}

// Min returns the smallest element, or ErrEmpty if the set is empty.
func (s *Set[T]) Min() (T, error) {
	var zero T
	if s.header.forward[0] == nil {
		return zero, errors.New(errors.ErrEmpty, "posting set has no minimum")
	}
	return s.header.forward[0].value, nil
}

// Max returns the largest element, or ErrEmpty if the set is empty.
func (s *Set[T]) Max() (T, error) {
	var zero T
	cur := s.header
	for i := s.level; i >= 0; i-- {
		for cur.forward[i] != nil {
			cur = cur.forward[i]
		}
	}
	if cur == s.header {
		return zero, errors.New(errors.ErrEmpty, "posting set has no maximum")
	}
	return cur.value, nil
}

// All returns an ascending iterator over the set's elements. The set may be
// iterated repeatedly, but a single sequence is not restartable mid-range.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for cur := s.header.forward[0]; cur != nil; cur = cur.forward[0] {
			if !yield(cur.value) {
				return
			}
		}
	}
}

// Package termmap implements the associative term map: a closed-addressing
// hash table mapping a term to an owned value, with amortized O(1) access.
package termmap

import "iter"

const (
	initialCapacity = 16
	maxLoadFactor   = 0.75
	growthFactor    = 2
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Map is a closed-addressing hash table from K to V, growing by doubling
// whenever its load factor exceeds 0.75.
type Map[K comparable, V any] struct {
	buckets [][]entry[K, V]
	size    int
}

// New creates an empty Map with the default initial bucket count.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{buckets: make([][]entry[K, V], initialCapacity)}
}

func (m *Map[K, V]) bucketIndex(key K, numBuckets int) int {
	h := hashAny(key)
	return int(h % uint64(numBuckets))
}

func (m *Map[K, V]) rehashIfNeeded() {
	if float64(m.size)/float64(len(m.buckets)) <= maxLoadFactor {
		return
	}
	newBuckets := make([][]entry[K, V], len(m.buckets)*growthFactor)
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			idx := m.bucketIndex(e.key, len(newBuckets))
			newBuckets[idx] = append(newBuckets[idx], e)
		}
	}
	m.buckets = newBuckets
}

// Insert sets key to value, returning true if the key is new and false if
// it replaced an existing value.
func (m *Map[K, V]) Insert(key K, value V) bool {
	m.rehashIfNeeded()
	idx := m.bucketIndex(key, len(m.buckets))
	for i := range m.buckets[idx] {
		if m.buckets[idx][i].key == key {
			m.buckets[idx][i].value = value
			return false
		}
	}
	m.buckets[idx] = append(m.buckets[idx], entry[K, V]{key: key, value: value})
	m.size++
	return true
}

// Erase removes key from the map, returning true if it was present.
func (m *Map[K, V]) Erase(key K) bool {
	idx := m.bucketIndex(key, len(m.buckets))
	bucket := m.buckets[idx]
	for i := range bucket {
		if bucket[i].key == key {
			m.buckets[idx] = append(bucket[:i], bucket[i+1:]...)
			m.size--
			return true
		}
	}
	return false
}

// Find returns a pointer to the stored value and true if key is present, or
// nil and false otherwise. The returned pointer is only valid until the next
// mutating call.
func (m *Map[K, V]) Find(key K) (*V, bool) {
	idx := m.bucketIndex(key, len(m.buckets))
	bucket := m.buckets[idx]
	for i := range bucket {
		if bucket[i].key == key {
			return &m.buckets[idx][i].value, true
		}
	}
	return nil, false
}

// GetOrInsert returns a pointer to the value for key, inserting a zero
// value first if the key is absent. It mirrors the index-operator idiom
// (`m[k]`) of the source language.
func (m *Map[K, V]) GetOrInsert(key K) *V {
	if v, ok := m.Find(key); ok {
		return v
	}
	m.rehashIfNeeded()
	idx := m.bucketIndex(key, len(m.buckets))
	var zero V
	m.buckets[idx] = append(m.buckets[idx], entry[K, V]{key: key, value: zero})
	m.size++
	return &m.buckets[idx][len(m.buckets[idx])-1].value
}

// Contains reports whether key is present in the map.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Find(key)
	return ok
}

// Size returns the number of entries in the map.
func (m *Map[K, V]) Size() int {
	return m.size
}

// Clear removes all entries from the map, resetting it to its initial
// bucket count.
func (m *Map[K, V]) Clear() {
	m.buckets = make([][]entry[K, V], initialCapacity)
	m.size = 0
}

// LoadFactor returns size/bucket_count.
func (m *Map[K, V]) LoadFactor() float64 {
	return float64(m.size) / float64(len(m.buckets))
}

// BucketCount returns the current number of buckets.
func (m *Map[K, V]) BucketCount() int {
	return len(m.buckets)
}

// All returns an iterator over (key, value) pairs in unspecified order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, bucket := range m.buckets {
			for _, e := range bucket {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

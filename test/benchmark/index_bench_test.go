// Package benchmark contains Go benchmarks for the posting set, term map,
// boolean index, and analyzer, measuring throughput and allocation behavior.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/adithya-search/boolsearch/internal/analyzer"
	"github.com/adithya-search/boolsearch/internal/boolindex"
	"github.com/adithya-search/boolsearch/internal/postingset"
	"github.com/adithya-search/boolsearch/internal/termmap"
)

// BenchmarkIndexAddDocument measures per-document insert throughput into the
// boolean index.
func BenchmarkIndexAddDocument(b *testing.B) {
	idx := boolindex.New[int]()
	terms := []string{"distributed", "search", "engine", "indexing", "query"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.AddDocument(i, terms)
	}
}

// BenchmarkIndexAndQuery measures AND-query latency over 10,000 documents.
func BenchmarkIndexAndQuery(b *testing.B) {
	idx := boolindex.New[int]()
	for i := 0; i < 10000; i++ {
		idx.AddDocument(i, []string{"distributed", "search", fmt.Sprintf("term%d", i%20)})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.AndQuery([]string{"distributed", "search"})
	}
}

// BenchmarkIndexOrQuery measures OR-query latency over 10,000 documents.
func BenchmarkIndexOrQuery(b *testing.B) {
	idx := boolindex.New[int]()
	for i := 0; i < 10000; i++ {
		idx.AddDocument(i, []string{fmt.Sprintf("term%d", i%20)})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.OrQuery([]string{"term0", "term1", "term2"})
	}
}

// BenchmarkPostingSetInsert measures skip-list insertion throughput.
func BenchmarkPostingSetInsert(b *testing.B) {
	set := postingset.New[int]()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		set.Insert(i)
	}
}

// BenchmarkPostingSetContains measures skip-list membership-test latency
// over 10,000 elements.
func BenchmarkPostingSetContains(b *testing.B) {
	set := postingset.New[int]()
	for i := 0; i < 10000; i++ {
		set.Insert(i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = set.Contains(i % 10000)
	}
}

// BenchmarkTermMapGetOrInsert measures hash-table insert/lookup throughput
// under the map's amortized rehashing.
func BenchmarkTermMapGetOrInsert(b *testing.B) {
	m := termmap.New[string, int]()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		term := fmt.Sprintf("term%d", i%1000)
		count := m.GetOrInsert(term)
		*count++
	}
}

// BenchmarkAnalyzerAnalyze measures the full normalize-stem-filter pipeline
// over a representative paragraph.
func BenchmarkAnalyzerAnalyze(b *testing.B) {
	text := "Distributed search engines process queries across multiple shards to achieve horizontal scalability."
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = analyzer.Analyze(text)
	}
}

// Package boolindex implements the inverted index: a term map from stemmed
// term to an ordered posting set, plus a universal document set, supporting
// document insertion/removal and AND/OR queries over term lists.
package boolindex

import (
	"cmp"
	"sort"

	"github.com/adithya-search/boolsearch/internal/postingset"
	"github.com/adithya-search/boolsearch/internal/termmap"
)

// Index is a Boolean inverted index parametric over any ordered, hashable
// document identifier.
type Index[D cmp.Ordered] struct {
	terms         *termmap.Map[string, *postingset.Set[D]]
	universe      *postingset.Set[D]
	totalDocs     int
	maxResponses  int
}

// New creates an Index with no bound on result size (max_responses = 0).
func New[D cmp.Ordered]() *Index[D] {
	return &Index[D]{
		terms:    termmap.New[string, *postingset.Set[D]](),
		universe: postingset.New[D](),
	}
}

// NewWithLimit creates an Index that caps AND/OR results at maxResponses
// (0 means unbounded).
func NewWithLimit[D cmp.Ordered](maxResponses int) *Index[D] {
	idx := New[D]()
	idx.maxResponses = maxResponses
	return idx
}

// AddDocument inserts id into the universal set and into the posting set of
// each term, creating posting sets for new terms as needed. total_documents
// only advances when id is genuinely new to the universal set — re-adding an
// existing id updates its term memberships without double-counting it,
// resolving the source's counter/set desynchronization on duplicate insert.
func (idx *Index[D]) AddDocument(id D, terms []string) {
	if idx.universe.Insert(id) {
		idx.totalDocs++
	}
	for _, term := range terms {
		set := idx.terms.GetOrInsert(term)
		if *set == nil {
			*set = postingset.New[D]()
		}
		(*set).Insert(id)
	}
}

// RemoveDocument removes id from every named term's posting set and from
// the universal set. It returns false and makes no changes if id is not a
// member of the universal set. Terms not present in the map are silently
// skipped; posting sets that become empty are retained, not erased.
func (idx *Index[D]) RemoveDocument(id D, terms []string) bool {
	if !idx.universe.Contains(id) {
		return false
	}
	for _, term := range terms {
		if set, ok := idx.terms.Find(term); ok {
			(*set).Remove(id)
		}
	}
	idx.universe.Remove(id)
	idx.totalDocs--
	return true
}

// AndQuery returns the ascending list of document IDs containing every term
// in terms. An empty input, or any term absent from the index, yields an
// empty result. The smallest posting set drives the intersection so cost is
// proportional to its size times the number of terms.
func (idx *Index[D]) AndQuery(terms []string) []D {
	if len(terms) == 0 {
		return []D{}
	}

	sets := make([]*postingset.Set[D], 0, len(terms))
	var smallest *postingset.Set[D]
	for _, term := range terms {
		set, ok := idx.terms.Find(term)
		if !ok {
			return []D{}
		}
		sets = append(sets, *set)
		if smallest == nil || (*set).Size() < smallest.Size() {
			smallest = *set
		}
	}

	result := make([]D, 0, smallest.Size())
	for docID := range smallest.All() {
		inAll := true
		for _, other := range sets {
			if other == smallest {
				continue
			}
			if !other.Contains(docID) {
				inAll = false
				break
			}
		}
		if !inAll {
			continue
		}
		result = append(result, docID)
		if idx.maxResponses != 0 && len(result) >= idx.maxResponses {
			break
		}
	}
	return result
}

// OrQuery returns the ascending, deduplicated list of document IDs
// containing at least one term in terms, truncated to maxResponses if set.
// An empty input yields an empty result; absent terms are skipped.
func (idx *Index[D]) OrQuery(terms []string) []D {
	if len(terms) == 0 {
		return []D{}
	}

	union := postingset.New[D]()
	for _, term := range terms {
		set, ok := idx.terms.Find(term)
		if !ok {
			continue
		}
		for docID := range (*set).All() {
			union.Insert(docID)
		}
	}

	result := make([]D, 0, union.Size())
	for docID := range union.All() {
		if idx.maxResponses != 0 && len(result) >= idx.maxResponses {
			break
		}
		result = append(result, docID)
	}
	return result
}

// GetDocumentsForTerm returns the ascending posting list for a single term,
// or an empty slice if the term is absent.
func (idx *Index[D]) GetDocumentsForTerm(term string) []D {
	set, ok := idx.terms.Find(term)
	if !ok {
		return []D{}
	}
	result := make([]D, 0, (*set).Size())
	for docID := range (*set).All() {
		result = append(result, docID)
	}
	return result
}

// GetAllTerms returns every term currently in the index, in unspecified
// order.
func (idx *Index[D]) GetAllTerms() []string {
	terms := make([]string, 0, idx.terms.Size())
	for term := range idx.terms.All() {
		terms = append(terms, term)
	}
	return terms
}

// GetAllDocuments returns every document ID in the universal set, ascending.
func (idx *Index[D]) GetAllDocuments() []D {
	result := make([]D, 0, idx.universe.Size())
	for docID := range idx.universe.All() {
		result = append(result, docID)
	}
	return result
}

// ContainsTerm reports whether term is present in the index.
func (idx *Index[D]) ContainsTerm(term string) bool {
	return idx.terms.Contains(term)
}

// ContainsDocument reports whether id is a member of the universal set.
func (idx *Index[D]) ContainsDocument(id D) bool {
	return idx.universe.Contains(id)
}

// GetTermFrequency returns the number of documents containing term, or zero
// if the term is absent.
func (idx *Index[D]) GetTermFrequency(term string) int {
	set, ok := idx.terms.Find(term)
	if !ok {
		return 0
	}
	return (*set).Size()
}

// TotalDocuments returns the number of documents currently in the index.
func (idx *Index[D]) TotalDocuments() int {
	return idx.totalDocs
}

// TotalTerms returns the number of unique terms currently in the index.
func (idx *Index[D]) TotalTerms() int {
	return idx.terms.Size()
}

// Stats summarizes index size for logging and metrics.
type Stats struct {
	TotalDocuments int
	TotalTerms     int
	LargestTerm    string
	LargestTermLen int
	SmallestTerm   string
	SmallestTermLen int
}

// Stats computes index-wide summary statistics, the structured equivalent
// of the source's print_statistics/print_index debug output.
func (idx *Index[D]) Stats() Stats {
	stats := Stats{
		TotalDocuments:  idx.totalDocs,
		TotalTerms:      idx.terms.Size(),
		SmallestTermLen: -1,
	}
	terms := idx.GetAllTerms()
	sort.Strings(terms)
	for _, term := range terms {
		size := idx.GetTermFrequency(term)
		if size > stats.LargestTermLen {
			stats.LargestTermLen = size
			stats.LargestTerm = term
		}
		if stats.SmallestTermLen == -1 || size < stats.SmallestTermLen {
			stats.SmallestTermLen = size
			stats.SmallestTerm = term
		}
	}
	if stats.SmallestTermLen == -1 {
		stats.SmallestTermLen = 0
	}
	return stats
}

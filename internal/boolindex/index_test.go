package boolindex

import (
	"fmt"
	"reflect"
	"testing"
)

func TestSingleTermLookup(t *testing.T) {
	idx := New[int]()
	idx.AddDocument(1, []string{"apple", "fruit", "red"})
	idx.AddDocument(2, []string{"banana", "fruit", "yellow"})
	idx.AddDocument(3, []string{"apple", "pie", "dessert"})

	got := idx.GetDocumentsForTerm("apple")
	want := []int{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetDocumentsForTerm(apple) = %v, want %v", got, want)
	}
	if idx.TotalTerms() != 7 {
		t.Errorf("TotalTerms() = %d, want 7", idx.TotalTerms())
	}
	if idx.TotalDocuments() != 3 {
		t.Errorf("TotalDocuments() = %d, want 3", idx.TotalDocuments())
	}
}

func s2Index() *Index[int] {
	idx := New[int]()
	idx.AddDocument(1, []string{"apple", "fruit", "red"})
	idx.AddDocument(2, []string{"apple", "fruit", "green"})
	idx.AddDocument(3, []string{"apple", "pie", "dessert"})
	idx.AddDocument(4, []string{"banana", "fruit", "yellow"})
	return idx
}

func TestAndQuery(t *testing.T) {
	idx := s2Index()

	if got, want := idx.AndQuery([]string{"apple", "fruit"}), []int{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("and_query([apple,fruit]) = %v, want %v", got, want)
	}
	if got := idx.AndQuery([]string{"apple", "nonexistent"}); len(got) != 0 {
		t.Errorf("and_query([apple,nonexistent]) = %v, want []", got)
	}
	if got, want := idx.AndQuery([]string{"apple", "fruit", "red"}), []int{1}; !reflect.DeepEqual(got, want) {
		t.Errorf("and_query([apple,fruit,red]) = %v, want %v", got, want)
	}
	if got := idx.AndQuery(nil); len(got) != 0 {
		t.Errorf("and_query(nil) = %v, want []", got)
	}
}

func TestOrQuery(t *testing.T) {
	idx := s2Index()

	if got, want := idx.OrQuery([]string{"apple", "pie"}), []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("or_query([apple,pie]) = %v, want %v", got, want)
	}
	got := idx.OrQuery([]string{"apple", "nonexistent"})
	want := idx.GetDocumentsForTerm("apple")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("or_query([apple,nonexistent]) = %v, want %v", got, want)
	}
}

func TestRemoveDocument(t *testing.T) {
	idx := New[int]()
	idx.AddDocument(1, []string{"apple", "fruit"})
	idx.AddDocument(2, []string{"apple", "pie"})

	if !idx.RemoveDocument(1, []string{"apple", "fruit"}) {
		t.Fatal("remove_document(1) should succeed")
	}
	if idx.GetTermFrequency("apple") != 1 {
		t.Errorf("get_term_frequency(apple) = %d, want 1", idx.GetTermFrequency("apple"))
	}
	if idx.RemoveDocument(99, []string{"x"}) {
		t.Error("remove_document(99) should fail — 99 was never added")
	}
	if idx.ContainsDocument(1) {
		t.Error("document 1 should no longer be present")
	}
}

func TestAddRemoveRoundTripPreservesCounts(t *testing.T) {
	idx := New[int]()
	terms := []string{"a", "b", "c"}
	for i := 0; i < 5; i++ {
		idx.AddDocument(i, []string{"x", "y"})
	}
	before := idx.TotalDocuments()
	beforeFreqs := map[string]int{"x": idx.GetTermFrequency("x"), "y": idx.GetTermFrequency("y")}

	idx.AddDocument(100, terms)
	idx.RemoveDocument(100, terms)

	if idx.ContainsDocument(100) {
		t.Error("document 100 should not be present after add-then-remove")
	}
	if idx.TotalDocuments() != before {
		t.Errorf("TotalDocuments() = %d, want unchanged %d", idx.TotalDocuments(), before)
	}
	for term, freq := range beforeFreqs {
		if idx.GetTermFrequency(term) != freq {
			t.Errorf("term %q frequency changed: got %d, want %d", term, idx.GetTermFrequency(term), freq)
		}
	}
}

func TestDuplicateAddDoesNotInflateTotalDocuments(t *testing.T) {
	idx := New[int]()
	idx.AddDocument(1, []string{"a"})
	idx.AddDocument(1, []string{"b"})

	if idx.TotalDocuments() != 1 {
		t.Errorf("TotalDocuments() = %d, want 1 (re-adding an id must not double count)", idx.TotalDocuments())
	}
	if idx.GetTermFrequency("a") != 1 || idx.GetTermFrequency("b") != 1 {
		t.Error("re-adding an existing id should still register its new term memberships")
	}
}

func TestAndQueryCapsAtMaxResponses(t *testing.T) {
	idx := NewWithLimit[int](10)
	for i := 0; i < 1000; i++ {
		terms := []string{fmt.Sprintf("term_%d", i%5)}
		idx.AddDocument(i, append(terms, "term_0", "term_1"))
	}
	got := idx.AndQuery([]string{"term_0", "term_1"})
	if len(got) != 10 {
		t.Errorf("and_query with max_responses=10 returned %d items, want 10", len(got))
	}
}

func TestOrQueryCapsAtMaxResponses(t *testing.T) {
	idx := NewWithLimit[int](10)
	for i := 0; i < 1000; i++ {
		idx.AddDocument(i, []string{fmt.Sprintf("term_%d", i%5)})
	}
	got := idx.OrQuery([]string{"term_0", "term_1", "term_2", "term_3", "term_4"})
	if len(got) != 10 {
		t.Errorf("or_query with max_responses=10 returned %d items, want 10", len(got))
	}
}

func TestAndSubsetOfOr(t *testing.T) {
	idx := s2Index()
	terms := []string{"apple", "fruit"}
	and := idx.AndQuery(terms)
	or := idx.OrQuery(terms)
	orSet := make(map[int]bool, len(or))
	for _, id := range or {
		orSet[id] = true
	}
	for _, id := range and {
		if !orSet[id] {
			t.Errorf("and_query result %d not present in or_query result %v", id, or)
		}
	}
}

package postingset

import (
	"errors"
	"testing"

	appErrors "github.com/adithya-search/boolsearch/pkg/errors"
)

func TestInsertDeduplicates(t *testing.T) {
	s := New[int]()
	if !s.Insert(5) {
		t.Fatal("first insert of 5 should return true")
	}
	if s.Insert(5) {
		t.Fatal("second insert of 5 should return false")
	}
	if s.Size() != 1 {
		t.Fatalf("size = %d, want 1", s.Size())
	}
}

func TestInsertAscendingIteration(t *testing.T) {
	s := New[int]()
	values := []int{5, 3, 9, 1, 7, 2}
	for _, v := range values {
		s.Insert(v)
	}

	var got []int
	for v := range s.All() {
		got = append(got, v)
	}
	want := []int{1, 2, 3, 5, 7, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestContains(t *testing.T) {
	s := New[string]()
	s.Insert("apple")
	s.Insert("banana")

	if !s.Contains("apple") {
		t.Error("expected apple to be present")
	}
	if s.Contains("cherry") {
		t.Error("did not expect cherry to be present")
	}
}

func TestRemove(t *testing.T) {
	s := New[int]()
	s.Insert(1)
	s.Insert(2)
	s.Insert(3)

	if !s.Remove(2) {
		t.Fatal("expected remove of present element to return true")
	}
	if s.Remove(2) {
		t.Fatal("expected second remove of same element to return false")
	}
	if s.Contains(2) {
		t.Error("2 should no longer be present")
	}
	if s.Size() != 2 {
		t.Fatalf("size = %d, want 2", s.Size())
	}
}

func TestMinMaxEmpty(t *testing.T) {
	s := New[int]()
	if _, err := s.Min(); !errors.Is(err, appErrors.ErrEmpty) {
		t.Errorf("Min() on empty set: got err %v, want ErrEmpty", err)
	}
	if _, err := s.Max(); !errors.Is(err, appErrors.ErrEmpty) {
		t.Errorf("Max() on empty set: got err %v, want ErrEmpty", err)
	}
}

func TestMinMax(t *testing.T) {
	s := New[int]()
	for _, v := range []int{5, 1, 9, 3} {
		s.Insert(v)
	}
	min, err := s.Min()
	if err != nil || min != 1 {
		t.Errorf("Min() = %v, %v; want 1, nil", min, err)
	}
	max, err := s.Max()
	if err != nil || max != 9 {
		t.Errorf("Max() = %v, %v; want 9, nil", max, err)
	}
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	s := New[int]()
	for i := 0; i < 200; i++ {
		s.Insert(i)
	}
	if s.Size() != 200 {
		t.Fatalf("size = %d, want 200", s.Size())
	}
	for i := 0; i < 200; i += 2 {
		if !s.Remove(i) {
			t.Fatalf("expected remove(%d) to succeed", i)
		}
	}
	if s.Size() != 100 {
		t.Fatalf("size after removing evens = %d, want 100", s.Size())
	}
	for i := 1; i < 200; i += 2 {
		if !s.Contains(i) {
			t.Errorf("expected %d to remain present", i)
		}
	}
}

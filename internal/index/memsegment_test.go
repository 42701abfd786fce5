package index

import "testing"

func TestMemSegmentAddDocumentRejectsDuplicate(t *testing.T) {
	s := NewMemSegment(10)
	if err := s.AddDocument(DocID(1), map[string]int{"fox": 1}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if err := s.AddDocument(DocID(1), map[string]int{"fox": 1}); err == nil {
		t.Fatal("expected error re-adding the same DocID to one segment")
	}
}

func TestMemSegmentIsFull(t *testing.T) {
	s := NewMemSegment(2)
	s.AddDocument(DocID(1), map[string]int{"a": 1})
	if s.IsFull() {
		t.Fatal("segment with 1/2 docs reported full")
	}
	s.AddDocument(DocID(2), map[string]int{"a": 1})
	if !s.IsFull() {
		t.Fatal("segment with 2/2 docs did not report full")
	}
}

func TestMemSegmentSnapshotSortedAndDeduped(t *testing.T) {
	s := NewMemSegment(10)
	s.AddDocument(DocID(3), map[string]int{"brown": 2, "fox": 1})
	s.AddDocument(DocID(1), map[string]int{"brown": 1})

	entries := s.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(entries))
	}
	// entries sorted by term ascending: brown, fox
	if entries[0].Term != "brown" || entries[1].Term != "fox" {
		t.Fatalf("terms not sorted: %+v", entries)
	}
	brown := entries[0]
	if len(brown.Postings) != 2 {
		t.Fatalf("expected 2 postings for brown, got %d", len(brown.Postings))
	}
	if brown.Postings[0].DocID != 1 || brown.Postings[1].DocID != 3 {
		t.Fatalf("postings not sorted ascending by DocID: %+v", brown.Postings)
	}
}

func TestMemSegmentResetClearsState(t *testing.T) {
	s := NewMemSegment(10)
	s.AddDocument(DocID(1), map[string]int{"a": 1})
	s.Reset()
	if s.DocCount() != 0 {
		t.Fatalf("expected 0 docs after Reset, got %d", s.DocCount())
	}
	if len(s.Snapshot()) != 0 {
		t.Fatal("expected empty snapshot after Reset")
	}
	// The DocID that was present before Reset can be reused in a later
	// batch without AddDocument rejecting it as a duplicate.
	if err := s.AddDocument(DocID(1), map[string]int{"a": 1}); err != nil {
		t.Fatalf("AddDocument after Reset: %v", err)
	}
}

package index

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultMaxDocs is the default bound S on the number of documents an
// in-memory segment accumulates before it must be flushed.
const DefaultMaxDocs = 100

// MemSegment accumulates postings for a bounded batch of documents before
// being flushed to an on-disk segment. It has a single-threaded owner (the
// index writer's sink goroutine); it is not safe for concurrent use by
// multiple goroutines, beyond the RWMutex guarding its read-only
// inspection methods (IsFull, DocCount, Search, Snapshot).
type MemSegment struct {
	mu      sync.RWMutex
	maxDocs int
	terms   map[string]map[DocID]int // term -> docID -> term frequency
	docs    map[DocID]struct{}
}

// NewMemSegment creates an empty in-memory segment bounded at maxDocs
// documents. maxDocs <= 0 falls back to DefaultMaxDocs.
func NewMemSegment(maxDocs int) *MemSegment {
	if maxDocs <= 0 {
		maxDocs = DefaultMaxDocs
	}
	return &MemSegment{
		maxDocs: maxDocs,
		terms:   make(map[string]map[DocID]int),
		docs:    make(map[DocID]struct{}),
	}
}

// AddDocument merges a prepared term-frequency map for docID into the
// segment. It returns an error if docID has already been added to this
// segment (the caller is responsible for uniqueness within one segment).
func (s *MemSegment) AddDocument(docID DocID, termFreq map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[docID]; exists {
		return fmt.Errorf("memsegment: document %d already present in this segment", docID)
	}
	s.docs[docID] = struct{}{}

	for term, freq := range termFreq {
		if freq <= 0 {
			continue
		}
		postings, ok := s.terms[term]
		if !ok {
			postings = make(map[DocID]int)
			s.terms[term] = postings
		}
		postings[docID] = freq
	}
	return nil
}

// IsFull reports whether the segment has reached its document bound.
func (s *MemSegment) IsFull() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs) >= s.maxDocs
}

// DocCount returns the number of documents currently accumulated.
func (s *MemSegment) DocCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Search returns the postings list for term as it currently stands in this
// segment, sorted ascending by DocID.
func (s *MemSegment) Search(term string) PostingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	postings, ok := s.terms[term]
	if !ok {
		return nil
	}
	result := make(PostingList, 0, len(postings))
	for docID, freq := range postings {
		result = append(result, Posting{DocID: docID, Frequency: freq})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DocID < result[j].DocID })
	return result
}

// Snapshot returns every term in the segment as a sorted slice of
// TermEntry, each with a postings list sorted ascending by DocID. The
// snapshot is a value copy and is safe to use after the segment is reset.
func (s *MemSegment) Snapshot() []TermEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]TermEntry, 0, len(s.terms))
	for term, postings := range s.terms {
		pl := make(PostingList, 0, len(postings))
		for docID, freq := range postings {
			pl = append(pl, Posting{DocID: docID, Frequency: freq})
		}
		sort.Slice(pl, func(i, j int) bool { return pl[i].DocID < pl[j].DocID })
		entries = append(entries, TermEntry{Term: term, Postings: pl})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Term < entries[j].Term })
	return entries
}

// Reset clears the segment so it can accumulate a new batch.
func (s *MemSegment) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = make(map[string]map[DocID]int)
	s.docs = make(map[DocID]struct{})
}

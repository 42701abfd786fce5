// Package index defines the postings data model shared by in-memory and
// on-disk segments.
package index

// DocID identifies a document within one index. It is assigned by the
// DocumentStore on first sighting of a path, is never reused, and is
// stable across indexing runs.
type DocID uint64

// Posting is one (document, term-frequency) pair within a term's postings
// list for a single segment.
type Posting struct {
	DocID     DocID
	Frequency int
}

// PostingList is a sequence of Postings sorted ascending by DocID, with no
// duplicate DocIDs.
type PostingList []Posting

// TermEntry is a term together with its postings list within one segment.
// DocFreq is the count of distinct DocIDs in Postings (equivalently
// len(Postings), since postings lists never contain duplicates).
type TermEntry struct {
	Term     string
	Postings PostingList
}

// DocFreq returns the segment-local document frequency for this term.
func (t TermEntry) DocFreq() int {
	return len(t.Postings)
}

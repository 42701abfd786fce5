package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rhea-dev/fsindex/internal/index"
)

func TestWriteOpenSearchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries := []index.TermEntry{
		{Term: "brown", Postings: index.PostingList{
			{DocID: 0, Frequency: 1},
			{DocID: 1, Frequency: 1},
		}},
		{Term: "fox", Postings: index.PostingList{
			{DocID: 0, Frequency: 1},
		}},
	}

	segDir, docCount, err := Write(dir, 0, entries)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if segDir != filepath.Join(dir, "segment_0") {
		t.Fatalf("unexpected segment dir: %s", segDir)
	}
	if docCount != 2 {
		t.Fatalf("expected docCount=2, got %d", docCount)
	}

	r, err := Open(segDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.TermCount() != 2 {
		t.Fatalf("expected 2 terms, got %d", r.TermCount())
	}
	if r.DocFreq("brown") != 2 {
		t.Fatalf("expected DocFreq(brown)=2, got %d", r.DocFreq("brown"))
	}
	if r.DocFreq("missing") != 0 {
		t.Fatalf("expected DocFreq(missing)=0, got %d", r.DocFreq("missing"))
	}

	postings, err := r.Search("brown")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(postings) != 2 || postings[0].DocID != 0 || postings[1].DocID != 1 {
		t.Fatalf("unexpected postings for brown: %+v", postings)
	}

	missing, err := r.Search("nope")
	if err != nil {
		t.Fatalf("Search(missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil postings for missing term, got %+v", missing)
	}
}

func TestWriteAtomicityLeavesNoTempDirOnSuccess(t *testing.T) {
	dir := t.TempDir()
	entries := []index.TermEntry{
		{Term: "a", Postings: index.PostingList{{DocID: 0, Frequency: 1}}},
	}
	segDir, _, err := Write(dir, 5, entries)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(segDir + ".tmp"); err == nil {
		t.Fatal("expected temp directory to be gone after successful Write")
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	entries := []index.TermEntry{
		{Term: "a", Postings: index.PostingList{{DocID: 0, Frequency: 1}}},
	}
	segDir, _, err := Write(dir, 0, entries)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	dictPath := filepath.Join(segDir, dictFileName)
	if err := os.WriteFile(dictPath, []byte("not a dict file"), 0o644); err != nil {
		t.Fatalf("corrupting %s: %v", dictPath, err)
	}

	if _, err := Open(segDir); err == nil {
		t.Fatal("expected Open to reject a corrupted term.dict")
	}
}

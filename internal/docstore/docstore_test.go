package docstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInternIsIdempotentAndIncreasing(t *testing.T) {
	s := New()
	a := s.Intern("/a.txt")
	b := s.Intern("/b.txt")
	aAgain := s.Intern("/a.txt")

	if a != aAgain {
		t.Fatalf("Intern not idempotent: %d != %d", a, aAgain)
	}
	if b <= a {
		t.Fatalf("DocID assignment not increasing: a=%d b=%d", a, b)
	}
}

func TestShouldSkipMatchesSizeAndModTime(t *testing.T) {
	s := New()
	id := s.Intern("/a.txt")
	mtime := time.Now().Truncate(time.Second)
	s.UpdateMetadata(id, 42, mtime, 10)

	if !s.ShouldSkip("/a.txt", 42, mtime) {
		t.Fatal("expected ShouldSkip to be true for unchanged (size, mtime)")
	}
	if s.ShouldSkip("/a.txt", 43, mtime) {
		t.Fatal("expected ShouldSkip to be false for changed size")
	}
	if s.ShouldSkip("/unknown.txt", 42, mtime) {
		t.Fatal("expected ShouldSkip to be false for unknown path")
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docstore.bin")

	s := New()
	id1 := s.Intern("/a.txt")
	id2 := s.Intern("/b.txt")
	mtime := time.Now().Truncate(time.Second)
	s.UpdateMetadata(id1, 10, mtime, 4)
	s.UpdateMetadata(id2, 20, mtime.Add(time.Minute), 8)

	if err := s.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != s.Len() {
		t.Fatalf("Len mismatch: got %d want %d", loaded.Len(), s.Len())
	}
	rec, ok := loaded.Get(id1)
	if !ok || rec.Path != "/a.txt" || rec.Size != 10 || rec.Length != 4 {
		t.Fatalf("record for id1 mismatch: %+v ok=%v", rec, ok)
	}
	if loaded.Intern("/a.txt") != id1 {
		t.Fatal("reloaded store did not preserve DocID for known path")
	}
}

func TestPersistLoadByteIdenticalWithNoMutation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docstore.bin")

	s := New()
	id := s.Intern("/a.txt")
	s.UpdateMetadata(id, 1, time.Unix(1000, 0).UTC(), 2)
	if err := s.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	path2 := filepath.Join(dir, "docstore2.bin")
	if err := loaded.Persist(path2); err != nil {
		t.Fatalf("re-Persist: %v", err)
	}

	b1 := readFile(t, path)
	b2 := readFile(t, path2)
	if string(b1) != string(b2) {
		t.Fatal("load-then-persist did not round trip to identical bytes")
	}
}

func TestLoadMissingFileReturnsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.bin"))
	if err != nil {
		t.Fatalf("Load of missing file returned error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got Len=%d", s.Len())
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return b
}

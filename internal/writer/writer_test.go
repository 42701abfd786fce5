package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rhea-dev/fsindex/internal/docstore"
	"github.com/rhea-dev/fsindex/internal/segment"
	"github.com/rhea-dev/fsindex/pkg/lockfile"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestRunIndexesTwoPlainTextFiles(t *testing.T) {
	root := t.TempDir()
	indexDir := t.TempDir()
	writeFile(t, root, "a.txt", "the quick brown fox")
	writeFile(t, root, "b.txt", "the lazy brown dog")

	result, err := Run(context.Background(), Options{Root: root, IndexDir: indexDir}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Indexed != 2 {
		t.Fatalf("expected 2 indexed documents, got %d", result.Indexed)
	}
	if result.SegmentsFlushed != 1 {
		t.Fatalf("expected 1 flushed segment, got %d", result.SegmentsFlushed)
	}

	store, err := docstore.Load(filepath.Join(indexDir, docstore.FileName))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected docstore size 2, got %d", store.Len())
	}

	r, err := segment.Open(filepath.Join(indexDir, segment.DirName(0)))
	if err != nil {
		t.Fatalf("Open segment: %v", err)
	}
	defer r.Close()
	if df := r.DocFreq("brown"); df != 2 {
		t.Fatalf("expected df(brown)=2, got %d", df)
	}
}

func TestRunCreatesMultipleSegmentsWhenOverCapacity(t *testing.T) {
	root := t.TempDir()
	indexDir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, root, filepathName(i), "alpha")
	}

	result, err := Run(context.Background(), Options{Root: root, IndexDir: indexDir, SegmentMaxDocs: 2}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Indexed != 5 {
		t.Fatalf("expected 5 indexed, got %d", result.Indexed)
	}
	if result.SegmentsFlushed != 3 {
		t.Fatalf("expected 3 segments (2,2,1), got %d", result.SegmentsFlushed)
	}
}

func filepathName(i int) string {
	return "doc_" + string(rune('a'+i)) + ".txt"
}

func TestRunSkipsUnchangedFilesOnSecondPass(t *testing.T) {
	root := t.TempDir()
	indexDir := t.TempDir()
	writeFile(t, root, "a.txt", "hello world")

	if _, err := Run(context.Background(), Options{Root: root, IndexDir: indexDir}, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := Run(context.Background(), Options{Root: root, IndexDir: indexDir}, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Indexed != 0 {
		t.Fatalf("expected 0 newly indexed documents on unchanged re-run, got %d", result.Indexed)
	}
	if result.SegmentsFlushed != 0 {
		t.Fatalf("expected 0 new segments on unchanged re-run, got %d", result.SegmentsFlushed)
	}
}

func TestRunSkipsUnknownExtensions(t *testing.T) {
	root := t.TempDir()
	indexDir := t.TempDir()
	writeFile(t, root, "a.txt", "hello")
	writeFile(t, root, "b.exe", "binary garbage")

	result, err := Run(context.Background(), Options{Root: root, IndexDir: indexDir}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Indexed != 1 {
		t.Fatalf("expected 1 indexed document, got %d", result.Indexed)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped file, got %d", result.Skipped)
	}
}

func TestRunHonorsSkipPaths(t *testing.T) {
	root := t.TempDir()
	indexDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "vendor"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, root, "a.txt", "hello")
	writeFile(t, filepath.Join(root, "vendor"), "c.txt", "hidden from index")

	result, err := Run(context.Background(), Options{Root: root, IndexDir: indexDir, SkipPaths: []string{"vendor"}}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Indexed != 1 {
		t.Fatalf("expected 1 indexed document, got %d", result.Indexed)
	}
}

func TestRunRejectsNonexistentRoot(t *testing.T) {
	_, err := Run(context.Background(), Options{Root: "/no/such/path", IndexDir: t.TempDir()}, nil)
	if err == nil {
		t.Fatal("expected error for nonexistent root")
	}
}

func TestRunFailsWhenIndexDirectoryIsAlreadyLocked(t *testing.T) {
	root := t.TempDir()
	indexDir := t.TempDir()
	writeFile(t, root, "a.txt", "hello")

	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	held, err := lockfile.Acquire(filepath.Join(indexDir, LockFileName))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Close()

	if _, err := Run(context.Background(), Options{Root: root, IndexDir: indexDir}, nil); err == nil {
		t.Fatal("expected Run to fail while another writer holds the index lock")
	}
}

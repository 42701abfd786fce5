package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rhea-dev/fsindex/internal/query"
	"github.com/rhea-dev/fsindex/internal/writer"
)

func buildEngine(t *testing.T) *query.Engine {
	t.Helper()
	root := t.TempDir()
	indexDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("the quick brown fox"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if _, err := writer.Run(context.Background(), writer.Options{Root: root, IndexDir: indexDir}, nil); err != nil {
		t.Fatalf("writer.Run: %v", err)
	}
	e, err := query.Open(indexDir)
	if err != nil {
		t.Fatalf("query.Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestQueryHandlerRejectsNonPost(t *testing.T) {
	h := New(buildEngine(t), 10, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	rec := httptest.NewRecorder()
	h.Query(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestQueryHandlerRejectsInvalidUTF8(t *testing.T) {
	h := New(buildEngine(t), 10, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader("\xff\xfe"))
	rec := httptest.NewRecorder()
	h.Query(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQueryHandlerReturnsNewlineSeparatedPaths(t *testing.T) {
	h := New(buildEngine(t), 10, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader("fox"))
	rec := httptest.NewRecorder()
	h.Query(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "a.txt") {
		t.Fatalf("expected result to contain a.txt, got %q", rec.Body.String())
	}
}

func TestQueryHandlerScoresExtension(t *testing.T) {
	h := New(buildEngine(t), 10, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/query?scores=1", strings.NewReader("fox"))
	rec := httptest.NewRecorder()
	h.Query(rec, req)
	if !strings.Contains(rec.Body.String(), "\t") {
		t.Fatalf("expected a tab-separated score, got %q", rec.Body.String())
	}
}

func TestIndexHandlerServesHTML(t *testing.T) {
	h := New(buildEngine(t), 10, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Index(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<html>") {
		t.Fatalf("expected HTML body, got %q", rec.Body.String())
	}
}

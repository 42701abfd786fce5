package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestDispatchUnknownExtension(t *testing.T) {
	_, err := Dispatch("/tmp/file.unknown")
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("expected ErrUnsupportedExtension, got %v", err)
	}
}

func TestExtractPlainText(t *testing.T) {
	path := writeTemp(t, "a.txt", "hello world")
	text, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("got %q", text)
	}
}

func TestExtractHTMLStripsScriptAndTags(t *testing.T) {
	path := writeTemp(t, "a.html", `<html><head><style>body{color:red}</style></head>
<body><script>alert(1)</script><p>Hello <b>World</b></p></body></html>`)
	text, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Hello World" {
		t.Fatalf("got %q", text)
	}
}

func TestExtractXMLConcatenatesCharData(t *testing.T) {
	path := writeTemp(t, "a.xml", `<doc><title>Hello</title><body>World</body></doc>`)
	text, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Hello World" {
		t.Fatalf("got %q", text)
	}
}

func TestExtractCSVConcatenatesCells(t *testing.T) {
	path := writeTemp(t, "a.csv", "a,b,c\n1,2,3\n")
	text, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "a b c 1 2 3" {
		t.Fatalf("got %q", text)
	}
}

func TestExtractPDFRejectsNonPDFBytes(t *testing.T) {
	path := writeTemp(t, "a.pdf", "not a real pdf")
	if _, err := Extract(path); err == nil {
		t.Fatal("expected error extracting a malformed PDF")
	}
}

// Package extractor turns a file on disk into plain text for the
// tokenizer, dispatching on the file's lowercased extension. It is a
// thin, format-specific collaborator: extraction correctness beyond
// "produce visible text" is out of scope, per spec.md §1.
package extractor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedExtension is returned by Dispatch for extensions with no
// registered extractor. The caller treats this as a tagged skip, not a
// fatal error.
var ErrUnsupportedExtension = fmt.Errorf("extractor: unsupported extension")

// Func extracts plain text from the file at path.
type Func func(path string) (string, error)

var registry = map[string]Func{
	"txt":   extractPlainText,
	"md":    extractPlainText,
	"html":  extractHTML,
	"xhtml": extractHTML,
	"xml":   extractXML,
	"csv":   extractCSV,
	"pdf":   extractPDF,
}

// Dispatch returns the extractor registered for path's lowercased
// extension, or ErrUnsupportedExtension if none is registered.
func Dispatch(path string) (Func, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	fn, ok := registry[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	return fn, nil
}

// Extract dispatches on path's extension and runs the resulting
// extractor. It is a convenience wrapper around Dispatch for callers that
// don't need to distinguish "no extractor" from "extraction failed".
func Extract(path string) (string, error) {
	fn, err := Dispatch(path)
	if err != nil {
		return "", err
	}
	return fn(path)
}

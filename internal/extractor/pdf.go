package extractor

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// No PDF parsing library appears anywhere in the retrieved corpus, and
// spec.md §1 scopes format-specific extractors to their interface rather
// than their fidelity. extractPDF is therefore a minimal, best-effort
// scanner: it looks for uncompressed content-stream text-showing
// operators (Tj and the array form TJ) and joins what it finds for each
// "stream ... endstream" block with a newline, approximating spec.md
// §4.2's "concatenate per-page extracted text with newlines". PDFs whose
// content streams are compressed (FlateDecode, the common case) yield no
// text; the caller treats that as a non-fatal, empty-result extraction
// rather than a failure.
var (
	streamRegex  = regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)
	tjRegex      = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj`)
	tjArrayRegex = regexp.MustCompile(`\[((?:[^\[\]]|\\.)*)\]\s*TJ`)
	tjArrayPart  = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)
)

func extractPDF(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extractor: reading %s: %w", path, err)
	}
	raw := string(data)
	if !strings.HasPrefix(raw, "%PDF-") {
		return "", fmt.Errorf("extractor: %s does not look like a PDF", path)
	}

	var pages []string
	for _, stream := range streamRegex.FindAllStringSubmatch(raw, -1) {
		text := extractStreamText(stream[1])
		if text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func extractStreamText(stream string) string {
	var parts []string
	for _, m := range tjRegex.FindAllStringSubmatch(stream, -1) {
		parts = append(parts, unescapePDFString(m[1]))
	}
	for _, m := range tjArrayRegex.FindAllStringSubmatch(stream, -1) {
		for _, p := range tjArrayPart.FindAllStringSubmatch(m[1], -1) {
			parts = append(parts, unescapePDFString(p[1]))
		}
	}
	return strings.Join(parts, " ")
}

func unescapePDFString(s string) string {
	s = strings.ReplaceAll(s, `\(`, "(")
	s = strings.ReplaceAll(s, `\)`, ")")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

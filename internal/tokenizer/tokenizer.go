// Package tokenizer turns raw document or query text into the normalized
// term sequence the index is built and queried against. Indexing and
// querying both call Tokenize, so the two paths can never drift apart.
package tokenizer

import (
	"strings"
	"unicode"

	snowballstem "github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Tokenize scans text as a stream of Unicode scalars, splits it into
// maximal alphabetic and numeric runs, lowercases and stems alphabetic
// runs (dropping stop words), and passes numeric runs through unchanged.
// Any other scalar is a boundary and is discarded.
func Tokenize(text string) []string {
	runs := scan(text)
	terms := make([]string, 0, len(runs))
	for _, r := range runs {
		if r.numeric {
			terms = append(terms, r.text)
			continue
		}
		lower := strings.ToLower(r.text)
		if _, stop := stopWords[lower]; stop {
			continue
		}
		stemmed := stem(lower)
		if stemmed == "" {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms
}

type run struct {
	text    string
	numeric bool
}

// scan splits text into maximal runs of letters or digits, discarding
// whitespace and punctuation. A class change (letters <-> digits) always
// starts a new run, per spec.md's "foo123bar" -> foo, 123, bar example.
func scan(text string) []run {
	var runs []run
	var buf strings.Builder
	var bufNumeric bool
	inRun := false

	flush := func() {
		if inRun && buf.Len() > 0 {
			runs = append(runs, run{text: buf.String(), numeric: bufNumeric})
		}
		buf.Reset()
		inRun = false
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			if inRun && bufNumeric {
				flush()
			}
			bufNumeric = false
			inRun = true
			buf.WriteRune(r)
		case unicode.IsDigit(r):
			if inRun && !bufNumeric {
				flush()
			}
			bufNumeric = true
			inRun = true
			buf.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return runs
}

// stem applies the Porter2 ("Snowball") English stemming algorithm.
func stem(word string) string {
	env := snowballstem.NewEnv(word)
	english.Stem(env)
	stemmed := env.Current()
	if stemmed == "" {
		return word
	}
	return stemmed
}

// Package query implements TF-IDF scoring over a DocumentStore and the
// on-disk segments of one index directory.
package query

import (
	"container/heap"
	"math"
	"os"
	"path/filepath"

	"github.com/rhea-dev/fsindex/internal/docstore"
	"github.com/rhea-dev/fsindex/internal/index"
	"github.com/rhea-dev/fsindex/internal/segment"
	"github.com/rhea-dev/fsindex/internal/tokenizer"
	apperrors "github.com/rhea-dev/fsindex/pkg/errors"
)

// DefaultK is the default number of results returned when the caller
// doesn't specify a count.
const DefaultK = 20

// ScoredDoc pairs a resolved path with its accumulated TF-IDF score.
type ScoredDoc struct {
	Path  string
	Score float64
}

// Engine holds an opened index's DocumentStore and on-disk segment
// readers, ready to answer queries. It does not hold the writer's lock:
// multiple Engines may read the same index directory concurrently, and
// an Engine is safe for concurrent use by multiple goroutines.
type Engine struct {
	store    *docstore.Store
	segments []*segment.Reader
}

// Open loads the DocumentStore and every on-disk segment under dir. A
// missing or empty index directory is not an error: it yields an Engine
// over an empty index, per spec §7/§8.
func Open(dir string) (*Engine, error) {
	store, err := docstore.Load(filepath.Join(dir, docstore.FileName))
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrIndexOpen, 0, "%v", err)
	}

	var segments []*segment.Reader
	for k := 0; ; k++ {
		segDir := filepath.Join(dir, segment.DirName(k))
		if _, err := os.Stat(segDir); err != nil {
			break
		}
		r, err := segment.Open(segDir)
		if err != nil {
			for _, opened := range segments {
				opened.Close()
			}
			return nil, apperrors.Newf(apperrors.ErrIndexOpen, 0, "%v", err)
		}
		segments = append(segments, r)
	}
	return &Engine{store: store, segments: segments}, nil
}

// Close releases every on-disk segment's postings file handle.
func (e *Engine) Close() error {
	var firstErr error
	for _, r := range e.segments {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Query tokenizes text, scores every document containing at least one
// query term, and returns the top k by descending score, ties broken by
// ascending DocId.
func (e *Engine) Query(text string, k int) ([]ScoredDoc, error) {
	if k <= 0 {
		k = DefaultK
	}
	terms := tokenizer.Tokenize(text)
	if len(terms) == 0 {
		return nil, nil
	}

	n := float64(e.store.Len())
	if n == 0 {
		return nil, nil
	}

	scores := make(map[index.DocID]float64)
	for _, term := range terms {
		df := e.documentFrequency(term)
		if df == 0 {
			continue
		}
		idf := math.Log(n / float64(df))
		if idf < 0 {
			idf = 0
		}

		for _, r := range e.segments {
			postings, err := r.Search(term)
			if err != nil {
				return nil, apperrors.Newf(apperrors.ErrQuery, 0, "%v", err)
			}
			for _, p := range postings {
				scores[p.DocID] += float64(p.Frequency) * idf
			}
		}
	}

	top := topK(scores, k)
	results := make([]ScoredDoc, 0, len(top))
	for _, s := range top {
		path, ok := e.store.PathOf(s.docID)
		if !ok {
			continue
		}
		results = append(results, ScoredDoc{Path: path, Score: s.score})
	}
	return results, nil
}

func (e *Engine) documentFrequency(term string) int {
	df := 0
	for _, r := range e.segments {
		df += r.DocFreq(term)
	}
	return df
}

type scoredID struct {
	docID index.DocID
	score float64
}

// topK selects the k highest-scoring DocIds, breaking ties by ascending
// DocId, using a bounded min-heap (grounded on the teacher's result
// merger: pop the current worst candidate once the heap exceeds k).
func topK(scores map[index.DocID]float64, k int) []scoredID {
	h := &scoredIDHeap{}
	heap.Init(h)
	for docID, score := range scores {
		heap.Push(h, scoredID{docID: docID, score: score})
		if h.Len() > k {
			heap.Pop(h)
		}
	}
	result := make([]scoredID, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(scoredID)
	}
	return result
}

type scoredIDHeap []scoredID

func (h scoredIDHeap) Len() int { return len(h) }

func (h scoredIDHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].docID > h[j].docID
}

func (h scoredIDHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredIDHeap) Push(x any) {
	*h = append(*h, x.(scoredID))
}

func (h *scoredIDHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

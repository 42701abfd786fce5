// Package writer orchestrates an indexing run: it walks a directory tree,
// skips unchanged files, extracts and tokenizes the rest in parallel, and
// serializes the results into the on-disk index through a single sink
// goroutine.
package writer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rhea-dev/fsindex/internal/docstore"
	"github.com/rhea-dev/fsindex/internal/extractor"
	"github.com/rhea-dev/fsindex/internal/index"
	"github.com/rhea-dev/fsindex/internal/tokenizer"
	apperrors "github.com/rhea-dev/fsindex/pkg/errors"
	"github.com/rhea-dev/fsindex/pkg/lockfile"
	"github.com/rhea-dev/fsindex/pkg/metrics"
	"github.com/rhea-dev/fsindex/pkg/resilience"
)

// LockFileName is the advisory lock file's name within an index
// directory.
const LockFileName = ".lock"

// Options configures a single indexing run.
type Options struct {
	Root           string
	IndexDir       string
	IncludeHidden  bool
	SkipPaths      []string
	SegmentMaxDocs int
	Workers        int

	// DumpFormat is "bytes" (the default; no side artifact) or "json",
	// which additionally writes docstore.DumpFileName alongside the
	// binary DocumentStore.
	DumpFormat string
	// ExtractRetryAttempts overrides the default retry attempt count
	// for a single file's extraction. <= 0 uses the package default.
	ExtractRetryAttempts int
	// ExtractTimeout bounds how long one file's extract-and-retry loop
	// may run before it is abandoned as a failure. <= 0 disables the
	// bound.
	ExtractTimeout time.Duration
}

// Result summarizes the outcome of a run.
type Result struct {
	Indexed         int
	Skipped         int
	Failed          int
	SegmentsFlushed int
	Cancelled       bool
}

type record struct {
	path     string
	size     int64
	modTime  time.Time
	length   int
	termFreq map[string]int
}

// Run executes one indexing pass over opts.Root into opts.IndexDir,
// acquiring the directory's writer lock for the duration. It returns an
// error wrapping pkg/errors.ErrIndexLocked, ErrIndexIO, or ErrUserInput as
// appropriate for the failure kind named in spec §7.
func Run(ctx context.Context, opts Options, m *metrics.Metrics) (*Result, error) {
	if opts.SegmentMaxDocs <= 0 {
		opts.SegmentMaxDocs = index.DefaultMaxDocs
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if _, err := os.Stat(opts.Root); err != nil {
		return nil, apperrors.Newf(apperrors.ErrUserInput, 0, "root path %s: %v", opts.Root, err)
	}
	if err := os.MkdirAll(opts.IndexDir, 0o755); err != nil {
		return nil, apperrors.Newf(apperrors.ErrIndexIO, 0, "creating index directory %s: %v", opts.IndexDir, err)
	}

	lock, err := lockfile.Acquire(filepath.Join(opts.IndexDir, LockFileName))
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrIndexLocked, 0, "%v", err)
	}
	defer lock.Close()

	docstorePath := filepath.Join(opts.IndexDir, docstore.FileName)
	store, err := docstore.Load(docstorePath)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrIndexOpen, 0, "%v", err)
	}

	nextSegment, err := nextSegmentNumber(opts.IndexDir)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrIndexOpen, 0, "%v", err)
	}

	log := slog.With("component", "writer", "root", opts.Root, "index_dir", opts.IndexDir)

	records := make(chan record, opts.Workers*2)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	var failed, skippedExt, skippedUnchanged int64
	var mu sync.Mutex

	sinkDone := make(chan sinkOutcome, 1)
	go func() {
		sinkDone <- runSink(gctx, records, store, opts.IndexDir, nextSegment, opts.SegmentMaxDocs, m, log)
	}()

	walkErr := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if gctx.Err() != nil {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if path != opts.Root && !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if matchesSkipPath(path, opts.SkipPaths) {
				return filepath.SkipDir
			}
			return nil
		}
		if !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if matchesSkipPath(path, opts.SkipPaths) {
			return nil
		}
		if _, dispatchErr := extractor.Dispatch(path); dispatchErr != nil {
			mu.Lock()
			skippedExt++
			mu.Unlock()
			if m != nil {
				m.DocsSkippedTotal.WithLabelValues("extension").Inc()
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			mu.Lock()
			failed++
			mu.Unlock()
			log.Warn("stat failed, skipping", "path", path, "error", err)
			return nil
		}
		if store.ShouldSkip(path, info.Size(), info.ModTime()) {
			mu.Lock()
			skippedUnchanged++
			mu.Unlock()
			if m != nil {
				m.DocsSkippedTotal.WithLabelValues("unchanged").Inc()
			}
			return nil
		}

		size, modTime := info.Size(), info.ModTime()
		g.Go(func() error {
			rec, err := processFile(path, size, modTime, opts.ExtractRetryAttempts, opts.ExtractTimeout)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				if m != nil {
					m.DocsFailedTotal.Inc()
				}
				log.Warn("extraction failed, skipping", "path", path, "error", err)
				return nil
			}
			select {
			case records <- rec:
			case <-gctx.Done():
			}
			return nil
		})
		return nil
	})

	groupErr := g.Wait()
	close(records)
	outcome := <-sinkDone

	if walkErr != nil && walkErr != filepath.SkipAll {
		return nil, apperrors.Newf(apperrors.ErrIndexIO, 0, "walking %s: %v", opts.Root, walkErr)
	}
	if groupErr != nil {
		return nil, apperrors.Newf(apperrors.ErrIndexIO, 0, "%v", groupErr)
	}
	if outcome.err != nil {
		return nil, apperrors.Newf(apperrors.ErrIndexIO, 0, "%v", outcome.err)
	}

	result := &Result{
		Indexed:         outcome.indexed,
		Skipped:         int(skippedExt + skippedUnchanged),
		Failed:          int(failed),
		SegmentsFlushed: outcome.segmentsFlushed,
		Cancelled:       outcome.cancelled,
	}

	if outcome.cancelled {
		return result, ctx.Err()
	}

	if err := store.Persist(docstorePath); err != nil {
		return result, apperrors.Newf(apperrors.ErrIndexIO, 0, "persisting docstore: %v", err)
	}

	if opts.DumpFormat == "json" {
		dumpPath := filepath.Join(opts.IndexDir, docstore.DumpFileName)
		if err := store.DumpJSON(dumpPath); err != nil {
			return result, apperrors.Newf(apperrors.ErrIndexIO, 0, "writing docstore dump: %v", err)
		}
	}
	return result, nil
}

func processFile(path string, size int64, modTime time.Time, retryAttempts int, timeout time.Duration) (record, error) {
	var text string
	retryCfg := resilience.ExtractionRetryConfig(retryAttempts)
	extractOnce := func() error {
		return resilience.Retry(context.Background(), "extract:"+path, retryCfg, func() error {
			t, err := extractor.Extract(path)
			if err != nil {
				return err
			}
			text = t
			return nil
		})
	}

	var err error
	if timeout > 0 {
		err = resilience.WithTimeout(context.Background(), timeout, "extract:"+path, func(context.Context) error {
			return extractOnce()
		})
	} else {
		err = extractOnce()
	}
	if err != nil {
		return record{}, fmt.Errorf("%w: %s: %v", apperrors.ErrExtraction, path, err)
	}

	terms := tokenizer.Tokenize(text)
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return record{path: path, size: size, modTime: modTime, length: len(terms), termFreq: tf}, nil
}

func matchesSkipPath(path string, skipPaths []string) bool {
	for _, s := range skipPaths {
		if s == "" {
			continue
		}
		if strings.Contains(path, s) {
			return true
		}
	}
	return false
}

func nextSegmentNumber(indexDir string) (int, error) {
	entries, err := os.ReadDir(indexDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	max := -1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		var k int
		if _, err := fmt.Sscanf(e.Name(), "segment_%d", &k); err == nil {
			if k > max {
				max = k
			}
		}
	}
	return max + 1, nil
}

package writer

import (
	"context"
	"log/slog"

	"github.com/rhea-dev/fsindex/internal/docstore"
	"github.com/rhea-dev/fsindex/internal/index"
	"github.com/rhea-dev/fsindex/internal/segment"
	"github.com/rhea-dev/fsindex/pkg/metrics"
)

type sinkOutcome struct {
	indexed         int
	segmentsFlushed int
	cancelled       bool
	err             error
}

// runSink is the single-threaded owner of the DocumentStore and the
// in-memory segment. It drains records until the channel closes or ctx is
// cancelled. On cancellation it returns immediately without flushing the
// in-flight in-memory segment, per spec §5.
func runSink(ctx context.Context, records <-chan record, store *docstore.Store, indexDir string, startSegment, maxDocs int, m *metrics.Metrics, log *slog.Logger) sinkOutcome {
	segNum := startSegment
	mem := index.NewMemSegment(maxDocs)
	out := sinkOutcome{}

	flush := func() error {
		dir, docCount, err := segment.Write(indexDir, segNum, mem.Snapshot())
		if err != nil {
			if m != nil {
				m.IndexFlushesTotal.WithLabelValues("error").Inc()
			}
			return err
		}
		log.Info("flushed segment", "dir", dir, "docs", docCount, "segment", segNum)
		if m != nil {
			m.IndexFlushesTotal.WithLabelValues("ok").Inc()
			m.ActiveSegments.Inc()
			m.SegmentDocCount.WithLabelValues(dir).Set(float64(docCount))
		}
		segNum++
		out.segmentsFlushed++
		mem.Reset()
		return nil
	}

drain:
	for {
		select {
		case <-ctx.Done():
			out.cancelled = true
			break drain
		case rec, ok := <-records:
			if !ok {
				break drain
			}
			docID := store.Intern(rec.path)
			store.UpdateMetadata(docID, rec.size, rec.modTime, rec.length)
			if err := mem.AddDocument(docID, rec.termFreq); err != nil {
				log.Warn("duplicate document in segment, skipping", "path", rec.path, "error", err)
				continue
			}
			out.indexed++
			if m != nil {
				m.DocsIndexedTotal.Inc()
			}
			if mem.IsFull() {
				if err := flush(); err != nil {
					out.err = err
					for range records {
					}
					return out
				}
			}
		}
	}

	if out.cancelled {
		return out
	}
	if mem.DocCount() > 0 {
		if err := flush(); err != nil {
			out.err = err
		}
	}
	return out
}

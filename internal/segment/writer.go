package segment

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rhea-dev/fsindex/internal/index"
)

type dictEntry struct {
	term       string
	docFreq    uint32
	postOffset uint64
	postLen    uint64
}

// Write builds a new on-disk segment directory named DirName(k) inside
// indexDir from entries (expected sorted by term, as MemSegment.Snapshot
// produces). It writes both files into a temporary sibling directory,
// fsyncs them, and renames the directory into place atomically. On any
// failure the temporary directory is removed and the final directory is
// never created, leaving prior segments untouched.
func Write(indexDir string, k int, entries []index.TermEntry) (dir string, docCount int, err error) {
	finalDir := filepath.Join(indexDir, DirName(k))
	tmpDir := finalDir + ".tmp"

	if err := os.RemoveAll(tmpDir); err != nil {
		return "", 0, fmt.Errorf("segment: clearing stale temp dir: %w", err)
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("segment: creating temp dir: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(tmpDir)
		}
	}()

	postPath := filepath.Join(tmpDir, postFileName)
	dict, distinctDocs, err := writePostings(postPath, entries)
	if err != nil {
		return "", 0, err
	}

	dictPath := filepath.Join(tmpDir, dictFileName)
	if err := writeDict(dictPath, dict); err != nil {
		return "", 0, err
	}

	if err := os.Rename(tmpDir, finalDir); err != nil {
		return "", 0, fmt.Errorf("segment: renaming into place: %w", err)
	}
	return finalDir, distinctDocs, nil
}

func writePostings(path string, entries []index.TermEntry) ([]dictEntry, int, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, 0, fmt.Errorf("segment: creating postings file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], PostMagic)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	if _, err := w.Write(header); err != nil {
		return nil, 0, fmt.Errorf("segment: writing postings header: %w", err)
	}

	dict := make([]dictEntry, 0, len(entries))
	distinctDocs := make(map[index.DocID]struct{})
	var offset uint64

	for _, entry := range entries {
		length, err := writePostingList(w, entry.Postings)
		if err != nil {
			return nil, 0, fmt.Errorf("segment: writing postings for term %q: %w", entry.Term, err)
		}
		dict = append(dict, dictEntry{
			term:       entry.Term,
			docFreq:    uint32(len(entry.Postings)),
			postOffset: offset,
			postLen:    uint64(length),
		})
		offset += uint64(length)
		for _, p := range entry.Postings {
			distinctDocs[p.DocID] = struct{}{}
		}
	}

	if err := w.Flush(); err != nil {
		return nil, 0, fmt.Errorf("segment: flushing postings file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, 0, fmt.Errorf("segment: syncing postings file: %w", err)
	}
	return dict, len(distinctDocs), nil
}

// writePostingList writes a length-prefixed sequence of (DocID, frequency)
// pairs and returns the number of bytes written, including the 4-byte
// count prefix (offsets index into the postings region starting right
// after the file header).
func writePostingList(w *bufio.Writer, postings index.PostingList) (int, error) {
	buf := make([]byte, 4+len(postings)*12)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(postings)))
	off := 4
	for _, p := range postings {
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(p.DocID))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(p.Frequency))
		off += 12
	}
	if _, err := w.Write(buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func writeDict(path string, dict []dictEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("segment: creating term dict: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:4], DictMagic)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(dict)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("segment: writing dict header: %w", err)
	}

	for _, e := range dict {
		termBytes := []byte(e.term)
		fixed := make([]byte, 4+4+8+8)
		binary.LittleEndian.PutUint32(fixed[0:4], uint32(len(termBytes)))
		binary.LittleEndian.PutUint32(fixed[4:8], e.docFreq)
		binary.LittleEndian.PutUint64(fixed[8:16], e.postOffset)
		binary.LittleEndian.PutUint64(fixed[16:24], e.postLen)
		if _, err := w.Write(fixed); err != nil {
			return fmt.Errorf("segment: writing dict entry for %q: %w", e.term, err)
		}
		if _, err := w.Write(termBytes); err != nil {
			return fmt.Errorf("segment: writing dict term bytes for %q: %w", e.term, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("segment: flushing term dict: %w", err)
	}
	return f.Sync()
}

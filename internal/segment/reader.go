package segment

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rhea-dev/fsindex/internal/index"
)

const postHeaderSize = 8 // magic + version

// Reader is an opened, read-only view of one on-disk segment. Its term
// dictionary is loaded fully into memory; postings are read on demand via
// seek+read against an open file handle.
type Reader struct {
	dir      string
	postFile *os.File
	dict     []dictEntry // sorted ascending by term
}

// Open reads term.dict fully into memory and opens postings.bin for
// on-demand reads. Both files must carry the expected magic and format
// version; a mismatch is reported with the offending file's path so the
// caller can surface it at the command boundary (spec.md §7, kind 4).
func Open(dir string) (*Reader, error) {
	dict, err := readDict(filepath.Join(dir, dictFileName))
	if err != nil {
		return nil, err
	}

	postPath := filepath.Join(dir, postFileName)
	f, err := os.Open(postPath)
	if err != nil {
		return nil, fmt.Errorf("segment: opening %s: %w", postPath, err)
	}
	header := make([]byte, postHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		f.Close()
		return nil, fmt.Errorf("segment: reading header of %s: %w", postPath, err)
	}
	gotMagic := binary.LittleEndian.Uint32(header[0:4])
	if gotMagic != PostMagic {
		f.Close()
		return nil, fmt.Errorf("segment: %s is not a valid postings file (bad magic %x)", postPath, gotMagic)
	}
	version := binary.LittleEndian.Uint32(header[4:8])
	if version != FormatVersion {
		f.Close()
		return nil, fmt.Errorf("segment: %s has unsupported format version %d (want %d)", postPath, version, FormatVersion)
	}

	return &Reader{dir: dir, postFile: f, dict: dict}, nil
}

func readDict(path string) ([]dictEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("segment: opening %s: %w", path, err)
	}
	if len(data) < 12 {
		return nil, fmt.Errorf("segment: %s is truncated", path)
	}
	gotMagic := binary.LittleEndian.Uint32(data[0:4])
	if gotMagic != DictMagic {
		return nil, fmt.Errorf("segment: %s is not a valid term dictionary (bad magic %x)", path, gotMagic)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("segment: %s has unsupported format version %d (want %d)", path, version, FormatVersion)
	}
	count := binary.LittleEndian.Uint32(data[8:12])

	dict := make([]dictEntry, 0, count)
	off := 12
	for i := uint32(0); i < count; i++ {
		if off+24 > len(data) {
			return nil, fmt.Errorf("segment: %s is truncated at entry %d", path, i)
		}
		termLen := binary.LittleEndian.Uint32(data[off : off+4])
		docFreq := binary.LittleEndian.Uint32(data[off+4 : off+8])
		postOffset := binary.LittleEndian.Uint64(data[off+8 : off+16])
		postLen := binary.LittleEndian.Uint64(data[off+16 : off+24])
		off += 24
		if off+int(termLen) > len(data) {
			return nil, fmt.Errorf("segment: %s is truncated reading term at entry %d", path, i)
		}
		term := string(data[off : off+int(termLen)])
		off += int(termLen)
		dict = append(dict, dictEntry{term: term, docFreq: docFreq, postOffset: postOffset, postLen: postLen})
	}
	// dict is written in ascending term order by the writer (Snapshot
	// sorts by term), so it already supports binary search.
	return dict, nil
}

// Search returns the postings list for term within this segment, or nil
// if the term does not appear.
func (r *Reader) Search(term string) (index.PostingList, error) {
	idx := sort.Search(len(r.dict), func(i int) bool { return r.dict[i].term >= term })
	if idx >= len(r.dict) || r.dict[idx].term != term {
		return nil, nil
	}
	entry := r.dict[idx]

	buf := make([]byte, entry.postLen)
	if _, err := r.postFile.ReadAt(buf, int64(postHeaderSize+entry.postOffset)); err != nil {
		return nil, fmt.Errorf("segment: reading postings for %q in %s: %w", term, r.dir, err)
	}
	if len(buf) < 4 {
		return nil, fmt.Errorf("segment: truncated postings for %q in %s", term, r.dir)
	}
	count := binary.LittleEndian.Uint32(buf[0:4])
	postings := make(index.PostingList, count)
	off := 4
	for i := uint32(0); i < count; i++ {
		if off+12 > len(buf) {
			return nil, fmt.Errorf("segment: truncated posting %d for %q in %s", i, term, r.dir)
		}
		docID := index.DocID(binary.LittleEndian.Uint64(buf[off : off+8]))
		freq := binary.LittleEndian.Uint32(buf[off+8 : off+12])
		postings[i] = index.Posting{DocID: docID, Frequency: int(freq)}
		off += 12
	}
	return postings, nil
}

// DocFreq returns the segment-local document frequency for term, 0 if the
// term does not appear. It is resolved from the in-memory dictionary and
// does not touch the postings file.
func (r *Reader) DocFreq(term string) int {
	idx := sort.Search(len(r.dict), func(i int) bool { return r.dict[i].term >= term })
	if idx >= len(r.dict) || r.dict[idx].term != term {
		return 0
	}
	return int(r.dict[idx].docFreq)
}

// TermCount returns the number of distinct terms in this segment.
func (r *Reader) TermCount() int {
	return len(r.dict)
}

// Dir returns the segment's directory path.
func (r *Reader) Dir() string {
	return r.dir
}

// Close releases the postings file handle.
func (r *Reader) Close() error {
	return r.postFile.Close()
}

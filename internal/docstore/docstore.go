// Package docstore maintains the mapping from document path to a stable
// numeric DocID, together with the per-document metadata used by the skip
// check and by document-length statistics. It is persisted as a single
// binary file.
package docstore

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rhea-dev/fsindex/internal/index"
)

const (
	magic         uint32 = 0x46534442 // "FSDB"
	formatVersion uint32 = 1
)

// FileName is the DocumentStore's on-disk file name within an index
// directory.
const FileName = "docstore.bin"

// DumpFileName is the human-readable side artifact written alongside
// FileName when the `index` subcommand is run with --dump-format=json.
// It never replaces the binary file Persist/Load round-trip through.
const DumpFileName = "docstore.json"

// Record holds everything the store remembers about one document.
type Record struct {
	Path    string
	Size    int64
	ModTime time.Time
	Length  int // sum of term frequencies observed at index time
}

// Store maps paths to DocIDs and carries each DocID's Record. A Store is
// safe for concurrent use: the index writer's directory walk only ever
// reads through ShouldSkip while the sink goroutine owns all mutation, and
// the HTTP query path may read concurrently with nothing else running.
type Store struct {
	mu      sync.RWMutex
	byPath  map[string]index.DocID
	records map[index.DocID]*Record
	nextID  index.DocID
}

// New creates an empty DocumentStore.
func New() *Store {
	return &Store{
		byPath:  make(map[string]index.DocID),
		records: make(map[index.DocID]*Record),
	}
}

// Intern returns the existing DocID for path if known, or assigns and
// returns the next DocID. Intern is idempotent and DocID assignment is
// strictly increasing.
func (s *Store) Intern(path string) index.DocID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byPath[path]; ok {
		return id
	}
	id := s.nextID
	s.nextID++
	s.byPath[path] = id
	s.records[id] = &Record{Path: path}
	return id
}

// Get returns the Record for docID, or false if it is not known.
func (s *Store) Get(docID index.DocID) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[docID]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// UpdateMetadata records the observed size, modification time, and
// computed document length for docID.
func (s *Store) UpdateMetadata(docID index.DocID, size int64, modTime time.Time, length int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[docID]
	if !ok {
		return
	}
	r.Size = size
	r.ModTime = modTime
	r.Length = length
}

// ShouldSkip reports whether path is already interned with a stored
// (size, mtime) matching the given arguments, in which case the indexer
// should skip re-extracting and re-tokenizing the file.
func (s *Store) ShouldSkip(path string, size int64, modTime time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPath[path]
	if !ok {
		return false
	}
	r := s.records[id]
	return r.Size == size && r.ModTime.Equal(modTime)
}

// Len returns the number of interned documents, used as N in the TF-IDF
// computation.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// PathOf resolves a DocID back to its path.
func (s *Store) PathOf(docID index.DocID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[docID]
	if !ok {
		return "", false
	}
	return r.Path, true
}

// Persist writes the store to path using a stable little-endian binary
// layout: a fixed header (magic, version, record count, next DocID)
// followed by one variable-length record per DocID in ascending order.
// It writes to a temp file in the same directory and renames atomically.
func (s *Store) Persist(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("docstore: creating temp file: %w", err)
	}
	w := bufio.NewWriter(f)

	header := make([]byte, 16)
	binary.LittleEndian.PutUint32(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], formatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(s.records)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(s.nextID))
	if _, err := w.Write(header); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("docstore: writing header: %w", err)
	}

	for id := index.DocID(0); id < s.nextID; id++ {
		r, ok := s.records[id]
		if !ok {
			continue
		}
		if err := writeRecord(w, id, r); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("docstore: writing record %d: %w", id, err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("docstore: flushing: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("docstore: syncing: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("docstore: closing: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("docstore: renaming into place: %w", err)
	}
	return nil
}

// dumpRecord is the JSON-friendly shape of one Record, written by
// DumpJSON for operators to eyeball.
type dumpRecord struct {
	DocID   uint64 `json:"doc_id"`
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time"`
	Length  int    `json:"length"`
}

// DumpJSON writes a human-readable snapshot of the store to path,
// ordered by ascending DocID. It is a side artifact only: the binary
// file written by Persist remains the sole format Load understands.
func (s *Store) DumpJSON(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]dumpRecord, 0, len(s.records))
	for id := index.DocID(0); id < s.nextID; id++ {
		r, ok := s.records[id]
		if !ok {
			continue
		}
		records = append(records, dumpRecord{
			DocID:   uint64(id),
			Path:    r.Path,
			Size:    r.Size,
			ModTime: r.ModTime.UTC().Format(time.RFC3339Nano),
			Length:  r.Length,
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: marshaling dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("docstore: writing dump %s: %w", path, err)
	}
	return nil
}

func writeRecord(w io.Writer, id index.DocID, r *Record) error {
	pathBytes := []byte(r.Path)
	fixed := make([]byte, 4+8+8+8)
	binary.LittleEndian.PutUint32(fixed[0:4], uint32(len(pathBytes)))
	binary.LittleEndian.PutUint64(fixed[4:12], uint64(id))
	binary.LittleEndian.PutUint64(fixed[12:20], uint64(r.Size))
	binary.LittleEndian.PutUint64(fixed[20:28], uint64(r.ModTime.UnixNano()))
	if _, err := w.Write(fixed); err != nil {
		return err
	}
	if _, err := w.Write(pathBytes); err != nil {
		return err
	}
	var lengthBuf [8]byte
	binary.LittleEndian.PutUint64(lengthBuf[:], uint64(r.Length))
	_, err := w.Write(lengthBuf[:])
	return err
}

// Load reads a DocumentStore previously written by Persist. A missing
// file is not an error: Load returns a fresh empty Store, matching
// spec.md §7's "empty index is not an error" rule.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("docstore: opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("docstore: reading header of %s: %w", path, err)
	}
	gotMagic := binary.LittleEndian.Uint32(header[0:4])
	if gotMagic != magic {
		return nil, fmt.Errorf("docstore: %s is not a valid docstore file (bad magic %x)", path, gotMagic)
	}
	version := binary.LittleEndian.Uint32(header[4:8])
	if version != formatVersion {
		return nil, fmt.Errorf("docstore: %s has unsupported version %d (want %d)", path, version, formatVersion)
	}
	count := binary.LittleEndian.Uint32(header[8:12])
	nextID := binary.LittleEndian.Uint32(header[12:16])

	s := New()
	s.nextID = index.DocID(nextID)

	fixed := make([]byte, 4+8+8+8)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, fixed); err != nil {
			return nil, fmt.Errorf("docstore: reading record %d of %s: %w", i, path, err)
		}
		pathLen := binary.LittleEndian.Uint32(fixed[0:4])
		id := index.DocID(binary.LittleEndian.Uint64(fixed[4:12]))
		size := int64(binary.LittleEndian.Uint64(fixed[12:20]))
		modNano := int64(binary.LittleEndian.Uint64(fixed[20:28]))

		pathBytes := make([]byte, pathLen)
		if _, err := io.ReadFull(r, pathBytes); err != nil {
			return nil, fmt.Errorf("docstore: reading path of record %d of %s: %w", i, path, err)
		}
		var lengthBuf [8]byte
		if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
			return nil, fmt.Errorf("docstore: reading length of record %d of %s: %w", i, path, err)
		}
		length := int(binary.LittleEndian.Uint64(lengthBuf[:]))

		rec := &Record{
			Path:    string(pathBytes),
			Size:    size,
			ModTime: time.Unix(0, modNano).UTC(),
			Length:  length,
		}
		s.records[id] = rec
		s.byPath[rec.Path] = id
	}
	return s, nil
}

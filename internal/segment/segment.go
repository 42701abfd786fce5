// Package segment implements the immutable on-disk segment: a directory
// holding a term dictionary (term.dict) and a postings file
// (postings.bin), written atomically and read with the dictionary loaded
// fully into memory while postings are fetched on demand.
package segment

import "fmt"

const (
	// DictMagic identifies a valid term.dict file.
	DictMagic uint32 = 0x46534454 // "FSDT"
	// PostMagic identifies a valid postings.bin file, per spec.md §6's
	// "postings.bin begins with a 4-byte magic and 4-byte version".
	PostMagic uint32 = 0x46534450 // "FSDP"
	// FormatVersion is the current on-disk format version for both files.
	// Bumping it requires refusing to open older-version files (spec.md §6/§7).
	FormatVersion uint32 = 1

	dictFileName = "term.dict"
	postFileName = "postings.bin"
)

// DirName returns the directory name for the k'th segment, e.g.
// "segment_0".
func DirName(k int) string {
	return fmt.Sprintf("segment_%d", k)
}

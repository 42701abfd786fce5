package extractor

import (
	"fmt"
	"os"
	"strings"
)

// extractPlainText is the identity extractor for txt/md files, with
// invalid UTF-8 byte sequences replaced by the Unicode replacement
// character rather than causing extraction to fail.
func extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extractor: reading %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

package extractor

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// extractXML concatenates all character data (text between element tags)
// separated by whitespace. No library in the retrieved corpus offers
// general-purpose XML text extraction, so this uses the standard
// library's streaming decoder directly.
func extractXML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("extractor: opening %s: %w", path, err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	dec.Strict = false
	var parts []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			text := strings.TrimSpace(string(cd))
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " "), nil
}

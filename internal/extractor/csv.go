package extractor

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// extractCSV concatenates every cell of every row, separated by
// whitespace, with no header interpretation. No CSV library appears in
// the retrieved corpus, so this uses the standard library reader, which
// already handles quoting and embedded commas correctly.
func extractCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("extractor: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var cells []string
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		for _, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell != "" {
				cells = append(cells, cell)
			}
		}
	}
	return strings.Join(cells, " "), nil
}

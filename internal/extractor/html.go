package extractor

import (
	"fmt"
	html "html"
	"os"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// extractHTML returns the visible text of an HTML or XHTML document:
// bluemonday's strict policy drops every tag including the contents of
// <script> and <style>, leaving only text nodes, which are then
// HTML-unescaped and collapsed to single spaces.
func extractHTML(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extractor: reading %s: %w", path, err)
	}
	policy := bluemonday.StrictPolicy()
	visible := policy.Sanitize(strings.ToValidUTF8(string(data), "�"))
	return strings.TrimSpace(repeatedSpaceRegex.ReplaceAllString(html.UnescapeString(visible), " ")), nil
}

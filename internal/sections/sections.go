package sections

import (
	"regexp"
	"strings"
)

// Titles is the canonical ordered list of output-section labels. Upstream
// completions are prompted to produce exactly these four sections, numbered
// "1." through "4.".
var Titles = []string{
	"📖 Plain English:",
	"🔹 TL;DR:",
	"🍼 ELI5:",
	"📊 Visual (text diagram):",
}

// markerRegex matches a decimal ordinal followed by a period and whitespace,
// optionally preceded by a newline (e.g. "\n2. ").
var markerRegex = regexp.MustCompile(`\n?\d+\.\s+`)

// Section pairs a canonical title with the text that followed its marker.
// Text holds the title and the trimmed body joined by a newline, ready to be
// returned as a single content item.
type Section struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Split divides a raw completion into up to four labeled sections.
//
// Fragments are paired positionally with the canonical titles: an empty
// leading fragment (input starting with "1. ") is discarded, fragments whose
// trimmed body is empty are dropped without shifting later indices, and
// fragments beyond the fourth are ignored. A raw string with no markers at
// all becomes a single section under the first title. Split never fails;
// empty or whitespace-only input yields no sections.
func Split(raw string) []Section {
	parts := markerRegex.Split(raw, -1)
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	var out []Section
	for i, part := range parts {
		if i >= len(Titles) {
			break
		}
		body := strings.TrimSpace(part)
		if body == "" {
			continue
		}
		out = append(out, Section{
			Title: Titles[i],
			Text:  Titles[i] + "\n" + body,
		})
	}
	return out
}

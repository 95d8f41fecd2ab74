// Package normalize turns pasted multi-line text into a list of quotes.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rcliao/vela/internal/model"
)

// MinLength is the shortest cleaned line (exclusive) kept as a quote.
const MinLength = 3

// markerPrefix matches one leading run of bullet / number markers.
var markerPrefix = regexp.MustCompile(`^\s*[*\-•\d.]+\s*`)

var smartQuotes = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‟", `"`,
	"″", `"`,
)

// Line cleans a single input line: strips a leading marker run,
// straightens smart quotes and trims whitespace.
func Line(raw string) string {
	s := markerPrefix.ReplaceAllString(raw, "")
	s = smartQuotes.Replace(s)
	return strings.TrimSpace(s)
}

// Quotes splits raw on line breaks and returns the cleaned lines longer
// than MinLength characters, in input order.
func Quotes(raw string) []model.Quote {
	quotes := []model.Quote{}
	for _, line := range strings.Split(raw, "\n") {
		q := Line(strings.TrimSuffix(line, "\r"))
		if utf8.RuneCountInString(q) > MinLength {
			quotes = append(quotes, q)
		}
	}
	return quotes
}

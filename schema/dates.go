package schema

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dateFormats are tried before falling back to the generic parser. They
// cover the layouts spreadsheet exports produce most often.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses s as a calendar date or timestamp. Values without a zone
// are read as UTC. It reports false when s is not a recognizable date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

package repository

import (
	"strings"
	"time"
)

// isoLayouts are the ISO-8601 shapes accepted for stored timestamps, most
// precise first. The last two cover values written without a zone offset,
// which are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp converts a stored ISO-8601 string. ok is false for empty or
// malformed input.
func parseTimestamp(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatTimestamp renders t for storage at the record boundary.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

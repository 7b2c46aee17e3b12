package main

import (
	"strconv"
	"strings"
	"time"
)

// parseDecimal converts storage text to a float64, tolerating both plain
// ("1234.56") and European ("1.234,56" / "1234,56") decimal conventions.
// The spreadsheet-era data this app inherits mixes both freely, so a value
// with a dot and a comma is read as thousands-dot + decimal-comma, while a
// dot with no comma is always a decimal point.
// Returns ok=false (with value 0) for empty or unparsable input so callers
// can tell a real zero from a fallback.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// toFloat is parseDecimal with the silent-zero default applied. Used on every
// numeric field read from storage: a dashboard showing a slightly wrong total
// beats a crashed page.
func toFloat(s string) float64 {
	v, _ := parseDecimal(s)
	return v
}

// toID parses a synthetic row id. Unparsable ids resolve to 0, which never
// matches a real row.
func toID(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

// dateLayouts are tried in order when normalizing a stored entry date.
// ISO first; the slash forms cover rows hand-edited in a spreadsheet UI.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02/01/06",
	"2006/01/02",
}

// normalizeDate converts a stored date string to ISO YYYY-MM-DD.
// If no layout matches, the raw string is returned with ok=false rather than
// an error — an unmatchable date simply drops the row out of date-filtered
// views instead of blocking the whole aggregation.
func normalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return s, false
}

// formatFloat renders a float for storage without trailing zero noise.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatID renders a synthetic row id for storage.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

package main

import (
	"sort"
	"time"
)

// totalsForDate sums the macro snapshots of one user's entries for one
// calendar day. It takes the full unfiltered entry set as retrieved from
// storage and does the user/date filtering itself. Both sides of the date
// comparison are normalized here, so "04/03/2025" and "2025-03-04" select
// the same day whether the spelling came from the caller or from storage.
func totalsForDate(entries []logEntry, targetDate, userID string) macroSet {
	target, _ := normalizeDate(targetDate)
	var total macroSet
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		d, _ := normalizeDate(e.EntryDate)
		if d != target {
			continue
		}
		total = total.add(e.macros())
	}
	return total
}

// rollupLastNDays aggregates one user's entries into one total per calendar
// day across the inclusive window [today-(n-1), today], ascending by date.
// Days with no entries are absent from the result — callers must not assume
// every day in the window appears. Entries whose stored date failed
// normalization never match the window and are skipped.
//
// today is a parameter rather than time.Now() so the window boundary is
// testable; the handler passes the current day.
func rollupLastNDays(entries []logEntry, n int, userID string, today time.Time) []dailyTotal {
	if n <= 0 {
		return nil
	}
	// ISO dates compare correctly as strings.
	startStr := today.AddDate(0, 0, -(n - 1)).Format("2006-01-02")
	todayStr := today.Format("2006-01-02")

	agg := make(map[string]macroSet)
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		d, ok := normalizeDate(e.EntryDate)
		if !ok || d < startStr || d > todayStr {
			continue
		}
		agg[d] = agg[d].add(e.macros())
	}

	dates := make([]string, 0, len(agg))
	for d := range agg {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]dailyTotal, 0, len(dates))
	for _, d := range dates {
		out = append(out, dailyTotal{Date: d, macroSet: agg[d]})
	}
	return out
}

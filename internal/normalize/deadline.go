// Package normalize canonicalizes the noisy posting fields used for
// filtering and deduplication: deadlines and display names.
package normalize

import (
	"strings"
	"time"
)

// ISODate is the canonical deadline layout.
const ISODate = "2006-01-02"

// Sentinel strings that mean "no deadline", compared case-insensitively
// after trimming.
var deadlineSentinels = map[string]struct{}{
	"unknown deadline": {},
	"unknown":          {},
	"tbd":              {},
	"tba":              {},
	"n/a":              {},
	"na":               {},
	"":                 {},
}

// Ordered formats tried against raw deadline text; the first parse wins.
var deadlineFormats = []string{
	ISODate,
	"01/02/2006",
	"January 2, 2006",
	"01-02-2006",
	"2006/01/02",
}

// Deadline canonicalizes a raw deadline value to an ISO date. The second
// return is false when the value is a sentinel or unparseable; ambiguous
// dates are treated as "no deadline" rather than rejected so that postings
// are not dropped on noisy text. Normalizing an already-canonical date
// returns the same string.
func Deadline(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if _, ok := deadlineSentinels[strings.ToLower(trimmed)]; ok {
		return "", false
	}
	for _, layout := range deadlineFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(ISODate), true
		}
	}
	return "", false
}

// DeadlineTime renders a concrete date in canonical form.
func DeadlineTime(t time.Time) string {
	return t.Format(ISODate)
}

// DeadlineBefore reports whether the canonical deadline falls strictly
// before the given day. Used for sweeping persisted records, where a
// same-day deadline has not yet passed. A malformed canonical value never
// counts as expired.
func DeadlineBefore(iso string, day time.Time) bool {
	t, err := time.Parse(ISODate, iso)
	if err != nil {
		return false
	}
	return t.Before(dayStart(day))
}

// DeadlineClosed reports whether the canonical deadline falls on or before
// the given day. Used for filtering incoming postings, which must leave time
// to apply: only strictly-future deadlines stay active.
func DeadlineClosed(iso string, day time.Time) bool {
	t, err := time.Parse(ISODate, iso)
	if err != nil {
		return false
	}
	return !t.After(dayStart(day))
}

func dayStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

package validation

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// ParseDate accepts an ISO date or date-time. Values without a zone are read in local time.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func IsValidDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// IsFutureDate reports whether s is today or later, comparing dates only.
func IsFutureDate(s string, now time.Time) bool {
	t, ok := ParseDate(s)
	if !ok {
		return false
	}
	return !t.Before(StartOfDay(now))
}

func IsAfter(a, b time.Time) bool { return a.After(b) }

func IsBefore(a, b time.Time) bool { return a.Before(b) }

func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

package domain

import (
	"strings"
	"time"
)

// ExpiringWindowDays is how close a renewal date must be for a domain to be
// reported as expiring.
const ExpiringWindowDays = 30

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// ParseDate parses an ISO-8601 date or date-time string.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// utcDay truncates t to midnight of its UTC calendar date.
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysLeft returns the number of whole UTC calendar days from now until
// renewalDate. ok is false when the date is absent or unparsable.
func DaysLeft(renewalDate string, now time.Time) (int, bool) {
	t, ok := ParseDate(renewalDate)
	if !ok {
		return 0, false
	}
	diff := utcDay(t).Sub(utcDay(now))
	return int(diff.Hours() / 24), true
}

// DeriveStatus computes the effective status of a domain. A renewal date that
// has been reached yields StatusExpired, one within ExpiringWindowDays yields
// StatusExpiring, and anything else keeps the stored status.
func DeriveStatus(stored Status, renewalDate string, now time.Time) Status {
	days, ok := DaysLeft(renewalDate, now)
	if !ok {
		return stored
	}
	switch {
	case days <= 0:
		return StatusExpired
	case days <= ExpiringWindowDays:
		return StatusExpiring
	default:
		return stored
	}
}

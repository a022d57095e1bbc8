// Package meetings holds the reconciliation core: it merges session
// snapshots and lifecycle events from the realtime provider into a single
// ordered list of meeting views. The reducer is pure; the Store serializes
// it against the tick loop for concurrent hosts.
package meetings

import (
	"regexp"
	"strings"
	"time"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

// Provider timestamps are mostly ISO-8601 but occasionally arrive with
// spurious whitespace inside the time-of-day groups ("T12: 34: 56Z").
var (
	spaceBeforeFinalGroup = regexp.MustCompile(`\s+(\d{2})(Z|$)`)
	spacedTimeOfDay       = regexp.MustCompile(`T(\d{2}):\s*(\d{2}):\s*(\d{2})`)
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseWhen parses a loosely formatted provider timestamp. Malformed or
// absent input yields ok=false, never an error: callers treat that as
// "timestamp unknown" and fall back to other fields.
func ParseWhen(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(*s)
	if raw == "" {
		return time.Time{}, false
	}
	repaired := spaceBeforeFinalGroup.ReplaceAllString(raw, "$1$2")
	repaired = spacedTimeOfDay.ReplaceAllString(repaired, "T$1:$2:$3")
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, repaired); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// effectiveExtractors is the ordered fallback chain for a session row's
// best-available instant. The order is part of the contract: an update
// beats an end beats a start beats creation.
var effectiveExtractors = []func(models.Session) *string{
	func(s models.Session) *string { return s.UpdatedAt },
	func(s models.Session) *string { return s.EndedAt },
	func(s models.Session) *string { return s.StartedAt },
	func(s models.Session) *string { return s.CreatedAt },
}

// EffectiveTimestamp returns the first parsable timestamp in the fallback
// chain. ok=false means the row has no usable instant at all; such a row
// loses every comparison but is still eligible if it is the only one for
// its meeting.
func EffectiveTimestamp(s models.Session) (time.Time, bool) {
	for _, extract := range effectiveExtractors {
		if t, ok := ParseWhen(extract(s)); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

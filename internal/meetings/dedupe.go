package meetings

import (
	"sort"
	"time"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

type candidate struct {
	row models.Session
	ts  time.Time
	ok  bool
}

// LatestByMeeting collapses a snapshot that may contain several rows per
// meeting down to the single most recent row per distinct associated_id,
// judged by the effective timestamp. Rows without an associated_id cannot
// be attributed to a meeting and are excluded. On an exact timestamp tie
// (including two rows with no usable timestamp) the later row in input
// order wins.
func LatestByMeeting(rows []models.Session) []models.Session {
	best := make(map[string]candidate)
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		key := row.AssociatedID
		if key == "" {
			continue
		}
		ts, ok := EffectiveTimestamp(row)
		prev, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = candidate{row: row, ts: ts, ok: ok}
			continue
		}
		if beats(ts, ok, prev.ts, prev.ok) {
			best[key] = candidate{row: row, ts: ts, ok: ok}
		}
	}

	out := make([]models.Session, 0, len(best))
	for _, key := range order {
		out = append(out, best[key].row)
	}
	// Newest first; rows with no usable timestamp sink to the end. The
	// consumer re-sorts by its own rule anyway.
	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := EffectiveTimestamp(out[i])
		tj, jok := EffectiveTimestamp(out[j])
		if iok != jok {
			return iok
		}
		return ti.After(tj)
	})
	return out
}

// beats reports whether a later-encountered row (ts, ok) should replace the
// current best (prevTs, prevOk). Equal timestamps go to the newcomer.
func beats(ts time.Time, ok bool, prevTs time.Time, prevOk bool) bool {
	if !prevOk {
		return true
	}
	if !ok {
		return false
	}
	return !ts.Before(prevTs)
}

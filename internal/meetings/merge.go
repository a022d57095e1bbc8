package meetings

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

// Drop reasons reported to the Observer.
const (
	DropUnattributable = "unattributable"
	DropUnknownEvent   = "unknown_event"
)

// Observer receives counters from the reducer's entry points. The reducer
// never fails on bad input; feeds that need visibility into drop rates hook
// in here.
type Observer interface {
	EventApplied(kind string)
	EventDropped(reason string)
}

type nopObserver struct{}

func (nopObserver) EventApplied(string) {}
func (nopObserver) EventDropped(string) {}

// Reducer merges snapshots and lifecycle events into the view list. All
// methods are pure: inputs are never mutated, a new list is returned (or
// the identical slice when nothing changed). The clock is injectable so
// runtime computations are testable under a frozen clock.
type Reducer struct {
	now    func() time.Time
	logger *zap.Logger
	obs    Observer
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) { r.now = now }
}

// WithObserver attaches metrics hooks.
func WithObserver(obs Observer) Option {
	return func(r *Reducer) { r.obs = obs }
}

// NewReducer creates a reducer. A nil logger disables the unknown-event
// diagnostic.
func NewReducer(logger *zap.Logger, opts ...Option) *Reducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reducer{now: time.Now, logger: logger, obs: nopObserver{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeMinutes computes elapsed meeting time in fractional minutes. An
// unset start yields 0; an unset end means the meeting is still running and
// is measured against now. Never negative.
func RuntimeMinutes(start, end *time.Time, now time.Time) float64 {
	if start == nil {
		return 0
	}
	effectiveEnd := now
	if end != nil {
		effectiveEnd = *end
	}
	minutes := effectiveEnd.Sub(*start).Minutes()
	if minutes < 0 {
		return 0
	}
	return minutes
}

// sortViews orders LIVE meetings first, then most recently updated.
func sortViews(list []models.MeetingView) []models.MeetingView {
	out := make([]models.MeetingView, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		iLive := out[i].Status == models.StatusLive
		jLive := out[j].Status == models.StatusLive
		if iLive != jLive {
			return iLive
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// viewMatchers is the ordered matching chain for locating the view an
// event refers to: stable meeting id, then session id, then room title
// (legacy feeds key meetings by title instead of id).
var viewMatchers = []func(ev models.IncomingEvent, views []models.MeetingView) int{
	func(ev models.IncomingEvent, views []models.MeetingView) int {
		if ev.Meeting.ID == "" {
			return -1
		}
		return indexOf(views, func(v models.MeetingView) bool { return v.ID == ev.Meeting.ID })
	},
	func(ev models.IncomingEvent, views []models.MeetingView) int {
		if ev.Meeting.SessionID == "" {
			return -1
		}
		return indexOf(views, func(v models.MeetingView) bool { return v.SessionID == ev.Meeting.SessionID })
	},
	func(ev models.IncomingEvent, views []models.MeetingView) int {
		if ev.Meeting.Title == "" {
			return -1
		}
		return indexOf(views, func(v models.MeetingView) bool { return v.ID == ev.Meeting.Title })
	},
}

func indexOf(views []models.MeetingView, match func(models.MeetingView) bool) int {
	for i, v := range views {
		if match(v) {
			return i
		}
	}
	return -1
}

// ApplyEvent merges one lifecycle event into the view list and returns the
// new list. Events carrying no meeting id, session id, or room title are
// unattributable and dropped without a state change. Join/leave counts are
// deliberately not idempotent: re-delivered joins inflate the live count.
func (r *Reducer) ApplyEvent(views []models.MeetingView, ev models.IncomingEvent) []models.MeetingView {
	incomingID := ev.Meeting.ID
	incomingSession := ev.Meeting.SessionID
	incomingRoom := ev.Meeting.Title

	if incomingID == "" && incomingSession == "" && incomingRoom == "" {
		r.obs.EventDropped(DropUnattributable)
		return views
	}

	idx := -1
	for _, match := range viewMatchers {
		if idx = match(ev, views); idx >= 0 {
			break
		}
	}

	now := r.now().UTC()

	var next models.MeetingView
	if idx >= 0 {
		next = views[idx].Clone()
	} else {
		next = r.seedView(ev, now)
	}
	next.UpdatedAt = now
	if ev.Meeting.Title != "" {
		next.Title = ev.Meeting.Title
	}

	switch ev.Event {
	case models.EventMeetingStarted:
		next.Status = models.StatusLive
		if incomingSession != "" {
			next.SessionID = incomingSession
		}
		if t, ok := ParseWhen(ev.Meeting.StartedAt); ok {
			next.StartedAt = &t
		} else if next.StartedAt == nil {
			started := now
			next.StartedAt = &started
		}
		next.EndedAt = nil
		r.obs.EventApplied(ev.Event)

	case models.EventParticipantJoined:
		next.Status = models.StatusLive
		next.LiveParticipants++
		if next.TotalParticipants < next.LiveParticipants {
			next.TotalParticipants = next.LiveParticipants
		}
		if next.StartedAt == nil {
			started := now
			if t, ok := ParseWhen(ev.Meeting.StartedAt); ok {
				started = t
			}
			next.StartedAt = &started
		}
		r.obs.EventApplied(ev.Event)

	case models.EventParticipantLeft:
		if next.LiveParticipants > 0 {
			next.LiveParticipants--
		}
		r.obs.EventApplied(ev.Event)

	case models.EventMeetingEnded:
		next.Status = models.StatusEnded
		next.LiveParticipants = 0
		ended := now
		if t, ok := ParseWhen(ev.Meeting.EndedAt); ok {
			ended = t
		}
		next.EndedAt = &ended
		r.obs.EventApplied(ev.Event)

	default:
		// State fields stay untouched, but the refreshed view is still
		// upserted so updatedAt and title track the feed.
		r.logger.Warn("unhandled meeting event", zap.String("event", ev.Event))
		r.obs.EventDropped(DropUnknownEvent)
	}

	// Identity migration: a view matched via session id or room title is
	// consolidated onto the durable meeting id once it is known.
	if incomingID != "" && next.ID != incomingID {
		next.ID = incomingID
	}

	next.RuntimeMinutes = RuntimeMinutes(next.StartedAt, next.EndedAt, now)

	out := make([]models.MeetingView, len(views))
	copy(out, views)
	if idx >= 0 {
		out[idx] = next
	} else {
		out = append([]models.MeetingView{next}, out...)
	}

	return sortViews(dedupeByID(out))
}

// seedView synthesizes a fresh view for an event whose meeting has never
// been observed.
func (r *Reducer) seedView(ev models.IncomingEvent, now time.Time) models.MeetingView {
	id := ev.Meeting.ID
	if id == "" {
		id = ev.Meeting.Title
	}
	if id == "" {
		id = ev.Meeting.SessionID
	}
	title := ev.Meeting.Title
	if title == "" {
		title = ev.Meeting.ID
	}
	if title == "" {
		title = "Meeting"
	}
	v := models.MeetingView{
		ID:        id,
		SessionID: ev.Meeting.SessionID,
		RoomName:  ev.Meeting.RoomName,
		Title:     title,
		Status:    models.StatusScheduled,
		UpdatedAt: now,
		Details:   ev.Details,
	}
	if t, ok := ParseWhen(ev.Meeting.CreatedAt); ok {
		v.CreatedAt = &t
	}
	if t, ok := ParseWhen(ev.Meeting.StartedAt); ok {
		v.StartedAt = &t
	}
	if t, ok := ParseWhen(ev.Meeting.EndedAt); ok {
		v.EndedAt = &t
	}
	return v
}

// dedupeByID collapses residual same-id entries, which can arise when
// identity migration collides with a pre-existing entry under the new id.
// The first-encountered entry per id wins: after the upsert that is either
// the entry just produced (index hit) or the freshly prepended one, so
// first-wins keeps the entry carrying this event's update.
func dedupeByID(views []models.MeetingView) []models.MeetingView {
	seen := make(map[string]struct{}, len(views))
	out := views[:0:0]
	for _, v := range views {
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Tick recomputes runtime for meetings that are live and still running.
// When nothing changed the input slice is returned unchanged, so hosts can
// detect no-ops by identity.
func (r *Reducer) Tick(views []models.MeetingView) []models.MeetingView {
	now := r.now().UTC()
	changed := false
	out := make([]models.MeetingView, len(views))
	for i, v := range views {
		out[i] = v
		if v.Status == models.StatusLive && v.StartedAt != nil && v.EndedAt == nil {
			minutes := RuntimeMinutes(v.StartedAt, nil, now)
			if minutes != v.RuntimeMinutes {
				next := v.Clone()
				next.RuntimeMinutes = minutes
				out[i] = next
				changed = true
			}
		}
	}
	if !changed {
		return views
	}
	return sortViews(out)
}

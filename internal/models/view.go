package models

import "time"

// Meeting lifecycle statuses as reported by the provider. The status field
// is open-ended; these are the values the reducer cares about.
const (
	StatusLive      = "LIVE"
	StatusEnded     = "ENDED"
	StatusScheduled = "SCHEDULED"
)

// MeetingView is the canonical display-ready projection of one meeting.
// Exactly one view exists per stable meeting id. RuntimeMinutes is always
// derived from StartedAt/EndedAt, never authoritative on its own.
type MeetingView struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId,omitempty"`
	RoomName  string `json:"roomName,omitempty"`
	Title     string `json:"title"`
	Status    string `json:"status"`

	LiveParticipants  int `json:"liveParticipants"`
	TotalParticipants int `json:"totalParticipants"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`

	RuntimeMinutes float64 `json:"runtimeMinutes"`

	Details *Details `json:"details,omitempty"`
}

// Clone returns a copy safe to mutate without aliasing the original's
// timestamp pointers.
func (v MeetingView) Clone() MeetingView {
	out := v
	out.CreatedAt = copyTime(v.CreatedAt)
	out.StartedAt = copyTime(v.StartedAt)
	out.EndedAt = copyTime(v.EndedAt)
	if v.Details != nil {
		d := *v.Details
		out.Details = &d
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

package models

// Group identifies the community a meeting belongs to, resolved from the
// packed title capsule.
type Group struct {
	ID      *string `json:"id"`
	Name    string  `json:"name"`
	IconURL string  `json:"iconURL"`
}

// Details carries the enrichment attached to a meeting (group + summary).
type Details struct {
	Group   Group  `json:"group"`
	Summary string `json:"summary"`
}

// Session is one snapshot row from the provider's sessions endpoint. It
// describes the observed state of a meeting at some point in time, keyed by
// a transient row id plus the stable meeting id (AssociatedID). Timestamps
// arrive as loosely formatted strings and may be absent or malformed; they
// are only ever interpreted through the meetings timestamp normalizer.
type Session struct {
	ID           string `json:"id"`
	AssociatedID string `json:"associated_id"`

	Type        string `json:"type,omitempty"`
	DisplayName string `json:"meeting_display_name,omitempty"`

	Status                    string `json:"status"`
	LiveParticipants          int    `json:"live_participants,omitempty"`
	MaxConcurrentParticipants int    `json:"max_concurrent_participants,omitempty"`
	TotalParticipants         int    `json:"total_participants,omitempty"`

	MinutesConsumed int `json:"minutes_consumed,omitempty"`

	RecordingStatus  string `json:"recording_status,omitempty"`
	LivestreamStatus string `json:"livestream_status,omitempty"`

	OrganizationID  string  `json:"organization_id,omitempty"`
	ParentSessionID *string `json:"parent_session_id,omitempty"`

	StartedAt *string `json:"started_at,omitempty"`
	EndedAt   *string `json:"ended_at,omitempty"`
	CreatedAt *string `json:"created_at,omitempty"`
	UpdatedAt *string `json:"updated_at,omitempty"`

	Details *Details `json:"details,omitempty"`
}

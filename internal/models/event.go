package models

// Lifecycle event names delivered over the provider's socket feed.
const (
	EventMeetingStarted    = "meeting.started"
	EventMeetingEnded      = "meeting.ended"
	EventParticipantJoined = "meeting.participantJoined"
	EventParticipantLeft   = "meeting.participantLeft"
)

// EventMeeting is the meeting descriptor nested in every lifecycle event.
// ID is the stable meeting id; SessionID is the transient connection
// session. Legacy feeds sometimes key meetings by Title instead of ID.
type EventMeeting struct {
	ID        string  `json:"id"`
	SessionID string  `json:"sessionId,omitempty"`
	RoomName  string  `json:"roomName,omitempty"`
	Title     string  `json:"title,omitempty"`
	Status    string  `json:"status,omitempty"`
	CreatedAt *string `json:"createdAt,omitempty"`
	StartedAt *string `json:"startedAt,omitempty"`
	EndedAt   *string `json:"endedAt,omitempty"`
}

// EventParticipant describes the participant on join/leave events.
type EventParticipant struct {
	ClientSpecificID    string  `json:"clientSpecificId,omitempty"`
	CustomParticipantID string  `json:"customParticipantId,omitempty"`
	PeerID              string  `json:"peerId,omitempty"`
	UserDisplayName     string  `json:"userDisplayName,omitempty"`
	JoinedAt            *string `json:"joinedAt,omitempty"`
	LeftAt              *string `json:"leftAt,omitempty"`
}

// IncomingEvent is one message from the provider feed: a tagged union over
// the four lifecycle variants, discriminated by Event.
type IncomingEvent struct {
	Event       string            `json:"event"`
	Meeting     EventMeeting      `json:"meeting"`
	Participant *EventParticipant `json:"participant,omitempty"`
	Details     *Details          `json:"details,omitempty"`
	Reason      string            `json:"reason,omitempty"`
}

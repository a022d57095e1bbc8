package meetings

import (
	"time"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

// ProjectSnapshot maps deduplicated session rows into the unified view
// shape and applies the standard ordering. Feed it through LatestByMeeting
// first when the snapshot may hold several rows per meeting.
func (r *Reducer) ProjectSnapshot(rows []models.Session) []models.MeetingView {
	views := make([]models.MeetingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, r.projectSession(row))
	}
	return sortViews(views)
}

func (r *Reducer) projectSession(s models.Session) models.MeetingView {
	id := s.AssociatedID
	if id == "" {
		id = "unknown"
	}
	title := s.DisplayName
	if title == "" {
		title = "unknown"
	}

	now := r.now().UTC()
	created := parseWhenPtr(s.CreatedAt)
	started := parseWhenPtr(s.StartedAt)
	ended := parseWhenPtr(s.EndedAt)

	updated := now
	if t, ok := ParseWhen(s.UpdatedAt); ok {
		updated = t
	} else if created != nil {
		updated = *created
	}

	return models.MeetingView{
		ID:                id,
		SessionID:         s.ID,
		RoomName:          s.ID,
		Title:             title,
		Status:            s.Status,
		LiveParticipants:  s.LiveParticipants,
		TotalParticipants: s.MaxConcurrentParticipants,
		CreatedAt:         created,
		StartedAt:         started,
		EndedAt:           ended,
		UpdatedAt:         updated,
		RuntimeMinutes:    RuntimeMinutes(started, ended, now),
		Details:           s.Details,
	}
}

func parseWhenPtr(s *string) *time.Time {
	if t, ok := ParseWhen(s); ok {
		return &t
	}
	return nil
}

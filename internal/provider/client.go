// Package provider is the REST client for the third-party realtime video
// API. All rooms, media and participant tokens live on the provider side;
// this service only reads session state and creates meetings/participants.
package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

// envelope is the provider's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Watermark overlays the recording video.
type Watermark struct {
	URL  string `json:"url"`
	Size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"size"`
	Position string `json:"position"`
}

// VideoConfig is the recording video configuration.
type VideoConfig struct {
	Codec      string    `json:"codec"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Watermark  Watermark `json:"watermark"`
	ExportFile bool      `json:"export_file"`
}

// RecordingConfig configures cloud recording for a meeting. FileNamePrefix
// doubles as the carrier for the packed title capsule.
type RecordingConfig struct {
	MaxSeconds     int         `json:"max_seconds"`
	FileNamePrefix string      `json:"file_name_prefix"`
	VideoConfig    VideoConfig `json:"video_config"`
}

// LiveStreamingConfig points the provider at an RTMP ingest.
type LiveStreamingConfig struct {
	RTMPURL string `json:"rtmp_url"`
}

// Meeting is the provider's meeting resource.
type Meeting struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	RoomName          string               `json:"room_name,omitempty"`
	Status            string               `json:"status,omitempty"`
	CreatedAt         string               `json:"created_at,omitempty"`
	UpdatedAt         string               `json:"updated_at,omitempty"`
	RecordingConfig   *RecordingConfig     `json:"recording_config,omitempty"`
	LiveStreamOnStart bool                 `json:"live_stream_on_start,omitempty"`
	LiveStreaming     *LiveStreamingConfig `json:"live_streaming_config,omitempty"`
}

// CreateMeetingParams is the body for meeting creation.
type CreateMeetingParams struct {
	Title             string               `json:"title"`
	LiveStreamOnStart bool                 `json:"live_stream_on_start"`
	RecordingConfig   *RecordingConfig     `json:"recording_config,omitempty"`
	LiveStreaming     *LiveStreamingConfig `json:"live_streaming_config,omitempty"`
}

// ParticipantParams adds a user to a meeting.
type ParticipantParams struct {
	Name                string `json:"name"`
	Picture             string `json:"picture,omitempty"`
	PresetName          string `json:"preset_name"`
	CustomParticipantID string `json:"custom_participant_id"`
}

// Participant is the provider's participant resource, including the client
// auth token for joining the room.
type Participant struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Picture             string `json:"picture,omitempty"`
	CustomParticipantID string `json:"custom_participant_id,omitempty"`
	PresetName          string `json:"preset_name,omitempty"`
	Token               string `json:"token"`
}

// Client talks to the provider REST API with org-scoped Basic auth.
type Client struct {
	baseURL   string
	authToken string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient creates a provider client. The auth token is the base64 of
// "orgID:apiKey", computed once.
func NewClient(baseURL, orgID, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   baseURL,
		authToken: base64.StdEncoding.EncodeToString([]byte(orgID + ":" + apiKey)),
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
	}
}

// ListSessions fetches a page of session rows, optionally filtered by
// status (e.g. LIVE).
func (c *Client) ListSessions(ctx context.Context, status string, perPage, pageNo int) ([]models.Session, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page_no", strconv.Itoa(pageNo))
	if status != "" {
		q.Set("status", status)
	}
	var data struct {
		Sessions []models.Session `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions?"+q.Encode(), nil, &data); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return data.Sessions, nil
}

// GetMeeting fetches one meeting by its stable id.
func (c *Client) GetMeeting(ctx context.Context, meetingID string) (*Meeting, error) {
	var m Meeting
	if err := c.do(ctx, http.MethodGet, "/meetings/"+url.PathEscape(meetingID), nil, &m); err != nil {
		return nil, fmt.Errorf("get meeting %s: %w", meetingID, err)
	}
	return &m, nil
}

// CreateMeeting creates a meeting room.
func (c *Client) CreateMeeting(ctx context.Context, params CreateMeetingParams) (*Meeting, error) {
	var m Meeting
	if err := c.do(ctx, http.MethodPost, "/meetings", params, &m); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("create meeting: provider returned no meeting id")
	}
	return &m, nil
}

// AddParticipant registers a user in a meeting and returns their join
// token.
func (c *Client) AddParticipant(ctx context.Context, meetingID string, params ParticipantParams) (*Participant, error) {
	var p Participant
	path := "/meetings/" + url.PathEscape(meetingID) + "/participants"
	if err := c.do(ctx, http.MethodPost, path, params, &p); err != nil {
		return nil, fmt.Errorf("add participant to %s: %w", meetingID, err)
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = resp.Status
		}
		c.logger.Warn("provider call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", msg),
		)
		return fmt.Errorf("provider %s %s: %s", method, path, msg)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

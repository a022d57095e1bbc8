// Package api exposes the HTTP surface: the reconciled meeting list,
// meeting creation/join flows proxied to the realtime provider, per-meeting
// details and guest identity issuance.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/identity"
	"github.com/Amazing-Persona-101/videome/internal/meetings"
	"github.com/Amazing-Persona-101/videome/internal/models"
	"github.com/Amazing-Persona-101/videome/internal/provider"
	"github.com/Amazing-Persona-101/videome/internal/validation"
	"github.com/Amazing-Persona-101/videome/pkg/response"
)

// Participant presets on the provider side.
const (
	PresetHost        = "group_call_host"
	PresetPresenter   = "webinar_presenter"
	PresetParticipant = "group_call_participant"
)

const recordingMaxSeconds = 60

// ProviderAPI is the slice of the provider client the handlers use.
type ProviderAPI interface {
	ListSessions(ctx context.Context, status string, perPage, pageNo int) ([]models.Session, error)
	GetMeeting(ctx context.Context, meetingID string) (*provider.Meeting, error)
	CreateMeeting(ctx context.Context, params provider.CreateMeetingParams) (*provider.Meeting, error)
	AddParticipant(ctx context.Context, meetingID string, params provider.ParticipantParams) (*provider.Participant, error)
}

// DetailsGetter resolves enriched details for a meeting.
type DetailsGetter interface {
	Get(ctx context.Context, meetingID string) models.Details
}

// Handler handles the meeting HTTP endpoints.
type Handler struct {
	store        *meetings.Store
	api          ProviderAPI
	details      DetailsGetter
	loader       *SnapshotLoader
	watermarkURL string
	logger       *zap.Logger
}

// NewHandler creates the API handler. watermarkURL is the default recording
// watermark when the request does not supply one.
func NewHandler(store *meetings.Store, papi ProviderAPI, dg DetailsGetter, loader *SnapshotLoader, watermarkURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:        store,
		api:          papi,
		details:      dg,
		loader:       loader,
		watermarkURL: watermarkURL,
		logger:       logger,
	}
}

// ListMeetings handles GET /api/meetings: the current reconciled list.
func (h *Handler) ListMeetings(c *gin.Context) {
	response.OK(c, gin.H{
		"meetings": h.store.Snapshot(),
		"ready":    h.store.Ready(),
	})
}

// CreateRequest is the body for POST /api/meetings.
type CreateRequest struct {
	UserName          string `json:"userName" binding:"required"`
	UserID            string `json:"userId" binding:"required"`
	Image             string `json:"image"`
	RoomName          string `json:"roomName" binding:"required"`
	Summary           string `json:"summary"`
	GroupID           string `json:"groupId"`
	MeetingMode       string `json:"meeting_mode"`
	LiveStream        bool   `json:"live_stream"`
	WatermarkURL      string `json:"watermark_url"`
	WatermarkPosition string `json:"watermark_position"`
}

// CreateMeeting handles POST /api/meetings: sanitizes and validates the
// form, creates the room at the provider with the packed title capsule in
// the recording config, then adds the creator as host.
func (h *Handler) CreateMeeting(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	roomName := validation.SanitizeInput(req.RoomName)
	summary := validation.SanitizeInput(req.Summary)

	if res := validation.ValidateRoomName(roomName); !res.IsValid {
		response.BadRequest(c, res.Reason)
		return
	}
	if res := validation.ValidateDescription(summary); !res.IsValid {
		response.BadRequest(c, res.Reason)
		return
	}

	packed := provider.PackTitle(roomName, req.GroupID, summary)

	watermarkURL := req.WatermarkURL
	if watermarkURL == "" {
		watermarkURL = h.watermarkURL
	}
	watermarkPosition := req.WatermarkPosition
	if watermarkPosition == "" {
		watermarkPosition = "left top"
	}

	recording := &provider.RecordingConfig{
		MaxSeconds:     recordingMaxSeconds,
		FileNamePrefix: packed,
		VideoConfig: provider.VideoConfig{
			Codec:      "H264",
			Width:      1280,
			Height:     720,
			ExportFile: true,
		},
	}
	recording.VideoConfig.Watermark.URL = watermarkURL
	recording.VideoConfig.Watermark.Position = watermarkPosition
	recording.VideoConfig.Watermark.Size.Width = 100
	recording.VideoConfig.Watermark.Size.Height = 20

	meeting, err := h.api.CreateMeeting(c.Request.Context(), provider.CreateMeetingParams{
		Title:             roomName,
		LiveStreamOnStart: req.LiveStream,
		RecordingConfig:   recording,
	})
	if err != nil {
		h.logger.Error("create meeting failed", zap.Error(err))
		response.Internal(c, "failed to create meeting")
		return
	}

	// Only explicit conference rooms get the group-call host preset;
	// everything else is treated as a webinar and the creator presents.
	preset := PresetPresenter
	if req.MeetingMode == "conference" {
		preset = PresetHost
	}
	user, err := h.api.AddParticipant(c.Request.Context(), meeting.ID, provider.ParticipantParams{
		Name:                req.UserName,
		Picture:             req.Image,
		PresetName:          preset,
		CustomParticipantID: req.UserID,
	})
	if err != nil {
		h.logger.Error("add host failed", zap.String("meeting_id", meeting.ID), zap.Error(err))
		response.Internal(c, "failed to add host to meeting")
		return
	}

	response.OK(c, gin.H{"meeting": meeting, "user": user})
}

// JoinRequest is the body for PUT /api/meetings/:id/participants.
type JoinRequest struct {
	UserName   string `json:"username" binding:"required"`
	UserID     string `json:"userId" binding:"required"`
	Image      string `json:"image"`
	PresetName string `json:"preset_name"`
}

// JoinMeeting handles PUT /api/meetings/:id/participants: adds a
// participant to an existing meeting and returns their join token.
func (h *Handler) JoinMeeting(c *gin.Context) {
	meetingID := c.Param("id")
	if meetingID == "" {
		response.BadRequest(c, "meeting id required")
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	preset := req.PresetName
	if preset == "" {
		preset = PresetParticipant
	}

	user, err := h.api.AddParticipant(c.Request.Context(), meetingID, provider.ParticipantParams{
		Name:                validation.SanitizeInput(req.UserName),
		Picture:             req.Image,
		PresetName:          preset,
		CustomParticipantID: req.UserID,
	})
	if err != nil {
		h.logger.Error("join meeting failed", zap.String("meeting_id", meetingID), zap.Error(err))
		response.Internal(c, "failed to join meeting")
		return
	}

	response.OK(c, gin.H{"user": user})
}

// MeetingDetails handles GET /api/meetings/:id/details: group and summary
// recovered from the packed title capsule.
func (h *Handler) MeetingDetails(c *gin.Context) {
	meetingID := c.Param("id")
	if meetingID == "" {
		response.BadRequest(c, "meeting id required")
		return
	}
	response.OK(c, gin.H{"details": h.details.Get(c.Request.Context(), meetingID)})
}

// RefreshSnapshot handles POST /api/meetings/refresh: re-fetches the bulk
// session snapshot from the provider and replaces the list.
func (h *Handler) RefreshSnapshot(c *gin.Context) {
	rows, err := h.loader.Load(c.Request.Context())
	if err != nil {
		h.logger.Error("snapshot refresh failed", zap.Error(err))
		response.ServiceUnavailable(c, "failed to fetch sessions from provider")
		return
	}
	h.store.Init(rows)
	response.OK(c, gin.H{"meetings": h.store.Snapshot()})
}

// GuestIdentity handles GET /api/identity: mints an anonymous identity for
// a new visitor. The avatar set is chosen with ?set=robot|monster|head|cat.
func (h *Handler) GuestIdentity(c *gin.Context) {
	set := c.Query("set")
	if set == "" {
		set = identity.DefaultAvatarSet
	}
	response.OK(c, identity.NewGuest(set))
}

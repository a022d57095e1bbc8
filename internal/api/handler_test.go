package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amazing-Persona-101/videome/internal/meetings"
	"github.com/Amazing-Persona-101/videome/internal/models"
	"github.com/Amazing-Persona-101/videome/internal/provider"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProvider struct {
	sessions    []models.Session
	sessionsErr error

	createdWith *provider.CreateMeetingParams
	createErr   error

	participants []provider.ParticipantParams
	addErr       error
}

func (f *fakeProvider) ListSessions(_ context.Context, status string, perPage, pageNo int) ([]models.Session, error) {
	if f.sessionsErr != nil {
		return nil, f.sessionsErr
	}
	return f.sessions, nil
}

func (f *fakeProvider) GetMeeting(_ context.Context, id string) (*provider.Meeting, error) {
	return &provider.Meeting{ID: id}, nil
}

func (f *fakeProvider) CreateMeeting(_ context.Context, params provider.CreateMeetingParams) (*provider.Meeting, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdWith = &params
	return &provider.Meeting{ID: "m-created", Title: params.Title}, nil
}

func (f *fakeProvider) AddParticipant(_ context.Context, meetingID string, params provider.ParticipantParams) (*provider.Participant, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.participants = append(f.participants, params)
	return &provider.Participant{ID: "p1", Name: params.Name, Token: "tok-1"}, nil
}

type fakeDetails struct {
	got []string
}

func (f *fakeDetails) Get(_ context.Context, meetingID string) models.Details {
	f.got = append(f.got, meetingID)
	return models.Details{Summary: "summary for " + meetingID}
}

func newTestRouter(fp *fakeProvider) (*gin.Engine, *meetings.Store, *fakeDetails) {
	store := meetings.NewStore(meetings.NewReducer(nil), time.Minute, nil)
	fd := &fakeDetails{}
	loader := NewSnapshotLoader(fp, fd, []string{"banned-row"}, nil, nil)
	h := NewHandler(store, fp, fd, loader, "https://cdn.example.com/logo.png", nil)

	r := gin.New()
	r.GET("/api/meetings", h.ListMeetings)
	r.POST("/api/meetings", h.CreateMeeting)
	r.POST("/api/meetings/refresh", h.RefreshSnapshot)
	r.PUT("/api/meetings/:id/participants", h.JoinMeeting)
	r.GET("/api/meetings/:id/details", h.MeetingDetails)
	r.GET("/api/identity", h.GuestIdentity)
	return r, store, fd
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var env struct {
		Success bool                       `json:"success"`
		Data    map[string]json.RawMessage `json:"data"`
		Error   string                     `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, "error: %s", env.Error)
	return env.Data
}

func TestListMeetings(t *testing.T) {
	r, store, _ := newTestRouter(&fakeProvider{})
	store.Init([]models.Session{{ID: "sess-1", AssociatedID: "m1", Status: models.StatusLive}})
	store.SetReady(true)

	w := doJSON(t, r, http.MethodGet, "/api/meetings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w)
	var views []models.MeetingView
	require.NoError(t, json.Unmarshal(data["meetings"], &views))
	require.Len(t, views, 1)
	assert.Equal(t, "m1", views[0].ID)

	var ready bool
	require.NoError(t, json.Unmarshal(data["ready"], &ready))
	assert.True(t, ready)
}

func TestCreateMeeting(t *testing.T) {
	fp := &fakeProvider{}
	r, _, _ := newTestRouter(fp)

	w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{
		"userName": "alice",
		"userId":   "u1",
		"roomName": "friday-sync",
		"summary":  "Weekly catch-up",
		"groupId":  "grp-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, fp.createdWith)
	assert.Equal(t, "friday-sync", fp.createdWith.Title)
	rec := fp.createdWith.RecordingConfig
	require.NotNil(t, rec)
	assert.Equal(t, 60, rec.MaxSeconds)
	assert.Equal(t, "H264", rec.VideoConfig.Codec)
	assert.Equal(t, 1280, rec.VideoConfig.Width)
	assert.Equal(t, "https://cdn.example.com/logo.png", rec.VideoConfig.Watermark.URL)

	// The capsule in file_name_prefix carries group and summary.
	meta, ok := provider.UnpackTitle(rec.FileNamePrefix)
	require.True(t, ok)
	assert.Equal(t, "grp-1", meta.GroupID)
	assert.Equal(t, "Weekly catch-up", meta.Summary)

	// No meeting_mode given: the creator presents a webinar.
	require.Len(t, fp.participants, 1)
	assert.Equal(t, PresetPresenter, fp.participants[0].PresetName)
	assert.Equal(t, "u1", fp.participants[0].CustomParticipantID)
}

func TestCreateMeetingConferenceModeUsesHostPreset(t *testing.T) {
	fp := &fakeProvider{}
	r, _, _ := newTestRouter(fp)

	w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{
		"userName":     "alice",
		"userId":       "u1",
		"roomName":     "townhall",
		"meeting_mode": "conference",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fp.participants, 1)
	assert.Equal(t, PresetHost, fp.participants[0].PresetName)
}

func TestCreateMeetingWebinarModeUsesPresenterPreset(t *testing.T) {
	fp := &fakeProvider{}
	r, _, _ := newTestRouter(fp)

	w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{
		"userName":     "alice",
		"userId":       "u1",
		"roomName":     "townhall",
		"meeting_mode": "webinar",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fp.participants, 1)
	assert.Equal(t, PresetPresenter, fp.participants[0].PresetName)
}

func TestCreateMeetingRejectsBadRoomName(t *testing.T) {
	fp := &fakeProvider{}
	r, _, _ := newTestRouter(fp)

	w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{
		"userName": "alice",
		"userId":   "u1",
		"roomName": "<x>",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, fp.createdWith, "provider must not be called")
}

func TestCreateMeetingRejectsMissingFields(t *testing.T) {
	r, _, _ := newTestRouter(&fakeProvider{})

	w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{"roomName": "ok-room"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMeetingProviderFailure(t *testing.T) {
	fp := &fakeProvider{createErr: errors.New("boom")}
	r, _, _ := newTestRouter(fp)

	w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{
		"userName": "alice",
		"userId":   "u1",
		"roomName": "friday-sync",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestJoinMeeting(t *testing.T) {
	fp := &fakeProvider{}
	r, _, _ := newTestRouter(fp)

	w := doJSON(t, r, http.MethodPut, "/api/meetings/m1/participants", gin.H{
		"username": "bob",
		"userId":   "u2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, fp.participants, 1)
	assert.Equal(t, PresetParticipant, fp.participants[0].PresetName, "default preset is participant")

	data := decodeEnvelope(t, w)
	var user provider.Participant
	require.NoError(t, json.Unmarshal(data["user"], &user))
	assert.Equal(t, "tok-1", user.Token)
}

func TestMeetingDetails(t *testing.T) {
	r, _, fd := newTestRouter(&fakeProvider{})

	w := doJSON(t, r, http.MethodGet, "/api/meetings/m9/details", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w)
	var d models.Details
	require.NoError(t, json.Unmarshal(data["details"], &d))
	assert.Equal(t, "summary for m9", d.Summary)
	assert.Equal(t, []string{"m9"}, fd.got)
}

func TestRefreshSnapshot(t *testing.T) {
	fp := &fakeProvider{sessions: []models.Session{
		{ID: "sess-1", AssociatedID: "m1", Status: models.StatusLive, UpdatedAt: strPtr("2025-03-01T11:00:00Z")},
	}}
	r, store, _ := newTestRouter(fp)

	w := doJSON(t, r, http.MethodPost, "/api/meetings/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.Snapshot(), 1)
	assert.Equal(t, "m1", store.Snapshot()[0].ID)
}

func TestRefreshSnapshotProviderDown(t *testing.T) {
	fp := &fakeProvider{sessionsErr: errors.New("timeout")}
	r, store, _ := newTestRouter(fp)
	store.Init([]models.Session{{ID: "sess-1", AssociatedID: "m1"}})

	w := doJSON(t, r, http.MethodPost, "/api/meetings/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Len(t, store.Snapshot(), 1, "failed refresh leaves the list intact")
}

func TestGuestIdentity(t *testing.T) {
	r, _, _ := newTestRouter(&fakeProvider{})

	w := doJSON(t, r, http.MethodGet, "/api/identity?set=cat", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			UserID string `json:"userId"`
			Name   string `json:"name"`
			Avatar string `json:"avatar"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)
	assert.NotEmpty(t, env.Data.UserID)
	assert.NotEmpty(t, env.Data.Name)
	assert.Contains(t, env.Data.Avatar, "set=set4")
}

func strPtr(s string) *string { return &s }

// Package details enriches meetings with the group and summary recovered
// from the packed title capsule, caching lookups so the snapshot path does
// not hammer the provider.
package details

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/groups"
	"github.com/Amazing-Persona-101/videome/internal/models"
	"github.com/Amazing-Persona-101/videome/internal/provider"
	"github.com/Amazing-Persona-101/videome/pkg/redis"
)

const cacheKeyPrefix = "videome:details:"

// MeetingFetcher is the slice of the provider client the enricher needs.
type MeetingFetcher interface {
	GetMeeting(ctx context.Context, meetingID string) (*provider.Meeting, error)
}

// Enricher resolves per-meeting details. Results are cached in redis when
// available, otherwise in process.
type Enricher struct {
	fetcher MeetingFetcher
	catalog *groups.Catalog
	rdb     *redis.Client
	ttl     time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	local map[string]localEntry
}

type localEntry struct {
	details models.Details
	expires time.Time
}

// NewEnricher creates an enricher. rdb may be nil; ttl <= 0 defaults to
// 10 minutes.
func NewEnricher(fetcher MeetingFetcher, catalog *groups.Catalog, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Enricher{
		fetcher: fetcher,
		catalog: catalog,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		local:   make(map[string]localEntry),
	}
}

// Get returns the details for a meeting. Lookup failures degrade to the
// catalog defaults rather than erroring; the list keeps rendering.
func (e *Enricher) Get(ctx context.Context, meetingID string) models.Details {
	if d, ok := e.cached(ctx, meetingID); ok {
		return d
	}

	d := e.defaults()
	meeting, err := e.fetcher.GetMeeting(ctx, meetingID)
	if err != nil {
		e.logger.Warn("meeting details lookup failed", zap.String("meeting_id", meetingID), zap.Error(err))
		return d
	}

	prefix := ""
	if meeting.RecordingConfig != nil {
		prefix = meeting.RecordingConfig.FileNamePrefix
	}
	if meta, ok := provider.UnpackTitle(prefix); ok {
		d.Group = e.catalog.Resolve(meta.GroupID)
		if meta.Summary != "" {
			d.Summary = meta.Summary
		}
	}

	e.store(ctx, meetingID, d)
	return d
}

func (e *Enricher) defaults() models.Details {
	return models.Details{
		Group:   e.catalog.Resolve(""),
		Summary: groups.DefaultSummary,
	}
}

func (e *Enricher) cached(ctx context.Context, meetingID string) (models.Details, bool) {
	if e.rdb != nil {
		raw, err := e.rdb.Get(ctx, cacheKeyPrefix+meetingID).Bytes()
		if err == nil {
			var d models.Details
			if json.Unmarshal(raw, &d) == nil {
				return d, true
			}
		}
		return models.Details{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.local[meetingID]
	if !ok || time.Now().After(entry.expires) {
		delete(e.local, meetingID)
		return models.Details{}, false
	}
	return entry.details, true
}

func (e *Enricher) store(ctx context.Context, meetingID string, d models.Details) {
	if e.rdb != nil {
		if raw, err := json.Marshal(d); err == nil {
			if err := e.rdb.Set(ctx, cacheKeyPrefix+meetingID, raw, e.ttl).Err(); err != nil {
				e.logger.Warn("details cache write failed", zap.Error(err))
			}
		}
		return
	}

	e.mu.Lock()
	e.local[meetingID] = localEntry{details: d, expires: time.Now().Add(e.ttl)}
	e.mu.Unlock()
}

package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/meetings"
	"github.com/Amazing-Persona-101/videome/internal/models"
)

const snapshotPageSize = 1000

// SnapshotObserver tracks deduplication on bulk snapshots.
type SnapshotObserver interface {
	RecordSnapshot(rows, kept int)
}

type nopSnapshotObserver struct{}

func (nopSnapshotObserver) RecordSnapshot(int, int) {}

// SnapshotLoader fetches the bulk "current sessions" snapshot: list LIVE
// sessions, collapse duplicates per meeting, drop denylisted rows, enrich
// each surviving row with group details.
type SnapshotLoader struct {
	api      ProviderAPI
	details  DetailsGetter
	denylist map[string]struct{}
	obs      SnapshotObserver
	logger   *zap.Logger
}

// NewSnapshotLoader creates a loader. denylist holds session row ids to
// exclude from the list (e.g. permanent test rooms).
func NewSnapshotLoader(papi ProviderAPI, dg DetailsGetter, denylist []string, obs SnapshotObserver, logger *zap.Logger) *SnapshotLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if obs == nil {
		obs = nopSnapshotObserver{}
	}
	deny := make(map[string]struct{}, len(denylist))
	for _, id := range denylist {
		if id != "" {
			deny[id] = struct{}{}
		}
	}
	return &SnapshotLoader{api: papi, details: dg, denylist: deny, obs: obs, logger: logger}
}

// Load fetches and prepares the snapshot rows, ready for Store.Init.
func (l *SnapshotLoader) Load(ctx context.Context) ([]models.Session, error) {
	rows, err := l.api.ListSessions(ctx, models.StatusLive, snapshotPageSize, 1)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	deduped := meetings.LatestByMeeting(rows)
	l.obs.RecordSnapshot(len(rows), len(deduped))

	out := make([]models.Session, 0, len(deduped))
	for _, row := range deduped {
		if _, banned := l.denylist[row.ID]; banned {
			continue
		}
		if row.AssociatedID != "" {
			d := l.details.Get(ctx, row.AssociatedID)
			row.Details = &d
		}
		out = append(out, row)
	}

	l.logger.Info("snapshot loaded",
		zap.Int("rows", len(rows)),
		zap.Int("meetings", len(out)),
	)
	return out, nil
}

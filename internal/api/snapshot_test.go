package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

type recordingObserver struct {
	rows, kept int
}

func (o *recordingObserver) RecordSnapshot(rows, kept int) {
	o.rows, o.kept = rows, kept
}

func TestSnapshotLoaderDedupesAndEnriches(t *testing.T) {
	fp := &fakeProvider{sessions: []models.Session{
		{ID: "row-old", AssociatedID: "m1", UpdatedAt: strPtr("2025-03-01T10:00:00Z")},
		{ID: "row-new", AssociatedID: "m1", UpdatedAt: strPtr("2025-03-01T11:00:00Z")},
		{ID: "row-2", AssociatedID: "m2", UpdatedAt: strPtr("2025-03-01T09:00:00Z")},
	}}
	fd := &fakeDetails{}
	obs := &recordingObserver{}
	l := NewSnapshotLoader(fp, fd, nil, obs, nil)

	rows, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 3, obs.rows)
	assert.Equal(t, 2, obs.kept)

	ids := map[string]string{}
	for _, row := range rows {
		ids[row.AssociatedID] = row.ID
		require.NotNil(t, row.Details, "every surviving row is enriched")
	}
	assert.Equal(t, "row-new", ids["m1"], "newest row per meeting survives")
	assert.ElementsMatch(t, []string{"m1", "m2"}, fd.got)
}

func TestSnapshotLoaderAppliesDenylist(t *testing.T) {
	fp := &fakeProvider{sessions: []models.Session{
		{ID: "banned-row", AssociatedID: "m1", UpdatedAt: strPtr("2025-03-01T10:00:00Z")},
		{ID: "row-ok", AssociatedID: "m2", UpdatedAt: strPtr("2025-03-01T10:00:00Z")},
	}}
	l := NewSnapshotLoader(fp, &fakeDetails{}, []string{"banned-row"}, nil, nil)

	rows, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "row-ok", rows[0].ID)
}

func TestSnapshotLoaderPropagatesProviderError(t *testing.T) {
	fp := &fakeProvider{sessionsErr: errors.New("timeout")}
	l := NewSnapshotLoader(fp, &fakeDetails{}, nil, nil, nil)

	_, err := l.Load(context.Background())
	assert.Error(t, err)
}

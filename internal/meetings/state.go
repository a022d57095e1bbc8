package meetings

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

// DefaultTickInterval is how often live runtimes are recomputed between
// events.
const DefaultTickInterval = 10 * time.Second

// Store is the authoritative in-memory holder of the view list plus the UI
// flags around it. It serializes reducer invocations and the tick loop
// behind one mutex, owns the tick timer's lifecycle, and fans out a copy of
// the list to subscribers after every change.
type Store struct {
	reducer   *Reducer
	logger    *zap.Logger
	tickEvery time.Duration

	mu           sync.Mutex
	views        []models.MeetingView
	ready        bool
	lastNonEmpty time.Time

	subMu sync.RWMutex
	subs  map[string]chan []models.MeetingView

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStore creates a store around the given reducer. A non-positive tick
// interval falls back to DefaultTickInterval.
func NewStore(reducer *Reducer, tickEvery time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tickEvery <= 0 {
		tickEvery = DefaultTickInterval
	}
	return &Store{
		reducer:   reducer,
		logger:    logger,
		tickEvery: tickEvery,
		subs:      make(map[string]chan []models.MeetingView),
	}
}

// Init replaces the whole list from a snapshot, discarding prior content.
func (s *Store) Init(rows []models.Session) {
	next := s.reducer.ProjectSnapshot(rows)
	s.mu.Lock()
	s.replaceLocked(next)
	s.mu.Unlock()
	s.notify()
}

// ApplyMessage merges one lifecycle event into the list.
func (s *Store) ApplyMessage(ev models.IncomingEvent) {
	s.mu.Lock()
	next := s.reducer.ApplyEvent(s.views, ev)
	s.replaceLocked(next)
	s.mu.Unlock()
	s.notify()
}

// replaceLocked repopulates the list in place rather than swapping the
// slice header, keeping the clear-then-refill discipline of the original
// container. Caller holds s.mu.
func (s *Store) replaceLocked(next []models.MeetingView) {
	s.views = append(s.views[:0], next...)
	if len(s.views) > 0 {
		s.lastNonEmpty = time.Now()
	}
}

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() []models.MeetingView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MeetingView, len(s.views))
	copy(out, s.views)
	return out
}

// SetReady flips the "realtime connection ready" flag.
func (s *Store) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// Ready reports whether the realtime feed is connected.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// LastNonEmptyAt returns when the list last held at least one view. Zero if
// it never has. Used by hosts to gate empty-state UI.
func (s *Store) LastNonEmptyAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastNonEmpty
}

// Subscribe registers a listener for list changes. Each change delivers a
// copy of the full list; slow listeners miss intermediate states rather
// than blocking the store.
func (s *Store) Subscribe() (id string, ch <-chan []models.MeetingView) {
	c := make(chan []models.MeetingView, 8)
	id = uuid.New().String()
	s.subMu.Lock()
	s.subs[id] = c
	s.subMu.Unlock()
	return id, c
}

// Unsubscribe removes a listener and closes its channel.
func (s *Store) Unsubscribe(id string) {
	s.subMu.Lock()
	if c, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(c)
	}
	s.subMu.Unlock()
}

func (s *Store) notify() {
	snapshot := s.Snapshot()
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, c := range s.subs {
		select {
		case c <- snapshot:
		default:
			// listener is behind; it will catch up on the next change
		}
	}
}

// Start launches the tick loop that keeps live runtimes current between
// events. Calling Start on a running store is a no-op.
func (s *Store) Start() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
	s.logger.Info("meeting store tick loop started", zap.Duration("interval", s.tickEvery))
}

// Stop cancels the tick loop and resets the ready flag. Safe to call
// multiple times and from any state, including before Start.
func (s *Store) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel == nil {
		s.SetReady(false)
		return
	}
	s.cancel()
	s.cancel = nil
	<-s.done
	s.SetReady(false)
	s.logger.Info("meeting store tick loop stopped")
}

func (s *Store) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickOnce()
		}
	}
}

func (s *Store) tickOnce() {
	s.mu.Lock()
	next := s.reducer.Tick(s.views)
	if isSameSlice(next, s.views) {
		s.mu.Unlock()
		return
	}
	s.replaceLocked(next)
	s.mu.Unlock()
	s.notify()
}

// isSameSlice reports whether the reducer returned its input unchanged
// (identity-stable no-op).
func isSameSlice(a, b []models.MeetingView) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

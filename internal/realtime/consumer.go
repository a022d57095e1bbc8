package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// EventSink is where decoded lifecycle events land (the meeting store).
type EventSink interface {
	ApplyMessage(ev models.IncomingEvent)
	SetReady(bool)
}

// FeedObserver counts consumer connection churn.
type FeedObserver interface {
	FeedConnected()
	FeedDropped()
}

type nopFeedObserver struct{}

func (nopFeedObserver) FeedConnected() {}
func (nopFeedObserver) FeedDropped()   {}

// feedEnvelope wraps events on the wire. Some feeds deliver the event
// nested under "data", others deliver it bare.
type feedEnvelope struct {
	Data *models.IncomingEvent `json:"data"`
}

// Consumer dials the provider's socket feed and pumps lifecycle events
// into the sink, reconnecting with exponential backoff. Delivery is at
// least once and unordered; the reducer is built for that.
type Consumer struct {
	wsURL  string
	sink   EventSink
	obs    FeedObserver
	logger *zap.Logger
	dialer *websocket.Dialer

	onReady func(bool) // optional, e.g. hub broadcast

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsumer creates a consumer for the given feed URL.
func NewConsumer(wsURL string, sink EventSink, obs FeedObserver, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if obs == nil {
		obs = nopFeedObserver{}
	}
	return &Consumer{
		wsURL:  wsURL,
		sink:   sink,
		obs:    obs,
		logger: logger,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// OnReady registers a callback invoked whenever the feed connects or
// disconnects, after the sink's ready flag is updated.
func (c *Consumer) OnReady(fn func(bool)) {
	c.onReady = fn
}

// Start launches the connect/read loop. No-op if already running.
func (c *Consumer) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx)
	c.logger.Info("event consumer started", zap.String("url", c.wsURL))
}

// Stop tears the consumer down. Safe to call multiple times.
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	<-c.done
	c.logger.Info("event consumer stopped")
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
		if err != nil {
			c.logger.Warn("feed dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = initialBackoff
		c.obs.FeedConnected()
		c.setReady(true)
		c.logger.Info("feed connected", zap.String("url", c.wsURL))

		c.readLoop(ctx, conn)
		_ = conn.Close()

		c.setReady(false)
		c.obs.FeedDropped()
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("feed disconnected, reconnecting", zap.Duration("retry_in", backoff))
		if !sleep(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

func (c *Consumer) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock ReadMessage when the consumer is stopped.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		ev, ok := decodeEvent(raw)
		if !ok {
			c.logger.Warn("undecodable feed message", zap.ByteString("raw", truncate(raw, 256)))
			continue
		}
		c.sink.ApplyMessage(ev)
	}
}

func (c *Consumer) setReady(ready bool) {
	c.sink.SetReady(ready)
	if c.onReady != nil {
		c.onReady(ready)
	}
}

func decodeEvent(raw []byte) (models.IncomingEvent, bool) {
	var env feedEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil && env.Data.Event != "" {
		return *env.Data, true
	}
	var ev models.IncomingEvent
	if err := json.Unmarshal(raw, &ev); err == nil && ev.Event != "" {
		return ev, true
	}
	return models.IncomingEvent{}, false
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

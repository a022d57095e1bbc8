package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

// checkOrigin builds the upgrade origin check from the same "*" or
// comma-separated origin list the CORS middleware uses. Requests without
// an Origin header (non-browser clients) are always allowed.
func checkOrigin(allowedOrigins string) func(*http.Request) bool {
	origins := make(map[string]bool)
	allowAll := true
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		origins[o] = true
		allowAll = false
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return allowAll || origin == "" || origins[origin]
	}
}

// Client represents a single browser websocket connection.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan WSMessage
}

// Snapshotter supplies the current list for the initial push on connect.
type Snapshotter interface {
	Snapshot() []models.MeetingView
	Ready() bool
}

// ServeWs handles the websocket upgrade and runs the client loop. The
// freshly connected client immediately receives the current list and feed
// state. allowedOrigins follows the CORS middleware format.
func ServeWs(hub *Hub, store Snapshotter, allowedOrigins string, logger *zap.Logger) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(allowedOrigins),
	}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:   uuid.New().String(),
			hub:  hub,
			conn: conn,
			send: make(chan WSMessage, 64),
		}
		hub.Register(client)

		if views, err := json.Marshal(store.Snapshot()); err == nil {
			client.send <- WSMessage{Event: EventMeetingsUpdated, Data: views}
		}
		if ready, err := json.Marshal(map[string]bool{"ready": store.Ready()}); err == nil {
			client.send <- WSMessage{Event: EventFeedReady, Data: ready}
		}

		go client.writePump()
		client.readPump()
	}
}

// readPump drains the connection; browsers only listen, so everything but
// pongs is discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

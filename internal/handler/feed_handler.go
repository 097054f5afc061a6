package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Baaaki/market-square/internal/broker"
	"github.com/Baaaki/market-square/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxSessionLifetime = 15 * time.Minute
	writeWait          = 10 * time.Second // Time allowed to write a message to the peer
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 4 * 1024 // clients only send control frames
	backlogSize        = 20
)

// FeedMessage is one frame sent to a feed client.
type FeedMessage struct {
	Type  string               `json:"type"` // "event", "session_expired"
	Event *broker.ListingEvent `json:"event,omitempty"`
	Error string               `json:"error,omitempty"`
}

// FeedHandler streams listing events over a websocket. The feed is public
// and read-only; anything a client sends is discarded.
type FeedHandler struct {
	broker   broker.ListingBroker
	upgrader websocket.Upgrader
}

func NewFeedHandler(b broker.ListingBroker, allowOrigin func(origin string) bool) *FeedHandler {
	return &FeedHandler{
		broker: b,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowOrigin == nil || allowOrigin(origin)
			},
		},
	}
}

// GET /api/feed
func (h *FeedHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("Failed to upgrade feed connection", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, err := h.broker.Subscribe(ctx)
	if err != nil {
		logger.Log.Error("Failed to subscribe to listing events", zap.Error(err))
		h.closeWith(conn, websocket.CloseInternalServerErr, "feed unavailable")
		return
	}

	connectedAt := time.Now()
	logger.Log.Debug("Feed client connected", zap.String("client_ip", c.ClientIP()))
	defer func() {
		logger.Log.Debug("Feed client disconnected",
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("session_duration", time.Since(connectedAt).Round(time.Second)),
		)
	}()

	go h.readPump(conn, cancel)

	if err := h.sendBacklog(ctx, conn); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	sessionTimer := time.NewTimer(maxSessionLifetime)
	defer sessionTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-sessionTimer.C:
			h.write(conn, FeedMessage{Type: "session_expired", Error: "session expired after 15 minutes"})
			h.closeWith(conn, websocket.CloseNormalClosure, "session expired")
			return

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.write(conn, FeedMessage{Type: "event", Event: &event}); err != nil {
				return
			}
		}
	}
}

// readPump keeps the read deadline fresh and cancels the session when the
// client goes away.
func (h *FeedHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Debug("Feed read error", zap.Error(err))
			}
			return
		}
	}
}

// sendBacklog replays the most recent events, oldest first.
func (h *FeedHandler) sendBacklog(ctx context.Context, conn *websocket.Conn) error {
	recent, err := h.broker.Recent(ctx, backlogSize)
	if err != nil {
		logger.Log.Warn("Failed to load feed backlog", zap.Error(err))
		return nil
	}
	for i := len(recent) - 1; i >= 0; i-- {
		if err := h.write(conn, FeedMessage{Type: "event", Event: &recent[i]}); err != nil {
			return err
		}
	}
	return nil
}

func (h *FeedHandler) write(conn *websocket.Conn, msg FeedMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		logger.Log.Debug("Failed to write feed message", zap.Error(err))
		return err
	}
	return nil
}

func (h *FeedHandler) closeWith(conn *websocket.Conn, code int, reason string) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

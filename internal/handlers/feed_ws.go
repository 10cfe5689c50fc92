package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/evofit/evofit-backend/internal/middleware"
	"github.com/evofit/evofit-backend/internal/services"
	"github.com/evofit/evofit-backend/pkg/utils"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = 50 * time.Second
	feedReadLimit  = 4 * 1024
)

// Auth is by token rather than cookie, so any origin may connect.
var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedWebSocket streams post_created and post_liked events. Browsers cannot
// set headers on WebSocket requests, so the token may also come as ?token=.
func (h *Handler) FeedWebSocket(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		utils.WriteMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}
	userID, err := h.tokens.Verify(token)
	if err != nil {
		utils.WriteMessage(w, http.StatusForbidden, "Invalid or expired token")
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}
	defer conn.Close()

	sub := h.svc.Feed.Subscribe()
	defer h.svc.Feed.Unsubscribe(sub)

	log := h.log.WithField("user_id", userID)
	log.Debug("feed subscriber connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		readUntilClosed(conn)
	}()

	writeFeed(conn, sub, done)
	log.Debug("feed subscriber disconnected")
}

// readUntilClosed discards client frames and returns once the peer goes
// away or stops answering pings.
func readUntilClosed(conn *websocket.Conn) {
	conn.SetReadLimit(feedReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeFeed(conn *websocket.Conn, sub *services.FeedSubscriber, done <-chan struct{}) {
	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case event, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(feedWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait)); err != nil {
				return
			}
		}
	}
}

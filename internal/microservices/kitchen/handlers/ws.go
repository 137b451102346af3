package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"cafe-orders/internal/common/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type refreshMessage struct {
	Type    string `json:"type"`
	Tickets any    `json:"tickets"`
}

// Stream pushes the full ticket list to a websocket client on connect and
// after every change. Clients never receive diffs.
func (h *KitchenHandler) Stream(lg *logger.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			lg.Warn("ws_upgrade_failed", err, nil)
			return
		}
		defer conn.Close()

		changes, stop := h.queue.Watch()
		defer stop()

		// reader: handles pongs and notices the client going away
		gone := make(chan struct{})
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()

		send := func() error {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			return conn.WriteJSON(refreshMessage{Type: "refresh", Tickets: h.queue.Tickets()})
		}
		if err := send(); err != nil {
			return
		}
		for {
			select {
			case <-gone:
				return
			case <-r.Context().Done():
				return
			case <-changes:
				if err := send(); err != nil {
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/risithcha/nutritrack/pkg/realtime"
)

const pingInterval = 25 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Requests are authenticated by ID token, not by cookie.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebsocket streams daily.updated and day.rolled_over messages for the
// signed-in user.
func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	uid := userIDFrom(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", "user_id", uid, "error", err)
		return
	}
	client := &realtime.Client{UserID: uid, Conn: conn}
	s.hub.Register(client)
	defer s.hub.Unregister(client)
	s.logger.Info("Websocket connected", "user_id", uid, "connections", s.hub.Connections(uid))

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := client.Ping(); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	// Send the current day straight away so the client does not wait for
	// the next change.
	if snap, err := s.tracker.Daily(r.Context(), uid); err == nil {
		s.hub.Broadcast(uid, realtime.MessageDailyUpdated, snap)
	}

	// The read loop ends when the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

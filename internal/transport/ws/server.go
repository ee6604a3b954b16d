// Package ws streams the session chronicle feed over a websocket.
// The socket is read-only from the client's side; inbound frames only
// keep the connection alive.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"sovereign.ai/internal/session"
	"sovereign.ai/internal/transport/httpapi"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Server struct {
	store *session.Store
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(store *session.Store, logger *log.Logger) *Server {
	return &Server{
		store: store,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// sessionID resolves the session from the cookie or, for clients that
// cannot set cookies on a websocket dial, a query parameter.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie(httpapi.SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("session")
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		id := sessionID(r)
		h, ok := s.store.Get(id)
		if !ok {
			http.Error(rw, "unknown session", http.StatusNotFound)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		feed, cancelFeed := h.Game.Subscribe(64)
		defer cancelFeed()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine: feed entries plus keepalive pings.
		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-feed:
					if !ok {
						return
					}
					b, err := json.Marshal(msg)
					if err != nil {
						continue
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				case <-ticker.C:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: close detection only.
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		}
	}
}

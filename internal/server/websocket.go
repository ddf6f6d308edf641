package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/atikulmunna/skein/internal/hub"
)

const writeTimeout = 10 * time.Second

func (s *Server) upgrader() websocket.Upgrader {
	allowed := make(map[string]bool, len(s.allowedOrigins))
	for _, o := range s.allowedOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowed) == 0 || origin == "" || allowed[origin]
		},
	}
}

// handleWebSocket upgrades to WebSocket and streams summary updates to the
// client, starting with the current summary.
func (s *Server) handleWebSocket(c *gin.Context) {
	up := s.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Subscribe before the first write so no refresh is missed.
	updates := s.hub.Subscribe()
	defer s.hub.Unsubscribe(updates)

	first, ok := s.hub.Latest()
	if !ok {
		first = s.currentUpdate(c)
	}
	if err := writeUpdate(conn, first); err != nil {
		return
	}

	// Read pump to detect client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Write pump: send each update as JSON.
	for {
		select {
		case <-done:
			return
		case u, ok := <-updates:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := writeUpdate(conn, u); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}

func (s *Server) currentUpdate(c *gin.Context) hub.Update {
	u := hub.Update{Reason: "connect"}
	resp, err := s.logs.Summary(c.Request.Context())
	if err != nil {
		u.Error = err.Error()
	} else {
		u.Summary = &resp
	}
	return u
}

func writeUpdate(conn *websocket.Conn, u hub.Update) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(u)
}

package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SocketHandler upgrades HTTP connections and streams hub events to them
// as JSON frames.
type SocketHandler struct {
	hub *Hub
	log zerolog.Logger
}

// NewSocketHandler creates a handler bound to the given hub.
func NewSocketHandler(hub *Hub, log zerolog.Logger) *SocketHandler {
	return &SocketHandler{hub: hub, log: log}
}

// ServeHTTP subscribes the connection to the hub until it closes. A failed
// write ends only that connection; other subscribers are unaffected.
func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ch := h.hub.Subscribe()
	go h.writePump(conn, ch)
	h.readPump(conn, ch)
}

// writePump forwards events and keeps the connection alive with pings.
func (h *SocketHandler) writePump(conn *websocket.Conn, ch chan Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and detects the close.
func (h *SocketHandler) readPump(conn *websocket.Conn, ch chan Event) {
	defer h.hub.Unsubscribe(ch)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

package websocket

import (
	"net/http"
	"time"

	"aparajita/internal/common/logger"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades the request, registers the client on the hub and pumps
// messages until the peer goes away.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws_upgrade_failed", "websocket upgrade failed", userID, "", err.Error())
		return
	}

	client := NewClient(userID, conn)
	hub.AddClient(client)
	logger.Info("ws_connected", "client connected", userID, "")

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		client.LastPong = time.Now()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go writePump(client)
	go readPump(hub, client)
}

func writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("ws_write_failed", "dropping client", c.ID, "", err.Error())
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the stream is push-only. Its job is to
// notice the close handshake and unregister the client.
func readPump(hub *Hub, c *Client) {
	defer func() {
		hub.RemoveClient(c)
		c.Conn.Close()
		logger.Info("ws_disconnected", "client disconnected", c.ID, "")
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

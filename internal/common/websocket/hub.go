package websocket

import "sync"

// Hub tracks connected clients keyed by user id. Writes go through each
// client's buffered send channel so a slow consumer never blocks the
// broadcast path.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[c.ID]; ok {
		close(old.Send)
	}
	h.clients[c.ID] = c
}

// RemoveClient unregisters c. A newer client registered under the same id
// is left alone.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.ID]; ok && cur == c {
		close(cur.Send)
		delete(h.clients, c.ID)
	}
}

// SendToClient drops the message if the client is absent or its buffer is
// full.
func (h *Hub) SendToClient(id string, message []byte) {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case c.Send <- message:
	default:
	}
}

// ClientIDs lists the currently connected user ids.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}

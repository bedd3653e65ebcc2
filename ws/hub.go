package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/devflow-backend/models"
)

const (
	EventTagCreated = "tag_created"
	EventTagUpdated = "tag_updated"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Rooms         map[string]map[*websocket.Conn]*Client // theo tagID, cho trang chi tiết tag
	GlobalClients map[*websocket.Conn]*Client            // trang danh sách tag
	Mutex         sync.RWMutex
}

var H = NewHub()

func NewHub() *Hub {
	return &Hub{
		Rooms:         make(map[string]map[*websocket.Conn]*Client),
		GlobalClients: make(map[*websocket.Conn]*Client),
	}
}

type TagEvent struct {
	Type string     `json:"type"`
	Tag  models.Tag `json:"tag"`
}

// Register theo tagID; room rỗng nghĩa là global
func (h *Hub) Register(room string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	if room == "" {
		h.GlobalClients[conn] = client
	} else {
		if _, ok := h.Rooms[room]; !ok {
			h.Rooms[room] = make(map[*websocket.Conn]*Client)
		}
		h.Rooms[room][conn] = client
	}

	go client.writePump()
	return client
}

func (h *Hub) Unregister(room string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if room == "" {
		if client, ok := h.GlobalClients[conn]; ok {
			close(client.Send)
			delete(h.GlobalClients, conn)
		}
		return
	}

	if clients, ok := h.Rooms[room]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Rooms, room)
		}
	}
}

// Broadcast không chặn: client đầy buffer sẽ bị bỏ qua message
func (h *Hub) Broadcast(room string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	clients := h.GlobalClients
	if room != "" {
		clients = h.Rooms[room]
	}
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// BroadcastTagEvent gửi cho trang danh sách và cho room của chính tag đó
func (h *Hub) BroadcastTagEvent(kind string, tag models.Tag) {
	data, err := json.Marshal(TagEvent{Type: kind, Tag: tag})
	if err != nil {
		logrus.WithError(err).Error("ws: marshal tag event")
		return
	}

	h.Broadcast("", data)
	h.Broadcast(tag.ID.String(), data)
}

type HubStats struct {
	GlobalClients int `json:"global_clients"`
	Rooms         int `json:"rooms"`
	RoomClients   int `json:"room_clients"`
}

func (h *Hub) GetStats() HubStats {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	stats := HubStats{GlobalClients: len(h.GlobalClients), Rooms: len(h.Rooms)}
	for _, clients := range h.Rooms {
		stats.RoomClients += len(clients)
	}
	return stats
}

func (c *Client) writePump() {
	defer func() {
		c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		c.Conn.Close()
	}()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: giới hạn theo CORS_ORIGINS khi triển khai production
	},
}

// HandleTagsWebSocket: /ws/tags cho danh sách, /ws/tags/:id cho một tag
func (h *Hub) HandleTagsWebSocket(c *gin.Context) {
	room := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("ws: upgrade failed")
		return
	}
	h.Register(room, conn)
	defer h.Unregister(room, conn)

	logrus.WithField("room", room).Debug("ws: client connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	logrus.WithField("room", room).Debug("ws: client disconnected")
}

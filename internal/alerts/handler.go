package alerts

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sportbeacon/internal/api"
	"sportbeacon/internal/auth"
	"sportbeacon/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeWS godoc
// @Summary      Creator alert stream
// @Description  Upgrades to a websocket pushing live tip alerts for the authenticated creator.
// @Tags         alerts
// @Security     BearerAuth
// @Router       /ws/alerts [get]
func (h *Handler) ServeWS(c *gin.Context) {
	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("Failed to upgrade alert connection: %v", err)
		return
	}

	client := &Client{
		Hub:       h.hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		CreatorID: creatorID,
	}

	h.hub.Register(client)

	go writePump(client)
	go readPump(client)
}

func writePump(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func readPump(client *Client) {
	defer func() {
		client.Hub.Unregister(client)
		client.Conn.Close()
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Alert readPump error: %v", err)
			}
			break
		}
	}
}

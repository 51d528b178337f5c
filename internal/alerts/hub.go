package alerts

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"sportbeacon/internal/logger"
)

// TipAlert is pushed to a creator's connected overlay when a tip completes.
type TipAlert struct {
	TargetCreatorID int    `json:"-"`
	TipperName      string `json:"tipper_name"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	Message         string `json:"message"`
	Source          string `json:"source"`
}

// Broadcaster is the side of the hub the tip pipeline sees.
type Broadcaster interface {
	Broadcast(alert TipAlert)
}

type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	CreatorID int
}

type Hub struct {
	clients    map[int]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan TipAlert
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan TipAlert, 16),
	}
}

// Broadcast never blocks the tip pipeline: if the hub is saturated the
// alert is dropped.
func (h *Hub) Broadcast(alert TipAlert) {
	select {
	case h.broadcast <- alert:
	default:
		logger.Errorf("Alert hub saturated, dropping alert for creator %d", alert.TargetCreatorID)
	}
}

func (h *Hub) Register(c *Client) {
	h.register <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, client := range h.clients {
				close(client.Send)
			}
			return

		case client := <-h.register:
			h.clients[client.CreatorID] = client
			logger.Infof("Alert client registered for creator %d", client.CreatorID)

		case client := <-h.unregister:
			if _, ok := h.clients[client.CreatorID]; ok {
				delete(h.clients, client.CreatorID)
				close(client.Send)
				logger.Infof("Alert client unregistered for creator %d", client.CreatorID)
			}

		case alert := <-h.broadcast:
			client, ok := h.clients[alert.TargetCreatorID]
			if !ok {
				continue
			}
			data, err := json.Marshal(alert)
			if err != nil {
				logger.Errorf("Failed to marshal tip alert: %v", err)
				continue
			}
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				delete(h.clients, client.CreatorID)
			}
		}
	}
}

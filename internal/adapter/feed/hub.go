// Package feed pushes committed outbox events to WebSocket subscribers.
package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/eventpublisher"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

type message struct {
	accountID string
	data      []byte
}

// Hub fans events out to connected clients. Admins see every event; other
// users only see events of their own account. A client that cannot keep up
// is disconnected instead of blocking the hub.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan message
	done       chan struct{}

	upgrader websocket.Upgrader
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewHub creates a hub. An empty allowedOrigins accepts any origin.
func NewHub(logger zerolog.Logger, m *metrics.Metrics, allowedOrigins ...string) *Hub {
	h := &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "feed").Logger(),
		metrics:    m,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowedOrigins {
				if o == origin {
					return true
				}
			}
			return false
		},
	}

	return h
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return ctx.Err()

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.gauge()
			h.logger.Debug().Str("user_id", c.userID).Bool("admin", c.admin).Msg("feed client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if !c.wants(msg.accountID) {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					h.logger.Warn().Str("user_id", c.userID).Msg("feed client too slow, disconnecting")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.gauge()
}

func (h *Hub) gauge() {
	if h.metrics != nil {
		h.metrics.FeedClients.Set(float64(len(h.clients)))
	}
}

// Publish queues event for delivery. It only fails when ctx ends first.
func (h *Hub) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	data, err := eventpublisher.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- message{accountID: event.AccountID, data: data}:
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// ServeWS upgrades the request and subscribes the caller. Without an
// authenticated user the optional accountId query parameter filters the
// stream.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	c := &client{hub: h, send: make(chan []byte, sendBuffer)}
	if user, ok := domain.UserFromContext(r.Context()); ok {
		c.userID = user.ID
		c.admin = user.Role.IsAdmin()
	} else {
		c.userID = r.URL.Query().Get("accountId")
		c.admin = c.userID == ""
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c.conn = conn

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

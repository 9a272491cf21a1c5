package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gamepredict/internal/metrics"
	"github.com/yourusername/gamepredict/internal/models"
)

const (
	clientSendBuf = 16
	writeDeadline = 5 * time.Second
	pongWait      = 60 * time.Second
	pingInterval  = 45 * time.Second
)

// StreamMessage is the envelope written to websocket subscribers
type StreamMessage struct {
	Type   string              `json:"type"`
	SentAt time.Time           `json:"sent_at"`
	Report *models.DailyReport `json:"report"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub fans freshly computed daily reports out to websocket subscribers
type Hub struct {
	mu       sync.Mutex
	clients  map[*subscriber]struct{}
	upgrader websocket.Upgrader
	logger   *logrus.Entry
}

// NewHub creates an empty hub
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		logger: logger.WithField("component", "stream"),
	}
}

// Subscribers returns the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastReport enqueues the report for every subscriber. Slow clients drop the message.
func (h *Hub) BroadcastReport(report *models.DailyReport) {
	if report == nil {
		return
	}
	data, err := json.Marshal(StreamMessage{Type: "daily_report", SentAt: time.Now().UTC(), Report: report})
	if err != nil {
		h.logger.WithError(err).Warn("Failed to marshal report")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping report for slow subscriber")
		}
	}
}

// HandleWS upgrades the request and registers the subscriber
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &subscriber{
		conn: conn,
		send: make(chan []byte, clientSendBuf),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateStreamSubscribers(n)
	h.logger.WithField("subscribers", n).Debug("Subscriber connected")

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*subscriber, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

// writePump owns the connection: it removes the subscriber and closes the socket on exit
func (h *Hub) writePump(c *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		h.remove(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.WithError(err).Debug("Subscriber write failed")
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and signals writePump when the peer goes away
func (h *Hub) readPump(c *subscriber) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *subscriber) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateStreamSubscribers(n)
}

package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"pcg/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is one SSE subscriber. A client with no types receives every event.
type Client struct {
	id     string
	types  map[service.EventType]bool
	events chan []byte
}

func (c *Client) wants(t service.EventType) bool {
	return len(c.types) == 0 || c.types[t]
}

// Hub streams service events to SSE clients as named events
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan service.Event
	logger     *zap.Logger
	keepAlive  time.Duration
}

// New creates a new Hub. logger may be nil.
func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan service.Event, 256),
		logger:     logger,
		keepAlive:  30 * time.Second,
	}
}

// Run starts the hub's event loop and returns when done is closed
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("SSE client connected", zap.String("client", client.id), zap.Int("total", n))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("SSE client disconnected", zap.String("client", client.id), zap.Int("total", n))

		case ev := <-h.broadcast:
			msg, err := encode(ev)
			if err != nil {
				h.logger.Warn("failed to encode event", zap.String("type", string(ev.Type)), zap.Error(err))
				continue
			}
			h.deliver(ev.Type, msg)

		case <-done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.events)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) deliver(t service.EventType, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.wants(t) {
			continue
		}
		select {
		case client.events <- msg:
		default:
			h.logger.Debug("SSE client is slow, skipping event", zap.String("client", client.id), zap.String("type", string(t)))
		}
	}
}

// encode renders ev as an SSE frame named after its type
func encode(ev service.Event) ([]byte, error) {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, data)), nil
}

// Broadcast queues ev for every interested client without blocking
func (h *Hub) Broadcast(ev service.Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn("broadcast channel full, dropping event", zap.String("type", string(ev.Type)))
	}
}

// Forward broadcasts everything published on bus until ctx is done
func (h *Hub) Forward(ctx context.Context, bus *service.EventBus) {
	events := make(chan service.Event, 100)
	bus.Subscribe(events)
	defer bus.Unsubscribe(events)
	for {
		select {
		case ev := <-events:
			h.Broadcast(ev)
		case <-ctx.Done():
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// parseTypes reads the comma separated ?types= filter
func parseTypes(raw string) map[service.EventType]bool {
	if raw == "" {
		return nil
	}
	types := make(map[service.EventType]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[service.EventType(t)] = true
		}
	}
	return types
}

// ServeHTTP streams events to one client. ?types=a,b restricts the stream.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := &Client{
		id:     uuid.NewString(),
		types:  parseTypes(r.URL.Query().Get("types")),
		events: make(chan []byte, 64),
	}

	select {
	case h.register <- client:
	case <-r.Context().Done():
		return
	}
	defer func() {
		select {
		case h.unregister <- client:
		case <-time.After(time.Second):
			// hub already stopped
		}
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-board/logger"
	"github.com/sheikhrachel/gol-board/metrics"
	"github.com/sheikhrachel/gol-board/scheduler"
)

const broadcastBuffer = 64

// delivery is a message for a single client
type delivery struct {
	client  *Client
	message []byte
}

// Hub maintains the set of active clients and broadcasts snapshots to them.
// Only Run writes to or closes a client's send channel.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger
	metrics    *metrics.Collector
}

// NewHub initializes a new WebSocket Hub.
func NewHub(log *logger.Logger, m *metrics.Collector) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		direct:     make(chan delivery),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     log,
		metrics:    m,
	}
}

// Run handles client connections and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			h.logger.Infof("WebSocket hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Infof("client %s connected", client.id)
		case client := <-h.unregister:
			h.remove(client)
		case d := <-h.direct:
			h.mu.Lock()
			if h.clients[d.client] {
				h.queueLocked(d.client, d.message)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				h.queueLocked(client, message)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) queueLocked(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		h.logger.Warnf("dropping slow client %s", client.id)
		h.metrics.RecordWSError()
		h.removeLocked(client)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for client := range h.clients {
		h.removeLocked(client)
	}
	h.mu.Unlock()
	close(h.done)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.metrics.RecordWSConnection(-1)
	h.logger.Infof("client %s disconnected", client.id)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast serializes a snapshot and queues it for every client.
// It is a scheduler.Observer and never calls back into the scheduler.
func (h *Hub) Broadcast(snap scheduler.Snapshot) {
	payload, err := encodeSnapshot(snap)
	if err != nil {
		h.logger.Errorf("failed to serialize snapshot %d: %v", snap.Version, err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

// join registers a client with the running hub, false once the hub stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// deliver queues message for one registered client, dropped if the client
// already left or the hub stopped.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case h.direct <- delivery{client: client, message: message}:
	case <-h.done:
	}
}

// leave unregisters a client, a no-op once the hub stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func encodeSnapshot(snap scheduler.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snap)
	return payload, errors.Wrapf(err, "[encodeSnapshot] version %d", snap.Version)
}

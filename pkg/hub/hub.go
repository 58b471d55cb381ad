package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub broadcasts messages to its clients. Run owns membership changes; mu
// lets ClientCount and IsRunning read the state from other goroutines.
type Hub struct {
	name   string
	logger *slog.Logger

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]struct{}
	running bool

	// history is how many recent messages a joining client is sent first,
	// so a fresh dashboard shows the current state without waiting for a
	// change. Joins and broadcasts are both handled by Run, so a client
	// never misses or repeats a message around its join.
	history int
	recent  []Message
}

// Option configures a Hub.
type Option func(*Hub)

// WithReplay makes new clients receive the latest broadcast on connect.
func WithReplay() Option {
	return WithHistory(1)
}

// WithHistory makes new clients receive up to n recent broadcasts, oldest
// first, on connect.
func WithHistory(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.history = n
		}
	}
}

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// New creates a stopped hub; start it with Run.
func New(name string, opts ...Option) *Hub {
	h := &Hub{
		name:       name,
		logger:     slog.Default(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("hub", name)
	return h
}

// Run serves the hub until ctx is done, then disconnects every client.
// A hub runs once.
func (h *Hub) Run(ctx context.Context) {
	h.setRunning(true)
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c, "client disconnected")
		case m := <-h.broadcast:
			h.fanOut(m)
		}
	}
}

func (h *Hub) setRunning(v bool) {
	h.mu.Lock()
	h.running = v
	h.mu.Unlock()
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	// The send buffer has room for the whole history.
	for _, m := range h.recent {
		c.send <- m
	}
	h.mu.Unlock()
	h.logger.Debug("client connected", "clients", n)
}

func (h *Hub) remove(c *Client, why string) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug(why, "clients", n)
}

// fanOut queues m for every client. A client whose queue is full is cut off
// rather than allowed to stall the others.
func (h *Hub) fanOut(m Message) {
	var slow []*Client

	h.mu.Lock()
	if h.history > 0 {
		h.recent = append(h.recent, m)
		if len(h.recent) > h.history {
			h.recent = h.recent[len(h.recent)-h.history:]
		}
	}
	for c := range h.clients {
		select {
		case c.send <- m:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.remove(c, "dropped slow client")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.running = false
	h.mu.Unlock()
}

// Broadcast queues msg for all clients. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping message")
	}
}

// BroadcastJSON encodes v and broadcasts it as a text frame.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(Text(data))
	return nil
}

// BroadcastBinary broadcasts data as a binary frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(Binary(data))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRunning reports whether Run is serving.
func (h *Hub) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

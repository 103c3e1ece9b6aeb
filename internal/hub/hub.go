// Package hub fans graph events out to browsers over Server-Sent Events.
//
// Every frame carries an increasing id so a client can spot dropped
// messages. Values implementing Named also get an "event:" line, letting
// browsers subscribe per event type with addEventListener.
package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// keepAliveInterval is how often an idle stream receives a comment line
	keepAliveInterval = 30 * time.Second
	// retryMillis is the reconnect delay suggested to browsers
	retryMillis = 3000

	clientBuffer    = 64
	broadcastBuffer = 256
)

// Named is implemented by events that carry an SSE event name
type Named interface {
	EventName() string
}

type client struct {
	id     string
	frames chan []byte
}

// Hub tracks open streams and delivers broadcast frames to each of them
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	seq     uint64

	register   chan *client
	unregister chan *client
	broadcast  chan interface{}
	done       chan struct{}
	closeOnce  sync.Once

	logger *zap.Logger
}

// New creates a new Hub. Call Run to start delivery.
func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan interface{}, broadcastBuffer),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run is the delivery loop. It returns once Close is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("SSE client connected", zap.String("client", c.id), zap.Int("total", total))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.frames)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("SSE client disconnected", zap.String("client", c.id), zap.Int("total", total))

		case event := <-h.broadcast:
			h.seq++
			msg, err := frame(h.seq, event)
			if err != nil {
				h.logger.Warn("failed to encode event", zap.Uint64("seq", h.seq), zap.Error(err))
				continue
			}
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.frames <- msg:
		default:
			h.logger.Debug("SSE client is slow, dropping frame", zap.String("client", c.id))
		}
	}
}

// frame renders one SSE message
func frame(seq uint64, event interface{}) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("id: ")
	buf.WriteString(strconv.FormatUint(seq, 10))
	buf.WriteByte('\n')
	if named, ok := event.(Named); ok && named.EventName() != "" {
		fmt.Fprintf(&buf, "event: %s\n", named.EventName())
	}
	fmt.Fprintf(&buf, "data: %s\n\n", data)
	return buf.Bytes(), nil
}

// Close stops the delivery loop and ends every open stream
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// Broadcast queues an event for every connected client. Events are
// dropped when the queue is full.
func (h *Hub) Broadcast(event interface{}) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast queue full, dropping event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP streams frames to one client until it disconnects or the hub closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	c := &client{
		id:     uuid.NewString(),
		frames: make(chan []byte, clientBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		return
	}
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	fmt.Fprintf(w, ": connected\nretry: %d\n\n", retryMillis)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.frames:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return

		case <-h.done:
			return
		}
	}
}

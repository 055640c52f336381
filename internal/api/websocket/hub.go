package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/fortuna/hockeygame/internal/pipeline"
)

// Event is one message pushed to pipeline subscribers
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Hub fans pipeline events out to every connected client. It implements
// pipeline.Reporter so it can be handed straight to the pipeline service.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a hub. Call Run to start dispatching.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run dispatches registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and ends Run
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues raw bytes for every client. Messages are dropped when the
// queue is full so pipeline progress never blocks on slow sockets.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		log.Printf("⚠️  websocket broadcast queue full, dropping message")
	}
}

// Publish encodes an event and broadcasts it
func (h *Hub) Publish(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		log.Printf("⚠️  failed to encode %s event: %v", eventType, err)
		return
	}
	h.Broadcast(payload)
}

func (h *Hub) OnJobStart(spec pipeline.JobSpec) {
	h.Publish("job_start", map[string]interface{}{
		"type":         spec.Type,
		"hockeydb_ids": spec.HockeyDBIDs,
		"file":         spec.File,
		"dry_run":      spec.DryRun,
	})
}

func (h *Hub) OnPlayerStart(label string, index, total int) {
	h.Publish("player_start", map[string]interface{}{
		"player": label,
		"index":  index,
		"total":  total,
	})
}

func (h *Hub) OnPlayerProcessed(result pipeline.PlayerResult) {
	h.Publish("player_processed", result)
}

func (h *Hub) OnProgress(message string, current, total int) {
	h.Publish("progress", map[string]interface{}{
		"message": message,
		"current": current,
		"total":   total,
	})
}

func (h *Hub) OnJobComplete(summary *pipeline.Summary) {
	h.Publish("job_complete", summary)
}

func (h *Hub) OnJobError(err error) {
	h.Publish("job_error", map[string]interface{}{"error": err.Error()})
}

var _ pipeline.Reporter = (*Hub)(nil)

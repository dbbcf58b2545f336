package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is what subscribers receive when a conversation changes.
type Event struct {
	ConversationID string      `json:"conversationId"`
	Event          string      `json:"event"`
	Payload        interface{} `json:"payload"`
}

// subscription pairs a client with a conversation topic.
type subscription struct {
	client         *Client
	conversationID string
}

// Hub fans conversation events out to subscribed WebSocket clients so a
// reactive frontend can re-render without polling.
type Hub struct {
	logger *zap.Logger

	mu          sync.RWMutex
	clients     map[*Client]bool
	topics      map[string]map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan Event
}

// NewHub builds an idle hub; call Run to start dispatching.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:      logger,
		clients:     make(map[*Client]bool),
		topics:      make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		broadcast:   make(chan Event, 64),
	}
}

// Run dispatches registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.removeClient(client)
		case sub := <-h.subscribe:
			h.mu.Lock()
			// An evicted client's readPump may still race a subscribe in
			// before its connection closes; its send channel is already
			// closed, so accepting it would panic the next delivery.
			if _, ok := h.clients[sub.client]; ok {
				if h.topics[sub.conversationID] == nil {
					h.topics[sub.conversationID] = make(map[*Client]bool)
				}
				h.topics[sub.conversationID][sub.client] = true
				sub.client.topics[sub.conversationID] = true
			}
			h.mu.Unlock()
		case sub := <-h.unsubscribe:
			h.mu.Lock()
			h.dropSubscription(sub.client, sub.conversationID)
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Broadcast queues an event for every subscriber of the conversation. Safe
// to call from any goroutine; drops the event if the hub is saturated rather
// than blocking the writer.
func (h *Hub) Broadcast(conversationID, event string, payload interface{}) {
	select {
	case h.broadcast <- Event{ConversationID: conversationID, Event: event, Payload: payload}:
	default:
		h.logger.Warn("realtime broadcast buffer full, dropping event",
			zap.String("conversationID", conversationID),
			zap.String("event", event))
	}
}

func (h *Hub) deliver(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal realtime event", zap.Error(err))
		return
	}

	h.mu.RLock()
	subscribers := h.topics[event.ConversationID]
	targets := make([]*Client, 0, len(subscribers))
	for client := range subscribers {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.send <- data:
		default:
			// Slow consumer; evict rather than back up the hub.
			h.removeClient(client)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	for conversationID := range client.topics {
		h.dropSubscription(client, conversationID)
	}
}

// dropSubscription requires h.mu to be held.
func (h *Hub) dropSubscription(client *Client, conversationID string) {
	if subscribers, ok := h.topics[conversationID]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.topics, conversationID)
		}
	}
	delete(client.topics, conversationID)
}

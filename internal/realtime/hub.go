// Package realtime delivers document-change notifications to connected
// clients. Views subscribe to named collections over a WebSocket; mutation
// handlers publish events which fan out through Redis so subscribers on every
// instance see them. Subscriptions are released deterministically when the
// connection closes.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Collections clients may subscribe to.
const (
	CollectionUsers        = "users"
	CollectionProjects     = "projects"
	CollectionCountries    = "settings.countries"
	CollectionDesignations = "settings.designations"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60
)

// KnownCollection reports whether name is a subscribable collection.
func KnownCollection(name string) bool {
	switch name {
	case CollectionUsers, CollectionProjects, CollectionCountries, CollectionDesignations:
		return true
	}
	return false
}

// Publisher publishes a collection event for cross-instance delivery.
type Publisher interface {
	PublishCollectionEvent(collection, event string, payload []byte) error
}

// Subscriber subscribes to a collection channel and invokes handler for
// incoming events. The returned cancel stops the subscription.
type Subscriber interface {
	SubscribeCollection(collection string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains collection -> set of clients and broadcasts change events.
type Hub struct {
	collections map[string]map[string]*Client
	subs        map[string]func() // cancel Redis subscription per collection
	mu          sync.RWMutex
	logger      *zap.Logger
	pub         Publisher
	sub         Subscriber
}

// NewHub creates a subscription hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		collections: make(map[string]map[string]*Client),
		subs:        make(map[string]func()),
		logger:      logger,
		pub:         pub,
		sub:         sub,
	}
}

// Subscribe adds a client to a collection channel. The Redis subscription for
// the collection starts when the first local client arrives.
func (h *Hub) Subscribe(c *Client, collection string) {
	if !KnownCollection(collection) {
		return
	}
	h.mu.Lock()
	if h.collections[collection] == nil {
		h.collections[collection] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeCollection(collection, func(event string, payload []byte) {
				h.broadcast(collection, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[collection] = cancel
			}
		}
	}
	h.collections[collection][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client subscribed", zap.String("client_id", c.ID), zap.String("collection", collection))
}

// Unsubscribe removes a client from a collection channel. The Redis
// subscription is cancelled when the last local client leaves.
func (h *Hub) Unsubscribe(c *Client, collection string) {
	h.mu.Lock()
	h.removeLocked(c, collection)
	h.mu.Unlock()
	h.logger.Debug("client unsubscribed", zap.String("client_id", c.ID), zap.String("collection", collection))
}

// Drop releases every subscription held by a client. Called on disconnect.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	for collection, clients := range h.collections {
		if _, ok := clients[c.ID]; ok {
			h.removeLocked(c, collection)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *Client, collection string) {
	clients, ok := h.collections[collection]
	if !ok {
		return
	}
	delete(clients, c.ID)
	if len(clients) == 0 {
		delete(h.collections, collection)
		if cancel, ok := h.subs[collection]; ok {
			cancel()
			delete(h.subs, collection)
		}
	}
}

// Publish announces a collection change. When Redis is configured the event
// goes through it so the subscriber callback broadcasts exactly once per
// instance; otherwise it is delivered to local clients directly.
func (h *Hub) Publish(collection, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishCollectionEvent(collection, event, data); err == nil {
			return
		}
		h.logger.Warn("redis publish failed, delivering locally", zap.String("collection", collection))
	}
	h.broadcast(collection, event, json.RawMessage(data))
}

// SubscriberCount returns the number of local clients on a collection.
func (h *Hub) SubscriberCount(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.collections[collection])
}

func (h *Hub) broadcast(collection, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Collection: collection, Event: event, Data: data}

	h.mu.RLock()
	clients := h.collections[collection]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

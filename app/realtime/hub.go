// Package realtime is the process-wide broadcast bus for post mutation
// events. One fixed topic, any number of subscribers, no persistence, no
// replay, no acknowledgment.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Topic is the fixed channel name subscribers listen on.
const Topic = "posts"

// Action labels the mutation an event describes.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event is the transient payload broadcast after a successful mutation.
// Post carries the full post snapshot for create/update and the bare post
// id for delete.
type Event struct {
	Channel string      `json:"channel"`
	Action  Action      `json:"action"`
	Post    interface{} `json:"post"`
}

// subscriberBuffer bounds how far a subscriber may lag before deliveries
// to it are dropped.
const subscriberBuffer = 16

// Hub fans every published event out to all current subscribers. Publish
// never blocks: a subscriber with a full buffer misses that delivery while
// everyone else still receives it.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	log  zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[chan Event]struct{}),
		log:  log,
	}
}

// Subscribe registers a new subscriber and returns its event channel.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
}

// Publish broadcasts one event to every subscriber in emission order.
// Fire-and-forget: a full subscriber buffer drops that delivery.
func (h *Hub) Publish(action Action, post interface{}) {
	ev := Event{Channel: Topic, Action: action, Post: post}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.log.Warn().Str("action", string(action)).Msg("dropping event for slow subscriber")
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var hub *Hub

// Init constructs the shared hub. main owns construction; everything else
// reaches the hub through IO.
func Init(log zerolog.Logger) *Hub {
	hub = NewHub(log)
	return hub
}

// IO returns the shared hub. Normal wiring injects Init's return value
// through constructors; IO exists solely as the guarded accessor for code
// outside that wiring, and calling it before Init is a fatal configuration
// error.
func IO() *Hub {
	if hub == nil {
		panic("realtime: hub not initialized")
	}
	return hub
}

package sse

import (
	"path/filepath"
	"sync"

	"github.com/bazarlabs/livefeed/logger"
)

// Subscriber is one connected feed consumer.
type Subscriber struct {
	id       string
	metadata map[string]string
	frames   chan []byte
}

// SubscriberOption configures a Subscriber.
type SubscriberOption func(*Subscriber)

// WithMetadata attaches a metadata key-value pair to the subscriber.
func WithMetadata(key, value string) SubscriberOption {
	return func(s *Subscriber) {
		s.metadata[key] = value
	}
}

// WithUserID sets the user ID metadata.
func WithUserID(userID string) SubscriberOption {
	return WithMetadata("user_id", userID)
}

// NewSubscriber creates a subscriber with a buffered frame channel.
func NewSubscriber(id string, opts ...SubscriberOption) *Subscriber {
	s := &Subscriber{
		id:       id,
		metadata: make(map[string]string),
		frames:   make(chan []byte, 256),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the subscriber's identifier, the string broadcast patterns
// match against.
func (s *Subscriber) ID() string { return s.id }

// UserID returns the subscriber's user ID metadata.
func (s *Subscriber) UserID() string { return s.metadata["user_id"] }

// Frames returns the channel of framed events for this subscriber.
func (s *Subscriber) Frames() <-chan []byte { return s.frames }

// send queues a frame without blocking. A full channel means the consumer
// is too slow; the frame is dropped rather than stalling the hub.
func (s *Subscriber) send(frame []byte) bool {
	select {
	case s.frames <- frame:
		return true
	default:
		logger.Warn("feed subscriber too slow, dropping frame", map[string]interface{}{
			"subscriber_id": s.id,
		})
		return false
	}
}

// close closes the frame channel. Called only from the hub goroutine.
func (s *Subscriber) close() {
	close(s.frames)
}

// Hub tracks feed subscribers and fans broadcasts out to them.
type Hub struct {
	subscribers map[string]*Subscriber
	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcast   chan *Message
	done        chan struct{}
	stopped     bool
	mu          sync.RWMutex
}

// Message is one queued broadcast.
type Message struct {
	// Pattern selects subscribers by glob match against their IDs.
	Pattern string
	// Frame is the wire-framed event.
	Frame []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan *Message, 256),
		done:        make(chan struct{}),
	}
}

// Run is the hub's main loop. It blocks until Stop is called and should be
// run in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub.id] = sub
			total := len(h.subscribers)
			h.mu.Unlock()
			logger.Debug("feed subscriber registered", map[string]interface{}{
				"subscriber_id": sub.id,
				"total":         total,
			})

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub.id]; ok {
				delete(h.subscribers, sub.id)
				sub.close()
			}
			total := len(h.subscribers)
			h.mu.Unlock()
			logger.Debug("feed subscriber unregistered", map[string]interface{}{
				"subscriber_id": sub.id,
				"total":         total,
			})

		case msg := <-h.broadcast:
			h.fanOut(msg.Pattern, msg.Frame)
		}
	}
}

// Stop shuts the hub down and disconnects all subscribers. Safe to call
// multiple times.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		sub.close()
		delete(h.subscribers, id)
	}
}

// Register adds a subscriber to the hub.
func (h *Hub) Register(sub *Subscriber) {
	h.register <- sub
}

// Unregister removes a subscriber from the hub and closes its channel.
func (h *Hub) Unregister(sub *Subscriber) {
	h.unregister <- sub
}

// Broadcast frames the event and queues it for all subscribers matching the
// pattern. Returns an error only if the payload cannot be marshaled.
func (h *Hub) Broadcast(pattern string, event Event) error {
	frame, err := event.frame()
	if err != nil {
		return err
	}
	h.broadcast <- &Message{Pattern: pattern, Frame: frame}
	return nil
}

// fanOut delivers a frame to matching subscribers. Runs on the hub goroutine.
func (h *Hub) fanOut(pattern string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for id, sub := range h.subscribers {
		matched, err := filepath.Match(pattern, id)
		if err != nil {
			logger.Error("bad broadcast pattern", map[string]interface{}{
				"pattern": pattern,
				"error":   err.Error(),
			})
			return
		}
		if matched && sub.send(frame) {
			sent++
		}
	}

	logger.Debug("feed broadcast", map[string]interface{}{
		"pattern": pattern,
		"sent":    sent,
		"total":   len(h.subscribers),
	})
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// SubscriberIDs returns the IDs of all connected subscribers.
func (h *Hub) SubscriberIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	return ids
}

var _ Broadcaster = (*Hub)(nil)

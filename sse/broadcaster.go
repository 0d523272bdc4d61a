package sse

// Broadcaster publishes feed events to subscribers selected by ID pattern.
// Handlers depend on this abstraction rather than on the concrete Hub.
type Broadcaster interface {
	// Broadcast sends the event to all subscribers whose ID matches the
	// glob pattern ("user:*", "listing:42", "*").
	Broadcast(pattern string, event Event) error
}

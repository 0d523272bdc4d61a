package sse

import (
	"encoding/json"
	"fmt"
)

// Marketplace event vocabulary. The feed is the only contract between
// producer and subscribers; new types are additive.
const (
	// EventListingCreated is sent when a listing is published.
	EventListingCreated = "listing_created"

	// EventListingUpdated is sent when a listing's fields change.
	EventListingUpdated = "listing_updated"

	// EventListingSold is sent when a listing is marked sold.
	EventListingSold = "listing_sold"

	// EventPriceUpdate is sent when a listing's price changes.
	EventPriceUpdate = "price_update"

	// EventMessageReceived is sent when a chat message arrives for a user.
	EventMessageReceived = "message_received"

	// EventPing is a liveness event subscribers may ignore.
	EventPing = "ping"
)

// Event is one feed record before framing.
type Event struct {
	// Type is the event-type name written on the "event:" line.
	Type string
	// Payload is the JSON document written on the "data:" line. It must
	// marshal to a single line.
	Payload any
}

// frame renders the event in wire framing: event line, data line, blank
// terminator.
func (e Event) frame() ([]byte, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("sse: marshal %s payload: %w", e.Type, err)
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, data)), nil
}

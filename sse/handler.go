package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bazarlabs/livefeed/logger"
)

// keepAliveInterval must stay below typical proxy idle timeouts (60s).
const keepAliveInterval = 30 * time.Second

// ServeFeed streams hub events to one subscriber over an HTTP response.
// It blocks until the client disconnects or the hub shuts down; call it
// from an HTTP handler after authentication.
func ServeFeed(hub *Hub, w http.ResponseWriter, r *http.Request, subscriberID string, opts ...SubscriberOption) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming unsupported by response writer", map[string]interface{}{
			"subscriber_id": subscriberID,
		})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// The connection is long-lived; the server's WriteTimeout must not
	// apply to it.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Warn("could not clear write deadline", map[string]interface{}{
			"subscriber_id": subscriberID,
			"error":         err.Error(),
		})
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := NewSubscriber(subscriberID, opts...)
	hub.Register(sub)
	defer hub.Unregister(sub)

	// Opening ping so the consumer flips to connected-and-receiving
	// immediately instead of waiting for the first real event.
	opening, err := Event{Type: EventPing, Payload: map[string]string{"subscriber_id": subscriberID}}.frame()
	if err == nil {
		_, _ = w.Write(opening)
		flusher.Flush()
	}

	logger.Debug("feed subscriber connected", map[string]interface{}{
		"subscriber_id": subscriberID,
		"remote_addr":   r.RemoteAddr,
	})

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("feed subscriber disconnected", map[string]interface{}{
				"subscriber_id": subscriberID,
			})
			return

		case frame, ok := <-sub.Frames():
			if !ok {
				// Hub shut down or subscriber was unregistered elsewhere.
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()

		case <-keepAlive.C:
			// Comment line; consumers ignore it, proxies see traffic.
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

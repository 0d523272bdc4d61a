package sse

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServeFeedStreamsFrames(t *testing.T) {
	h := startHub(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeFeed(h, w, r, "user:alice", WithUserID("alice"))
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("got content type %q, want text/event-stream", got)
	}

	reader := bufio.NewReader(resp.Body)
	readLine := func() string {
		t.Helper()
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read frame line: %v", err)
		}
		return line
	}

	// Opening ping arrives before any broadcast.
	if got := readLine(); got != "event: ping\n" {
		t.Fatalf("got opening line %q, want ping event line", got)
	}
	readLine() // data line
	readLine() // terminator

	// Wait for registration before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := h.Broadcast("user:*", Event{Type: EventListingSold, Payload: map[string]int{"id": 42}}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	if got := readLine(); got != "event: listing_sold\n" {
		t.Errorf("got event line %q, want listing_sold", got)
	}
	if got := readLine(); got != "data: {\"id\":42}\n" {
		t.Errorf("got data line %q, want id payload", got)
	}
	if got := readLine(); got != "\n" {
		t.Errorf("got terminator %q, want blank line", got)
	}
}

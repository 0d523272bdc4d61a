package sse

import (
	"strings"
	"testing"
	"time"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func recvFrame(t *testing.T, sub *Subscriber) string {
	t.Helper()
	select {
	case frame := <-sub.Frames():
		return string(frame)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return ""
	}
}

func TestBroadcastReachesMatchingSubscribers(t *testing.T) {
	h := startHub(t)

	alice := NewSubscriber("user:alice", WithUserID("alice"))
	bob := NewSubscriber("user:bob", WithUserID("bob"))
	listing := NewSubscriber("listing:42")
	h.Register(alice)
	h.Register(bob)
	h.Register(listing)

	if err := h.Broadcast("user:*", Event{Type: EventMessageReceived, Payload: map[string]string{"from": "bob"}}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	for _, sub := range []*Subscriber{alice, bob} {
		frame := recvFrame(t, sub)
		if !strings.HasPrefix(frame, "event: message_received\n") {
			t.Errorf("%s: got frame %q, want message_received event line", sub.ID(), frame)
		}
		if !strings.HasSuffix(frame, "\n\n") {
			t.Errorf("%s: frame missing blank-line terminator: %q", sub.ID(), frame)
		}
	}

	select {
	case frame := <-listing.Frames():
		t.Errorf("listing subscriber received user broadcast: %q", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastExactPattern(t *testing.T) {
	h := startHub(t)

	a := NewSubscriber("listing:42")
	b := NewSubscriber("listing:43")
	h.Register(a)
	h.Register(b)

	if err := h.Broadcast("listing:42", Event{Type: EventPriceUpdate, Payload: map[string]int{"price": 9}}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	frame := recvFrame(t, a)
	if !strings.Contains(frame, `data: {"price":9}`) {
		t.Errorf("got frame %q, want price payload", frame)
	}
	select {
	case f := <-b.Frames():
		t.Errorf("listing:43 received listing:42 broadcast: %q", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastRejectsUnmarshalablePayload(t *testing.T) {
	h := startHub(t)
	if err := h.Broadcast("*", Event{Type: EventPing, Payload: make(chan int)}); err == nil {
		t.Error("expected marshal error for channel payload")
	}
}

func TestUnregisterClosesFrames(t *testing.T) {
	h := startHub(t)

	sub := NewSubscriber("user:alice")
	h.Register(sub)
	h.Unregister(sub)

	select {
	case _, ok := <-sub.Frames():
		if ok {
			t.Error("expected closed channel, got frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestSlowSubscriberDropsFramesWithoutBlocking(t *testing.T) {
	h := startHub(t)

	sub := NewSubscriber("user:slow")
	h.Register(sub)

	// Overfill the 256-slot buffer; the hub must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			_ = h.Broadcast("user:slow", Event{Type: EventPing, Payload: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("hub blocked on a slow subscriber")
	}
}

func TestStopClosesAllSubscribers(t *testing.T) {
	h := NewHub()
	go h.Run()

	sub := NewSubscriber("user:alice")
	h.Register(sub)

	h.Stop()
	h.Stop() // idempotent

	select {
	case _, ok := <-sub.Frames():
		if ok {
			t.Error("expected closed channel after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shutdown close")
	}
}

func TestSubscriberCount(t *testing.T) {
	h := startHub(t)

	h.Register(NewSubscriber("a"))
	h.Register(NewSubscriber("b"))

	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount() != 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := h.SubscriberCount(); got != 2 {
		t.Errorf("got %d subscribers, want 2", got)
	}
	if got := len(h.SubscriberIDs()); got != 2 {
		t.Errorf("got %d subscriber IDs, want 2", got)
	}
}

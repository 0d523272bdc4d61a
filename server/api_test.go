package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bazarlabs/livefeed/auth/jwt"
	"github.com/bazarlabs/livefeed/auth/password"
	"github.com/bazarlabs/livefeed/logger"
	"github.com/bazarlabs/livefeed/sse"
	"github.com/bazarlabs/livefeed/stream"
)

type testEnv struct {
	srv *httptest.Server
	hub *sse.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := password.NewBcryptHasher(password.WithCost(4))
	aliceHash, err := hasher.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}
	adminHash, err := hasher.Hash("admin-password-1")
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}

	tokens, err := jwt.NewService(jwt.Config{Secret: "test-secret-please-rotate", Issuer: "livefeed"})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	hub := sse.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	users := map[string]UserAccount{
		"alice": {UserID: "u-alice", PasswordHash: aliceHash, Role: "user"},
		"root":  {UserID: "u-root", PasswordHash: adminHash, Role: "admin"},
	}

	engine := gin.New()
	api := NewAPI(hub, tokens, hasher, users, logger.NewDefault("server-test"))
	api.Register(engine)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, hub: hub}
}

func (e *testEnv) login(t *testing.T, username, pass string) (string, int) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": pass})
	resp, err := http.Post(e.srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out.TokenType != "Bearer" || out.AccessToken == "" || out.ExpiresIn <= 0 {
		t.Fatalf("malformed login response: %+v", out)
	}
	return out.AccessToken, resp.StatusCode
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	if _, status := env.login(t, "alice", "correct-horse-battery"); status != http.StatusOK {
		t.Errorf("got status %d, want 200", status)
	}
	if _, status := env.login(t, "alice", "wrong-password"); status != http.StatusUnauthorized {
		t.Errorf("bad password: got status %d, want 401", status)
	}
	if _, status := env.login(t, "nobody", "whatever-password"); status != http.StatusUnauthorized {
		t.Errorf("unknown user: got status %d, want 401", status)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.srv.URL+"/api/auth/login", "application/json",
		bytes.NewReader([]byte(`{"username":"alice"}`)))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", resp.StatusCode)
	}
}

func TestEventsRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/api/events")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("got status %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/events", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage token: got status %d, want 401", resp.StatusCode)
	}
}

func TestAdminBroadcastRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	userToken, _ := env.login(t, "alice", "correct-horse-battery")

	body := []byte(`{"event":"ping","payload":{}}`)
	req, _ := http.NewRequest(http.MethodPost, env.srv.URL+"/api/admin/events", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+userToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("got status %d, want 403", resp.StatusCode)
	}
}

// End to end: login, subscribe with a stream session, publish through the
// admin endpoint, receive the record through the session's handler.
func TestFeedEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	userToken, _ := env.login(t, "alice", "correct-horse-battery")
	adminToken, _ := env.login(t, "root", "admin-password-1")

	got := make(chan string, 4)
	session := stream.Start(stream.Config{
		Endpoint:   env.srv.URL + "/api/events",
		Token:      userToken,
		Enabled:    true,
		RetryDelay: 50 * time.Millisecond,
		Logger:     logger.NewDefault("server-test"),
		Handlers: map[string]stream.Handler{
			sse.EventPriceUpdate: func(event string, data json.RawMessage) {
				got <- string(data)
			},
		},
	})
	defer session.Stop()

	// The subscriber must be registered before the broadcast goes out.
	deadline := time.Now().Add(2 * time.Second)
	for env.hub.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if env.hub.SubscriberCount() == 0 {
		t.Fatal("stream session never subscribed")
	}

	body := []byte(`{"event":"price_update","pattern":"user:*","payload":{"listing_id":42,"price":1250}}`)
	req, _ := http.NewRequest(http.MethodPost, env.srv.URL+"/api/admin/events", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("broadcast request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("got status %d, want 202", resp.StatusCode)
	}

	select {
	case payload := <-got:
		want := `{"listing_id":42,"price":1250}`
		if payload != want {
			t.Errorf("got payload %q, want %q", payload, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the broadcast record")
	}

	if !session.Connected() {
		t.Error("session should still be connected after the record")
	}
}

package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bazarlabs/livefeed/httpclient"
	"github.com/bazarlabs/livefeed/logger"
)

// State identifies where a session is in its connect/read/retry cycle.
type State int32

const (
	// StateIdle means the session never started (disabled or no token).
	StateIdle State = iota
	// StateConnecting means a connection attempt is in flight.
	StateConnecting
	// StateStreaming means a response body is being read.
	StateStreaming
	// StateRetryPending means the session is waiting out the retry delay.
	StateRetryPending
	// StateStopped means the session was torn down. Terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateRetryPending:
		return "retry_pending"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session is one subscription to an event-stream endpoint. Sessions are
// independent; nothing is shared between them.
type Session struct {
	cfg Config
	log *logger.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	state    atomic.Int32
	stopOnce sync.Once
}

// Start begins a feed session. If the config is disabled or carries no
// token, the returned session is inert: no request is issued, Connected
// reports false, and Stop is a no-op.
func Start(cfg Config) *Session {
	cfg.ApplyDefaults()

	s := &Session{
		cfg:  cfg,
		log:  cfg.Logger,
		done: make(chan struct{}),
	}

	if !cfg.Enabled || cfg.Token == "" {
		s.state.Store(int32(StateIdle))
		close(s.done)
		return s
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state.Store(int32(StateConnecting))
	go s.run(ctx)
	return s
}

// Connected reports whether a response body is currently being read.
func (s *Session) Connected() bool {
	return s.State() == StateStreaming
}

// State returns the session's current state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Stop tears the session down: the in-flight request is aborted, any
// pending retry timer is cancelled, and Connected flips false. Stop is
// idempotent and returns after the session has fully exited.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		<-s.done
		s.state.Store(int32(StateStopped))
	})
}

// run is the session's single goroutine: connect, read until failure,
// wait out the retry delay, repeat. One connection at a time, forever,
// until the session context is cancelled.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	for {
		s.state.Store(int32(StateConnecting))
		err := s.connectAndRead(ctx)
		s.state.Store(int32(StateRetryPending))

		// Teardown cancellation must not schedule a retry.
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			s.log.Warn("feed disconnected, will retry", logger.Fields(
				logger.FieldEndpoint, s.cfg.Endpoint,
				"error", err.Error(),
				"retry_in", s.cfg.RetryDelay.String(),
			))
		} else {
			s.log.Debug("feed ended, will retry", logger.Fields(
				logger.FieldEndpoint, s.cfg.Endpoint,
			))
		}

		timer := time.NewTimer(s.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// connectAndRead performs one connection attempt and reads the body until
// it fails or ends. Connected is true exactly while the body is read.
func (s *Session) connectAndRead(ctx context.Context) error {
	resp, err := s.cfg.Client.DoStream(ctx, httpclient.Request{
		Method:  http.MethodGet,
		Path:    s.cfg.Endpoint,
		Headers: map[string]string{"Accept": "text/event-stream"},
		Auth:    httpclient.BearerAuth(s.cfg.Token),
	})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Close() }()

	if classErr := httpclient.ClassifyStatusCode(resp.StatusCode, nil); classErr != nil {
		return classErr
	}
	if resp.Body == nil {
		return errors.New("stream: response has no body")
	}

	s.state.Store(int32(StateStreaming))
	s.log.Debug("feed connected", logger.Fields(logger.FieldEndpoint, s.cfg.Endpoint))

	var p parser
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			p.Feed(buf[:n], s.dispatch)
		}
		if err != nil {
			// EOF still re-enters the retry path; the caller decides only
			// whether to log it as an error.
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// dispatch delivers one framed record: named handler first, wildcard
// second, both synchronously on the read goroutine so record order holds.
func (s *Session) dispatch(rec record) {
	if !json.Valid([]byte(rec.Data)) {
		// A malformed payload is a producer bug in one record, not a
		// connection failure. Drop it and keep reading.
		s.log.Debug("dropping record with invalid payload", logger.Fields(
			logger.FieldEvent, rec.Event,
		))
		return
	}

	payload := json.RawMessage(rec.Data)
	if h, ok := s.cfg.Handlers[rec.Event]; ok {
		h(rec.Event, payload)
	}
	if s.cfg.Wildcard != nil {
		s.cfg.Wildcard(rec.Event, payload)
	}
}

// Package stream maintains a best-effort, continuously reconnecting
// subscription to an authenticated server-sent event feed.
//
// A Session connects with a bearer token, frames the response body into
// event records, and dispatches each record to the handler registered for
// its event type plus an optional wildcard handler. Any connect or read
// failure flips Connected to false and schedules one reconnect after a
// fixed delay, indefinitely. Stop tears the session down on every path:
// in-flight request, pending retry timer, connected flag.
//
// Failures never surface to the caller. The only observable signal is
// Connected; a UI built on top should render "reconnecting" rather than
// handle errors per subscription.
//
// The framing is a deliberate re-implementation of the event-stream wire
// format, not an EventSource-style client: browser-native SSE clients
// cannot attach an Authorization header, so the session issues a plain
// streaming GET and parses lines itself.
package stream

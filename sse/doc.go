// Package sse is the producer side of the live feed: a hub of connected
// subscribers and an HTTP handler that streams marketplace events to them
// in event-stream framing.
//
// Each frame carries an explicit event type line followed by a single-line
// JSON data line, the exact dialect the stream package consumes. Subscribers
// are addressed by glob patterns over their client IDs ("user:*",
// "listing:42"), so a broadcast can target one user, one topic, or everyone.
package sse

// Package httpclient provides a configurable HTTP client with built-in
// authentication, retry, and circuit breaking.
//
// Two execution paths are offered:
//
//   - Do buffers the full response and participates in retry and circuit
//     breaking.
//   - DoStream returns the response body as a live stream with no client
//     timeout; the caller owns cancellation via context and must Close
//     the returned StreamResponse.
//
// The stream package builds its event-stream sessions on DoStream.
package httpclient

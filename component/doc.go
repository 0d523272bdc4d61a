// Package component defines the lifecycle contract for livefeed
// infrastructure pieces (feed hub, HTTP server, stream sessions) and a
// registry that starts them in order and stops them in reverse order.
package component

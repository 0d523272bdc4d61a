// Package resilience provides patterns for fault-tolerant outbound calls:
// retry with exponential backoff and a circuit breaker. The httpclient
// package wires both around buffered requests.
//
// Note that the stream package does NOT use Retry for its reconnect loop:
// a live feed session reconnects forever on a fixed delay, which is a
// session-owned state machine rather than a bounded retry policy.
package resilience

// Package middleware provides the Gin middleware stack for the feed server:
// panic recovery, request IDs, CORS, request logging, and bearer token
// authentication.
package middleware

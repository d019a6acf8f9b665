// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request ids, request logging, tracing, CORS,
// rate limiting, request timeouts and panic recovery.
package middleware

// Package errs defines the error types the API hands back to clients.
//
// Every failure that reaches the HTTP boundary is an *HTTPError so the
// client always receives the same JSON shape, with a `message` field and,
// for validation failures, per-field errors.
package errs

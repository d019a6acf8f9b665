// Package handler is the HTTP layer, the first entry point for
// business logic after the router.
//
// It binds and validates requests using the validation package,
// calls the service layer and writes responses. Errors are returned
// to the global error handler rather than written here.
package handler

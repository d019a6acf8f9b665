// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database driver and
// converts them into user-friendly API errors (e.g., converting
// a "not null violation" into a "Bad Request" error) while keeping
// the raw driver error available for logging.
package sqlerr

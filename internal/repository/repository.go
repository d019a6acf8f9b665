// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
// Repositories never reach for a global pool: the pool is handed to
// them when they are constructed.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DBTX is the subset of *pgxpool.Pool the repositories use. Each call
// acquires a pooled connection for one statement and releases it when the
// statement's rows are closed or scanned.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

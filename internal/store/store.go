// Package store provides the persistence contract the import pipeline
// commits through, and a SQLite implementation of it. The contract is
// narrow (insert, upsert, select, delete with equality filters) and
// guarantees nothing beyond single-statement atomicity; multi-step commit
// failures are handled by compensating deletes in the caller, not
// transactions.
package store

import "context"

// Record is one row, keyed by column name.
type Record map[string]any

// Filter selects rows by column equality. An empty filter matches all
// rows of the table.
type Filter map[string]any

// Store is the persistence contract consumed by the commit step.
type Store interface {
	// Insert writes the records and returns them as written.
	Insert(ctx context.Context, table string, records []Record) ([]Record, error)

	// Upsert writes the records, updating existing rows that collide on
	// conflictKey, and returns the rows as stored (existing row identity
	// is preserved on conflict).
	Upsert(ctx context.Context, table string, records []Record, conflictKey string) ([]Record, error)

	// Select returns the rows matching the filter.
	Select(ctx context.Context, table string, filter Filter) ([]Record, error)

	// Delete removes the rows matching the filter.
	Delete(ctx context.Context, table string, filter Filter) error
}

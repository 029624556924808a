// Package store provides the persistence backends for transaction records
// and processing logs. Records are append-only: the contract supports
// atomic bulk insertion and bulk deletion, never updates or per-record
// deletes. Both backends make an appended batch visible atomically, so
// readers never observe a partially-written batch.
package store

import (
	"context"

	"shoppulse/pkg/contracts/domain"
)

// RecordStore is the persistence contract the ingestion core relies on.
type RecordStore interface {
	// Append atomically inserts the batch; it fails wholesale on any
	// storage-layer error, leaving the store unchanged.
	Append(ctx context.Context, records []domain.TransactionRecord) error
	// All returns every previously appended record.
	All(ctx context.Context) ([]domain.TransactionRecord, error)
	// Query returns the records matching the predicate.
	Query(ctx context.Context, pred func(domain.TransactionRecord) bool) ([]domain.TransactionRecord, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
	// Clear deletes every record.
	Clear(ctx context.Context) error
}

// LogStore persists processing log entries. Entries are created with
// status "processing" and finalized exactly once; finalized entries are
// immutable.
type LogStore interface {
	// Append stores a new entry with status "processing".
	Append(ctx context.Context, entry domain.ProcessingLog) error
	// Finalize replaces the stored entry with its terminal form. It fails
	// if the entry is unknown or already finalized.
	Finalize(ctx context.Context, entry domain.ProcessingLog) error
	// List returns up to limit entries, most recent first. A non-positive
	// limit returns all entries.
	List(ctx context.Context, limit int) ([]domain.ProcessingLog, error)
	// Clear deletes the whole log history.
	Clear(ctx context.Context) error
}

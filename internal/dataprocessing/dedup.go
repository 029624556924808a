package dataprocessing

import (
	"shoppulse/pkg/contracts/domain"
)

// DedupFilter decides accept/reject for normalized records against the
// keys already committed to the store and the keys accepted earlier in the
// same batch. Accepting a record adds its key to the batch-local set
// immediately, so a later row with the same key is rejected even though
// the store check alone would pass for both.
type DedupFilter struct {
	mode     domain.DedupKeyMode
	existing map[string]struct{}
	batch    map[string]struct{}
}

// NewDedupFilter creates a filter over the store's key set as of batch
// start. The existing set is not mutated.
func NewDedupFilter(mode domain.DedupKeyMode, existing map[string]struct{}) *DedupFilter {
	if existing == nil {
		existing = map[string]struct{}{}
	}
	return &DedupFilter{
		mode:     mode,
		existing: existing,
		batch:    make(map[string]struct{}),
	}
}

// Admit accepts or rejects the record. On acceptance the key joins the
// batch-local set and Admit returns true.
func (f *DedupFilter) Admit(rec domain.TransactionRecord) bool {
	key := rec.DedupKey(f.mode)
	if _, ok := f.existing[key]; ok {
		return false
	}
	if _, ok := f.batch[key]; ok {
		return false
	}
	f.batch[key] = struct{}{}
	return true
}

// DisplayKey renders the record's deduplication key for error messages.
func (f *DedupFilter) DisplayKey(rec domain.TransactionRecord) string {
	if f.mode == domain.DedupKeyOrder {
		return rec.OrderID
	}
	return rec.OrderID + "/" + rec.ProductID
}

// StoreKeys computes the deduplication key set of already-committed
// records under the given mode.
func StoreKeys(records []domain.TransactionRecord, mode domain.DedupKeyMode) map[string]struct{} {
	keys := make(map[string]struct{}, len(records))
	for _, rec := range records {
		keys[rec.DedupKey(mode)] = struct{}{}
	}
	return keys
}

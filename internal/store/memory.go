package store

import (
	"context"
	"sort"
	"sync"

	apperrors "shoppulse/internal/errors"
	"shoppulse/pkg/contracts/domain"
)

// MemoryRecordStore is an in-memory RecordStore guarded by a RWMutex.
// Appends take the write lock, so a reader sees either none or all of a
// batch.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records []domain.TransactionRecord
}

// NewMemoryRecordStore creates an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

// Append implements RecordStore.
func (s *MemoryRecordStore) Append(ctx context.Context, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

// All implements RecordStore.
func (s *MemoryRecordStore) All(ctx context.Context) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TransactionRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Query implements RecordStore.
func (s *MemoryRecordStore) Query(ctx context.Context, pred func(domain.TransactionRecord) bool) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TransactionRecord
	for _, rec := range s.records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Count implements RecordStore.
func (s *MemoryRecordStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Clear implements RecordStore.
func (s *MemoryRecordStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// MemoryLogStore is an in-memory LogStore guarded by a RWMutex.
type MemoryLogStore struct {
	mu      sync.RWMutex
	entries []domain.ProcessingLog
	byID    map[string]int
}

// NewMemoryLogStore creates an empty in-memory log store.
func NewMemoryLogStore() *MemoryLogStore {
	return &MemoryLogStore{byID: make(map[string]int)}
}

// Append implements LogStore.
func (s *MemoryLogStore) Append(ctx context.Context, entry domain.ProcessingLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[entry.LogID]; ok {
		return apperrors.NewStorageError("log entry already exists", nil).WithContext("log_id", entry.LogID)
	}
	s.byID[entry.LogID] = len(s.entries)
	s.entries = append(s.entries, entry)
	return nil
}

// Finalize implements LogStore.
func (s *MemoryLogStore) Finalize(ctx context.Context, entry domain.ProcessingLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[entry.LogID]
	if !ok {
		return apperrors.NewNotFoundError("log entry not found", nil).WithContext("log_id", entry.LogID)
	}
	if s.entries[idx].Finalized() {
		return apperrors.NewStorageError("log entry already finalized", nil).WithContext("log_id", entry.LogID)
	}
	if !entry.Finalized() {
		return apperrors.NewStorageError("cannot finalize to a non-terminal status", nil).
			WithContext("status", string(entry.Status))
	}
	s.entries[idx] = entry
	return nil
}

// List implements LogStore.
func (s *MemoryLogStore) List(ctx context.Context, limit int) ([]domain.ProcessingLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProcessingLog, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Clear implements LogStore.
func (s *MemoryLogStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = make(map[string]int)
	return nil
}

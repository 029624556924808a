package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	apperrors "shoppulse/internal/errors"
	"shoppulse/pkg/contracts/domain"
)

// recordSnapshot is the on-disk format of the file record store.
type recordSnapshot struct {
	Format    string                     `json:"format"`
	SavedAt   time.Time                  `json:"saved_at"`
	Count     int                        `json:"count"`
	Records   []domain.TransactionRecord `json:"records"`
}

// logSnapshot is the on-disk format of the file log store.
type logSnapshot struct {
	Format  string                 `json:"format"`
	SavedAt time.Time              `json:"saved_at"`
	Count   int                    `json:"count"`
	Entries []domain.ProcessingLog `json:"entries"`
}

// FileRecordStore is a RecordStore persisted as a JSON snapshot file. The
// snapshot is rewritten to a temp file and renamed into place before the
// in-memory state changes, so a failed write leaves the store unchanged.
type FileRecordStore struct {
	mu      sync.RWMutex
	path    string
	records []domain.TransactionRecord
}

// NewFileRecordStore opens or creates the snapshot at path and loads any
// previously persisted records.
func NewFileRecordStore(path string) (*FileRecordStore, error) {
	s := &FileRecordStore{path: path}
	if err := loadSnapshot(path, func(data []byte) error {
		var snap recordSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return err
		}
		s.records = snap.Records
		return nil
	}); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to load record snapshot %s", path), err)
	}
	return s, nil
}

// Append implements RecordStore.
func (s *FileRecordStore) Append(ctx context.Context, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.TransactionRecord, 0, len(s.records)+len(records))
	next = append(next, s.records...)
	next = append(next, records...)

	if err := writeSnapshot(s.path, recordSnapshot{
		Format:  "transaction_records_v1",
		SavedAt: time.Now().UTC(),
		Count:   len(next),
		Records: next,
	}); err != nil {
		return apperrors.NewStorageError("failed to persist record snapshot", err)
	}
	s.records = next
	return nil
}

// All implements RecordStore.
func (s *FileRecordStore) All(ctx context.Context) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TransactionRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Query implements RecordStore.
func (s *FileRecordStore) Query(ctx context.Context, pred func(domain.TransactionRecord) bool) ([]domain.TransactionRecord, error) {
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
func (s *FileRecordStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Clear implements RecordStore.
func (s *FileRecordStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeSnapshot(s.path, recordSnapshot{
		Format:  "transaction_records_v1",
		SavedAt: time.Now().UTC(),
		Records: []domain.TransactionRecord{},
	}); err != nil {
		return apperrors.NewStorageError("failed to persist record snapshot", err)
	}
	s.records = nil
	return nil
}

// FileLogStore is a LogStore persisted as a JSON snapshot file.
type FileLogStore struct {
	mu      sync.RWMutex
	path    string
	entries []domain.ProcessingLog
	byID    map[string]int
}

// NewFileLogStore opens or creates the snapshot at path and loads any
// previously persisted log entries.
func NewFileLogStore(path string) (*FileLogStore, error) {
	s := &FileLogStore{path: path, byID: make(map[string]int)}
	if err := loadSnapshot(path, func(data []byte) error {
		var snap logSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return err
		}
		s.entries = snap.Entries
		for i, entry := range s.entries {
			s.byID[entry.LogID] = i
		}
		return nil
	}); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to load log snapshot %s", path), err)
	}
	return s, nil
}

// Append implements LogStore.
func (s *FileLogStore) Append(ctx context.Context, entry domain.ProcessingLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[entry.LogID]; ok {
		return apperrors.NewStorageError("log entry already exists", nil).WithContext("log_id", entry.LogID)
	}
	next := append(append([]domain.ProcessingLog{}, s.entries...), entry)
	if err := s.persist(next); err != nil {
		return err
	}
	s.byID[entry.LogID] = len(s.entries)
	s.entries = next
	return nil
}

// Finalize implements LogStore.
func (s *FileLogStore) Finalize(ctx context.Context, entry domain.ProcessingLog) error {
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
	next := make([]domain.ProcessingLog, len(s.entries))
	copy(next, s.entries)
	next[idx] = entry
	if err := s.persist(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

// List implements LogStore.
func (s *FileLogStore) List(ctx context.Context, limit int) ([]domain.ProcessingLog, error) {
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
func (s *FileLogStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist([]domain.ProcessingLog{}); err != nil {
		return err
	}
	s.entries = nil
	s.byID = make(map[string]int)
	return nil
}

func (s *FileLogStore) persist(entries []domain.ProcessingLog) error {
	if err := writeSnapshot(s.path, logSnapshot{
		Format:  "processing_logs_v1",
		SavedAt: time.Now().UTC(),
		Count:   len(entries),
		Entries: entries,
	}); err != nil {
		return apperrors.NewStorageError("failed to persist log snapshot", err)
	}
	return nil
}

// loadSnapshot reads the snapshot file if it exists; a missing file means
// an empty store.
func loadSnapshot(path string, decode func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return decode(data)
}

// writeSnapshot writes the snapshot to a temp file in the same directory
// and renames it into place.
func writeSnapshot(path string, snapshot interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

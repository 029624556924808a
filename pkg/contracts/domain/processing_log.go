package domain

import (
	"time"
)

// LogStatus defines the lifecycle state of a processing log entry
type LogStatus string

const (
	LogStatusProcessing LogStatus = "processing"
	LogStatusCompleted  LogStatus = "completed"
	LogStatusFailed     LogStatus = "failed"
)

// ProcessingLog represents the auditable outcome of one ingestion batch.
// An entry is created with status "processing" when the batch starts and is
// finalized exactly once to "completed" or "failed". A batch is "failed" only
// when it fails catastrophically before any per-row accounting (unreadable
// input) or when the storage append fails; partial row failures still yield
// "completed". Finalized entries are immutable.
type ProcessingLog struct {
	LogID            string    `json:"log_id" validate:"required,uuid"`
	Filename         string    `json:"filename" validate:"required"`
	Status           LogStatus `json:"status"`
	RecordsProcessed int       `json:"records_processed"`
	RecordsFailed    int       `json:"records_failed"`
	Errors           []string  `json:"errors"`
	Timestamp        time.Time `json:"timestamp"`
	ProcessingTime   float64   `json:"processing_time"`
}

// Finalized reports whether the entry has reached a terminal status.
func (l ProcessingLog) Finalized() bool {
	return l.Status == LogStatusCompleted || l.Status == LogStatusFailed
}

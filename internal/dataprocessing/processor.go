package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shoppulse/pkg/contracts/domain"
)

// ProcessorConfig holds configuration options for the batch processor.
type ProcessorConfig struct {
	DedupKey  domain.DedupKeyMode // which fields form the deduplication key
	MaxErrors int                 // cap on the stored error list per batch
	Location  *time.Location      // canonical storage timezone
}

// DefaultProcessorConfig returns a configuration for typical deployments.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		DedupKey:  domain.DedupKeyOrderProduct,
		MaxErrors: 100,
		Location:  time.UTC,
	}
}

// Processor orchestrates validator → normalizer → dedup filter per row and
// accumulates the batch outcome. Row-level failures never abort the batch;
// processing continues through all rows.
type Processor struct {
	validator  *Validator
	normalizer *Normalizer
	keyMode    domain.DedupKeyMode
	maxErrors  int
	logger     *slog.Logger
	now        func() time.Time
}

// NewProcessor creates a batch processor.
func NewProcessor(logger *slog.Logger, cfg ProcessorConfig) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = DefaultProcessorConfig().MaxErrors
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DedupKey == "" {
		cfg.DedupKey = domain.DedupKeyOrderProduct
	}
	return &Processor{
		validator:  NewValidator(cfg.Location),
		normalizer: NewNormalizer(cfg.Location),
		keyMode:    cfg.DedupKey,
		maxErrors:  cfg.MaxErrors,
		logger:     logger,
		now:        time.Now,
	}
}

// BatchResult is the outcome of processing one batch before persistence.
// Entry still has status "processing"; the caller appends Records to the
// store and finalizes the entry to completed or failed.
type BatchResult struct {
	Entry   domain.ProcessingLog
	Records []domain.TransactionRecord
}

// NewLogEntry creates a processing log entry for a batch that is starting.
func NewLogEntry(filename string, start time.Time) domain.ProcessingLog {
	return domain.ProcessingLog{
		LogID:     uuid.NewString(),
		Filename:  filename,
		Status:    domain.LogStatusProcessing,
		Errors:    []string{},
		Timestamp: start.UTC(),
	}
}

// Process runs every row of the batch in input order against the key set
// the store held at batch start. Accepted records are staged with
// IngestedAt set, ready for a single atomic append. records_processed +
// records_failed always equals the number of submitted rows.
func (p *Processor) Process(ctx context.Context, entry domain.ProcessingLog, rows []RawRow, existingKeys map[string]struct{}) BatchResult {
	p.logger.InfoContext(ctx, "processing batch",
		slog.String("log_id", entry.LogID),
		slog.String("filename", entry.Filename),
		slog.Int("rows", len(rows)))

	filter := NewDedupFilter(p.keyMode, existingKeys)
	staged := make([]domain.TransactionRecord, 0, len(rows))
	suppressed := 0

	recordFailure := func(rowErr *RowError) {
		entry.RecordsFailed++
		if len(entry.Errors) < p.maxErrors {
			entry.Errors = append(entry.Errors, rowErr.Error())
		} else {
			suppressed++
		}
	}

	ingestedAt := p.now().UTC()
	for _, row := range rows {
		validated, rowErr := p.validator.Validate(row)
		if rowErr != nil {
			recordFailure(rowErr)
			continue
		}

		record, rowErr := p.normalizer.Normalize(validated)
		if rowErr != nil {
			recordFailure(rowErr)
			continue
		}

		if !filter.Admit(record) {
			recordFailure(newRowError(row.Line, RowErrDuplicate,
				"duplicate record for key %s", filter.DisplayKey(record)))
			continue
		}

		record.IngestedAt = ingestedAt
		staged = append(staged, record)
		entry.RecordsProcessed++
	}

	if suppressed > 0 {
		entry.Errors = append(entry.Errors, fmt.Sprintf("... and %d more errors suppressed", suppressed))
	}

	p.logger.InfoContext(ctx, "batch processed",
		slog.String("log_id", entry.LogID),
		slog.Int("records_processed", entry.RecordsProcessed),
		slog.Int("records_failed", entry.RecordsFailed))

	return BatchResult{Entry: entry, Records: staged}
}

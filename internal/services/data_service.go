package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shoppulse/internal/config"
	"shoppulse/internal/dataprocessing"
	apperrors "shoppulse/internal/errors"
	"shoppulse/internal/infrastructure"
	"shoppulse/internal/store"
	"shoppulse/pkg/contracts/domain"
)

// DataService exposes the core ingestion and analytics surface consumed
// by the transport layer.
type DataService struct {
	logger     *slog.Logger
	processor  *dataprocessing.Processor
	engine     *dataprocessing.AnalyticsEngine
	records    store.RecordStore
	logs       store.LogStore
	metrics    *infrastructure.Metrics
	keyMode    domain.DedupKeyMode
	logHistory int

	// writeMu serializes writers: the store-key snapshot, per-row
	// processing and the append form one critical section, and clear-all
	// is treated as another writer. Reads do not take it.
	writeMu sync.Mutex

	now func() time.Time
}

// NewDataService creates a data service over the given stores.
func NewDataService(cfg *config.Config, logger *slog.Logger, records store.RecordStore, logs store.LogStore, metrics *infrastructure.Metrics) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Ingestion.Location()
	keyMode := domain.DedupKeyMode(cfg.Ingestion.DedupKey)

	logger.Info("data service initialized",
		slog.String("dedup_key", cfg.Ingestion.DedupKey),
		slog.String("timezone", cfg.Ingestion.Timezone),
		slog.String("storage_backend", cfg.Storage.Backend))

	return &DataService{
		logger: logger.With(slog.String("component", "data_service")),
		processor: dataprocessing.NewProcessor(logger, dataprocessing.ProcessorConfig{
			DedupKey:  keyMode,
			MaxErrors: cfg.Ingestion.MaxBatchErrors,
			Location:  loc,
		}),
		engine: dataprocessing.NewAnalyticsEngine(logger, dataprocessing.AnalyticsConfig{
			TopRankings: cfg.Analytics.TopRankings,
			DailyWindow: cfg.Analytics.DailyWindow,
		}, loc),
		records:    records,
		logs:       logs,
		metrics:    metrics,
		keyMode:    keyMode,
		logHistory: cfg.Analytics.LogHistory,
		now:        time.Now,
	}
}

// SubmitBatch is the one ingestion entry point. It processes every row,
// appends accepted records as a single atomic write and finalizes the
// batch's log entry. Row-level failures yield a completed batch; only a
// storage failure fails it, in which case nothing is persisted and the
// returned error carries the cause.
func (s *DataService) SubmitBatch(ctx context.Context, filename string, rows []dataprocessing.RawRow) (domain.ProcessingLog, error) {
	if filename == "" {
		return domain.ProcessingLog{}, ErrEmptyFilename
	}

	start := s.now()
	entry := dataprocessing.NewLogEntry(filename, start)
	if err := s.logs.Append(ctx, entry); err != nil {
		return domain.ProcessingLog{}, fmt.Errorf("failed to create log entry: %w", err)
	}

	s.writeMu.Lock()
	existing, err := s.records.All(ctx)
	if err != nil {
		s.writeMu.Unlock()
		return s.finalizeFailed(ctx, entry, start, apperrors.NewStorageError("failed to read store keys", err))
	}

	result := s.processor.Process(ctx, entry, rows, dataprocessing.StoreKeys(existing, s.keyMode))
	entry = result.Entry

	if err := s.records.Append(ctx, result.Records); err != nil {
		s.writeMu.Unlock()
		return s.finalizeFailed(ctx, entry, start, apperrors.NewStorageError("failed to append batch", err))
	}
	s.writeMu.Unlock()

	entry.Status = domain.LogStatusCompleted
	entry.ProcessingTime = s.now().Sub(start).Seconds()
	if err := s.logs.Finalize(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to finalize log entry",
			slog.String("log_id", entry.LogID),
			slog.String("error", err.Error()))
	}

	if s.metrics != nil {
		s.metrics.BatchesTotal.WithLabelValues(string(entry.Status)).Inc()
		s.metrics.RecordsProcessed.Add(float64(entry.RecordsProcessed))
		s.metrics.RecordsFailed.Add(float64(entry.RecordsFailed))
		s.metrics.ProcessingDuration.Observe(entry.ProcessingTime)
		if count, err := s.records.Count(ctx); err == nil {
			s.metrics.StoredRecords.Set(float64(count))
		}
	}

	s.logger.InfoContext(ctx, "batch completed",
		slog.String("log_id", entry.LogID),
		slog.String("filename", filename),
		slog.Int("records_processed", entry.RecordsProcessed),
		slog.Int("records_failed", entry.RecordsFailed),
		slog.Float64("processing_time", entry.ProcessingTime))

	return entry, nil
}

// FailBatch records a batch that failed catastrophically before any
// per-row accounting, such as an unreadable upload. The log entry carries
// a single summarizing error and zero counts.
func (s *DataService) FailBatch(ctx context.Context, filename string, cause error) (domain.ProcessingLog, error) {
	if filename == "" {
		filename = "(unknown)"
	}
	start := s.now()
	entry := dataprocessing.NewLogEntry(filename, start)
	entry.Status = domain.LogStatusFailed
	entry.Errors = []string{cause.Error()}
	entry.ProcessingTime = s.now().Sub(start).Seconds()

	if err := s.logs.Append(ctx, entry); err != nil {
		return domain.ProcessingLog{}, fmt.Errorf("failed to record failed batch: %w", err)
	}
	if s.metrics != nil {
		s.metrics.BatchesTotal.WithLabelValues(string(domain.LogStatusFailed)).Inc()
	}

	s.logger.WarnContext(ctx, "batch failed before row accounting",
		slog.String("log_id", entry.LogID),
		slog.String("filename", filename),
		slog.String("error", cause.Error()))

	return entry, nil
}

// finalizeFailed marks the batch failed after a storage error. No records
// are persisted and counts are reset; the store must not contain a
// partially-applied batch.
func (s *DataService) finalizeFailed(ctx context.Context, entry domain.ProcessingLog, start time.Time, cause error) (domain.ProcessingLog, error) {
	entry.Status = domain.LogStatusFailed
	entry.RecordsProcessed = 0
	entry.RecordsFailed = 0
	entry.Errors = []string{cause.Error()}
	entry.ProcessingTime = s.now().Sub(start).Seconds()

	if err := s.logs.Finalize(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to finalize failed log entry",
			slog.String("log_id", entry.LogID),
			slog.String("error", err.Error()))
	}
	if s.metrics != nil {
		s.metrics.BatchesTotal.WithLabelValues(string(domain.LogStatusFailed)).Inc()
	}

	s.logger.ErrorContext(ctx, "batch failed",
		slog.String("log_id", entry.LogID),
		slog.String("filename", entry.Filename),
		slog.String("error", cause.Error()))

	return entry, cause
}

// AnalyticsOverview computes the overview snapshot from the current store
// contents. Reads run concurrently with ingestion and never observe a
// partially-written batch.
func (s *DataService) AnalyticsOverview(ctx context.Context) (domain.AnalyticsSnapshot, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return domain.AnalyticsSnapshot{}, apperrors.NewStorageError("failed to read records", err)
	}
	return s.engine.Overview(ctx, records), nil
}

// CustomerInsights computes detailed per-customer purchase metrics.
func (s *DataService) CustomerInsights(ctx context.Context) ([]domain.CustomerInsight, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read records", err)
	}
	return s.engine.CustomerInsights(ctx, records), nil
}

// ProductInsights computes detailed per-product sales metrics.
func (s *DataService) ProductInsights(ctx context.Context) ([]domain.ProductInsight, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read records", err)
	}
	return s.engine.ProductInsights(ctx, records), nil
}

// ExportRecords returns every stored record in stored order for export.
func (s *DataService) ExportRecords(ctx context.Context) ([]domain.TransactionRecord, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read records", err)
	}
	return records, nil
}

// ProcessingLogs returns the batch history, most recent first.
func (s *DataService) ProcessingLogs(ctx context.Context) ([]domain.ProcessingLog, error) {
	return s.logs.List(ctx, s.logHistory)
}

// ClearAllData deletes every record and the whole processing log history.
// It holds the writer lock, so it is mutually exclusive with any in-flight
// batch append.
func (s *DataService) ClearAllData(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.records.Clear(ctx); err != nil {
		return apperrors.NewStorageError("failed to clear records", err)
	}
	if err := s.logs.Clear(ctx); err != nil {
		return apperrors.NewStorageError("failed to clear processing logs", err)
	}
	if s.metrics != nil {
		s.metrics.StoredRecords.Set(0)
	}

	s.logger.InfoContext(ctx, "cleared all data")
	return nil
}

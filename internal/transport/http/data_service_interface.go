package http

import (
	"context"

	"shoppulse/internal/dataprocessing"
	"shoppulse/pkg/contracts/domain"
)

// DataServiceInterface defines the core surface the transport layer
// depends on. Implemented by services.DataService.
type DataServiceInterface interface {
	SubmitBatch(ctx context.Context, filename string, rows []dataprocessing.RawRow) (domain.ProcessingLog, error)
	FailBatch(ctx context.Context, filename string, cause error) (domain.ProcessingLog, error)
	AnalyticsOverview(ctx context.Context) (domain.AnalyticsSnapshot, error)
	CustomerInsights(ctx context.Context) ([]domain.CustomerInsight, error)
	ProductInsights(ctx context.Context) ([]domain.ProductInsight, error)
	ProcessingLogs(ctx context.Context) ([]domain.ProcessingLog, error)
	ExportRecords(ctx context.Context) ([]domain.TransactionRecord, error)
	ClearAllData(ctx context.Context) error
}

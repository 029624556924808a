package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"shoppulse/pkg/contracts/domain"
)

// recordHeaders is the column order for exported transaction records.
var recordHeaders = []string{
	"record_id",
	"order_id",
	"product_id",
	"customer_id",
	"product_name",
	"geography",
	"quantity",
	"unit_price",
	"line_revenue",
	"occurred_at",
	"ingested_at",
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	// BOMPrefix prepends a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteRecords writes transaction records as CSV to w in stored order.
func WriteRecords(w io.Writer, records []domain.TransactionRecord, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(recordHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRecordsFile writes transaction records as CSV to a file,
// creating parent directories as needed.
func WriteRecordsFile(path string, records []domain.TransactionRecord, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return WriteRecords(file, records, options)
}

func recordToRow(r domain.TransactionRecord) []string {
	return []string{
		r.RecordID,
		r.OrderID,
		r.ProductID,
		r.CustomerID,
		r.ProductName,
		r.Geography,
		strconv.FormatInt(r.Quantity, 10),
		r.UnitPrice.StringFixed(2),
		r.LineRevenue.StringFixed(2),
		r.OccurredAt.Format("2006-01-02 15:04:05"),
		r.IngestedAt.Format("2006-01-02 15:04:05"),
	}
}

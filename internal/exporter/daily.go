package exporter

import (
	"fmt"
	"path/filepath"
	"sort"

	"shoppulse/pkg/contracts/domain"
)

// DailyExporter writes per-day CSV files grouped by occurred_at date.
type DailyExporter struct {
	options WriteOptions
}

// NewDailyExporter creates a new daily exporter.
func NewDailyExporter(options WriteOptions) *DailyExporter {
	return &DailyExporter{options: options}
}

// Export writes one CSV file per calendar day under outputDir and
// returns the paths written. Days are emitted in ascending order and
// rows within a day are sorted by order then product for stable output.
func (d *DailyExporter) Export(records []domain.TransactionRecord, outputDir string) ([]string, error) {
	recordsByDate := make(map[string][]domain.TransactionRecord)
	for _, record := range records {
		dateKey := record.OccurredAt.Format("2006_01_02")
		recordsByDate[dateKey] = append(recordsByDate[dateKey], record)
	}

	var dates []string
	for date := range recordsByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var written []string
	for _, dateKey := range dates {
		dayRecords := recordsByDate[dateKey]
		sort.Slice(dayRecords, func(i, j int) bool {
			if dayRecords[i].OrderID != dayRecords[j].OrderID {
				return dayRecords[i].OrderID < dayRecords[j].OrderID
			}
			return dayRecords[i].ProductID < dayRecords[j].ProductID
		})

		path := filepath.Join(outputDir, fmt.Sprintf("shoppulse_daily_%s.csv", dateKey))
		if err := WriteRecordsFile(path, dayRecords, d.options); err != nil {
			return written, fmt.Errorf("export %s: %w", dateKey, err)
		}
		written = append(written, path)
	}

	return written, nil
}

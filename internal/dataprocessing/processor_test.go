package dataprocessing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/pkg/contracts/domain"
)

func csvRow(line int, orderID, productID, customerID, quantity, price, date string) RawRow {
	return RawRow{
		Line: line,
		Fields: map[string]string{
			ColOrderID:    orderID,
			ColProductID:  productID,
			ColCustomerID: customerID,
			ColQuantity:   quantity,
			ColPrice:      price,
			ColDate:       date,
		},
	}
}

func newTestProcessor(t *testing.T, cfg ProcessorConfig) *Processor {
	t.Helper()
	return NewProcessor(nil, cfg)
}

func TestProcessMixedBatch(t *testing.T) {
	p := newTestProcessor(t, DefaultProcessorConfig())
	entry := NewLogEntry("batch.csv", time.Now())

	rows := []RawRow{
		csvRow(1, "A1", "P1", "C1", "2", "10.00", "2024-03-01"),
		csvRow(2, "A2", "P1", "C2", "1", "5.00", "2024-03-02"),
		csvRow(3, "A1", "P1", "C1", "2", "10.00", "2024-03-01"), // duplicate of row 1
	}

	result := p.Process(context.Background(), entry, rows, nil)

	assert.Equal(t, 2, result.Entry.RecordsProcessed)
	assert.Equal(t, 1, result.Entry.RecordsFailed)
	require.Len(t, result.Entry.Errors, 1)
	assert.Contains(t, result.Entry.Errors[0], "row 3")
	assert.Contains(t, result.Entry.Errors[0], "duplicate")
	require.Len(t, result.Records, 2)
}

func TestProcessCountsAlwaysSumToRowCount(t *testing.T) {
	p := newTestProcessor(t, DefaultProcessorConfig())

	tests := []struct {
		name string
		rows []RawRow
	}{
		{"empty batch", nil},
		{"all valid", []RawRow{
			csvRow(1, "A1", "P1", "C1", "1", "1.00", "2024-01-01"),
			csvRow(2, "A2", "P2", "C2", "1", "1.00", "2024-01-02"),
		}},
		{"all invalid", []RawRow{
			csvRow(1, "A1", "P1", "C1", "-1", "1.00", "2024-01-01"),
			{Line: 2, Err: fmt.Errorf("expected 6 columns, got 3")},
		}},
		{"mixed", []RawRow{
			csvRow(1, "A1", "P1", "C1", "1", "1.00", "2024-01-01"),
			csvRow(2, "A1", "P1", "C1", "1", "1.00", "2024-01-01"),
			csvRow(3, "A3", "P3", "C3", "zero", "1.00", "2024-01-03"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := NewLogEntry("batch.csv", time.Now())
			result := p.Process(context.Background(), entry, tt.rows, nil)

			assert.Equal(t, len(tt.rows), result.Entry.RecordsProcessed+result.Entry.RecordsFailed)
			assert.Len(t, result.Records, result.Entry.RecordsProcessed)
		})
	}
}

func TestProcessEmptyBatchCompletesWithZeroCounts(t *testing.T) {
	p := newTestProcessor(t, DefaultProcessorConfig())
	entry := NewLogEntry("empty.csv", time.Now())

	result := p.Process(context.Background(), entry, nil, nil)

	assert.Equal(t, 0, result.Entry.RecordsProcessed)
	assert.Equal(t, 0, result.Entry.RecordsFailed)
	assert.Empty(t, result.Entry.Errors)
	assert.Empty(t, result.Records)
}

func TestProcessResubmittedBatchIsAllDuplicates(t *testing.T) {
	p := newTestProcessor(t, DefaultProcessorConfig())

	rows := []RawRow{
		csvRow(1, "A1", "P1", "C1", "2", "10.00", "2024-03-01"),
		csvRow(2, "A2", "P1", "C2", "1", "5.00", "2024-03-02"),
	}

	first := p.Process(context.Background(), NewLogEntry("batch.csv", time.Now()), rows, nil)
	require.Equal(t, 2, first.Entry.RecordsProcessed)

	existing := StoreKeys(first.Records, domain.DedupKeyOrderProduct)
	second := p.Process(context.Background(), NewLogEntry("batch.csv", time.Now()), rows, existing)

	assert.Equal(t, 0, second.Entry.RecordsProcessed)
	assert.Equal(t, 2, second.Entry.RecordsFailed)
	assert.Empty(t, second.Records)
	for _, msg := range second.Entry.Errors {
		assert.Contains(t, msg, "duplicate")
	}
}

func TestProcessStampsSingleIngestionTime(t *testing.T) {
	p := newTestProcessor(t, DefaultProcessorConfig())
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	rows := []RawRow{
		csvRow(1, "A1", "P1", "C1", "1", "1.00", "2024-01-01"),
		csvRow(2, "A2", "P2", "C2", "1", "1.00", "2024-01-02"),
	}
	result := p.Process(context.Background(), NewLogEntry("batch.csv", time.Now()), rows, nil)

	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.True(t, fixed.Equal(rec.IngestedAt))
	}
}

func TestProcessCapsStoredErrors(t *testing.T) {
	p := newTestProcessor(t, ProcessorConfig{MaxErrors: 3})

	var rows []RawRow
	for i := 1; i <= 10; i++ {
		rows = append(rows, csvRow(i, fmt.Sprintf("A%d", i), "P1", "C1", "-1", "1.00", "2024-01-01"))
	}

	result := p.Process(context.Background(), NewLogEntry("batch.csv", time.Now()), rows, nil)

	assert.Equal(t, 10, result.Entry.RecordsFailed, "counts stay exact")
	require.Len(t, result.Entry.Errors, 4, "capped list plus a summary line")
	assert.Contains(t, result.Entry.Errors[3], "7 more errors suppressed")
}

func TestProcessRowFailuresNeverAbortTheBatch(t *testing.T) {
	p := newTestProcessor(t, DefaultProcessorConfig())

	rows := []RawRow{
		{Line: 1, Err: fmt.Errorf("bare quote")},
		csvRow(2, "A2", "P2", "C2", "1", "1.00", "2024-01-02"),
	}
	result := p.Process(context.Background(), NewLogEntry("batch.csv", time.Now()), rows, nil)

	assert.Equal(t, 1, result.Entry.RecordsProcessed)
	assert.Equal(t, 1, result.Entry.RecordsFailed)
}

func TestNewLogEntry(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("X", 3*3600))
	entry := NewLogEntry("batch.csv", start)

	assert.NotEmpty(t, entry.LogID)
	assert.Equal(t, "batch.csv", entry.Filename)
	assert.Equal(t, domain.LogStatusProcessing, entry.Status)
	assert.NotNil(t, entry.Errors)
	assert.Equal(t, time.UTC, entry.Timestamp.Location())
	assert.True(t, start.Equal(entry.Timestamp))

	other := NewLogEntry("batch.csv", start)
	assert.NotEqual(t, entry.LogID, other.LogID)
}

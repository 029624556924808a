package dataprocessing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validatedRow() *ValidatedRow {
	return &ValidatedRow{
		Line:        1,
		OrderID:     " a1 ",
		ProductID:   "p1",
		CustomerID:  "c1",
		ProductName: " Widget ",
		Geography:   "UK",
		Quantity:    3,
		Price:       decimal.RequireFromString("10.555"),
		Date:        time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestNormalizeCanonicalizesIdentifiers(t *testing.T) {
	n := NewNormalizer(time.UTC)

	rec, rowErr := n.Normalize(validatedRow())
	require.Nil(t, rowErr)

	assert.Equal(t, "A1", rec.OrderID)
	assert.Equal(t, "P1", rec.ProductID)
	assert.Equal(t, "C1", rec.CustomerID)
	assert.Equal(t, "Widget", rec.ProductName)
	assert.NotEmpty(t, rec.RecordID)
	assert.True(t, rec.IngestedAt.IsZero())
}

func TestNormalizeRoundsHalfToEven(t *testing.T) {
	n := NewNormalizer(time.UTC)

	tests := []struct {
		price string
		want  string
	}{
		{"10.555", "10.56"},
		{"10.565", "10.56"},
		{"10.545", "10.54"},
		{"10.5", "10.50"},
		{"10", "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			row := validatedRow()
			row.Price = decimal.RequireFromString(tt.price)

			rec, rowErr := n.Normalize(row)
			require.Nil(t, rowErr)
			assert.Equal(t, tt.want, rec.UnitPrice.StringFixed(2))
		})
	}
}

func TestNormalizeComputesLineRevenue(t *testing.T) {
	n := NewNormalizer(time.UTC)

	row := validatedRow()
	row.Quantity = 3
	row.Price = decimal.RequireFromString("10.55")

	rec, rowErr := n.Normalize(row)
	require.Nil(t, rowErr)
	assert.Equal(t, "31.65", rec.LineRevenue.StringFixed(2))
}

func TestNormalizeConvertsToCanonicalTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Baghdad")
	require.NoError(t, err)
	n := NewNormalizer(loc)

	row := validatedRow()
	rec, rowErr := n.Normalize(row)
	require.Nil(t, rowErr)

	assert.Equal(t, loc, rec.OccurredAt.Location())
	assert.True(t, row.Date.Equal(rec.OccurredAt), "conversion must preserve the instant")
}

func TestNormalizeRejectsBlankIdentifiers(t *testing.T) {
	n := NewNormalizer(time.UTC)

	tests := []struct {
		name   string
		mutate func(*ValidatedRow)
		column string
	}{
		{"blank order id", func(r *ValidatedRow) { r.OrderID = "   " }, ColOrderID},
		{"blank product id", func(r *ValidatedRow) { r.ProductID = "" }, ColProductID},
		{"blank customer id", func(r *ValidatedRow) { r.CustomerID = "\t" }, ColCustomerID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validatedRow()
			tt.mutate(row)

			_, rowErr := n.Normalize(row)
			require.NotNil(t, rowErr)
			assert.Equal(t, RowErrMissingField, rowErr.Kind)
			assert.Contains(t, rowErr.Detail, tt.column)
		})
	}
}

func TestNormalizeFreshRecordIDPerCall(t *testing.T) {
	n := NewNormalizer(time.UTC)

	first, rowErr := n.Normalize(validatedRow())
	require.Nil(t, rowErr)
	second, rowErr := n.Normalize(validatedRow())
	require.Nil(t, rowErr)

	assert.NotEqual(t, first.RecordID, second.RecordID)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord represents one validated, normalized purchase line.
// Records are immutable after creation: the store supports insertion and
// bulk deletion only, never updates.
type TransactionRecord struct {
	RecordID    string          `json:"record_id" validate:"required,uuid"`
	OrderID     string          `json:"order_id" validate:"required"`
	ProductID   string          `json:"product_id" validate:"required"`
	CustomerID  string          `json:"customer_id" validate:"required"`
	ProductName string          `json:"product_name,omitempty"`
	Geography   string          `json:"geography,omitempty"`
	Quantity    int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineRevenue decimal.Decimal `json:"line_revenue"`
	OccurredAt  time.Time       `json:"occurred_at"`
	IngestedAt  time.Time       `json:"ingested_at"`
}

// DedupKeyMode selects which fields form the deduplication key.
type DedupKeyMode string

const (
	// DedupKeyOrderProduct keys on the (order_id, product_id) composite.
	DedupKeyOrderProduct DedupKeyMode = "order_product"
	// DedupKeyOrder keys on order_id alone.
	DedupKeyOrder DedupKeyMode = "order"
)

// DedupKey returns the record's deduplication key under the given mode.
// The separator cannot appear in normalized identifiers, so composite keys
// are unambiguous.
func (r TransactionRecord) DedupKey(mode DedupKeyMode) string {
	if mode == DedupKeyOrder {
		return r.OrderID
	}
	return r.OrderID + "\x1f" + r.ProductID
}

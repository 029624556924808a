package dataprocessing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shoppulse/pkg/contracts/domain"
)

// pricePrecision is the store's fixed fractional precision for currency
// values. Rounding uses round-half-to-even.
const pricePrecision = 2

// Normalizer coerces an accepted, typed row into a canonical
// TransactionRecord. It is a pure transform: errors surface as row
// failures, never as side effects.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a normalizer targeting the canonical storage
// timezone.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Normalize produces a canonical record from a validated row. The
// record_id is freshly generated, so identical resubmission of the same
// row yields a different record_id but the same deduplication key.
// IngestedAt is left zero; it is set once at persistence time.
func (n *Normalizer) Normalize(row *ValidatedRow) (domain.TransactionRecord, *RowError) {
	orderID, ok := normalizeIdentifier(row.OrderID)
	if !ok {
		return domain.TransactionRecord{}, newRowError(row.Line, RowErrMissingField,
			"missing required column %q", ColOrderID)
	}
	productID, ok := normalizeIdentifier(row.ProductID)
	if !ok {
		return domain.TransactionRecord{}, newRowError(row.Line, RowErrMissingField,
			"missing required column %q", ColProductID)
	}
	customerID, ok := normalizeIdentifier(row.CustomerID)
	if !ok {
		return domain.TransactionRecord{}, newRowError(row.Line, RowErrMissingField,
			"missing required column %q", ColCustomerID)
	}

	unitPrice := row.Price.RoundBank(pricePrecision)
	if unitPrice.IsNegative() {
		// Unreachable given prior validation; surfaced defensively as a
		// row failure rather than a panic.
		return domain.TransactionRecord{}, newRowError(row.Line, RowErrNormalization,
			"normalization error: unit price %s negative after rounding", unitPrice)
	}

	return domain.TransactionRecord{
		RecordID:    uuid.NewString(),
		OrderID:     orderID,
		ProductID:   productID,
		CustomerID:  customerID,
		ProductName: strings.TrimSpace(row.ProductName),
		Geography:   strings.TrimSpace(row.Geography),
		Quantity:    row.Quantity,
		UnitPrice:   unitPrice,
		LineRevenue: unitPrice.Mul(decimal.NewFromInt(row.Quantity)),
		OccurredAt:  row.Date.In(n.loc),
	}, nil
}

// normalizeIdentifier trims and case-normalizes an identifier. Empty after
// trim is treated as a missing field.
func normalizeIdentifier(value string) (string, bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

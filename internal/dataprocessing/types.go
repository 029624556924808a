package dataprocessing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names expected after header canonicalization
const (
	ColOrderID     = "order_id"
	ColProductID   = "product_id"
	ColCustomerID  = "customer_id"
	ColQuantity    = "quantity"
	ColPrice       = "price"
	ColDate        = "date"
	ColProductName = "product_name"
	ColGeography   = "geography"
)

// RequiredColumns lists the columns every data row must carry, in the
// order they are checked.
var RequiredColumns = []string{ColOrderID, ColProductID, ColCustomerID, ColQuantity, ColPrice, ColDate}

// RawRow is one row of an uploaded batch: a mapping of canonical column
// name to raw string value. Line is the 1-indexed data row position with
// the header excluded. A structurally unparseable row (wrong column count,
// bare quote) carries a non-nil Err and an empty Fields map; it still
// occupies its position so per-row accounting stays exact.
type RawRow struct {
	Line   int
	Fields map[string]string
	Err    error
}

// ValidatedRow holds the typed but not yet normalized fields of an
// accepted row.
type ValidatedRow struct {
	Line        int
	OrderID     string
	ProductID   string
	CustomerID  string
	ProductName string
	Geography   string
	Quantity    int64
	Price       decimal.Decimal
	Date        time.Time
}

// RowErrorKind classifies row-level failures. Duplicate rejections are
// deliberately distinguishable from validation failures, though both count
// toward records_failed.
type RowErrorKind string

const (
	RowErrMalformed       RowErrorKind = "malformed_row"
	RowErrMissingField    RowErrorKind = "missing_field"
	RowErrInvalidQuantity RowErrorKind = "invalid_quantity"
	RowErrInvalidPrice    RowErrorKind = "invalid_price"
	RowErrInvalidDate     RowErrorKind = "invalid_date"
	RowErrDuplicate       RowErrorKind = "duplicate_record"
	RowErrNormalization   RowErrorKind = "normalization"
)

// RowError describes why a single row was rejected, attributed to its
// 1-indexed position for diagnosability.
type RowError struct {
	Line   int
	Kind   RowErrorKind
	Detail string
}

// Error implements the error interface
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Detail)
}

// IsDuplicate reports whether the row was rejected by the dedup filter
// rather than by validation or normalization.
func (e *RowError) IsDuplicate() bool {
	return e.Kind == RowErrDuplicate
}

func newRowError(line int, kind RowErrorKind, format string, args ...interface{}) *RowError {
	return &RowError{Line: line, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

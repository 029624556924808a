package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// defaultDateFormats is the accepted set of source date layouts, tried in
// order. Layouts without zone information are interpreted in the
// validator's reference timezone.
var defaultDateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Validator checks a raw row against the expected column specification.
// Checks short-circuit: the first failing check wins and the row is never
// persisted.
type Validator struct {
	loc         *time.Location
	dateFormats []string
}

// NewValidator creates a validator that interprets zone-less dates in the
// given reference timezone.
func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{loc: loc, dateFormats: defaultDateFormats}
}

// Validate returns the typed fields of an accepted row, or a RowError
// naming the first failed check.
func (v *Validator) Validate(row RawRow) (*ValidatedRow, *RowError) {
	if row.Err != nil {
		return nil, newRowError(row.Line, RowErrMalformed, "malformed row: %v", row.Err)
	}

	for _, col := range RequiredColumns {
		if _, ok := row.Fields[col]; !ok {
			return nil, newRowError(row.Line, RowErrMissingField, "missing required column %q", col)
		}
	}

	rawQty := strings.TrimSpace(row.Fields[ColQuantity])
	qty, err := strconv.ParseInt(rawQty, 10, 64)
	if err != nil || qty <= 0 {
		return nil, newRowError(row.Line, RowErrInvalidQuantity,
			"invalid quantity %q: must be a positive integer", row.Fields[ColQuantity])
	}

	rawPrice := strings.TrimSpace(row.Fields[ColPrice])
	price, err := decimal.NewFromString(rawPrice)
	if err != nil || price.IsNegative() {
		return nil, newRowError(row.Line, RowErrInvalidPrice,
			"invalid price %q: must be a non-negative decimal", row.Fields[ColPrice])
	}

	date, ok := v.parseDate(strings.TrimSpace(row.Fields[ColDate]))
	if !ok {
		return nil, newRowError(row.Line, RowErrInvalidDate,
			"invalid date %q: unrecognized format", row.Fields[ColDate])
	}

	return &ValidatedRow{
		Line:        row.Line,
		OrderID:     row.Fields[ColOrderID],
		ProductID:   row.Fields[ColProductID],
		CustomerID:  row.Fields[ColCustomerID],
		ProductName: row.Fields[ColProductName],
		Geography:   row.Fields[ColGeography],
		Quantity:    qty,
		Price:       price,
		Date:        date,
	}, nil
}

// parseDate tries the accepted layouts in order. Zone-less layouts are
// attached to the reference timezone; layouts carrying a zone keep it (the
// normalizer converts to the canonical timezone afterwards).
func (v *Validator) parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range v.dateFormats {
		if t, err := time.ParseInLocation(layout, value, v.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

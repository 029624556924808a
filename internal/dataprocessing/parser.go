package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "shoppulse/internal/errors"
)

// columnAliases maps squashed source header names to canonical column
// names. Headers are lowercased and stripped of spaces and underscores
// before lookup, so "Invoice No", "invoice_no" and "InvoiceNo" all land on
// order_id.
var columnAliases = map[string]string{
	"invoiceno":    ColOrderID,
	"invoice":      ColOrderID,
	"orderid":      ColOrderID,
	"orderno":      ColOrderID,
	"stockcode":    ColProductID,
	"productid":    ColProductID,
	"sku":          ColProductID,
	"description":  ColProductName,
	"productname":  ColProductName,
	"product":      ColProductName,
	"quantity":     ColQuantity,
	"qty":          ColQuantity,
	"unitprice":    ColPrice,
	"price":        ColPrice,
	"customerid":   ColCustomerID,
	"customer":     ColCustomerID,
	"invoicedate":  ColDate,
	"orderdate":    ColDate,
	"date":         ColDate,
	"country":      ColGeography,
	"geography":    ColGeography,
	"region":       ColGeography,
}

// CanonicalColumn maps a source header to its canonical column name.
// Unknown headers pass through squashed, so optional columns the schema
// does not know about are carried along untouched.
func CanonicalColumn(header string) string {
	squashed := strings.ToLower(strings.TrimSpace(header))
	squashed = strings.ReplaceAll(squashed, " ", "")
	squashed = strings.ReplaceAll(squashed, "_", "")
	if canonical, ok := columnAliases[squashed]; ok {
		return canonical
	}
	return squashed
}

// ReadRows reads an uploaded batch into raw rows, dispatching on the file
// extension. Structurally unparseable rows are returned in place with a
// non-nil Err; only an unreadable file or an unusable header is fatal.
func ReadRows(filename string, r io.Reader) ([]RawRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSVRows(r)
	case ".xlsx", ".xlsm":
		return ReadXLSXRows(r)
	default:
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("unsupported file extension %q: expected .csv or .xlsx", filepath.Ext(filename)), nil)
	}
}

// ReadCSVRows reads a CSV batch. The first line is the header; data rows
// are 1-indexed below it.
func ReadCSVRows(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, apperrors.NewParsingError("empty file: no header row", nil)
		}
		return nil, apperrors.NewParsingError("failed to read header row", err)
	}
	columns, err := canonicalHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []RawRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				rows = append(rows, RawRow{Line: line, Err: fmt.Errorf(
					"expected %d columns, got %d", len(columns), len(record))})
				continue
			}
			if errors.As(err, &parseErr) {
				rows = append(rows, RawRow{Line: line, Err: parseErr.Err})
				continue
			}
			return nil, apperrors.NewParsingError("failed to read file", err)
		}
		rows = append(rows, RawRow{Line: line, Fields: zipRow(columns, record)})
	}

	return rows, nil
}

// ReadXLSXRows reads the first sheet of an XLSX batch. Short rows are
// padded with empty cells (trailing blanks are not stored in the sheet);
// rows wider than the header are structurally unparseable. Fully empty
// rows are skipped, matching how spreadsheets pad their used range.
func ReadXLSXRows(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("spreadsheet has no sheets", nil)
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	if len(all) == 0 {
		return nil, apperrors.NewParsingError("empty file: no header row", nil)
	}

	columns, err := canonicalHeader(all[0])
	if err != nil {
		return nil, err
	}

	var rows []RawRow
	line := 0
	for _, cells := range all[1:] {
		if isEmptyRow(cells) {
			continue
		}
		line++
		if len(cells) > len(columns) {
			rows = append(rows, RawRow{Line: line, Err: fmt.Errorf(
				"expected %d columns, got %d", len(columns), len(cells))})
			continue
		}
		padded := make([]string, len(columns))
		copy(padded, cells)
		rows = append(rows, RawRow{Line: line, Fields: zipRow(columns, padded)})
	}

	return rows, nil
}

// canonicalHeader maps the header row to canonical column names. A header
// with no usable columns is fatal to the batch.
func canonicalHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	usable := 0
	for i, name := range header {
		columns[i] = CanonicalColumn(name)
		if columns[i] != "" {
			usable++
		}
	}
	if usable == 0 {
		return nil, apperrors.NewParsingError("header row has no usable columns", nil)
	}
	return columns, nil
}

// zipRow pairs canonical column names with cell values. When a header name
// collapses onto an already-seen canonical column, the first occurrence
// wins.
func zipRow(columns, record []string) map[string]string {
	fields := make(map[string]string, len(columns))
	for i, col := range columns {
		if col == "" {
			continue
		}
		if _, ok := fields[col]; ok {
			continue
		}
		fields[col] = record[i]
	}
	return fields
}

func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Package exporter converts stored transaction records into CSV output.
//
// Two shapes are supported: a single flat export of every record, used
// by the HTTP export endpoint, and per-day files grouped by occurred_at
// date, used by the batch CLI. Monetary values are rendered with exactly
// two decimal places so exported files round-trip through spreadsheet
// tools without drift.
package exporter

// Package dataprocessing implements the ingestion-validation-aggregation
// pipeline for e-commerce transaction batches. It turns a raw, possibly
// malformed batch of rows into a consistent set of normalized records and
// computes business-facing aggregates over the accumulated dataset.
//
// # Architecture
//
// The package is organized into five components:
//
//  1. Parser: reads uploaded CSV/XLSX files into raw rows
//  2. Validator: checks a raw row against the expected schema
//  3. Normalizer: coerces validated fields into canonical types
//  4. Processor: orchestrates validate → normalize → dedup per row and
//     produces the batch outcome
//  5. Analytics: computes overview metrics and ranked/time-series views
//
// # Data Flow
//
// The typical data flow through this package:
//
//	Upload → Parser → RawRows → Processor (Validator → Normalizer → Dedup) → Records + Outcome
//
// Analytics requests read the accumulated records and compute a snapshot
// from scratch on every query.
//
// # Error Handling
//
// Row-level failures (validation, normalization, duplicate keys) are
// recorded against the row's 1-indexed position and never abort the batch.
// Only catastrophic failures (unreadable input, storage errors) fail a
// batch as a whole.
package dataprocessing

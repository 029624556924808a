// Package services implements the business logic layer of the ShopPulse
// application. It owns the ingestion critical section: the deduplication
// check against the store and the subsequent append happen inside one
// serialized operation, so two concurrent batches can never both observe
// "key absent" for the same deduplication key.
//
// # Service Layer Responsibilities
//
//	- Batch submission, outcome accounting and log lifecycle
//	- Serializing writers (batch appends and clear-all) against each other
//	- Read-side analytics queries, which run concurrently with ingestion
//	- Ingestion metrics
//
// Stores and the processing pipeline are injected dependencies, never
// ambient singletons.
package services

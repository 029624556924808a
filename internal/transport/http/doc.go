// Package http provides the HTTP transport layer for the ShopPulse API.
// It is thin plumbing over the core ingestion and analytics surface:
// handlers parse uploads into raw rows, delegate to the data service and
// render results, with errors reported as RFC 7807 problem details.
package http

// Package domain contains the core entities for the FeedPrism ingestion
// and retrieval pipeline: source documents, extracted items, indexed
// points and pipeline state. It has no dependencies on adapters.
package domain

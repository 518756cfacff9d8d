package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidContentType indicates an unknown content type.
	// This is a programming or configuration error, never retryable.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrStorageUnavailable indicates the vector index cannot be reached.
	// Callers decide whether to retry; the gateway never retries internally.
	ErrStorageUnavailable = errors.New("vector storage unavailable")

	// ErrUpstreamUnavailable indicates the mailbox collaborator failed.
	// Propagated per document; a batch continues past it.
	ErrUpstreamUnavailable = errors.New("mailbox unavailable")

	// ErrExtractionFailed indicates a typed extraction failed for one
	// document. Absorbed as an empty result for that type, logged and counted.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrFetchInProgress indicates a mailbox fetch is already running.
	// Rejected immediately; the caller may retry later.
	ErrFetchInProgress = errors.New("fetch already in progress")

	// ErrExtractionInProgress indicates an extraction run is already active.
	// Rejected immediately; the caller may retry later.
	ErrExtractionInProgress = errors.New("extraction already in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

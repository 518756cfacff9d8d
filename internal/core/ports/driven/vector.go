package driven

import (
	"context"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// VectorQuery describes one search against a content-type collection.
// Exactly one of Vector or Sparse is consulted: Vector runs a dense
// search against the named vector, Sparse runs a lexical search against
// the keywords sparse vector.
type VectorQuery struct {
	// Vector is the dense query embedding.
	Vector []float32

	// VectorName selects the named dense vector to search
	// (domain.VectorTitle when empty).
	VectorName string

	// Sparse is the lexical query vector; when set, Vector is ignored.
	Sparse *domain.SparseVector

	// Limit is the maximum number of hits.
	Limit int

	// Filter is an optional conjunction of payload predicates.
	Filter *domain.Filter

	// ScoreThreshold drops hits with a score at or below the threshold
	// when > 0.
	ScoreThreshold float64
}

// VectorGateway is the capability contract over the external vector
// index: per-content-type collections with named multi-vector points,
// sparse vectors, payload filtering, grouping and cursor-based scans.
//
// Any call that cannot reach the index returns an error wrapping
// domain.ErrStorageUnavailable. The gateway performs no internal
// retries; retry policy belongs to callers.
type VectorGateway interface {
	// EnsureTopology idempotently creates one collection per content
	// type (three named dense vectors plus the keywords sparse vector)
	// and the attempted-documents ledger.
	EnsureTopology(ctx context.Context) error

	// Upsert inserts or replaces points. No-op on empty input.
	Upsert(ctx context.Context, ct domain.ContentType, points []domain.Point) error

	// Search returns ranked hits for the query.
	Search(ctx context.Context, ct domain.ContentType, q VectorQuery) ([]domain.ScoredPoint, error)

	// SearchGrouped returns up to limit groups keyed by the groupBy
	// payload field, each holding at most groupSize hits; the first hit
	// of a group is its canonical representative.
	SearchGrouped(ctx context.Context, ct domain.ContentType, q VectorQuery, groupBy string, groupSize int) ([]domain.Group, error)

	// Retrieve fetches payloads for the given point IDs. Unknown IDs
	// are silently omitted.
	Retrieve(ctx context.Context, ct domain.ContentType, ids []string) ([]domain.ScoredPoint, error)

	// ScrollPayloads walks the collection in pages, invoking fn for
	// every point matching the filter (all points when filter is nil)
	// with only the requested payload fields loaded (all fields when
	// fields is nil). Stops early when fn errors.
	ScrollPayloads(ctx context.Context, ct domain.ContentType, fields []string, filter *domain.Filter, fn func(id string, payload map[string]any) error) error

	// DeleteBySourceIDs removes every point whose source_document_id is
	// in ids, across all content-type collections and the attempted
	// ledger. Required before re-extraction.
	DeleteBySourceIDs(ctx context.Context, ids []string) error

	// MarkAttempted records source documents in the attempted ledger so
	// they are never fetched again, regardless of extraction outcome.
	// Idempotent per ID.
	MarkAttempted(ctx context.Context, ids []string) error

	// ProcessedSourceIDs returns the union of source_document_id values
	// across all content-type collections and the attempted ledger.
	ProcessedSourceIDs(ctx context.Context) (map[string]struct{}, error)

	// CollectionCounts returns the point count per content type.
	CollectionCounts(ctx context.Context) (map[domain.ContentType]int, error)

	// Close releases resources.
	Close() error
}

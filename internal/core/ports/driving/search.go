package driving

import (
	"context"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// RetrievalService answers queries over the extracted feed items.
type RetrievalService interface {
	// HybridSearch fuses dense and sparse result lists with reciprocal
	// rank fusion and returns the top items, best first.
	HybridSearch(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.FeedItem, error)

	// GroupedSearch is HybridSearch collapsed by canonical key, so an
	// item mentioned by several newsletters appears once with its
	// provenance attached.
	GroupedSearch(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Group, error)

	// Recent lists the newest items of a content type without a query,
	// ordered by ingestion recency.
	Recent(ctx context.Context, ct domain.ContentType, limit int) ([]domain.FeedItem, error)
}

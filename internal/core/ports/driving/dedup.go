package driving

import (
	"context"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// DedupService decides identity for extracted items.
type DedupService interface {
	// CanonicalKey derives the stable identity key for a title within a
	// content type's collection. Equal keys mean the same real-world
	// item regardless of source.
	CanonicalKey(ct domain.ContentType, title string) string

	// FindNearDuplicates embeds the title and description together and
	// returns already-indexed points close enough to count as the same
	// item under a different wording. Hits must score strictly greater
	// than the threshold; a threshold <= 0 selects the default (0.92).
	FindNearDuplicates(ctx context.Context, ct domain.ContentType, title, description string, threshold float64) ([]domain.ScoredPoint, error)
}

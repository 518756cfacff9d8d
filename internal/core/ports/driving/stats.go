package driving

import (
	"context"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// StatsService reports on the state of the index.
type StatsService interface {
	// Overview returns per-collection point counts, the number of
	// distinct processed source documents, upstream health, and an
	// aggregation of items extracted within the last days days: counts
	// by type, top organizers, top providers, top tags, and the average
	// weekly rate. A days value <= 0 selects the default window.
	Overview(ctx context.Context, days int) (*domain.StatsOverview, error)
}

package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// Mailbox is the upstream message source. Its transport is not safely
// reentrant: the pipeline serialises access through the fetch lease and
// never issues concurrent listing calls.
type Mailbox interface {
	// ListCandidates returns one page of candidate message IDs within
	// the lookback window, plus the token for the next page (empty when
	// exhausted).
	ListCandidates(ctx context.Context, window time.Duration, pageToken string) (ids []string, nextToken string, err error)

	// Fetch retrieves one full document. Errors wrap
	// domain.ErrUpstreamUnavailable when the mailbox cannot be reached.
	Fetch(ctx context.Context, id string) (*domain.Document, error)

	// FetchBatch retrieves multiple documents, tolerating per-ID
	// failures: documents that fail to fetch are omitted, not fatal.
	FetchBatch(ctx context.Context, ids []string) ([]domain.Document, error)

	// Close releases resources.
	Close() error
}

package driving

import (
	"context"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// PipelineService coordinates the fetch → extract → ingest lifecycle.
//
// Fetching and extracting are independent coarse-grained leases: one
// mailbox fetch at a time, one extraction run at a time, process-wide.
// Contention is rejected immediately (domain.ErrFetchInProgress,
// domain.ErrExtractionInProgress), never queued.
type PipelineService interface {
	// ListUnprocessed acquires the fetch lease and returns a batch of
	// documents that have never been through an extraction attempt,
	// paginating the mailbox until the batch fills or pages exhaust.
	ListUnprocessed(ctx context.Context, settings domain.PipelineSettings) (*domain.FetchResult, error)

	// Extract runs the extraction cycle over the given document IDs and
	// returns the run's event stream. The channel is closed after a
	// final EventComplete. Documents already processed produce skip
	// events rather than duplicate points.
	Extract(ctx context.Context, ids []string) (<-chan domain.PipelineEvent, error)

	// ReExtract deletes all indexed points derived from the given
	// documents, then runs a fresh extraction cycle over them. With no
	// IDs, every processed document is re-extracted.
	ReExtract(ctx context.Context, ids []string) (<-chan domain.PipelineEvent, error)

	// Status returns a snapshot of the state machine, clearing any
	// lease whose holder is presumed crashed (expiry passed).
	Status(ctx context.Context) domain.PipelineStatus

	// ResetFetchLock force-releases the fetch lease, reporting whether
	// it was held.
	ResetFetchLock(ctx context.Context) bool
}

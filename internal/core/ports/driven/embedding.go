package driven

import "context"

// EmbeddingService generates dense vector embeddings from text.
//
// Implementations must return a zero-vector of the configured
// dimensionality (not an error) for empty input, so downstream upsert
// logic stays simple.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. Deterministic and
	// fixed for the lifetime of the service; must match the index
	// topology.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

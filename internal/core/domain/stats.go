package domain

// NameCount is one entry of a frequency ranking.
type NameCount struct {
	Name  string
	Count int
}

// StatsOverview summarises the state of the index and its upstreams,
// plus an aggregation of what was extracted within a recent window.
type StatsOverview struct {
	// CollectionCounts maps content type to all-time indexed point count.
	CollectionCounts map[ContentType]int

	// ProcessedDocuments is the number of distinct source documents
	// that have been through at least one extraction attempt.
	ProcessedDocuments int

	// TotalItems is the sum of CollectionCounts.
	TotalItems int

	// WindowDays is the aggregation window the fields below cover.
	WindowDays int

	// WindowCounts maps content type to the number of items extracted
	// within the window.
	WindowCounts map[ContentType]int

	// WindowItems is the sum of WindowCounts.
	WindowItems int

	// TopOrganizers ranks event organizers within the window.
	TopOrganizers []NameCount

	// TopProviders ranks course providers within the window.
	TopProviders []NameCount

	// TopTags ranks tags across all types within the window.
	TopTags []NameCount

	// AvgItemsPerWeek is WindowItems normalised to a weekly rate.
	AvgItemsPerWeek float64

	// EmbeddingModel is the model name reported by the embedding
	// upstream, empty when it is unreachable.
	EmbeddingModel string

	// EmbeddingDimensions is the dense vector width in use.
	EmbeddingDimensions int

	// IndexHealthy and EmbeddingHealthy report upstream reachability
	// at the time of the snapshot.
	IndexHealthy     bool
	EmbeddingHealthy bool
}

package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/core/ports/driving"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// defaultStatsWindowDays is the aggregation window when callers pass none.
const defaultStatsWindowDays = 30

// Ranking sizes for the windowed aggregation.
const (
	topOrganizers = 10
	topProviders  = 10
	topTags       = 20
)

// unknownName stands in for items extracted without an organizer or
// provider, so they still show up in the rankings.
const unknownName = "Unknown"

// StatsService reports on the state of the index and its upstreams.
type StatsService struct {
	vectors  driven.VectorGateway
	embedder driven.EmbeddingService
	clock    Clock
}

// NewStatsService creates a new stats service.
func NewStatsService(vectors driven.VectorGateway, embedder driven.EmbeddingService) *StatsService {
	return &StatsService{vectors: vectors, embedder: embedder, clock: SystemClock()}
}

// Overview gathers collection counts, the processed-document count,
// upstream health and the windowed extraction aggregation concurrently.
// An unreachable upstream zeroes its section rather than failing the
// whole snapshot.
func (s *StatsService) Overview(ctx context.Context, days int) (*domain.StatsOverview, error) {
	if days <= 0 {
		days = defaultStatsWindowDays
	}

	out := &domain.StatsOverview{
		CollectionCounts: make(map[domain.ContentType]int),
		WindowCounts:     make(map[domain.ContentType]int),
		WindowDays:       days,
	}

	var g errgroup.Group

	g.Go(func() error {
		counts, err := s.vectors.CollectionCounts(ctx)
		if err != nil {
			logger.Warn("Collection counts unavailable: %v", err)
			return nil
		}
		out.IndexHealthy = true
		for ct, n := range counts {
			out.CollectionCounts[ct] = n
			out.TotalItems += n
		}
		return nil
	})

	g.Go(func() error {
		processed, err := s.vectors.ProcessedSourceIDs(ctx)
		if err != nil {
			logger.Warn("Processed source ids unavailable: %v", err)
			return nil
		}
		out.ProcessedDocuments = len(processed)
		return nil
	})

	g.Go(func() error {
		if err := s.aggregateWindow(ctx, days, out); err != nil {
			logger.Warn("Window aggregation unavailable: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		if s.embedder == nil {
			return nil
		}
		if err := s.embedder.Ping(ctx); err != nil {
			logger.Warn("Embedding service unreachable: %v", err)
			return nil
		}
		out.EmbeddingHealthy = true
		out.EmbeddingModel = s.embedder.ModelName()
		out.EmbeddingDimensions = s.embedder.Dimensions()
		return nil
	})

	// Goroutines absorb their own failures; Wait cannot error here.
	_ = g.Wait()
	return out, nil
}

// aggregateWindow scrolls every collection restricted to points
// extracted within the last days days and tallies counts, organizers,
// providers and tags.
func (s *StatsService) aggregateWindow(ctx context.Context, days int, out *domain.StatsOverview) error {
	cutoff := s.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)
	filter := &domain.Filter{Must: []domain.Condition{
		{Field: domain.FieldExtractedAt, After: &cutoff},
	}}

	organizers := make(map[string]int)
	providers := make(map[string]int)
	tags := make(map[string]int)

	for _, ct := range domain.AllContentTypes() {
		ct := ct
		err := s.vectors.ScrollPayloads(ctx, ct, nil, filter,
			func(_ string, payload map[string]any) error {
				out.WindowCounts[ct]++
				out.WindowItems++

				switch ct {
				case domain.ContentTypeEvent:
					organizers[payloadName(payload, domain.FieldOrganizer)]++
				case domain.ContentTypeCourse:
					providers[payloadName(payload, domain.FieldProvider)]++
				}
				for _, tag := range payloadTags(payload) {
					tags[tag]++
				}
				return nil
			})
		if err != nil {
			return err
		}
	}

	out.TopOrganizers = rankNames(organizers, topOrganizers)
	out.TopProviders = rankNames(providers, topProviders)
	out.TopTags = rankNames(tags, topTags)
	out.AvgItemsPerWeek = float64(out.WindowItems) / (float64(days) / 7)
	return nil
}

func payloadName(payload map[string]any, field string) string {
	if s, ok := payload[field].(string); ok && s != "" {
		return s
	}
	return unknownName
}

func payloadTags(payload map[string]any) []string {
	switch list := payload[domain.FieldTags].(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if list != "" {
			return []string{list}
		}
	}
	return nil
}

// rankNames returns the n most frequent names, ties broken
// alphabetically so the ranking is stable.
func rankNames(counts map[string]int, n int) []domain.NameCount {
	out := make([]domain.NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, domain.NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

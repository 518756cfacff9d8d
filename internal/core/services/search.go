package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/core/ports/driving"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

const (
	// rrfK dampens the weight of top ranks in reciprocal rank fusion.
	rrfK = 60

	// defaultSearchLimit applies when the caller passes no limit.
	defaultSearchLimit = 10

	// groupSize is how many co-extractions each result group carries.
	groupSize = 3
)

// fusedHit holds an ID with its fused relevance score.
type fusedHit struct {
	id    string
	score float64
}

// RetrievalService answers queries over the extracted feed items with
// hybrid dense plus lexical retrieval.
type RetrievalService struct {
	vectors  driven.VectorGateway
	embedder driven.EmbeddingService
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(vectors driven.VectorGateway, embedder driven.EmbeddingService) *RetrievalService {
	return &RetrievalService{vectors: vectors, embedder: embedder}
}

// HybridSearch runs dense and sparse searches per content type, fuses
// them with reciprocal rank fusion and returns the top items.
func (s *RetrievalService) HybridSearch(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.FeedItem, error) {
	logger.Section("Hybrid Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.FeedItem{}, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	dense, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	sparse := EncodeSparse(query)

	var items []domain.FeedItem
	for _, ct := range s.effectiveTypes(opts) {
		fused, err := s.searchType(ctx, ct, dense, sparse, limit, opts.Filter)
		if err != nil {
			return nil, err
		}
		hydrated, err := s.hydrate(ctx, ct, fused)
		if err != nil {
			return nil, err
		}
		items = append(items, hydrated...)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > limit {
		items = items[:limit]
	}
	logger.Info("Final results: %d", len(items))
	return items, nil
}

// GroupedSearch runs a dense grouped search per content type, so items
// mentioned by several newsletters collapse to one group keyed by
// canonical key.
func (s *RetrievalService) GroupedSearch(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.Group, error) {
	logger.Section("Grouped Search")

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Group{}, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	dense, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var groups []domain.Group
	for _, ct := range s.effectiveTypes(opts) {
		q := driven.VectorQuery{
			Vector:     dense,
			VectorName: domain.VectorTitle,
			Limit:      limit,
			Filter:     opts.Filter,
		}
		got, err := s.vectors.SearchGrouped(ctx, ct, q, domain.FieldCanonicalKey, groupSize)
		if err != nil {
			return nil, fmt.Errorf("grouped search %s: %w", ct.CollectionName(), err)
		}
		groups = append(groups, got...)
	}

	// Best representative first across types.
	sort.SliceStable(groups, func(i, j int) bool {
		return topScore(groups[i]) > topScore(groups[j])
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}
	logger.Info("Result groups: %d", len(groups))
	return groups, nil
}

// Recent lists the newest items of a content type by extraction time.
func (s *RetrievalService) Recent(
	ctx context.Context, ct domain.ContentType, limit int,
) ([]domain.FeedItem, error) {
	if !ct.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidContentType, ct)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var points []domain.ScoredPoint
	err := s.vectors.ScrollPayloads(ctx, ct, nil, nil, func(id string, payload map[string]any) error {
		points = append(points, domain.ScoredPoint{ID: id, Payload: payload})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scroll %s: %w", ct.CollectionName(), err)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return extractedAt(points[i]) > extractedAt(points[j])
	})
	if len(points) > limit {
		points = points[:limit]
	}

	items := make([]domain.FeedItem, len(points))
	for i, p := range points {
		items[i] = domain.FeedItemFromPayload(p, ct)
	}
	return items, nil
}

// searchType runs the dense and sparse legs for one content type in
// parallel and fuses them. One failed leg degrades to the other; both
// failing is an error.
func (s *RetrievalService) searchType(
	ctx context.Context,
	ct domain.ContentType,
	dense []float32,
	sparse *domain.SparseVector,
	limit int,
	filter *domain.Filter,
) ([]fusedHit, error) {
	// Over-fetch per leg so fusion has candidates to promote.
	legLimit := limit * 2

	var (
		denseHits, sparseHits []domain.ScoredPoint
		denseErr, sparseErr   error
		wg                    sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		denseHits, denseErr = s.vectors.Search(ctx, ct, driven.VectorQuery{
			Vector:     dense,
			VectorName: domain.VectorTitle,
			Limit:      legLimit,
			Filter:     filter,
		})
	}()

	if !sparse.IsEmpty() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sparseHits, sparseErr = s.vectors.Search(ctx, ct, driven.VectorQuery{
				Sparse: sparse,
				Limit:  legLimit,
				Filter: filter,
			})
		}()
	}
	wg.Wait()

	if denseErr != nil && sparseErr != nil {
		return nil, fmt.Errorf("search %s: dense=%w, sparse=%w", ct.CollectionName(), denseErr, sparseErr)
	}
	if denseErr != nil {
		logger.Warn("Dense search failed for %s, using sparse only: %v", ct.CollectionName(), denseErr)
	}
	if sparseErr != nil {
		logger.Warn("Sparse search failed for %s, using dense only: %v", ct.CollectionName(), sparseErr)
	}

	fused := reciprocalRankFusion(denseHits, sparseHits, rrfK)
	if len(fused) > limit {
		fused = fused[:limit]
	}
	logger.Debug("%s: %d dense + %d sparse -> %d fused",
		ct.CollectionName(), len(denseHits), len(sparseHits), len(fused))
	return fused, nil
}

// hydrate re-fetches payloads for fused IDs and builds feed items
// carrying the fused scores.
func (s *RetrievalService) hydrate(
	ctx context.Context, ct domain.ContentType, fused []fusedHit,
) ([]domain.FeedItem, error) {
	if len(fused) == 0 {
		return nil, nil
	}

	ids := make([]string, len(fused))
	scores := make(map[string]float64, len(fused))
	for i, h := range fused {
		ids[i] = h.id
		scores[h.id] = h.score
	}

	points, err := s.vectors.Retrieve(ctx, ct, ids)
	if err != nil {
		return nil, fmt.Errorf("retrieve payloads %s: %w", ct.CollectionName(), err)
	}

	byID := make(map[string]domain.ScoredPoint, len(points))
	for _, p := range points {
		byID[p.ID] = p
	}

	var items []domain.FeedItem
	for _, h := range fused {
		p, ok := byID[h.id]
		if !ok {
			continue
		}
		p.Score = scores[h.id]
		items = append(items, domain.FeedItemFromPayload(p, ct))
	}
	return items, nil
}

// effectiveTypes resolves the content types a query targets.
func (s *RetrievalService) effectiveTypes(opts domain.SearchOptions) []domain.ContentType {
	if len(opts.Types) == 0 {
		return domain.AllContentTypes()
	}
	return opts.Types
}

// reciprocalRankFusion merges two ranked lists. Each hit contributes
// 1/(k+rank) with 1-based ranks; hits present in both lists sum their
// contributions. Raw leg scores are discarded: only ranks matter, so
// cosine similarities and lexical dot products fuse on equal footing.
func reciprocalRankFusion(a, b []domain.ScoredPoint, k int) []fusedHit {
	scores := make(map[string]float64, len(a)+len(b))
	order := make([]string, 0, len(a)+len(b))

	add := func(hits []domain.ScoredPoint) {
		for rank, hit := range hits {
			if _, seen := scores[hit.ID]; !seen {
				order = append(order, hit.ID)
			}
			scores[hit.ID] += 1.0 / float64(k+rank+1)
		}
	}
	add(a)
	add(b)

	fused := make([]fusedHit, 0, len(order))
	for _, id := range order {
		fused = append(fused, fusedHit{id: id, score: scores[id]})
	}
	sort.SliceStable(fused, func(i, j int) bool { return fused[i].score > fused[j].score })
	return fused
}

// topScore returns the score of a group's representative hit.
func topScore(g domain.Group) float64 {
	if len(g.Hits) == 0 {
		return 0
	}
	return g.Hits[0].Score
}

// extractedAt reads the extraction timestamp for recency ordering.
// RFC 3339 strings compare correctly lexicographically.
func extractedAt(p domain.ScoredPoint) string {
	if v, ok := p.Payload[domain.FieldExtractedAt].(string); ok {
		return v
	}
	return ""
}

// Package memory provides an in-memory VectorGateway with the same
// semantics as the Qdrant adapter: cosine-scored dense search, dot
// product sparse search, payload filters, grouping and the attempted
// ledger. Used in tests and for offline runs.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
)

// Ensure Gateway implements the interface.
var _ driven.VectorGateway = (*Gateway)(nil)

// Gateway stores points in maps guarded by one RWMutex.
type Gateway struct {
	mu        sync.RWMutex
	points    map[domain.ContentType]map[string]domain.Point
	attempted map[string]struct{}
}

// NewGateway creates an empty in-memory gateway.
func NewGateway() *Gateway {
	g := &Gateway{
		points:    make(map[domain.ContentType]map[string]domain.Point),
		attempted: make(map[string]struct{}),
	}
	for _, ct := range domain.AllContentTypes() {
		g.points[ct] = make(map[string]domain.Point)
	}
	return g
}

// EnsureTopology is a no-op: collections exist from construction.
func (g *Gateway) EnsureTopology(_ context.Context) error { return nil }

// Upsert inserts or replaces points.
func (g *Gateway) Upsert(_ context.Context, ct domain.ContentType, points []domain.Point) error {
	if !ct.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidContentType, ct)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range points {
		g.points[ct][p.ID] = p
	}
	return nil
}

// Search returns ranked hits for a dense or sparse query.
func (g *Gateway) Search(_ context.Context, ct domain.ContentType, q driven.VectorQuery) ([]domain.ScoredPoint, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var hits []domain.ScoredPoint
	for _, p := range g.points[ct] {
		if !q.Filter.Matches(p.Payload) {
			continue
		}

		var score float64
		if q.Sparse != nil {
			score = sparseDot(q.Sparse, p.Sparse)
			if score == 0 {
				continue
			}
		} else {
			name := q.VectorName
			if name == "" {
				name = domain.VectorTitle
			}
			vec, ok := p.Vectors[name]
			if !ok {
				continue
			}
			score = cosine(q.Vector, vec)
		}

		if q.ScoreThreshold > 0 && score <= q.ScoreThreshold {
			continue
		}
		hits = append(hits, domain.ScoredPoint{ID: p.ID, Score: score, Payload: p.Payload})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

// SearchGrouped collapses search hits by a payload field.
func (g *Gateway) SearchGrouped(
	ctx context.Context, ct domain.ContentType, q driven.VectorQuery, groupBy string, groupSize int,
) ([]domain.Group, error) {
	limit := q.Limit

	// Over-fetch so enough distinct groups survive the collapse.
	wide := q
	wide.Limit = limit * groupSize * 2
	hits, err := g.Search(ctx, ct, wide)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var groups []domain.Group
	sources := make(map[string]map[string]struct{})

	for _, hit := range hits {
		key, _ := hit.Payload[groupBy].(string)
		if key == "" {
			continue
		}

		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, domain.Group{Key: key})
			sources[key] = make(map[string]struct{})
			i = index[key]
		}
		if len(groups[i].Hits) < groupSize {
			groups[i].Hits = append(groups[i].Hits, hit)
		}
		if src, ok := hit.Payload[domain.FieldSourceDocumentID].(string); ok {
			sources[key][src] = struct{}{}
		}
	}

	for i := range groups {
		groups[i].SourceCount = len(sources[groups[i].Key])
	}
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}

// Retrieve fetches payloads for the given point IDs.
func (g *Gateway) Retrieve(_ context.Context, ct domain.ContentType, ids []string) ([]domain.ScoredPoint, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []domain.ScoredPoint
	for _, id := range ids {
		if p, ok := g.points[ct][id]; ok {
			out = append(out, domain.ScoredPoint{ID: p.ID, Payload: p.Payload})
		}
	}
	return out, nil
}

// ScrollPayloads walks every point of a collection matching the filter.
func (g *Gateway) ScrollPayloads(
	_ context.Context, ct domain.ContentType, fields []string, filter *domain.Filter, fn func(id string, payload map[string]any) error,
) error {
	g.mu.RLock()
	ids := make([]string, 0, len(g.points[ct]))
	for id := range g.points[ct] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	pts := make([]domain.Point, len(ids))
	for i, id := range ids {
		pts[i] = g.points[ct][id]
	}
	g.mu.RUnlock()

	for _, p := range pts {
		if !filter.Matches(p.Payload) {
			continue
		}
		payload := p.Payload
		if len(fields) > 0 {
			trimmed := make(map[string]any, len(fields))
			for _, f := range fields {
				if v, ok := payload[f]; ok {
					trimmed[f] = v
				}
			}
			payload = trimmed
		}
		if err := fn(p.ID, payload); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBySourceIDs removes every point derived from the given source
// documents and clears their ledger entries.
func (g *Gateway) DeleteBySourceIDs(_ context.Context, ids []string) error {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, ct := range domain.AllContentTypes() {
		for id, p := range g.points[ct] {
			src, _ := p.Payload[domain.FieldSourceDocumentID].(string)
			if _, hit := want[src]; hit {
				delete(g.points[ct], id)
			}
		}
	}
	for id := range want {
		delete(g.attempted, id)
	}
	return nil
}

// MarkAttempted records source documents in the attempted ledger.
func (g *Gateway) MarkAttempted(_ context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		g.attempted[id] = struct{}{}
	}
	return nil
}

// ProcessedSourceIDs returns the union of source document IDs across
// collections and the ledger.
func (g *Gateway) ProcessedSourceIDs(_ context.Context) (map[string]struct{}, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[string]struct{}, len(g.attempted))
	for id := range g.attempted {
		out[id] = struct{}{}
	}
	for _, ct := range domain.AllContentTypes() {
		for _, p := range g.points[ct] {
			if src, ok := p.Payload[domain.FieldSourceDocumentID].(string); ok && src != "" {
				out[src] = struct{}{}
			}
		}
	}
	return out, nil
}

// CollectionCounts returns the point count per content type.
func (g *Gateway) CollectionCounts(_ context.Context) (map[domain.ContentType]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[domain.ContentType]int, len(g.points))
	for ct, pts := range g.points {
		out[ct] = len(pts)
	}
	return out, nil
}

// Close releases resources.
func (g *Gateway) Close() error { return nil }

// cosine computes cosine similarity between two vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sparseDot computes the dot product of two sparse vectors over their
// shared indices.
func sparseDot(a, b *domain.SparseVector) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return 0
	}
	weights := make(map[uint32]float32, len(a.Indices))
	for i, idx := range a.Indices {
		weights[idx] = a.Values[i]
	}
	var dot float64
	for i, idx := range b.Indices {
		if w, ok := weights[idx]; ok {
			dot += float64(w) * float64(b.Values[i])
		}
	}
	return dot
}

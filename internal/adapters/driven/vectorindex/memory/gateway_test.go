package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
)

func eventPoint(id, title, sourceDoc, key string, titleVec []float32) domain.Point {
	return domain.Point{
		ID: id,
		Vectors: map[string][]float32{
			domain.VectorTitle:    titleVec,
			domain.VectorFullText: titleVec,
		},
		Sparse: &domain.SparseVector{Indices: []uint32{1, 2}, Values: []float32{1, 1}},
		Payload: map[string]any{
			domain.FieldTitle:            title,
			domain.FieldCanonicalKey:     key,
			domain.FieldSourceDocumentID: sourceDoc,
		},
	}
}

func TestGateway_Search(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	require.NoError(t, g.Upsert(ctx, domain.ContentTypeEvent, []domain.Point{
		eventPoint("p1", "AI Summit", "d1", "k1", []float32{1, 0}),
		eventPoint("p2", "Go Meetup", "d2", "k2", []float32{0, 1}),
		eventPoint("p3", "ML Workshop", "d3", "k3", []float32{0.9, 0.1}),
	}))

	t.Run("dense ranks by cosine similarity", func(t *testing.T) {
		hits, err := g.Search(ctx, domain.ContentTypeEvent, driven.VectorQuery{
			Vector: []float32{1, 0},
			Limit:  2,
		})
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "p1", hits[0].ID)
		assert.Equal(t, "p3", hits[1].ID)
		assert.Greater(t, hits[0].Score, hits[1].Score)
	})

	t.Run("score threshold is strictly greater", func(t *testing.T) {
		hits, err := g.Search(ctx, domain.ContentTypeEvent, driven.VectorQuery{
			Vector:         []float32{1, 0},
			Limit:          10,
			ScoreThreshold: 1.0,
		})
		require.NoError(t, err)
		assert.Empty(t, hits, "perfect match scores exactly 1.0, not above it")
	})

	t.Run("sparse scores by shared term weight", func(t *testing.T) {
		hits, err := g.Search(ctx, domain.ContentTypeEvent, driven.VectorQuery{
			Sparse: &domain.SparseVector{Indices: []uint32{2, 9}, Values: []float32{2, 1}},
			Limit:  10,
		})
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.InDelta(t, 2.0, hits[0].Score, 1e-9)
	})

	t.Run("filter restricts hits", func(t *testing.T) {
		hits, err := g.Search(ctx, domain.ContentTypeEvent, driven.VectorQuery{
			Vector: []float32{1, 0},
			Limit:  10,
			Filter: &domain.Filter{Must: []domain.Condition{
				{Field: domain.FieldSourceDocumentID, Equals: "d2"},
			}},
		})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "p2", hits[0].ID)
	})
}

func TestGateway_SearchGrouped(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	// The same summit extracted from two different newsletters.
	require.NoError(t, g.Upsert(ctx, domain.ContentTypeEvent, []domain.Point{
		eventPoint("p1", "AI Summit 2026", "d1", "summit", []float32{1, 0}),
		eventPoint("p2", "AI Summit 2026", "d2", "summit", []float32{0.99, 0.01}),
		eventPoint("p3", "Go Meetup", "d3", "meetup", []float32{0.5, 0.5}),
	}))

	groups, err := g.SearchGrouped(ctx, domain.ContentTypeEvent, driven.VectorQuery{
		Vector: []float32{1, 0},
		Limit:  10,
	}, domain.FieldCanonicalKey, 3)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "summit", groups[0].Key)
	assert.Len(t, groups[0].Hits, 2)
	assert.Equal(t, 2, groups[0].SourceCount, "two newsletters mention the summit")
	assert.Equal(t, "p1", groups[0].Hits[0].ID, "best hit is the representative")

	assert.Equal(t, "meetup", groups[1].Key)
	assert.Equal(t, 1, groups[1].SourceCount)
}

func TestGateway_Ledger(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	require.NoError(t, g.Upsert(ctx, domain.ContentTypeArticle, []domain.Point{
		eventPoint("p1", "Why Go", "d1", "k1", []float32{1, 0}),
	}))
	require.NoError(t, g.MarkAttempted(ctx, []string{"d2"}))

	t.Run("union of collections and ledger", func(t *testing.T) {
		processed, err := g.ProcessedSourceIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, processed, "d1")
		assert.Contains(t, processed, "d2")
		assert.Len(t, processed, 2)
	})

	t.Run("delete clears points and ledger entries", func(t *testing.T) {
		require.NoError(t, g.DeleteBySourceIDs(ctx, []string{"d1", "d2"}))

		processed, err := g.ProcessedSourceIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, processed)

		counts, err := g.CollectionCounts(ctx)
		require.NoError(t, err)
		assert.Zero(t, counts[domain.ContentTypeArticle])
	})
}

func TestGateway_ScrollPayloads(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	require.NoError(t, g.Upsert(ctx, domain.ContentTypeCourse, []domain.Point{
		eventPoint("b", "Course B", "d2", "kb", []float32{1, 0}),
		eventPoint("a", "Course A", "d1", "ka", []float32{0, 1}),
	}))

	var ids []string
	var payloads []map[string]any
	err := g.ScrollPayloads(ctx, domain.ContentTypeCourse, []string{domain.FieldCanonicalKey}, nil,
		func(id string, payload map[string]any) error {
			ids = append(ids, id)
			payloads = append(payloads, payload)
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids, "stable id order")
	require.Len(t, payloads[0], 1)
	assert.Equal(t, "ka", payloads[0][domain.FieldCanonicalKey])

	t.Run("range filter skips stale points", func(t *testing.T) {
		fresh := eventPoint("fresh", "Course Fresh", "d3", "kf", []float32{1, 1})
		fresh.Payload[domain.FieldExtractedAt] = "2026-02-20T00:00:00Z"
		stale := eventPoint("stale", "Course Stale", "d4", "ks", []float32{1, 1})
		stale.Payload[domain.FieldExtractedAt] = "2026-01-01T00:00:00Z"
		require.NoError(t, g.Upsert(ctx, domain.ContentTypeCourse, []domain.Point{fresh, stale}))

		cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		filter := &domain.Filter{Must: []domain.Condition{
			{Field: domain.FieldExtractedAt, After: &cutoff},
		}}
		var seen []string
		err := g.ScrollPayloads(ctx, domain.ContentTypeCourse, nil, filter,
			func(id string, payload map[string]any) error {
				seen = append(seen, id)
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, []string{"fresh"}, seen)
	})
}

func TestGateway_Retrieve(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	require.NoError(t, g.Upsert(ctx, domain.ContentTypeEvent, []domain.Point{
		eventPoint("p1", "AI Summit", "d1", "k1", []float32{1, 0}),
	}))

	got, err := g.Retrieve(ctx, domain.ContentTypeEvent, []string{"p1", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1, "unknown ids are silently omitted")
	assert.Equal(t, "AI Summit", got[0].Payload[domain.FieldTitle])
}

package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
)

// recordingServer captures requests and replays canned results.
type recordingServer struct {
	*httptest.Server
	requests []recordedRequest
	// results maps "METHOD path" to the result payload of the envelope.
	results map[string]any
}

type recordedRequest struct {
	method string
	path   string
	body   map[string]any
}

func newRecordingServer(t *testing.T) *recordingServer {
	t.Helper()
	rs := &recordingServer{results: make(map[string]any)}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body)
		}
		rs.requests = append(rs.requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			body:   body,
		})

		result, ok := rs.results[r.Method+" "+r.URL.Path]
		if !ok {
			result = map[string]any{}
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "result": result})
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) paths() []string {
	out := make([]string, len(rs.requests))
	for i, r := range rs.requests {
		out[i] = r.method + " " + r.path
	}
	return out
}

func TestGateway_EnsureTopology(t *testing.T) {
	rs := newRecordingServer(t)
	for _, name := range []string{"events", "courses", "articles", "attempted_documents"} {
		rs.results["GET /collections/"+name+"/exists"] = map[string]any{"exists": name == "events"}
	}

	g := NewGateway(Config{BaseURL: rs.URL, Dimensions: 768})
	require.NoError(t, g.EnsureTopology(context.Background()))

	paths := rs.paths()
	assert.NotContains(t, paths, "PUT /collections/events", "existing collection untouched")
	assert.Contains(t, paths, "PUT /collections/courses")
	assert.Contains(t, paths, "PUT /collections/articles")
	assert.Contains(t, paths, "PUT /collections/attempted_documents")

	// Item collections carry the three named dense vectors plus sparse.
	for _, r := range rs.requests {
		if r.method == "PUT" && r.path == "/collections/courses" {
			vectors := r.body["vectors"].(map[string]any)
			assert.Len(t, vectors, 3)
			assert.Contains(t, r.body, "sparse_vectors")
		}
	}
}

func TestGateway_Search(t *testing.T) {
	t.Run("dense query uses the named vector", func(t *testing.T) {
		rs := newRecordingServer(t)
		rs.results["POST /collections/events/points/query"] = map[string]any{
			"points": []map[string]any{
				{"id": "p1", "score": 0.9, "payload": map[string]any{"title": "AI Summit"}},
			},
		}

		g := NewGateway(Config{BaseURL: rs.URL})
		hits, err := g.Search(context.Background(), domain.ContentTypeEvent, driven.VectorQuery{
			Vector:     []float32{0.1, 0.2},
			VectorName: domain.VectorFullText,
			Limit:      5,
		})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "p1", hits[0].ID)
		assert.InDelta(t, 0.9, hits[0].Score, 1e-9)

		req := rs.requests[len(rs.requests)-1]
		assert.Equal(t, "full_text", req.body["using"])
		assert.EqualValues(t, 5, req.body["limit"])
	})

	t.Run("sparse query targets keywords", func(t *testing.T) {
		rs := newRecordingServer(t)
		rs.results["POST /collections/articles/points/query"] = map[string]any{"points": []any{}}

		g := NewGateway(Config{BaseURL: rs.URL})
		_, err := g.Search(context.Background(), domain.ContentTypeArticle, driven.VectorQuery{
			Sparse: &domain.SparseVector{Indices: []uint32{7, 42}, Values: []float32{1, 2}},
			Limit:  3,
		})
		require.NoError(t, err)

		req := rs.requests[len(rs.requests)-1]
		assert.Equal(t, "keywords", req.body["using"])
		query := req.body["query"].(map[string]any)
		assert.Contains(t, query, "indices")
		assert.Contains(t, query, "values")
	})

	t.Run("unreachable index wraps the storage error", func(t *testing.T) {
		g := NewGateway(Config{BaseURL: "http://127.0.0.1:1"})
		_, err := g.Search(context.Background(), domain.ContentTypeEvent, driven.VectorQuery{
			Vector: []float32{1}, Limit: 1,
		})
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})
}

func TestGateway_ScrollPayloads(t *testing.T) {
	rs := newRecordingServer(t)

	// The canned result repeats, so signal the end on the first page.
	rs.results["POST /collections/courses/points/scroll"] = map[string]any{
		"points": []map[string]any{
			{"id": "p1", "payload": map[string]any{"canonical_key": "k1"}},
			{"id": 42, "payload": map[string]any{"canonical_key": "k2"}},
		},
		"next_page_offset": nil,
	}

	g := NewGateway(Config{BaseURL: rs.URL})
	var got []string
	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	filter := &domain.Filter{Must: []domain.Condition{
		{Field: domain.FieldExtractedAt, After: &cutoff},
	}}
	err := g.ScrollPayloads(context.Background(), domain.ContentTypeCourse,
		[]string{"canonical_key"}, filter,
		func(id string, payload map[string]any) error {
			got = append(got, id)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "42"}, got, "integer ids render as strings")

	req := rs.requests[0]
	include := req.body["with_payload"].(map[string]any)["include"].([]any)
	assert.Equal(t, []any{"canonical_key"}, include)
	assert.Contains(t, req.body, "filter", "range filter pushed into the scroll request")
}

func TestGateway_DeleteBySourceIDs(t *testing.T) {
	rs := newRecordingServer(t)
	g := NewGateway(Config{BaseURL: rs.URL})

	require.NoError(t, g.DeleteBySourceIDs(context.Background(), []string{"m1", "m2"}))

	paths := rs.paths()
	assert.Contains(t, paths, "POST /collections/events/points/delete")
	assert.Contains(t, paths, "POST /collections/courses/points/delete")
	assert.Contains(t, paths, "POST /collections/articles/points/delete")
	assert.Contains(t, paths, "POST /collections/attempted_documents/points/delete")
}

func TestGateway_MarkAttempted(t *testing.T) {
	rs := newRecordingServer(t)
	g := NewGateway(Config{BaseURL: rs.URL})
	ctx := context.Background()

	require.NoError(t, g.MarkAttempted(ctx, []string{"msg-abc"}))
	require.NoError(t, g.MarkAttempted(ctx, []string{"msg-abc"}))

	// Same message, same ledger point: the second upsert overwrites.
	first := rs.requests[0].body["points"].([]any)[0].(map[string]any)
	second := rs.requests[1].body["points"].([]any)[0].(map[string]any)
	assert.Equal(t, first["id"], second["id"])

	payload := first["payload"].(map[string]any)
	assert.Equal(t, "msg-abc", payload["source_document_id"])
}

func TestGateway_ProcessedSourceIDs(t *testing.T) {
	rs := newRecordingServer(t)
	rs.results["POST /collections/events/points/scroll"] = map[string]any{
		"points": []map[string]any{
			{"id": "p1", "payload": map[string]any{"source_document_id": "m1"}},
		},
	}
	rs.results["POST /collections/attempted_documents/points/scroll"] = map[string]any{
		"points": []map[string]any{
			{"id": "p2", "payload": map[string]any{"source_document_id": "m2"}},
		},
	}

	g := NewGateway(Config{BaseURL: rs.URL})
	got, err := g.ProcessedSourceIDs(context.Background())
	require.NoError(t, err)

	assert.Contains(t, got, "m1")
	assert.Contains(t, got, "m2", "attempted but itemless documents count as processed")
	assert.Len(t, got, 2)
}

func TestGateway_CollectionCounts(t *testing.T) {
	rs := newRecordingServer(t)
	rs.results["POST /collections/events/points/count"] = map[string]any{"count": 7}
	rs.results["POST /collections/courses/points/count"] = map[string]any{"count": 0}
	rs.results["POST /collections/articles/points/count"] = map[string]any{"count": 3}

	g := NewGateway(Config{BaseURL: rs.URL})
	counts, err := g.CollectionCounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, counts[domain.ContentTypeEvent])
	assert.Equal(t, 0, counts[domain.ContentTypeCourse])
	assert.Equal(t, 3, counts[domain.ContentTypeArticle])
}

package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
)

// pointRecord is Qdrant's wire form of a stored point.
type pointRecord struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

// pointID renders the raw JSON id (string or integer) as a string.
func (r pointRecord) pointID() string {
	var s string
	if err := json.Unmarshal(r.ID, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(r.ID, &n); err == nil {
		return n.String()
	}
	return string(r.ID)
}

func (r pointRecord) scored() domain.ScoredPoint {
	return domain.ScoredPoint{ID: r.pointID(), Score: r.Score, Payload: r.Payload}
}

// Upsert inserts or replaces points in a content-type collection.
func (g *Gateway) Upsert(ctx context.Context, ct domain.ContentType, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}

	wire := make([]map[string]any, len(points))
	for i, p := range points {
		vectors := make(map[string]any, len(p.Vectors)+1)
		for name, v := range p.Vectors {
			vectors[name] = v
		}
		if !p.Sparse.IsEmpty() {
			vectors[domain.VectorKeywords] = map[string]any{
				"indices": p.Sparse.Indices,
				"values":  p.Sparse.Values,
			}
		}
		wire[i] = map[string]any{
			"id":      p.ID,
			"vector":  vectors,
			"payload": p.Payload,
		}
	}

	err := g.do(ctx, http.MethodPut,
		"/collections/"+ct.CollectionName()+"/points?wait=true",
		map[string]any{"points": wire}, nil)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", ct.CollectionName(), err)
	}
	return nil
}

// Search returns ranked hits for one dense or sparse query.
func (g *Gateway) Search(ctx context.Context, ct domain.ContentType, q driven.VectorQuery) ([]domain.ScoredPoint, error) {
	body := map[string]any{
		"limit":        q.Limit,
		"with_payload": true,
	}

	if q.Sparse != nil {
		body["query"] = map[string]any{
			"indices": q.Sparse.Indices,
			"values":  q.Sparse.Values,
		}
		body["using"] = domain.VectorKeywords
	} else {
		body["query"] = q.Vector
		name := q.VectorName
		if name == "" {
			name = domain.VectorTitle
		}
		body["using"] = name
	}
	if q.ScoreThreshold > 0 {
		body["score_threshold"] = q.ScoreThreshold
	}
	if f := encodeFilter(q.Filter); f != nil {
		body["filter"] = f
	}

	var result struct {
		Points []pointRecord `json:"points"`
	}
	err := g.do(ctx, http.MethodPost,
		"/collections/"+ct.CollectionName()+"/points/query", body, &result)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", ct.CollectionName(), err)
	}

	out := make([]domain.ScoredPoint, len(result.Points))
	for i, p := range result.Points {
		out[i] = p.scored()
	}
	return out, nil
}

// SearchGrouped returns hits grouped by a payload field.
func (g *Gateway) SearchGrouped(
	ctx context.Context, ct domain.ContentType, q driven.VectorQuery, groupBy string, groupSize int,
) ([]domain.Group, error) {
	name := q.VectorName
	if name == "" {
		name = domain.VectorTitle
	}
	body := map[string]any{
		"query":        q.Vector,
		"using":        name,
		"group_by":     groupBy,
		"group_size":   groupSize,
		"limit":        q.Limit,
		"with_payload": true,
	}
	if f := encodeFilter(q.Filter); f != nil {
		body["filter"] = f
	}

	var result struct {
		Groups []struct {
			ID   json.RawMessage `json:"id"`
			Hits []pointRecord   `json:"hits"`
		} `json:"groups"`
	}
	err := g.do(ctx, http.MethodPost,
		"/collections/"+ct.CollectionName()+"/points/query/groups", body, &result)
	if err != nil {
		return nil, fmt.Errorf("query groups %s: %w", ct.CollectionName(), err)
	}

	out := make([]domain.Group, len(result.Groups))
	for i, grp := range result.Groups {
		hits := make([]domain.ScoredPoint, len(grp.Hits))
		sources := make(map[string]struct{})
		for j, h := range grp.Hits {
			hits[j] = h.scored()
			if src, ok := h.Payload[domain.FieldSourceDocumentID].(string); ok {
				sources[src] = struct{}{}
			}
		}

		var key string
		if err := json.Unmarshal(grp.ID, &key); err != nil {
			key = string(grp.ID)
		}
		out[i] = domain.Group{Key: key, Hits: hits, SourceCount: len(sources)}
	}
	return out, nil
}

// Retrieve fetches payloads for the given point IDs.
func (g *Gateway) Retrieve(ctx context.Context, ct domain.ContentType, ids []string) ([]domain.ScoredPoint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []pointRecord
	err := g.do(ctx, http.MethodPost,
		"/collections/"+ct.CollectionName()+"/points",
		map[string]any{"ids": ids, "with_payload": true}, &result)
	if err != nil {
		return nil, fmt.Errorf("retrieve %s: %w", ct.CollectionName(), err)
	}

	out := make([]domain.ScoredPoint, len(result))
	for i, p := range result {
		out[i] = p.scored()
	}
	return out, nil
}

// ScrollPayloads walks a whole collection in pages, filtered
// server-side when a filter is given.
func (g *Gateway) ScrollPayloads(
	ctx context.Context, ct domain.ContentType, fields []string, filter *domain.Filter, fn func(id string, payload map[string]any) error,
) error {
	return g.scroll(ctx, ct.CollectionName(), fields, filter, fn)
}

func (g *Gateway) scroll(
	ctx context.Context, collection string, fields []string, filter *domain.Filter, fn func(id string, payload map[string]any) error,
) error {
	var withPayload any = true
	if len(fields) > 0 {
		withPayload = map[string]any{"include": fields}
	}

	var offset json.RawMessage
	for {
		body := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": withPayload,
		}
		if f := encodeFilter(filter); f != nil {
			body["filter"] = f
		}
		if offset != nil {
			body["offset"] = offset
		}

		var result struct {
			Points         []pointRecord   `json:"points"`
			NextPageOffset json.RawMessage `json:"next_page_offset"`
		}
		err := g.do(ctx, http.MethodPost, "/collections/"+collection+"/points/scroll", body, &result)
		if err != nil {
			return fmt.Errorf("scroll %s: %w", collection, err)
		}

		for _, p := range result.Points {
			if err := fn(p.pointID(), p.Payload); err != nil {
				return err
			}
		}

		if len(result.NextPageOffset) == 0 || string(result.NextPageOffset) == "null" {
			return nil
		}
		offset = result.NextPageOffset
	}
}

// DeleteBySourceIDs removes every point derived from the given source
// documents, across all content-type collections and the ledger.
func (g *Gateway) DeleteBySourceIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	filter := map[string]any{
		"must": []map[string]any{{
			"key":   domain.FieldSourceDocumentID,
			"match": map[string]any{"any": ids},
		}},
	}

	collections := make([]string, 0, len(domain.AllContentTypes())+1)
	for _, ct := range domain.AllContentTypes() {
		collections = append(collections, ct.CollectionName())
	}
	collections = append(collections, ledgerCollection)

	for _, name := range collections {
		err := g.do(ctx, http.MethodPost,
			"/collections/"+name+"/points/delete?wait=true",
			map[string]any{"filter": filter}, nil)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", name, err)
		}
	}
	return nil
}

// encodeFilter translates a domain filter into Qdrant's filter DSL.
func encodeFilter(f *domain.Filter) map[string]any {
	if f == nil || len(f.Must) == 0 {
		return nil
	}

	var must []map[string]any
	for _, c := range f.Must {
		switch {
		case c.Equals != nil:
			must = append(must, map[string]any{
				"key":   c.Field,
				"match": map[string]any{"value": c.Equals},
			})
		case c.Contains != "":
			// A match value against an array field tests membership.
			must = append(must, map[string]any{
				"key":   c.Field,
				"match": map[string]any{"value": c.Contains},
			})
		case c.After != nil || c.Before != nil:
			rng := map[string]any{}
			if c.After != nil {
				rng["gt"] = c.After.UTC().Format(time.RFC3339)
			}
			if c.Before != nil {
				rng["lt"] = c.Before.UTC().Format(time.RFC3339)
			}
			must = append(must, map[string]any{
				"key":            c.Field,
				"datetime_range": rng,
			})
		}
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

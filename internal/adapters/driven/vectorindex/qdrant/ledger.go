package qdrant

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// ledgerNamespace seeds deterministic point IDs for the attempted
// ledger, so marking the same document twice overwrites one point.
var ledgerNamespace = uuid.MustParse("8f3c1d6a-24b5-4a0e-9f7d-1c2e5b8a9d40")

// MarkAttempted records source documents in the attempted ledger.
// Qdrant point IDs must be UUIDs, so each mailbox message ID maps to a
// name-based UUID. Idempotent per ID.
func (g *Gateway) MarkAttempted(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	points := make([]map[string]any, len(ids))
	for i, id := range ids {
		points[i] = map[string]any{
			"id":     uuid.NewSHA1(ledgerNamespace, []byte(id)).String(),
			"vector": map[string]any{},
			"payload": map[string]any{
				domain.FieldSourceDocumentID: id,
			},
		}
	}

	err := g.do(ctx, http.MethodPut,
		"/collections/"+ledgerCollection+"/points?wait=true",
		map[string]any{"points": points}, nil)
	if err != nil {
		return fmt.Errorf("mark attempted: %w", err)
	}
	return nil
}

// ProcessedSourceIDs returns the union of source document IDs across
// all content-type collections and the attempted ledger.
func (g *Gateway) ProcessedSourceIDs(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	collect := func(_ string, payload map[string]any) error {
		if id, ok := payload[domain.FieldSourceDocumentID].(string); ok && id != "" {
			out[id] = struct{}{}
		}
		return nil
	}

	for _, ct := range domain.AllContentTypes() {
		err := g.scroll(ctx, ct.CollectionName(), []string{domain.FieldSourceDocumentID}, nil, collect)
		if err != nil {
			return nil, err
		}
	}
	if err := g.scroll(ctx, ledgerCollection, []string{domain.FieldSourceDocumentID}, nil, collect); err != nil {
		return nil, err
	}
	return out, nil
}

// Package qdrant provides a VectorGateway adapter over the Qdrant
// HTTP API: one collection per content type with named dense vectors
// and a keywords sparse vector, plus a ledger collection recording
// extraction attempts.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driven.VectorGateway = (*Gateway)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:6333"
	DefaultTimeout = 30 * time.Second

	// ledgerCollection records every document that went through an
	// extraction attempt, including ones that produced no items.
	ledgerCollection = "attempted_documents"

	// scrollPageSize is the page size for collection scans.
	scrollPageSize = 256
)

// Config holds configuration for the Qdrant gateway.
type Config struct {
	// BaseURL is the Qdrant HTTP API base URL (default: http://localhost:6333).
	BaseURL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the dense vector size, which must match the
	// embedding model.
	Dimensions int
}

// Gateway talks to Qdrant over its REST API.
type Gateway struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	dimensions int
}

// NewGateway creates a new Qdrant gateway.
func NewGateway(cfg Config) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Gateway{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
	}
}

// apiResponse is the envelope every Qdrant endpoint returns.
type apiResponse struct {
	Status json.RawMessage `json:"status"`
	Result json.RawMessage `json:"result"`
}

// do sends one request and decodes the result envelope. Transport
// failures wrap domain.ErrStorageUnavailable so callers can
// distinguish an unreachable index from a bad request.
func (g *Gateway) do(ctx context.Context, method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.apiKey != "" {
		req.Header.Set("api-key", g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: qdrant status %d: %s", domain.ErrStorageUnavailable, resp.StatusCode, raw)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, path, resp.StatusCode, raw)
	}

	if result != nil {
		var envelope apiResponse
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// collectionExists checks for a collection without creating it.
func (g *Gateway) collectionExists(ctx context.Context, name string) (bool, error) {
	var result struct {
		Exists bool `json:"exists"`
	}
	err := g.do(ctx, http.MethodGet, "/collections/"+name+"/exists", nil, &result)
	if err != nil {
		return false, err
	}
	return result.Exists, nil
}

// EnsureTopology idempotently creates the content-type collections and
// the attempted-documents ledger.
func (g *Gateway) EnsureTopology(ctx context.Context) error {
	denseParams := map[string]any{
		"size":     g.dimensions,
		"distance": "Cosine",
	}
	itemSchema := map[string]any{
		"vectors": map[string]any{
			domain.VectorTitle:       denseParams,
			domain.VectorDescription: denseParams,
			domain.VectorFullText:    denseParams,
		},
		"sparse_vectors": map[string]any{
			domain.VectorKeywords: map[string]any{},
		},
	}

	for _, ct := range domain.AllContentTypes() {
		if err := g.ensureCollection(ctx, ct.CollectionName(), itemSchema); err != nil {
			return err
		}
	}

	// The ledger stores only payloads.
	ledgerSchema := map[string]any{"vectors": map[string]any{}}
	return g.ensureCollection(ctx, ledgerCollection, ledgerSchema)
}

func (g *Gateway) ensureCollection(ctx context.Context, name string, schema map[string]any) error {
	exists, err := g.collectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	logger.Info("Creating collection %s", name)
	if err := g.do(ctx, http.MethodPut, "/collections/"+name, schema, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	return nil
}

// CollectionCounts returns the exact point count per content type.
func (g *Gateway) CollectionCounts(ctx context.Context) (map[domain.ContentType]int, error) {
	out := make(map[domain.ContentType]int, len(domain.AllContentTypes()))
	for _, ct := range domain.AllContentTypes() {
		var result struct {
			Count int `json:"count"`
		}
		err := g.do(ctx, http.MethodPost,
			"/collections/"+ct.CollectionName()+"/points/count",
			map[string]any{"exact": true}, &result)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", ct.CollectionName(), err)
		}
		out[ct] = result.Count
	}
	return out, nil
}

// Close releases resources.
func (g *Gateway) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

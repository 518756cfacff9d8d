package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingService_Embed(t *testing.T) {
	t.Run("returns the model embedding", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/embeddings", r.URL.Path)

			var req embedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nomic-embed-text", req.Model)
			assert.Equal(t, "ai summit", req.Prompt)

			json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
		}))
		defer server.Close()

		svc := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 3})
		got, err := svc.Embed(context.Background(), "ai summit")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
	})

	t.Run("empty text yields a zero-vector without a request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			t.Error("no request expected for empty text")
		}))
		defer server.Close()

		svc := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 4})
		got, err := svc.Embed(context.Background(), "   ")
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0, 0, 0}, got)
	})

	t.Run("server error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		svc := NewEmbeddingService(Config{BaseURL: server.URL})
		_, err := svc.Embed(context.Background(), "text")
		assert.ErrorContains(t, err, "status 404")
	})
}

func TestEmbeddingService_Ping(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		svc := NewEmbeddingService(Config{BaseURL: server.URL})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})
		assert.Error(t, svc.Ping(context.Background()))
	})
}

func TestEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}

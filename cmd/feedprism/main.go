package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/feedprism/internal/adapters/driven/config/file"
	"github.com/custodia-labs/feedprism/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/feedprism/internal/adapters/driven/extractor/openai"
	"github.com/custodia-labs/feedprism/internal/adapters/driven/mailbox/gmail"
	"github.com/custodia-labs/feedprism/internal/adapters/driven/oauth"
	"github.com/custodia-labs/feedprism/internal/adapters/driven/vectorindex/qdrant"
	"github.com/custodia-labs/feedprism/internal/adapters/driving/cli"
	"github.com/custodia-labs/feedprism/internal/core/services"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	store, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	embedder := ollama.NewEmbeddingService(ollama.Config{
		BaseURL:    firstNonEmpty(store.GetString("ollama.base_url"), os.Getenv("OLLAMA_BASE_URL")),
		Model:      store.GetString("ollama.model"),
		Dimensions: store.GetInt("ollama.dimensions"),
	})
	defer embedder.Close()

	vectors := qdrant.NewGateway(qdrant.Config{
		BaseURL:    firstNonEmpty(store.GetString("qdrant.base_url"), os.Getenv("QDRANT_URL")),
		APIKey:     firstNonEmpty(store.GetString("qdrant.api_key"), os.Getenv("QDRANT_API_KEY")),
		Dimensions: embedder.Dimensions(),
	})

	topologyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := vectors.EnsureTopology(topologyCtx); err != nil {
		logger.Warn("Vector index unavailable: %v", err)
	}

	dedup := services.NewDedupService(vectors, embedder)
	retrieval := services.NewRetrievalService(vectors, embedder)
	stats := services.NewStatsService(vectors, embedder)
	settings := services.NewSettingsService(store)

	svcs := cli.Services{
		Retrieval: retrieval,
		Stats:     stats,
		Settings:  settings,
	}

	// The pipeline needs Gmail and OpenAI credentials. Without them the
	// retrieval-side commands still work, so degrade instead of failing.
	pipeline, err := buildPipeline(ctx, store, vectors, embedder, dedup)
	if err != nil {
		logger.Warn("Pipeline disabled: %v", err)
	} else {
		svcs.Pipeline = pipeline
	}

	cli.SetServices(svcs)
	cli.SetVersion(Version)
	return cli.Execute()
}

func buildPipeline(
	ctx context.Context,
	store *file.ConfigStore,
	vectors *qdrant.Gateway,
	embedder *ollama.EmbeddingService,
	dedup *services.DedupService,
) (*services.PipelineService, error) {
	ts, err := oauth.NewGmailTokenSource(ctx, store)
	if err != nil {
		return nil, err
	}

	mailbox, err := gmail.NewMailbox(ctx, ts, gmail.Config{
		Query: store.GetString("gmail.query"),
	})
	if err != nil {
		return nil, err
	}

	extractor, err := openai.NewExtractor(openai.Config{
		APIKey:  firstNonEmpty(store.GetString("openai.api_key"), os.Getenv("OPENAI_API_KEY")),
		BaseURL: store.GetString("openai.base_url"),
		Model:   store.GetString("openai.model"),
	})
	if err != nil {
		return nil, err
	}

	coordinator := services.NewExtractionCoordinator(extractor)
	return services.NewPipelineService(mailbox, vectors, embedder, coordinator, dedup, nil), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package openai provides an ItemExtractor adapter using the OpenAI
// chat completions API in JSON mode.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.ItemExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second

	// maxDocumentChars truncates pathological newsletter bodies before
	// they hit the context window.
	maxDocumentChars = 24000
)

// Config holds configuration for the OpenAI extractor.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Extractor runs typed item extraction through OpenAI chat completions.
type Extractor struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatRequest is the /chat/completions request format.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

// chatResponse is the /chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewExtractor creates a new OpenAI extractor.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// ExtractEvents extracts events from the document text.
func (e *Extractor) ExtractEvents(ctx context.Context, text, subject string) ([]domain.Event, float64, error) {
	var out struct {
		Items      []domain.Event `json:"items"`
		Confidence float64        `json:"confidence"`
	}
	if err := e.extract(ctx, eventPrompt, text, subject, &out); err != nil {
		return nil, 0, err
	}
	return dropUntitledEvents(out.Items), out.Confidence, nil
}

// ExtractCourses extracts courses from the document text.
func (e *Extractor) ExtractCourses(ctx context.Context, text, subject string) ([]domain.Course, float64, error) {
	var out struct {
		Items      []domain.Course `json:"items"`
		Confidence float64         `json:"confidence"`
	}
	if err := e.extract(ctx, coursePrompt, text, subject, &out); err != nil {
		return nil, 0, err
	}
	var items []domain.Course
	for _, c := range out.Items {
		if c.Title != "" {
			items = append(items, c)
		}
	}
	return items, out.Confidence, nil
}

// ExtractArticles extracts articles from the document text.
func (e *Extractor) ExtractArticles(ctx context.Context, text, subject string) ([]domain.Article, float64, error) {
	var out struct {
		Items      []domain.Article `json:"items"`
		Confidence float64          `json:"confidence"`
	}
	if err := e.extract(ctx, articlePrompt, text, subject, &out); err != nil {
		return nil, 0, err
	}
	var items []domain.Article
	for _, a := range out.Items {
		if a.Title != "" {
			items = append(items, a)
		}
	}
	return items, out.Confidence, nil
}

func dropUntitledEvents(in []domain.Event) []domain.Event {
	var out []domain.Event
	for _, ev := range in {
		if ev.Title != "" {
			out = append(out, ev)
		}
	}
	return out
}

// extract runs one typed extraction call. Transport and API failures
// wrap domain.ErrExtractionFailed; malformed model output fails closed
// into the zero value of out.
func (e *Extractor) extract(ctx context.Context, systemPrompt, text, subject string, out any) error {
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}

	reqBody := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Subject: " + subject + "\n\n" + text},
		},
		Temperature:    0,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: openai status %d: %s", domain.ErrExtractionFailed, resp.StatusCode, raw)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return fmt.Errorf("%w: %s", domain.ErrExtractionFailed, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return fmt.Errorf("%w: no choices returned", domain.ErrExtractionFailed)
	}

	content := chatResp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		// Malformed model output is an empty result, not a failure.
		logger.Warn("Extractor returned malformed JSON, treating as empty: %v", err)
	}
	return nil
}

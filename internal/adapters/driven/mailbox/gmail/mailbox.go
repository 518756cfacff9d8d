// Package gmail provides a Mailbox adapter over the Gmail API.
package gmail

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Ensure Mailbox implements the interface.
var _ driven.Mailbox = (*Mailbox)(nil)

// Default configuration values.
const (
	// DefaultQuery targets newsletter-style mail.
	DefaultQuery = `category:promotions OR "newsletter" OR "digest"`

	// DefaultPageSize is the listing page size.
	DefaultPageSize = 100

	// Conservative token bucket, well below Gmail's per-user quota.
	requestsPerSecond = 2.0
	burstSize         = 5
)

// Config holds configuration for the Gmail mailbox.
type Config struct {
	// Query is the Gmail search query candidates must match
	// (default: DefaultQuery). The lookback window is appended.
	Query string

	// PageSize is the listing page size (default: 100).
	PageSize int64
}

// Mailbox reads newsletter mail through the Gmail API. All calls go
// through a token bucket so batch fetches stay under quota.
type Mailbox struct {
	service  *gmail.Service
	limiter  *rate.Limiter
	query    string
	pageSize int64
}

// NewMailbox creates a Gmail mailbox using the provided token source.
func NewMailbox(ctx context.Context, ts oauth2.TokenSource, cfg Config) (*Mailbox, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return newMailbox(service, cfg), nil
}

func newMailbox(service *gmail.Service, cfg Config) *Mailbox {
	if cfg.Query == "" {
		cfg.Query = DefaultQuery
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Mailbox{
		service:  service,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		query:    cfg.Query,
		pageSize: cfg.PageSize,
	}
}

// ListCandidates returns one page of candidate message IDs within the
// lookback window.
func (m *Mailbox) ListCandidates(ctx context.Context, window time.Duration, pageToken string) ([]string, string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	query := fmt.Sprintf("(%s) %s", m.query, newerThan(window))
	call := m.service.Users.Messages.List("me").
		Q(query).
		MaxResults(m.pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("%w: list messages: %v", domain.ErrUpstreamUnavailable, err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	logger.Debug("Gmail listing: %d ids, next page: %t", len(ids), resp.NextPageToken != "")
	return ids, resp.NextPageToken, nil
}

// Fetch retrieves one full document.
func (m *Mailbox) Fetch(ctx context.Context, id string) (*domain.Document, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg, err := m.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: get message %s: %v", domain.ErrUpstreamUnavailable, id, err)
	}
	return documentFromMessage(msg), nil
}

// FetchBatch retrieves multiple documents, tolerating per-ID failures.
func (m *Mailbox) FetchBatch(ctx context.Context, ids []string) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := m.Fetch(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return docs, ctx.Err()
			}
			logger.Warn("Skipping message %s: %v", id, err)
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Close releases resources.
func (m *Mailbox) Close() error { return nil }

// newerThan renders the lookback window as a Gmail query term. Gmail
// only supports whole days, so the window rounds up.
func newerThan(window time.Duration) string {
	days := int(window.Hours() / 24)
	if window > time.Duration(days)*24*time.Hour {
		days++
	}
	if days < 1 {
		days = 1
	}
	return fmt.Sprintf("newer_than:%dd", days)
}

// Package oauth builds Google token sources from stored credentials.
package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
)

// Config store keys for Gmail OAuth credentials.
const (
	KeyClientID     = "gmail.client_id"
	KeyClientSecret = "gmail.client_secret"
	KeyRefreshToken = "gmail.refresh_token"
)

// NewGmailTokenSource builds a self-refreshing token source from the
// credentials persisted in the config store. Read-only Gmail scope:
// the pipeline never mutates the mailbox.
func NewGmailTokenSource(ctx context.Context, store driven.ConfigStore) (oauth2.TokenSource, error) {
	clientID := store.GetString(KeyClientID)
	clientSecret := store.GetString(KeyClientSecret)
	refreshToken := store.GetString(KeyRefreshToken)

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("gmail credentials not configured: set %s, %s and %s",
			KeyClientID, KeyClientSecret, KeyRefreshToken)
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmailapi.GmailReadonlyScope},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}), nil
}

package oauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/feedprism/internal/adapters/driven/config/memory"
)

func TestNewGmailTokenSource(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(KeyClientID, "client-id"))
	require.NoError(t, store.Set(KeyClientSecret, "client-secret"))
	require.NoError(t, store.Set(KeyRefreshToken, "refresh-token"))

	ts, err := NewGmailTokenSource(context.Background(), store)
	require.NoError(t, err)
	assert.NotNil(t, ts)
}

func TestNewGmailTokenSourceMissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{"no client id", KeyClientID},
		{"no client secret", KeyClientSecret},
		{"no refresh token", KeyRefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			require.NoError(t, store.Set(KeyClientID, "client-id"))
			require.NoError(t, store.Set(KeyClientSecret, "client-secret"))
			require.NoError(t, store.Set(KeyRefreshToken, "refresh-token"))
			require.NoError(t, store.Delete(tt.missing))

			_, err := NewGmailTokenSource(context.Background(), store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "credentials not configured")
		})
	}
}

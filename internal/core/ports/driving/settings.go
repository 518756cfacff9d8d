package driving

import (
	"context"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// SettingsService reads and persists pipeline tuning knobs.
type SettingsService interface {
	// Get returns the effective settings, defaults filled in and hard
	// caps applied.
	Get(ctx context.Context) (domain.PipelineSettings, error)

	// Update persists the given settings after clamping them to the
	// hard caps, and returns what was actually stored.
	Update(ctx context.Context, s domain.PipelineSettings) (domain.PipelineSettings, error)

	// Reset removes any persisted overrides, reverting to defaults.
	Reset(ctx context.Context) error
}

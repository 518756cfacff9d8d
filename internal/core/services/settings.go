package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/core/ports/driving"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config store keys for persisted pipeline settings.
const (
	keyMaxBatchSize  = "pipeline.max_batch_size"
	keyLookbackHours = "pipeline.lookback_hours"
)

// SettingsService reads and persists pipeline tuning knobs, applying
// the domain hard caps on every path. A value smuggled into the config
// file by hand still comes back clamped.
type SettingsService struct {
	store driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store driven.ConfigStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the effective settings.
func (s *SettingsService) Get(_ context.Context) (domain.PipelineSettings, error) {
	settings := domain.DefaultPipelineSettings()
	if v := s.store.GetInt(keyMaxBatchSize); v > 0 {
		settings.MaxBatchSize = v
	}
	if v := s.store.GetInt(keyLookbackHours); v > 0 {
		settings.LookbackHours = v
	}
	return settings.Clamp(), nil
}

// Update persists the settings after clamping and returns what was
// actually stored.
func (s *SettingsService) Update(_ context.Context, settings domain.PipelineSettings) (domain.PipelineSettings, error) {
	clamped := settings.Clamp()
	if clamped != settings {
		logger.Debug("Settings clamped: %+v -> %+v", settings, clamped)
	}
	if err := s.store.Set(keyMaxBatchSize, clamped.MaxBatchSize); err != nil {
		return domain.PipelineSettings{}, fmt.Errorf("persist max batch size: %w", err)
	}
	if err := s.store.Set(keyLookbackHours, clamped.LookbackHours); err != nil {
		return domain.PipelineSettings{}, fmt.Errorf("persist lookback hours: %w", err)
	}
	logger.Info("Settings updated: batch=%d lookback=%dh", clamped.MaxBatchSize, clamped.LookbackHours)
	return clamped, nil
}

// Reset removes persisted overrides, reverting to defaults.
func (s *SettingsService) Reset(_ context.Context) error {
	if err := s.store.Delete(keyMaxBatchSize); err != nil {
		return fmt.Errorf("reset max batch size: %w", err)
	}
	if err := s.store.Delete(keyLookbackHours); err != nil {
		return fmt.Errorf("reset lookback hours: %w", err)
	}
	return nil
}

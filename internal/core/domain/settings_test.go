package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineSettingsClamp(t *testing.T) {
	tests := []struct {
		name      string
		in        PipelineSettings
		wantBatch int
		wantHours int
	}{
		{"defaults for zero values", PipelineSettings{}, DefaultMaxBatchSize, DefaultLookbackHours},
		{"negative falls back to defaults", PipelineSettings{MaxBatchSize: -5, LookbackHours: -1}, DefaultMaxBatchSize, DefaultLookbackHours},
		{"within caps untouched", PipelineSettings{MaxBatchSize: 100, LookbackHours: 48}, 100, 48},
		{"above caps reduced", PipelineSettings{MaxBatchSize: 10000, LookbackHours: 9999}, MaxBatchSizeCap, LookbackHoursCap},
		{"exactly at caps", PipelineSettings{MaxBatchSize: MaxBatchSizeCap, LookbackHours: LookbackHoursCap}, MaxBatchSizeCap, LookbackHoursCap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp()
			assert.Equal(t, tt.wantBatch, got.MaxBatchSize)
			assert.Equal(t, tt.wantHours, got.LookbackHours)
		})
	}
}

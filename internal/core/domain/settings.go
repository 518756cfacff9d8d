package domain

// Hard upper caps for runtime-tunable pipeline settings. Enforced
// independent of caller input: no API or config value can exceed them.
const (
	// MaxBatchSizeCap bounds how many documents one batch may contain.
	MaxBatchSizeCap = 500

	// LookbackHoursCap bounds the fetch time window (10 days).
	LookbackHoursCap = 240
)

// Default settings values.
const (
	DefaultMaxBatchSize  = 25
	DefaultLookbackHours = 8
)

// PipelineSettings are the runtime-tunable pipeline parameters.
type PipelineSettings struct {
	// MaxBatchSize is the maximum number of documents per batch.
	MaxBatchSize int

	// LookbackHours is how far back the mailbox is queried.
	LookbackHours int
}

// DefaultPipelineSettings returns the built-in defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		MaxBatchSize:  DefaultMaxBatchSize,
		LookbackHours: DefaultLookbackHours,
	}
}

// Clamp normalises the settings: non-positive values fall back to the
// defaults, values above the hard caps are reduced to the caps.
func (s PipelineSettings) Clamp() PipelineSettings {
	out := s
	if out.MaxBatchSize <= 0 {
		out.MaxBatchSize = DefaultMaxBatchSize
	}
	if out.MaxBatchSize > MaxBatchSizeCap {
		out.MaxBatchSize = MaxBatchSizeCap
	}
	if out.LookbackHours <= 0 {
		out.LookbackHours = DefaultLookbackHours
	}
	if out.LookbackHours > LookbackHoursCap {
		out.LookbackHours = LookbackHoursCap
	}
	return out
}

package domain

import "time"

// EventKind identifies one lifecycle event in an extraction run.
type EventKind string

// Lifecycle event kinds, in the order a run emits them per document.
const (
	EventStart    EventKind = "start"
	EventFetch    EventKind = "fetch"
	EventParse    EventKind = "parse"
	EventExtract  EventKind = "extract"
	EventIngest   EventKind = "ingest"
	EventSkip     EventKind = "skip"
	EventProgress EventKind = "progress"
	EventError    EventKind = "error"
	EventComplete EventKind = "complete"
)

// ItemCounts carries per-type running totals.
type ItemCounts struct {
	Events   int
	Courses  int
	Articles int
}

// Total returns the sum across types.
func (c ItemCounts) Total() int {
	return c.Events + c.Courses + c.Articles
}

// PipelineEvent is one entry in the progress stream of an extraction run.
// A run always terminates with an EventComplete carrying final totals,
// even when every document failed.
type PipelineEvent struct {
	Kind       EventKind
	Current    int
	Total      int
	DocumentID string
	Subject    string
	Reason     string
	Counts     ItemCounts
	Processed  int
	Errors     int
	Message    string
}

// Progress is the live counter set for an extraction run. Counters are
// monotonically non-decreasing within a run; an observer reconnecting
// mid-run sees current values, never stale ones.
type Progress struct {
	Current   int
	Total     int
	Events    int
	Courses   int
	Articles  int
	Processed int
	Errors    int
	Message   string
}

// PipelineStatus is a snapshot of the pipeline state machine.
type PipelineStatus struct {
	// FetchLocked reports whether the exclusive fetch lease is held.
	FetchLocked    bool
	FetchStartedAt time.Time

	// Extracting reports whether an extraction run is active.
	Extracting          bool
	ExtractionStartedAt time.Time

	// Progress is the live progress of the active run, if any.
	Progress Progress
}

// FetchResult is one batch of unprocessed documents.
type FetchResult struct {
	// Documents are the unprocessed documents, oldest page first.
	Documents []Document

	// TotalListed is how many candidates the mailbox returned across
	// all pages consulted.
	TotalListed int

	// ProcessedCount is the size of the seen-set at fetch time.
	ProcessedCount int

	// LookbackHours is the effective time window used.
	LookbackHours int
}

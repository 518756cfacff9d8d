package driven

import (
	"context"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// ItemExtractor runs generative extraction of typed items from document
// text. The three typed extractions are operationally independent:
// each is a separate external call and may fail on its own.
//
// Implementations either fail closed (empty list, zero confidence) on
// malformed model output, or return an error wrapping
// domain.ErrExtractionFailed which the coordinator converts to an empty
// result for that type.
type ItemExtractor interface {
	// ExtractEvents extracts events from the document text.
	ExtractEvents(ctx context.Context, text, subject string) ([]domain.Event, float64, error)

	// ExtractCourses extracts courses from the document text.
	ExtractCourses(ctx context.Context, text, subject string) ([]domain.Course, float64, error)

	// ExtractArticles extracts articles from the document text.
	ExtractArticles(ctx context.Context, text, subject string) ([]domain.Article, float64, error)
}

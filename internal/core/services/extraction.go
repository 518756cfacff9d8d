package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// ExtractionCoordinator fans one document out to the three typed
// extractors in parallel and assembles their results.
//
// Failure is isolated per type: a failed extraction contributes an
// empty list with zero confidence, it never poisons the other types or
// the document as a whole. A set empty across all three types is a
// valid outcome.
type ExtractionCoordinator struct {
	extractor driven.ItemExtractor
}

// NewExtractionCoordinator creates a new coordinator.
func NewExtractionCoordinator(extractor driven.ItemExtractor) *ExtractionCoordinator {
	return &ExtractionCoordinator{extractor: extractor}
}

// Extract runs all three typed extractions concurrently over the
// document and returns the combined set.
func (c *ExtractionCoordinator) Extract(ctx context.Context, doc *domain.Document) *domain.ExtractionSet {
	var (
		set domain.ExtractionSet
		wg  sync.WaitGroup
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		items, confidence, err := c.extractor.ExtractEvents(ctx, doc.Text, doc.Subject)
		if err != nil {
			logger.Warn("Event extraction failed for %s: %v", doc.ID, err)
			return
		}
		set.Events = items
		set.EventConfidence = confidence
	}()

	go func() {
		defer wg.Done()
		items, confidence, err := c.extractor.ExtractCourses(ctx, doc.Text, doc.Subject)
		if err != nil {
			logger.Warn("Course extraction failed for %s: %v", doc.ID, err)
			return
		}
		set.Courses = items
		set.CourseConfidence = confidence
	}()

	go func() {
		defer wg.Done()
		items, confidence, err := c.extractor.ExtractArticles(ctx, doc.Text, doc.Subject)
		if err != nil {
			logger.Warn("Article extraction failed for %s: %v", doc.ID, err)
			return
		}
		set.Articles = items
		set.ArticleConfidence = confidence
	}()

	wg.Wait()

	logger.Debug("Extracted %d items from %s (events=%d courses=%d articles=%d)",
		set.Total(), doc.ID, len(set.Events), len(set.Courses), len(set.Articles))
	return &set
}

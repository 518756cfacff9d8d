package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

func TestExtractionCoordinator_Extract(t *testing.T) {
	ctx := context.Background()
	doc := &domain.Document{ID: "msg-1", Subject: "Weekly digest", Text: "body"}

	t.Run("combines all types", func(t *testing.T) {
		coord := NewExtractionCoordinator(&mockExtractor{
			events:   []domain.Event{{ItemBase: domain.ItemBase{Title: "AI Summit"}}},
			courses:  []domain.Course{{ItemBase: domain.ItemBase{Title: "Go Course"}}},
			articles: []domain.Article{{ItemBase: domain.ItemBase{Title: "Why Go"}}},
		})

		set := coord.Extract(ctx, doc)
		assert.Equal(t, 3, set.Total())
		assert.InDelta(t, 0.9, set.EventConfidence, 1e-9)
		assert.InDelta(t, 0.8, set.CourseConfidence, 1e-9)
		assert.InDelta(t, 0.7, set.ArticleConfidence, 1e-9)
	})

	t.Run("one failed type does not poison the others", func(t *testing.T) {
		coord := NewExtractionCoordinator(&mockExtractor{
			events:    []domain.Event{{ItemBase: domain.ItemBase{Title: "AI Summit"}}},
			courseErr: errors.New("model returned garbage"),
			articles:  []domain.Article{{ItemBase: domain.ItemBase{Title: "Why Go"}}},
		})

		set := coord.Extract(ctx, doc)
		assert.Len(t, set.Events, 1)
		assert.Empty(t, set.Courses)
		assert.Zero(t, set.CourseConfidence)
		assert.Len(t, set.Articles, 1)
	})

	t.Run("all failed yields a valid empty set", func(t *testing.T) {
		boom := errors.New("upstream down")
		coord := NewExtractionCoordinator(&mockExtractor{
			eventErr: boom, courseErr: boom, articleErr: boom,
		})

		set := coord.Extract(ctx, doc)
		assert.Equal(t, 0, set.Total())
	})
}

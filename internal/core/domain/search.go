package domain

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// Limit is the maximum number of results (default 10).
	Limit int

	// Types restricts the search to specific content types.
	// Empty means all types.
	Types []ContentType

	// Filter is an optional payload filter (tags, date range).
	Filter *Filter
}

// FeedItem is a hydrated retrieval result: the indexed item's payload
// fields plus provenance and the within-query relevance score.
type FeedItem struct {
	ID          string
	Type        ContentType
	Title       string
	Description string
	Tags        []string
	URL         string

	// Type-specific optionals, populated from the payload when present.
	StartTime     string
	Location      string
	Organizer     string
	Provider      string
	Author        string
	Source        string
	PublishedDate string

	// Provenance.
	SourceDocumentID string
	SourceSubject    string
	SourceSender     string
	ExtractedAt      string

	// Score is the relevance score. RRF-fused scores order results
	// within one query only and are not comparable across queries.
	Score float64
}

// FeedItemFromPayload hydrates a FeedItem from a scored point.
func FeedItemFromPayload(p ScoredPoint, ct ContentType) FeedItem {
	item := FeedItem{
		ID:    p.ID,
		Type:  ct,
		Score: p.Score,
	}
	get := func(key string) string {
		if v, ok := p.Payload[key].(string); ok {
			return v
		}
		return ""
	}
	item.Title = get(FieldTitle)
	item.Description = get(FieldDescription)
	item.URL = get("url")
	item.StartTime = get("start_time")
	item.Location = get("location")
	item.Organizer = get("organizer")
	item.Provider = get("provider")
	item.Author = get("author")
	item.Source = get("source")
	item.PublishedDate = get("published_date")
	item.SourceDocumentID = get(FieldSourceDocumentID)
	item.SourceSubject = get(FieldSourceSubject)
	item.SourceSender = get(FieldSourceSender)
	item.ExtractedAt = get(FieldExtractedAt)

	switch tags := p.Payload[FieldTags].(type) {
	case []string:
		item.Tags = tags
	case []any:
		for _, t := range tags {
			if s, ok := t.(string); ok {
				item.Tags = append(item.Tags, s)
			}
		}
	}
	return item
}

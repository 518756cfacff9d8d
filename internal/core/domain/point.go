package domain

import "time"

// Named dense vectors carried by every indexed point.
const (
	// VectorTitle embeds the item title.
	VectorTitle = "title"

	// VectorDescription embeds the item description.
	VectorDescription = "description"

	// VectorFullText embeds title and description together.
	VectorFullText = "full_text"

	// VectorKeywords is the named sparse (lexical) vector.
	VectorKeywords = "keywords"
)

// Payload field names used for filtering, grouping and provenance.
const (
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldTags             = "tags"
	FieldCanonicalKey     = "canonical_key"
	FieldSourceDocumentID = "source_document_id"
	FieldSourceSubject    = "source_subject"
	FieldSourceSender     = "source_sender"
	FieldSourceSenderMail = "source_sender_email"
	FieldSourceReceivedAt = "source_received_at"
	FieldExtractedAt      = "extracted_at"
	FieldOrganizer        = "organizer"
	FieldProvider         = "provider"
)

// SparseVector is a keyword-weighted lexical vector: parallel lists of
// dimension indices and weights, as consumed by the index's sparse API.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// IsEmpty returns true if the vector carries no terms.
func (v *SparseVector) IsEmpty() bool {
	return v == nil || len(v.Indices) == 0
}

// Point is one persisted unit in the vector index: one extracted item
// with its named dense vectors, optional sparse vector and payload.
// Points are never mutated in place; re-extraction deletes and recreates
// them by source document ID.
type Point struct {
	// ID is a fresh unique identifier, independent of the document ID.
	ID string

	// Vectors maps vector names (title, description, full_text) to dense
	// embeddings of identical dimensionality.
	Vectors map[string][]float32

	// Sparse is the keywords sparse vector, when present.
	Sparse *SparseVector

	// Payload carries the item fields, provenance and canonical key.
	Payload map[string]any
}

// ScoredPoint is a ranked search hit.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Group is a deduplication-aware result set: the first hit is the
// canonical representative, the rest are other extractions sharing the
// same group key. SourceCount counts distinct contributing documents.
type Group struct {
	Key         string
	Hits        []ScoredPoint
	SourceCount int
}

// Provenance traces an indexed item back to its source document.
type Provenance struct {
	DocumentID  string
	Subject     string
	Sender      string
	SenderEmail string
	ReceivedAt  time.Time
	ExtractedAt time.Time
}

// payload assembles the shared payload fields for any item variant.
func (p Provenance) payload(base ItemBase, canonicalKey string) map[string]any {
	out := map[string]any{
		FieldTitle:            base.Title,
		FieldDescription:      base.Description,
		FieldTags:             base.Tags,
		FieldCanonicalKey:     canonicalKey,
		FieldSourceDocumentID: p.DocumentID,
		FieldSourceSubject:    p.Subject,
		FieldSourceSender:     p.Sender,
		FieldSourceSenderMail: p.SenderEmail,
		FieldSourceReceivedAt: p.ReceivedAt.UTC().Format(time.RFC3339),
		FieldExtractedAt:      p.ExtractedAt.UTC().Format(time.RFC3339),
	}
	if base.Hook != "" {
		out["hook"] = base.Hook
	}
	if base.ImageURL != "" {
		out["image_url"] = base.ImageURL
	}
	if base.URL != "" {
		out["url"] = base.URL
	}
	return out
}

// EventPayload builds the index payload for an event.
func EventPayload(ev Event, prov Provenance, canonicalKey string) map[string]any {
	out := prov.payload(ev.ItemBase, canonicalKey)
	if ev.StartTime != "" {
		out["start_time"] = ev.StartTime
	}
	if ev.EndTime != "" {
		out["end_time"] = ev.EndTime
	}
	if ev.Timezone != "" {
		out["timezone"] = ev.Timezone
	}
	if ev.Location != "" {
		out["location"] = ev.Location
	}
	if ev.Organizer != "" {
		out[FieldOrganizer] = ev.Organizer
	}
	if ev.Cost != "" {
		out["cost"] = ev.Cost
	}
	if ev.IsFree != nil {
		out["is_free"] = *ev.IsFree
	}
	return out
}

// CoursePayload builds the index payload for a course.
func CoursePayload(c Course, prov Provenance, canonicalKey string) map[string]any {
	out := prov.payload(c.ItemBase, canonicalKey)
	if c.Provider != "" {
		out[FieldProvider] = c.Provider
	}
	if c.Instructor != "" {
		out["instructor"] = c.Instructor
	}
	if c.Level != "" {
		out["level"] = c.Level
	}
	if c.Duration != "" {
		out["duration"] = c.Duration
	}
	if c.Cost != "" {
		out["cost"] = c.Cost
	}
	if c.StartDate != "" {
		out["start_date"] = c.StartDate
	}
	if c.CertificateOffered != nil {
		out["certificate_offered"] = *c.CertificateOffered
	}
	return out
}

// ArticlePayload builds the index payload for an article.
func ArticlePayload(a Article, prov Provenance, canonicalKey string) map[string]any {
	out := prov.payload(a.ItemBase, canonicalKey)
	if a.Author != "" {
		out["author"] = a.Author
	}
	if a.AuthorTitle != "" {
		out["author_title"] = a.AuthorTitle
	}
	if a.PublishedDate != "" {
		out["published_date"] = a.PublishedDate
	}
	if a.Source != "" {
		out["source"] = a.Source
	}
	if a.ReadingTime != "" {
		out["reading_time"] = a.ReadingTime
	}
	if len(a.KeyPoints) > 0 {
		out["key_points"] = a.KeyPoints
	}
	return out
}

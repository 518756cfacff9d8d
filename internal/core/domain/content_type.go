package domain

// ContentType identifies one of the fixed extraction categories.
// The set is closed: payload construction and collection routing switch
// exhaustively over these values.
type ContentType string

// Available content types.
const (
	// ContentTypeEvent is a scheduled happening (webinar, conference, meetup).
	ContentTypeEvent ContentType = "event"

	// ContentTypeCourse is a learning offering with a provider.
	ContentTypeCourse ContentType = "course"

	// ContentTypeArticle is a blog post, newsletter piece or write-up.
	ContentTypeArticle ContentType = "article"
)

// AllContentTypes returns every content type in a stable order.
func AllContentTypes() []ContentType {
	return []ContentType{ContentTypeEvent, ContentTypeCourse, ContentTypeArticle}
}

// IsValid returns true if the content type is recognised.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeEvent, ContentTypeCourse, ContentTypeArticle:
		return true
	default:
		return false
	}
}

// CollectionName returns the index collection holding this content type.
func (t ContentType) CollectionName() string {
	switch t {
	case ContentTypeEvent:
		return "events"
	case ContentTypeCourse:
		return "courses"
	case ContentTypeArticle:
		return "articles"
	default:
		return ""
	}
}

// String returns the string representation.
func (t ContentType) String() string {
	return string(t)
}

// ParseContentType converts a string to a ContentType.
// Returns ErrInvalidContentType for unknown values.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if !t.IsValid() {
		return "", ErrInvalidContentType
	}
	return t, nil
}

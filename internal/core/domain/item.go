package domain

// ItemBase holds the fields shared by every extracted item variant.
// Title is the only required field; everything else tolerates partial
// extraction and may be empty.
type ItemBase struct {
	// Title is the item title. Required, non-empty.
	Title string `json:"title"`

	// Hook is a one-to-two sentence summary of why the item matters.
	Hook string `json:"hook,omitempty"`

	// Description is the detailed item description.
	Description string `json:"description,omitempty"`

	// ImageURL points at a banner or thumbnail found in the email.
	ImageURL string `json:"image_url,omitempty"`

	// Tags are free-form topical labels.
	Tags []string `json:"tags,omitempty"`

	// URL is the primary outbound link (registration, enrollment, article).
	URL string `json:"url,omitempty"`
}

// Event is an extracted event (webinar, conference, workshop, meetup).
type Event struct {
	ItemBase

	// StartTime is the event start in ISO 8601, as extracted.
	StartTime string `json:"start_time,omitempty"`

	// EndTime is the event end in ISO 8601, as extracted.
	EndTime string `json:"end_time,omitempty"`

	// Timezone is the event timezone (e.g. "UTC", "America/New_York").
	Timezone string `json:"timezone,omitempty"`

	// Location is a physical address or "Online".
	Location string `json:"location,omitempty"`

	// Organizer is the host name.
	Organizer string `json:"organizer,omitempty"`

	// Cost is free-form cost information ("Free", "$50").
	Cost string `json:"cost,omitempty"`

	// IsFree reports whether attendance is free, when known.
	IsFree *bool `json:"is_free,omitempty"`
}

// Course is an extracted learning offering.
type Course struct {
	ItemBase

	// Provider is the course provider (Coursera, a company, a university).
	Provider string `json:"provider,omitempty"`

	// Instructor is the instructor name.
	Instructor string `json:"instructor,omitempty"`

	// Level is the difficulty level (beginner, intermediate, advanced).
	Level string `json:"level,omitempty"`

	// Duration is free-form ("6 weeks", "20 hours").
	Duration string `json:"duration,omitempty"`

	// Cost is free-form cost information.
	Cost string `json:"cost,omitempty"`

	// StartDate is the start date for cohort-based courses.
	StartDate string `json:"start_date,omitempty"`

	// CertificateOffered reports whether a certificate is offered, when known.
	CertificateOffered *bool `json:"certificate_offered,omitempty"`
}

// Article is an extracted blog post or newsletter piece.
type Article struct {
	ItemBase

	// Author is the author name.
	Author string `json:"author,omitempty"`

	// AuthorTitle is the author's role or credentials.
	AuthorTitle string `json:"author_title,omitempty"`

	// PublishedDate is the publication date in ISO 8601, as extracted.
	PublishedDate string `json:"published_date,omitempty"`

	// Source is the publication name (blog, newsletter).
	Source string `json:"source,omitempty"`

	// ReadingTime is free-form ("5 min read").
	ReadingTime string `json:"reading_time,omitempty"`

	// KeyPoints are the main takeaways.
	KeyPoints []string `json:"key_points,omitempty"`
}

// ExtractionSet is the union of typed extractions for one document.
// A set with zero items across all types is a valid outcome: the
// document simply contained nothing extractable.
type ExtractionSet struct {
	Events   []Event
	Courses  []Course
	Articles []Article

	// Confidence per type, as reported by the extractor (0.0 - 1.0).
	EventConfidence   float64
	CourseConfidence  float64
	ArticleConfidence float64
}

// Total returns the number of items across all types.
func (s *ExtractionSet) Total() int {
	return len(s.Events) + len(s.Courses) + len(s.Articles)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeIsValid(t *testing.T) {
	tests := []struct {
		name string
		ct   ContentType
		want bool
	}{
		{"event", ContentTypeEvent, true},
		{"course", ContentTypeCourse, true},
		{"article", ContentTypeArticle, true},
		{"empty", ContentType(""), false},
		{"unknown", ContentType("podcast"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ct.IsValid())
		})
	}
}

func TestContentTypeCollectionName(t *testing.T) {
	assert.Equal(t, "events", ContentTypeEvent.CollectionName())
	assert.Equal(t, "courses", ContentTypeCourse.CollectionName())
	assert.Equal(t, "articles", ContentTypeArticle.CollectionName())
	assert.Empty(t, ContentType("bogus").CollectionName())
}

func TestParseContentType(t *testing.T) {
	ct, err := ParseContentType("event")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeEvent, ct)

	_, err = ParseContentType("webinar")
	assert.ErrorIs(t, err, ErrInvalidContentType)
}

func TestAllContentTypesStableOrder(t *testing.T) {
	all := AllContentTypes()
	require.Len(t, all, 3)
	assert.Equal(t, ContentTypeEvent, all[0])
	assert.Equal(t, ContentTypeCourse, all[1])
	assert.Equal(t, ContentTypeArticle, all[2])
}

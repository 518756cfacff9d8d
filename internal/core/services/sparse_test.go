package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSparse(t *testing.T) {
	t.Run("deterministic across calls", func(t *testing.T) {
		a := EncodeSparse("machine learning summit 2026")
		b := EncodeSparse("machine learning summit 2026")
		require.NotNil(t, a)
		assert.Equal(t, a.Indices, b.Indices)
		assert.Equal(t, a.Values, b.Values)
	})

	t.Run("term frequency weights", func(t *testing.T) {
		v := EncodeSparse("kubernetes kubernetes kubernetes workshop")
		require.NotNil(t, v)
		require.Len(t, v.Indices, 2)

		var found bool
		for _, val := range v.Values {
			if val == 3 {
				found = true
			}
		}
		assert.True(t, found, "repeated term should weigh its frequency")
	})

	t.Run("short tokens dropped", func(t *testing.T) {
		v := EncodeSparse("a an AI ml conference")
		require.NotNil(t, v)
		// Only "conference" survives the length filter.
		assert.Len(t, v.Indices, 1)
	})

	t.Run("case and punctuation insensitive", func(t *testing.T) {
		a := EncodeSparse("AI Summit: 2026!")
		b := EncodeSparse("ai summit 2026")
		require.NotNil(t, a)
		assert.Equal(t, a.Indices, b.Indices)
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, EncodeSparse(""))
		assert.Nil(t, EncodeSparse("  -- !! "))
	})

	t.Run("indices sorted ascending", func(t *testing.T) {
		v := EncodeSparse("events courses articles newsletters extraction")
		require.NotNil(t, v)
		for i := 1; i < len(v.Indices); i++ {
			assert.Less(t, v.Indices[i-1], v.Indices[i])
		}
	})
}

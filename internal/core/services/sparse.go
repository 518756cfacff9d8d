package services

import (
	"hash/fnv"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// sparseDimensions is the size of the hashed lexical vector space.
// Large enough that collisions between real newsletter vocabulary are
// rare, small enough for the index's sparse representation.
const sparseDimensions = 1 << 20

// sparseMinWordLen drops noise tokens ("a", "of", urls chopped to "to").
const sparseMinWordLen = 3

// EncodeSparse builds a keyword sparse vector from free text using the
// hashing trick: each word maps to FNV-1a(word) mod the dimension count,
// weighted by term frequency. Deterministic across processes, so query
// vectors and indexed vectors always agree on dimensions.
func EncodeSparse(text string) *domain.SparseVector {
	counts := make(map[uint32]float32)
	for _, word := range tokenize(text) {
		if len(word) < sparseMinWordLen {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		counts[h.Sum32()%sparseDimensions]++
	}
	if len(counts) == 0 {
		return nil
	}

	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = counts[idx]
	}
	return &domain.SparseVector{Indices: indices, Values: values}
}

// tokenize lowercases the text and splits it on anything that is not a
// letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

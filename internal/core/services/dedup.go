package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/core/ports/driving"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Ensure DedupService implements the interface.
var _ driving.DedupService = (*DedupService)(nil)

// DefaultNearDupThreshold is the cosine similarity above which two
// items are treated as the same. Strictly greater: a hit scoring
// exactly the threshold is not a duplicate.
const DefaultNearDupThreshold = 0.92

// nearDupCandidates bounds how many similar items are examined.
const nearDupCandidates = 5

// DedupService derives canonical identity keys and finds near-duplicate
// items already in the index.
type DedupService struct {
	vectors  driven.VectorGateway
	embedder driven.EmbeddingService
}

// NewDedupService creates a new dedup service.
func NewDedupService(vectors driven.VectorGateway, embedder driven.EmbeddingService) *DedupService {
	return &DedupService{vectors: vectors, embedder: embedder}
}

// CanonicalKey derives the stable identity key for a title within a
// content type. Identical titles with different casing, punctuation or
// surrounding whitespace produce identical keys; the collection name in
// the preimage keeps keys from colliding across types.
func (s *DedupService) CanonicalKey(ct domain.ContentType, title string) string {
	normalized := normalizeTitle(title)
	sum := md5.Sum([]byte(ct.CollectionName() + ":" + normalized))
	return hex.EncodeToString(sum[:])
}

// FindNearDuplicates embeds the title and description together and
// searches the title vector space for already-indexed items close
// enough to count as the same item under different wording. The
// description carries the distinction between lookalike titles, so it
// is part of the query.
func (s *DedupService) FindNearDuplicates(
	ctx context.Context, ct domain.ContentType, title, description string, threshold float64,
) ([]domain.ScoredPoint, error) {
	if threshold <= 0 {
		threshold = DefaultNearDupThreshold
	}

	text := strings.TrimSpace(title + " " + description)
	if text == "" {
		return nil, nil
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed near-duplicate query: %w", err)
	}
	if len(vector) == 0 {
		return nil, nil
	}

	hits, err := s.vectors.Search(ctx, ct, driven.VectorQuery{
		Vector:         vector,
		VectorName:     domain.VectorTitle,
		Limit:          nearDupCandidates,
		ScoreThreshold: threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("near-duplicate search: %w", err)
	}

	if len(hits) > 0 {
		logger.Debug("Near-duplicates for %q: %d hits above %.2f", title, len(hits), threshold)
	}
	return hits, nil
}

// normalizeTitle lowercases the title, strips every rune that is not a
// letter, digit or space, and collapses surrounding whitespace.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockVectorGateway implements driven.VectorGateway for testing.
type mockVectorGateway struct {
	mu sync.Mutex

	denseHits  map[domain.ContentType][]domain.ScoredPoint
	sparseHits map[domain.ContentType][]domain.ScoredPoint
	retrieved  map[string]domain.ScoredPoint
	groups     map[domain.ContentType][]domain.Group
	scrollPts  map[domain.ContentType][]domain.ScoredPoint
	processed  map[string]struct{}
	counts     map[domain.ContentType]int

	denseErr     error
	sparseErr    error
	scrollErr    error
	processedErr error
	upsertErr    error

	attempted  []string
	upserts    map[domain.ContentType][]domain.Point
	deletedIDs []string

	denseQueries  []driven.VectorQuery
	scrollFilters []*domain.Filter
}

func newMockVectorGateway() *mockVectorGateway {
	return &mockVectorGateway{
		denseHits:  make(map[domain.ContentType][]domain.ScoredPoint),
		sparseHits: make(map[domain.ContentType][]domain.ScoredPoint),
		retrieved:  make(map[string]domain.ScoredPoint),
		groups:     make(map[domain.ContentType][]domain.Group),
		scrollPts:  make(map[domain.ContentType][]domain.ScoredPoint),
		processed:  make(map[string]struct{}),
		counts:     make(map[domain.ContentType]int),
		upserts:    make(map[domain.ContentType][]domain.Point),
	}
}

func (m *mockVectorGateway) EnsureTopology(_ context.Context) error { return nil }

func (m *mockVectorGateway) Upsert(_ context.Context, ct domain.ContentType, points []domain.Point) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts[ct] = append(m.upserts[ct], points...)
	return nil
}

func (m *mockVectorGateway) Search(_ context.Context, ct domain.ContentType, q driven.VectorQuery) ([]domain.ScoredPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var hits []domain.ScoredPoint
	if q.Sparse != nil {
		if m.sparseErr != nil {
			return nil, m.sparseErr
		}
		hits = m.sparseHits[ct]
	} else {
		m.denseQueries = append(m.denseQueries, q)
		if m.denseErr != nil {
			return nil, m.denseErr
		}
		hits = m.denseHits[ct]
	}

	var out []domain.ScoredPoint
	for _, h := range hits {
		if q.ScoreThreshold > 0 && h.Score <= q.ScoreThreshold {
			continue
		}
		out = append(out, h)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (m *mockVectorGateway) SearchGrouped(_ context.Context, ct domain.ContentType, _ driven.VectorQuery, _ string, _ int) ([]domain.Group, error) {
	return m.groups[ct], nil
}

func (m *mockVectorGateway) Retrieve(_ context.Context, _ domain.ContentType, ids []string) ([]domain.ScoredPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ScoredPoint
	for _, id := range ids {
		if p, ok := m.retrieved[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockVectorGateway) ScrollPayloads(_ context.Context, ct domain.ContentType, _ []string, filter *domain.Filter, fn func(string, map[string]any) error) error {
	if m.scrollErr != nil {
		return m.scrollErr
	}
	m.mu.Lock()
	m.scrollFilters = append(m.scrollFilters, filter)
	pts := append([]domain.ScoredPoint(nil), m.scrollPts[ct]...)
	m.mu.Unlock()
	for _, p := range pts {
		if !filter.Matches(p.Payload) {
			continue
		}
		if err := fn(p.ID, p.Payload); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockVectorGateway) DeleteBySourceIDs(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedIDs = append(m.deletedIDs, ids...)
	for _, id := range ids {
		delete(m.processed, id)
	}
	return nil
}

func (m *mockVectorGateway) MarkAttempted(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempted = append(m.attempted, ids...)
	for _, id := range ids {
		m.processed[id] = struct{}{}
	}
	return nil
}

func (m *mockVectorGateway) ProcessedSourceIDs(_ context.Context) (map[string]struct{}, error) {
	if m.processedErr != nil {
		return nil, m.processedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(m.processed))
	for id := range m.processed {
		out[id] = struct{}{}
	}
	return out, nil
}

func (m *mockVectorGateway) CollectionCounts(_ context.Context) (map[domain.ContentType]int, error) {
	return m.counts, nil
}

func (m *mockVectorGateway) Close() error { return nil }

// attemptedIDs returns a copy of the attempted ledger.
func (m *mockVectorGateway) attemptedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.attempted...)
}

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	embedding []float32
	embedErr  error
	pingErr   error
	model     string
	dims      int

	lastInput string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.lastInput = text
	return m.embedding, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.pingErr }
func (m *mockEmbedder) Close() error                 { return nil }

// mockExtractor implements driven.ItemExtractor for testing.
type mockExtractor struct {
	events   []domain.Event
	courses  []domain.Course
	articles []domain.Article

	// eventFn, when set, derives events from the subject instead of
	// returning the static list.
	eventFn func(subject string) []domain.Event

	eventErr   error
	courseErr  error
	articleErr error
}

func (m *mockExtractor) ExtractEvents(_ context.Context, _, subject string) ([]domain.Event, float64, error) {
	if m.eventErr != nil {
		return nil, 0, m.eventErr
	}
	if m.eventFn != nil {
		return m.eventFn(subject), 0.9, nil
	}
	return m.events, 0.9, nil
}

func (m *mockExtractor) ExtractCourses(_ context.Context, _, _ string) ([]domain.Course, float64, error) {
	if m.courseErr != nil {
		return nil, 0, m.courseErr
	}
	return m.courses, 0.8, nil
}

func (m *mockExtractor) ExtractArticles(_ context.Context, _, _ string) ([]domain.Article, float64, error) {
	if m.articleErr != nil {
		return nil, 0, m.articleErr
	}
	return m.articles, 0.7, nil
}

// mockMailbox implements driven.Mailbox for testing.
type mockMailbox struct {
	mu sync.Mutex

	pages    [][]string
	docs     map[string]*domain.Document
	listErr  error
	fetchErr map[string]error

	// fetchGate, when set, blocks every Fetch until closed.
	fetchGate chan struct{}

	listCalls  int
	fetchCalls []string
}

func (m *mockMailbox) ListCandidates(_ context.Context, _ time.Duration, pageToken string) ([]string, string, error) {
	if m.listErr != nil {
		return nil, "", m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	page := 0
	if pageToken != "" {
		for i := range m.pages {
			if pageToken == pageTokenFor(i) {
				page = i
			}
		}
	}
	if page >= len(m.pages) {
		return nil, "", nil
	}
	next := ""
	if page+1 < len(m.pages) {
		next = pageTokenFor(page + 1)
	}
	return m.pages[page], next, nil
}

func pageTokenFor(i int) string {
	return "page-" + string(rune('0'+i))
}

func (m *mockMailbox) Fetch(_ context.Context, id string) (*domain.Document, error) {
	if m.fetchGate != nil {
		<-m.fetchGate
	}
	m.mu.Lock()
	m.fetchCalls = append(m.fetchCalls, id)
	m.mu.Unlock()
	if err := m.fetchErr[id]; err != nil {
		return nil, err
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockMailbox) FetchBatch(ctx context.Context, ids []string) ([]domain.Document, error) {
	var out []domain.Document
	for _, id := range ids {
		doc, err := m.Fetch(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (m *mockMailbox) Close() error { return nil }

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}

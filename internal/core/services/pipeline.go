package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/feedprism/internal/core/domain"
	"github.com/custodia-labs/feedprism/internal/core/ports/driven"
	"github.com/custodia-labs/feedprism/internal/core/ports/driving"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

const (
	// fetchLeaseTTL bounds how long a crashed fetch can block new ones.
	fetchLeaseTTL = 2 * time.Minute

	// extractionLeaseTTL bounds how long a crashed extraction run can
	// block new ones. The active run renews it per document.
	extractionLeaseTTL = 10 * time.Minute

	// maxFetchPages caps mailbox pagination per batch.
	maxFetchPages = 20

	// embedWorkers bounds concurrent embedding calls during ingest.
	embedWorkers = 4
)

// lease is a coarse time-bounded exclusivity claim. A lease whose
// expiry has passed is treated as abandoned and can be taken over.
type lease struct {
	held      bool
	startedAt time.Time
	expiresAt time.Time
}

func (l *lease) acquire(now time.Time, ttl time.Duration) bool {
	if l.held && now.Before(l.expiresAt) {
		return false
	}
	if l.held {
		logger.Warn("Taking over expired lease held since %s", l.startedAt.Format(time.RFC3339))
	}
	l.held = true
	l.startedAt = now
	l.expiresAt = now.Add(ttl)
	return true
}

func (l *lease) renew(now time.Time, ttl time.Duration) {
	l.expiresAt = now.Add(ttl)
}

func (l *lease) release() {
	*l = lease{}
}

// expire clears the lease if its expiry has passed.
func (l *lease) expire(now time.Time) {
	if l.held && !now.Before(l.expiresAt) {
		l.release()
	}
}

// PipelineService owns the fetch → extract → ingest lifecycle and the
// state machine guarding it.
type PipelineService struct {
	mailbox     driven.Mailbox
	vectors     driven.VectorGateway
	embedder    driven.EmbeddingService
	coordinator *ExtractionCoordinator
	dedup       driving.DedupService
	clock       Clock

	mu         sync.Mutex
	fetchLease lease
	extraction lease
	progress   domain.Progress
}

// NewPipelineService creates a new pipeline service.
func NewPipelineService(
	mailbox driven.Mailbox,
	vectors driven.VectorGateway,
	embedder driven.EmbeddingService,
	coordinator *ExtractionCoordinator,
	dedup driving.DedupService,
	clock Clock,
) *PipelineService {
	if clock == nil {
		clock = SystemClock()
	}
	return &PipelineService{
		mailbox:     mailbox,
		vectors:     vectors,
		embedder:    embedder,
		coordinator: coordinator,
		dedup:       dedup,
		clock:       clock,
	}
}

// ListUnprocessed fetches a batch of documents that have never been
// through an extraction attempt. Holds the fetch lease for the duration
// of the call.
func (s *PipelineService) ListUnprocessed(
	ctx context.Context, settings domain.PipelineSettings,
) (*domain.FetchResult, error) {
	settings = settings.Clamp()

	s.mu.Lock()
	if !s.fetchLease.acquire(s.clock.Now(), fetchLeaseTTL) {
		s.mu.Unlock()
		return nil, domain.ErrFetchInProgress
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.fetchLease.release()
		s.mu.Unlock()
	}()

	logger.Section("Mailbox Fetch")
	logger.Debug("Batch size: %d, lookback: %dh", settings.MaxBatchSize, settings.LookbackHours)

	processed, err := s.vectors.ProcessedSourceIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load processed source ids: %w", err)
	}
	logger.Debug("Seen-set size: %d", len(processed))

	window := time.Duration(settings.LookbackHours) * time.Hour

	var (
		fresh       []string
		totalListed int
		pageToken   string
	)
	for page := 0; page < maxFetchPages; page++ {
		ids, next, err := s.mailbox.ListCandidates(ctx, window, pageToken)
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		totalListed += len(ids)
		for _, id := range ids {
			if _, seen := processed[id]; seen {
				continue
			}
			fresh = append(fresh, id)
		}
		if len(fresh) >= settings.MaxBatchSize || next == "" {
			break
		}
		pageToken = next
	}
	if len(fresh) > settings.MaxBatchSize {
		fresh = fresh[:settings.MaxBatchSize]
	}
	logger.Info("Candidates: %d listed, %d unprocessed", totalListed, len(fresh))

	var docs []domain.Document
	if len(fresh) > 0 {
		docs, err = s.mailbox.FetchBatch(ctx, fresh)
		if err != nil {
			return nil, fmt.Errorf("fetch batch: %w", err)
		}
	}

	return &domain.FetchResult{
		Documents:      docs,
		TotalListed:    totalListed,
		ProcessedCount: len(processed),
		LookbackHours:  settings.LookbackHours,
	}, nil
}

// Extract runs the extraction cycle over the given document IDs.
func (s *PipelineService) Extract(ctx context.Context, ids []string) (<-chan domain.PipelineEvent, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no document ids", domain.ErrInvalidInput)
	}
	if err := s.acquireExtraction(len(ids)); err != nil {
		return nil, err
	}
	return s.launch(ctx, ids), nil
}

// ReExtract deletes every indexed point derived from the given
// documents and runs a fresh extraction cycle over them. With no IDs,
// all processed documents are redone.
func (s *PipelineService) ReExtract(ctx context.Context, ids []string) (<-chan domain.PipelineEvent, error) {
	if len(ids) == 0 {
		processed, err := s.vectors.ProcessedSourceIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("load processed source ids: %w", err)
		}
		for id := range processed {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: nothing to re-extract", domain.ErrInvalidInput)
	}

	// Take the lease before wiping: a concurrent run must reject the
	// call with the index untouched, not race an emptied collection.
	if err := s.acquireExtraction(len(ids)); err != nil {
		return nil, err
	}
	if err := s.vectors.DeleteBySourceIDs(ctx, ids); err != nil {
		s.releaseExtraction()
		return nil, fmt.Errorf("delete indexed points: %w", err)
	}
	logger.Info("Cleared indexed points for %d documents", len(ids))

	return s.launch(ctx, ids), nil
}

// Status returns a snapshot of the state machine. Leases whose holder
// is presumed crashed are cleared as a side effect.
func (s *PipelineService) Status(_ context.Context) domain.PipelineStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.fetchLease.expire(now)
	s.extraction.expire(now)

	return domain.PipelineStatus{
		FetchLocked:         s.fetchLease.held,
		FetchStartedAt:      s.fetchLease.startedAt,
		Extracting:          s.extraction.held,
		ExtractionStartedAt: s.extraction.startedAt,
		Progress:            s.progress,
	}
}

// ResetFetchLock force-releases the fetch lease.
func (s *PipelineService) ResetFetchLock(_ context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := s.fetchLease.held
	s.fetchLease.release()
	if held {
		logger.Info("Fetch lock force-released")
	}
	return held
}

// acquireExtraction takes the extraction lease and resets progress.
func (s *PipelineService) acquireExtraction(total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.extraction.acquire(s.clock.Now(), extractionLeaseTTL) {
		return domain.ErrExtractionInProgress
	}
	s.progress = domain.Progress{Total: total}
	return nil
}

func (s *PipelineService) releaseExtraction() {
	s.mu.Lock()
	s.extraction.release()
	s.mu.Unlock()
}

// launch starts the run goroutine under an already-held lease.
func (s *PipelineService) launch(ctx context.Context, ids []string) <-chan domain.PipelineEvent {
	events := make(chan domain.PipelineEvent, 64)
	go func() {
		defer func() {
			s.releaseExtraction()
			close(events)
		}()
		s.run(ctx, ids, events)
	}()
	return events
}

// run executes one extraction cycle, emitting lifecycle events. Always
// terminates with EventComplete, even when every document failed.
func (s *PipelineService) run(ctx context.Context, ids []string, events chan<- domain.PipelineEvent) {
	logger.Section("Extraction Run")
	logger.Info("Documents: %d", len(ids))

	emit := func(ev domain.PipelineEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var (
		counts    domain.ItemCounts
		processed int
		errCount  int
	)

	complete := func(message string) {
		emit(domain.PipelineEvent{
			Kind:      domain.EventComplete,
			Counts:    counts,
			Processed: processed,
			Errors:    errCount,
			Message:   message,
		})
	}

	if !emit(domain.PipelineEvent{Kind: domain.EventStart, Total: len(ids)}) {
		complete("cancelled")
		return
	}

	seen, err := s.vectors.ProcessedSourceIDs(ctx)
	if err != nil {
		logger.Warn("Cannot load seen-set: %v", err)
		emit(domain.PipelineEvent{Kind: domain.EventError, Reason: err.Error()})
		complete("aborted: seen-set unavailable")
		return
	}

	keys, err := s.loadCanonicalKeys(ctx)
	if err != nil {
		logger.Warn("Cannot load canonical keys: %v", err)
		emit(domain.PipelineEvent{Kind: domain.EventError, Reason: err.Error()})
		complete("aborted: canonical keys unavailable")
		return
	}

	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		current := i + 1
		s.touch(current)

		if _, done := seen[id]; done {
			emit(domain.PipelineEvent{
				Kind: domain.EventSkip, Current: current, Total: len(ids),
				DocumentID: id, Reason: "already processed",
			})
			continue
		}

		emit(domain.PipelineEvent{Kind: domain.EventFetch, Current: current, Total: len(ids), DocumentID: id})
		doc, err := s.mailbox.Fetch(ctx, id)
		if err != nil {
			logger.Warn("Fetch failed for %s: %v", id, err)
			errCount++
			s.setErrors(errCount)
			// Error outcomes are attempted too; a permanently failing
			// document must not be re-listed forever. The operator
			// escape hatch is reextract.
			if err := s.vectors.MarkAttempted(ctx, []string{id}); err != nil {
				logger.Warn("Mark attempted failed for %s: %v", id, err)
			}
			emit(domain.PipelineEvent{
				Kind: domain.EventError, Current: current, Total: len(ids),
				DocumentID: id, Reason: fmt.Sprintf("fetch: %v", err),
			})
			continue
		}

		emit(domain.PipelineEvent{
			Kind: domain.EventParse, Current: current, Total: len(ids),
			DocumentID: id, Subject: doc.Subject,
		})
		if !doc.HasText() {
			if err := s.vectors.MarkAttempted(ctx, []string{id}); err != nil {
				logger.Warn("Mark attempted failed for %s: %v", id, err)
			}
			processed++
			s.setProcessed(processed)
			emit(domain.PipelineEvent{
				Kind: domain.EventSkip, Current: current, Total: len(ids),
				DocumentID: id, Subject: doc.Subject, Reason: "no text content",
			})
			continue
		}

		emit(domain.PipelineEvent{
			Kind: domain.EventExtract, Current: current, Total: len(ids),
			DocumentID: id, Subject: doc.Subject,
		})
		set := s.coordinator.Extract(ctx, doc)

		emit(domain.PipelineEvent{
			Kind: domain.EventIngest, Current: current, Total: len(ids),
			DocumentID: id, Subject: doc.Subject,
		})
		ingested, err := s.ingest(ctx, doc, set, keys)
		if err != nil {
			logger.Warn("Ingest failed for %s: %v", id, err)
			errCount++
			s.setErrors(errCount)
			emit(domain.PipelineEvent{
				Kind: domain.EventError, Current: current, Total: len(ids),
				DocumentID: id, Reason: fmt.Sprintf("ingest: %v", err),
			})
		} else {
			processed++
			counts.Events += ingested.Events
			counts.Courses += ingested.Courses
			counts.Articles += ingested.Articles
			s.setCounts(counts, processed)
		}

		// The document is attempted regardless of outcome so it is
		// never fetched again.
		if err := s.vectors.MarkAttempted(ctx, []string{id}); err != nil {
			logger.Warn("Mark attempted failed for %s: %v", id, err)
		}

		emit(domain.PipelineEvent{
			Kind: domain.EventProgress, Current: current, Total: len(ids),
			Counts: counts, Processed: processed, Errors: errCount,
		})
	}

	logger.Info("Run complete: %d processed, %d errors, %d items", processed, errCount, counts.Total())
	complete("")
}

// ingest deduplicates, embeds and upserts one document's extraction
// set, returning how many items of each type were actually indexed.
// keys is the canonical key set per content type, updated in place.
func (s *PipelineService) ingest(
	ctx context.Context,
	doc *domain.Document,
	set *domain.ExtractionSet,
	keys map[domain.ContentType]map[string]struct{},
) (domain.ItemCounts, error) {
	var counts domain.ItemCounts
	if set.Total() == 0 {
		return counts, nil
	}

	prov := domain.Provenance{
		DocumentID:  doc.ID,
		Subject:     doc.Subject,
		Sender:      doc.Sender,
		SenderEmail: doc.SenderEmail,
		ReceivedAt:  doc.ReceivedAt,
		ExtractedAt: s.clock.Now(),
	}

	type pending struct {
		ct      domain.ContentType
		base    domain.ItemBase
		payload func(key string) map[string]any
	}
	var items []pending
	for _, ev := range set.Events {
		ev := ev
		items = append(items, pending{
			ct:   domain.ContentTypeEvent,
			base: ev.ItemBase,
			payload: func(key string) map[string]any {
				return domain.EventPayload(ev, prov, key)
			},
		})
	}
	for _, c := range set.Courses {
		c := c
		items = append(items, pending{
			ct:   domain.ContentTypeCourse,
			base: c.ItemBase,
			payload: func(key string) map[string]any {
				return domain.CoursePayload(c, prov, key)
			},
		})
	}
	for _, a := range set.Articles {
		a := a
		items = append(items, pending{
			ct:   domain.ContentTypeArticle,
			base: a.ItemBase,
			payload: func(key string) map[string]any {
				return domain.ArticlePayload(a, prov, key)
			},
		})
	}

	var (
		mu     sync.Mutex
		points = make(map[domain.ContentType][]domain.Point)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)

	for _, item := range items {
		item := item
		if strings.TrimSpace(item.base.Title) == "" {
			continue
		}
		g.Go(func() error {
			fullText := item.base.Title
			if item.base.Description != "" {
				fullText += "\n" + item.base.Description
			}
			vectors, err := s.embedder.EmbedBatch(gctx, []string{
				item.base.Title, item.base.Description, fullText,
			})
			if err != nil {
				return fmt.Errorf("embed %q: %w", item.base.Title, err)
			}

			mu.Lock()
			defer mu.Unlock()

			key := s.dedup.CanonicalKey(item.ct, item.base.Title)
			if _, dup := keys[item.ct][key]; dup {
				logger.Debug("Exact duplicate skipped: %q", item.base.Title)
				return nil
			}
			near, err := s.dedup.FindNearDuplicates(gctx, item.ct, item.base.Title, item.base.Description, 0)
			if err != nil {
				return err
			}
			if len(near) > 0 {
				logger.Debug("Near duplicate skipped: %q", item.base.Title)
				return nil
			}
			keys[item.ct][key] = struct{}{}

			sparseText := item.base.Title + " " + item.base.Description
			if len(item.base.Tags) > 0 {
				sparseText += " " + strings.Join(item.base.Tags, " ")
			}

			points[item.ct] = append(points[item.ct], domain.Point{
				ID: uuid.NewString(),
				Vectors: map[string][]float32{
					domain.VectorTitle:       vectors[0],
					domain.VectorDescription: vectors[1],
					domain.VectorFullText:    vectors[2],
				},
				Sparse:  EncodeSparse(sparseText),
				Payload: item.payload(key),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return counts, err
	}

	for _, ct := range domain.AllContentTypes() {
		batch := points[ct]
		if len(batch) == 0 {
			continue
		}
		if err := s.vectors.Upsert(ctx, ct, batch); err != nil {
			return counts, fmt.Errorf("upsert %s: %w", ct.CollectionName(), err)
		}
		switch ct {
		case domain.ContentTypeEvent:
			counts.Events = len(batch)
		case domain.ContentTypeCourse:
			counts.Courses = len(batch)
		case domain.ContentTypeArticle:
			counts.Articles = len(batch)
		}
	}
	return counts, nil
}

// loadCanonicalKeys scans every collection's canonical_key payload
// field into an in-memory set, so exact-duplicate checks during a run
// are lookups rather than index round-trips.
func (s *PipelineService) loadCanonicalKeys(ctx context.Context) (map[domain.ContentType]map[string]struct{}, error) {
	out := make(map[domain.ContentType]map[string]struct{}, len(domain.AllContentTypes()))
	for _, ct := range domain.AllContentTypes() {
		set := make(map[string]struct{})
		err := s.vectors.ScrollPayloads(ctx, ct, []string{domain.FieldCanonicalKey}, nil,
			func(_ string, payload map[string]any) error {
				if key, ok := payload[domain.FieldCanonicalKey].(string); ok && key != "" {
					set[key] = struct{}{}
				}
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("scroll %s: %w", ct.CollectionName(), err)
		}
		out[ct] = set
	}
	return out, nil
}

// touch renews the extraction lease and bumps the current counter.
func (s *PipelineService) touch(current int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extraction.renew(s.clock.Now(), extractionLeaseTTL)
	s.progress.Current = current
}

func (s *PipelineService) setErrors(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Errors = n
}

func (s *PipelineService) setProcessed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Processed = n
}

func (s *PipelineService) setCounts(counts domain.ItemCounts, processed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Events = counts.Events
	s.progress.Courses = counts.Courses
	s.progress.Articles = counts.Articles
	s.progress.Processed = processed
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driving"
	"github.com/grantwatch/grantwatch-cli/internal/logger"
	"github.com/grantwatch/grantwatch-cli/internal/postprocessors/chunker"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.Ingestor = (*IngestOrchestrator)(nil)

// DefaultDocumentTimeout bounds the work spent on a single document so
// a slow summarizer or embedder cannot starve the rest of the batch.
const DefaultDocumentTimeout = 2 * time.Minute

// IngestOrchestrator runs the ingestion pipeline: for each freshly
// crawled document it classifies duplicates, tracks versions, invokes
// the external extractors, and pushes chunks into the retrieval store.
// Documents are processed sequentially, one unit of work each; a
// failure on one document never rolls back or aborts its siblings.
type IngestOrchestrator struct {
	deduper    *Deduper
	docStore   driven.DocumentStore
	oppStore   driven.OpportunityStore
	chunks     *chunker.Processor
	retrieval  *RetrievalStore
	summarizer driven.ChangeSummarizer
	extractor  driven.OpportunityExtractor
	docTimeout time.Duration
}

// IngestOption configures the orchestrator.
type IngestOption func(*IngestOrchestrator)

// WithDocumentTimeout sets the per-document processing timeout.
func WithDocumentTimeout(d time.Duration) IngestOption {
	return func(o *IngestOrchestrator) {
		if d > 0 {
			o.docTimeout = d
		}
	}
}

// NewIngestOrchestrator creates the ingestion pipeline. The deduper,
// document store and chunker are required; the opportunity store,
// retrieval store, summarizer and extractor may be nil and their steps
// are skipped.
func NewIngestOrchestrator(
	deduper *Deduper,
	docStore driven.DocumentStore,
	oppStore driven.OpportunityStore,
	chunks *chunker.Processor,
	retrieval *RetrievalStore,
	summarizer driven.ChangeSummarizer,
	extractor driven.OpportunityExtractor,
	opts ...IngestOption,
) (*IngestOrchestrator, error) {
	if deduper == nil || docStore == nil || chunks == nil {
		return nil, fmt.Errorf("%w: deduper, document store and chunker are required", domain.ErrInvalidConfig)
	}
	o := &IngestOrchestrator{
		deduper:    deduper,
		docStore:   docStore,
		oppStore:   oppStore,
		chunks:     chunks,
		retrieval:  retrieval,
		summarizer: summarizer,
		extractor:  extractor,
		docTimeout: DefaultDocumentTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Ingest processes one crawl cycle's output for a source. The report
// counts rather than raises: only a completely unusable run returns an
// error.
func (o *IngestOrchestrator) Ingest(ctx context.Context, sourceID string, results []domain.CrawlResult) (driving.IngestReport, error) {
	logger.Section("Ingestion")
	logger.Info("Ingesting %d crawl results for source %s", len(results), sourceID)

	// Fresh near-duplicate index per run: pages are deduplicated
	// against each other within this cycle, never against the stored
	// history, so an updated page always reaches version tracking.
	run := o.deduper.NewRun()

	var report driving.IngestReport
	for _, result := range results {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		docCtx, cancel := context.WithTimeout(ctx, o.docTimeout)
		outcome, err := o.ingestOne(docCtx, run, sourceID, result)
		cancel()

		switch {
		case err != nil:
			report.Errored++
			logger.Error("Ingest failed for %s (source %s): %v", result.URL, sourceID, err)
		case outcome:
			report.Ingested++
		default:
			report.Skipped++
		}
	}

	logger.Info("Ingestion done: %d ingested, %d skipped, %d errored",
		report.Ingested, report.Skipped, report.Errored)
	return report, nil
}

// ingestOne handles a single document inside its own timeout. It
// returns true when a new version was stored, false when the fetch was
// a duplicate or unchanged.
func (o *IngestOrchestrator) ingestOne(ctx context.Context, run *DedupeRun, sourceID string, result domain.CrawlResult) (bool, error) {
	if err := result.Validate(); err != nil {
		return false, err
	}
	fetchedAt, err := result.FetchTime()
	if err != nil {
		return false, err
	}

	verdict, fps, err := run.Classify(ctx, result.RawText)
	if err != nil {
		return false, fmt.Errorf("dedupe: %w", err)
	}
	if verdict.IsDuplicate() {
		logger.Debug("Skipping %s: %s", result.URL, verdict)
		return false, nil
	}

	doc, err := o.docStore.GetByURL(ctx, sourceID, result.URL)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		doc, err = o.firstSighting(ctx, sourceID, result, fetchedAt, fps.ContentHash)
		if err != nil {
			return false, err
		}
	case err != nil:
		return false, fmt.Errorf("lookup document: %w", err)
	default:
		stored, err := o.nextVersion(ctx, doc, result, fetchedAt, fps.ContentHash)
		if err != nil {
			return false, err
		}
		if !stored {
			// Byte-identical to the latest version: the common steady
			// state. Nothing is written, re-chunked or re-indexed.
			logger.Debug("Unchanged: %s", result.URL)
			return false, nil
		}
	}

	version, err := o.docStore.LatestVersion(ctx, doc.ID)
	if err != nil {
		return false, fmt.Errorf("load stored version: %w", err)
	}

	o.extractOpportunities(ctx, doc, result)
	o.indexChunks(ctx, doc, version)
	return true, nil
}

// firstSighting creates a document with version 1. First sightings
// never produce a Change record.
func (o *IngestOrchestrator) firstSighting(ctx context.Context, sourceID string, result domain.CrawlResult, fetchedAt time.Time, hash string) (*domain.Document, error) {
	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.New().String(),
		SourceID:    sourceID,
		URL:         result.URL,
		Title:       result.Title,
		FetchedAt:   fetchedAt,
		ContentHash: hash,
		MIME:        result.MIME,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	version := &domain.Version{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Number:     1,
		Text:       result.RawText,
		CreatedAt:  now,
	}
	if err := o.docStore.CreateWithVersion(ctx, doc, version); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	logger.Info("New document: %s", result.URL)
	return doc, nil
}

// nextVersion decides between the unchanged no-op and appending a new
// version. The unchanged check is byte equality against the latest
// stored text, not hash equality: a hash collision must never make
// changed content look unchanged.
func (o *IngestOrchestrator) nextVersion(ctx context.Context, doc *domain.Document, result domain.CrawlResult, fetchedAt time.Time, hash string) (bool, error) {
	latest, err := o.docStore.LatestVersion(ctx, doc.ID)
	if err != nil {
		return false, fmt.Errorf("load latest version: %w", err)
	}
	if latest.Text == result.RawText {
		return false, nil
	}

	now := time.Now().UTC()
	version := &domain.Version{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Number:     latest.Number + 1,
		Text:       result.RawText,
		CreatedAt:  now,
	}

	change := o.summarizeChange(ctx, doc, latest, version, result)

	doc.Title = result.Title
	doc.FetchedAt = fetchedAt
	doc.ContentHash = hash
	doc.MIME = result.MIME
	doc.UpdatedAt = now

	if err := o.docStore.AppendVersion(ctx, doc, version, change); err != nil {
		return false, fmt.Errorf("append version %d: %w", version.Number, err)
	}
	logger.Info("New version %d for %s", version.Number, doc.URL)
	return true, nil
}

// summarizeChange asks the external summarizer whether the delta is
// meaningful. A summarizer failure or an empty what-changed list means
// no Change record; the version is stored either way.
func (o *IngestOrchestrator) summarizeChange(ctx context.Context, doc *domain.Document, old, next *domain.Version, result domain.CrawlResult) *domain.Change {
	if o.summarizer == nil {
		return nil
	}
	summary, err := o.summarizer.Summarize(ctx, result.URL, result.FetchedAt, old.Text, next.Text)
	if err != nil {
		logger.Warn("Change summarizer failed for %s: %v", result.URL, err)
		return nil
	}
	if summary.IsEmpty() {
		return nil
	}
	return &domain.Change{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		OldVersion: old.Number,
		NewVersion: next.Number,
		Summary:    summary,
		CreatedAt:  time.Now().UTC(),
	}
}

// extractOpportunities runs the external extractor and persists its
// results. Extraction is best-effort: failures are logged and never
// fail the document.
func (o *IngestOrchestrator) extractOpportunities(ctx context.Context, doc *domain.Document, result domain.CrawlResult) {
	if o.extractor == nil || o.oppStore == nil || result.RawText == "" {
		return
	}
	opportunities, err := o.extractor.Extract(ctx, result.URL, result.Title, result.RawText)
	if err != nil {
		logger.Warn("Opportunity extraction failed for %s: %v", result.URL, err)
		return
	}
	for _, opp := range opportunities {
		if opp.Title == "" {
			continue
		}
		opp.ID = uuid.New().String()
		opp.DocumentID = doc.ID
		if opp.URL == "" {
			opp.URL = doc.URL
		}
		opp.CreatedAt = time.Now().UTC()
		if err := o.oppStore.Save(ctx, &opp); err != nil {
			logger.Warn("Saving opportunity %q failed: %v", opp.Title, err)
			continue
		}
		logger.Info("Extracted opportunity: %s", opp.Title)
	}
}

// indexChunks re-chunks the stored version and replaces the document's
// chunks in the retrieval store. Indexing failures are logged and do
// not fail the document.
func (o *IngestOrchestrator) indexChunks(ctx context.Context, doc *domain.Document, version *domain.Version) {
	if o.retrieval == nil || !o.retrieval.Enabled() {
		return
	}
	chunks := o.chunks.Chunk(doc, version)
	if len(chunks) == 0 {
		return
	}
	if !o.retrieval.Replace(ctx, doc.ID, chunks) {
		logger.Warn("Retrieval indexing failed for %s", doc.URL)
	}
}

package driving

import (
	"context"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

// Ingestor runs the ingestion pipeline over one crawl cycle's output.
type Ingestor interface {
	// Ingest processes crawl results for a source, one document at a
	// time. Per-document failures are counted in the report and never
	// abort sibling documents; the returned error is non-nil only when
	// the whole run could not proceed at all.
	Ingest(ctx context.Context, sourceID string, results []domain.CrawlResult) (IngestReport, error)
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Ingested counts documents that produced a new version (including
	// first sightings).
	Ingested int

	// Skipped counts duplicates and unchanged documents.
	Skipped int

	// Errored counts documents that failed and were left for a later
	// crawl cycle.
	Errored int
}

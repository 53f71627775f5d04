package driven

import (
	"context"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

// Crawler fetches the current content of a monitored source.
// Network strategy and HTML extraction mechanics live entirely behind
// this port; the pipeline only consumes the resulting records.
type Crawler interface {
	// Fetch crawls the source and returns one record per fetched page.
	Fetch(ctx context.Context, source domain.Source) ([]domain.CrawlResult, error)
}

package driving

import (
	"context"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

// Retriever answers semantic queries against the retrieval index.
type Retriever interface {
	// Query returns at most topK chunks ranked by descending relevance.
	// An empty result is not an error: an empty index and a transient
	// embedding failure both surface as "no results".
	Query(ctx context.Context, text string, topK int, filters domain.QueryFilters) ([]domain.RetrievedChunk, error)
}

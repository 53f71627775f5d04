package driven

import (
	"context"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

// VectorIndex stores chunk embeddings alongside their payloads and
// answers nearest-neighbour queries. Entries are upserted by ID, so
// re-adding the same logical chunk never grows the index. Stale chunks
// from a superseded version are removed with DeleteByDocument before
// the new version's chunks are added.
type VectorIndex interface {
	// Upsert inserts or replaces entries by ID.
	Upsert(ctx context.Context, entries []VectorEntry) error

	// DeleteByDocument removes every entry owned by a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Search finds the k nearest neighbours to the query vector,
	// restricted by filters. Results are ordered by descending
	// similarity.
	Search(ctx context.Context, query []float32, k int, filters domain.QueryFilters) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorEntry is one stored chunk with its embedding.
type VectorEntry struct {
	// ID is the upsert key, deterministic per (document, position).
	ID string

	// Embedding is the chunk's vector representation.
	Embedding []float32

	// Chunk is the payload returned from searches.
	Chunk domain.Chunk
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk payload.
	Chunk domain.Chunk

	// Similarity is cosine similarity normalised to 1 - distance.
	Similarity float64
}

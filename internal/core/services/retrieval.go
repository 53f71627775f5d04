package services

import (
	"context"
	"strings"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driving"
	"github.com/grantwatch/grantwatch-cli/internal/logger"
)

// Ensure RetrievalStore implements the interface.
var _ driving.Retriever = (*RetrievalStore)(nil)

// DefaultTopK is the default number of chunks returned by a query.
const DefaultTopK = 4

// RetrievalStore pairs an embedding service with a vector index to make
// chunks semantically searchable. Retrieval is best-effort supporting
// text: embedding failures degrade Add to a reported failure and Query
// to an empty result, never to an error that aborts ingestion.
type RetrievalStore struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetrievalStore creates a retrieval store. Both collaborators may
// be nil, in which case every operation degrades to a no-op.
func NewRetrievalStore(embedder driven.EmbeddingService, index driven.VectorIndex) *RetrievalStore {
	return &RetrievalStore{
		embedder: embedder,
		index:    index,
	}
}

// Enabled reports whether the store can actually index and retrieve.
func (s *RetrievalStore) Enabled() bool {
	return s.embedder != nil && s.index != nil
}

// Add embeds the chunks and upserts them into the index. It returns
// false when nothing was indexed - because the store is disabled, the
// chunk list is empty, or the embedder failed - and true on success.
func (s *RetrievalStore) Add(ctx context.Context, chunks []domain.Chunk) bool {
	if !s.Enabled() || len(chunks) == 0 {
		return false
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Error("Embedding %d chunks failed: %v", len(chunks), err)
		return false
	}
	if len(embeddings) != len(chunks) {
		logger.Error("Embedder returned %d vectors for %d chunks", len(embeddings), len(chunks))
		return false
	}

	entries := make([]driven.VectorEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = driven.VectorEntry{
			ID:        c.ID,
			Embedding: embeddings[i],
			Chunk:     c,
		}
	}
	if err := s.index.Upsert(ctx, entries); err != nil {
		logger.Error("Indexing %d chunks failed: %v", len(entries), err)
		return false
	}

	logger.Info("Indexed %d chunks", len(entries))
	return true
}

// Replace removes a document's stale chunks before adding the new
// version's chunks, so a superseded version is no longer retrievable.
func (s *RetrievalStore) Replace(ctx context.Context, documentID string, chunks []domain.Chunk) bool {
	if !s.Enabled() {
		return false
	}
	if err := s.index.DeleteByDocument(ctx, documentID); err != nil {
		logger.Error("Deleting stale chunks for %s failed: %v", documentID, err)
		return false
	}
	return s.Add(ctx, chunks)
}

// Query embeds the query text and returns at most topK chunks ranked
// by descending cosine similarity. An empty index and a transient
// embedding failure both surface as "no results", not as an error.
func (s *RetrievalStore) Query(ctx context.Context, text string, topK int, filters domain.QueryFilters) ([]domain.RetrievedChunk, error) {
	text = strings.TrimSpace(text)
	if !s.Enabled() || text == "" {
		return []domain.RetrievedChunk{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Error("Embedding query failed: %v", err)
		return []domain.RetrievedChunk{}, nil
	}

	hits, err := s.index.Search(ctx, embedding, topK, filters)
	if err != nil {
		logger.Error("Vector search failed: %v", err)
		return []domain.RetrievedChunk{}, nil
	}

	results := make([]domain.RetrievedChunk, len(hits))
	for i, hit := range hits {
		results[i] = domain.RetrievedChunk{
			Chunk: hit.Chunk,
			Score: hit.Similarity,
		}
	}
	logger.Debug("Retrieved %d chunks for query %q", len(results), truncate(text, 50))
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

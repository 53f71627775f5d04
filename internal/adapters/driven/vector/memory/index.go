// Package memory provides an in-memory vector index using brute-force
// cosine similarity. It suits the corpus sizes a single monitoring
// deployment produces; swapping in an ANN-backed index only requires
// re-implementing the VectorIndex port.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores vector entries keyed by chunk ID.
type Index struct {
	mu      sync.RWMutex
	entries map[string]driven.VectorEntry
}

// NewIndex creates an empty in-memory vector index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]driven.VectorEntry),
	}
}

// Upsert inserts or replaces entries by ID.
func (x *Index) Upsert(_ context.Context, entries []driven.VectorEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range entries {
		x.entries[e.ID] = e
	}
	return nil
}

// DeleteByDocument removes every entry owned by a document.
func (x *Index) DeleteByDocument(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, e := range x.entries {
		if e.Chunk.DocumentID == documentID {
			delete(x.entries, id)
		}
	}
	return nil
}

// Search finds the k nearest neighbours by cosine similarity.
// An empty index returns no hits, never an error.
func (x *Index) Search(_ context.Context, query []float32, k int, filters domain.QueryFilters) ([]driven.VectorHit, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(x.entries))
	for _, e := range x.entries {
		if filters.URL != "" && e.Chunk.URL != filters.URL {
			continue
		}
		if filters.DocumentID != "" && e.Chunk.DocumentID != filters.DocumentID {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Chunk:      e.Chunk,
			Similarity: cosine(query, e.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources. The in-memory index has none.
func (x *Index) Close() error {
	return nil
}

// Len returns the number of stored entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// cosine computes cosine similarity between two vectors. Mismatched
// lengths compare over the shorter prefix; zero vectors score 0.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vectormem "github.com/grantwatch/grantwatch-cli/internal/adapters/driven/vector/memory"
	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// --- Mock implementations for retrieval testing ---

// mockEmbedder implements driven.EmbeddingService with a trivial
// deterministic embedding: texts sharing more words score closer.
type mockEmbedder struct {
	failEmbed bool
	vectors   map[string][]float32
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.failEmbed {
		return nil, errors.New("embedding service unreachable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return 3 }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func chunkFor(id, docID, text string) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		DocumentID: docID,
		URL:        "https://example.gov.ng/grants",
		Title:      "Grants",
		Text:       text,
		Metadata:   map[string]string{"url": "https://example.gov.ng/grants"},
	}
}

func TestRetrievalStore_Disabled(t *testing.T) {
	s := NewRetrievalStore(nil, nil)
	assert.False(t, s.Enabled())
	assert.False(t, s.Add(context.Background(), []domain.Chunk{chunkFor("c1", "d1", "text")}))

	results, err := s.Query(context.Background(), "anything", 5, domain.QueryFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrievalStore_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	embedder := &mockEmbedder{vectors: map[string][]float32{
		"grant deadlines": {0, 1, 0},
		"deadline chunk":  {0, 0.9, 0.1},
		"unrelated chunk": {1, 0, 0},
	}}
	s := NewRetrievalStore(embedder, vectormem.NewIndex())

	ok := s.Add(ctx, []domain.Chunk{
		chunkFor("c1", "d1", "deadline chunk"),
		chunkFor("c2", "d1", "unrelated chunk"),
	})
	require.True(t, ok)

	results, err := s.Query(ctx, "grant deadlines", 1, domain.QueryFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)
	assert.Greater(t, results[0].Score, 0.9)
}

func TestRetrievalStore_QueryRespectsTopK(t *testing.T) {
	ctx := context.Background()
	s := NewRetrievalStore(&mockEmbedder{}, vectormem.NewIndex())

	require.True(t, s.Add(ctx, []domain.Chunk{
		chunkFor("c1", "d1", "a"),
		chunkFor("c2", "d1", "b"),
		chunkFor("c3", "d1", "c"),
	}))

	results, err := s.Query(ctx, "query", 2, domain.QueryFilters{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRetrievalStore_EmbedFailureDegrades(t *testing.T) {
	ctx := context.Background()
	index := vectormem.NewIndex()
	s := NewRetrievalStore(&mockEmbedder{failEmbed: true}, index)

	assert.False(t, s.Add(ctx, []domain.Chunk{chunkFor("c1", "d1", "text")}))
	assert.Equal(t, 0, index.Len())

	results, err := s.Query(ctx, "query", 5, domain.QueryFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrievalStore_QueryEmptyIndex(t *testing.T) {
	s := NewRetrievalStore(&mockEmbedder{}, vectormem.NewIndex())
	results, err := s.Query(context.Background(), "query", 5, domain.QueryFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrievalStore_ReplaceDropsStaleChunks(t *testing.T) {
	ctx := context.Background()
	index := vectormem.NewIndex()
	s := NewRetrievalStore(&mockEmbedder{}, index)

	require.True(t, s.Add(ctx, []domain.Chunk{
		chunkFor("d1:0", "d1", "old chunk one"),
		chunkFor("d1:1", "d1", "old chunk two"),
	}))
	require.Equal(t, 2, index.Len())

	require.True(t, s.Replace(ctx, "d1", []domain.Chunk{
		chunkFor("d1:0", "d1", "new chunk"),
	}))
	assert.Equal(t, 1, index.Len())
}

func TestRetrievalStore_AddEmptyChunks(t *testing.T) {
	s := NewRetrievalStore(&mockEmbedder{}, vectormem.NewIndex())
	assert.False(t, s.Add(context.Background(), nil))
}

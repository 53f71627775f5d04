package memory

import (
	"context"
	"sync"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Grouped writes are atomic under the store mutex, mirroring the
// per-document transactions of the sqlite store.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	versions  map[string][]domain.Version
	changes   []domain.Change
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		versions:  make(map[string][]domain.Version),
	}
}

// GetByURL retrieves a document by (source, canonical URL) identity.
func (s *DocumentStore) GetByURL(_ context.Context, sourceID, url string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.SourceID == sourceID && doc.URL == url {
			d := doc
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

// LatestVersion returns the version with the highest number.
func (s *DocumentStore) LatestVersion(_ context.Context, documentID string) (*domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.versions[documentID]
	if len(versions) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := versions[0]
	for _, v := range versions[1:] {
		if v.Number > latest.Number {
			latest = v
		}
	}
	return &latest, nil
}

// CreateWithVersion atomically inserts a new document with version 1.
func (s *DocumentStore) CreateWithVersion(_ context.Context, doc *domain.Document, version *domain.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.documents[doc.ID] = *doc
	s.versions[doc.ID] = append(s.versions[doc.ID], *version)
	return nil
}

// AppendVersion atomically appends a version, updates the document and
// records the change when one is provided.
func (s *DocumentStore) AppendVersion(_ context.Context, doc *domain.Document, version *domain.Version, change *domain.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		return domain.ErrNotFound
	}
	s.documents[doc.ID] = *doc
	s.versions[doc.ID] = append(s.versions[doc.ID], *version)
	if change != nil {
		s.changes = append(s.changes, *change)
	}
	return nil
}

// ListVersions returns all versions for a document, oldest first.
func (s *DocumentStore) ListVersions(_ context.Context, documentID string) ([]domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.versions[documentID]
	out := make([]domain.Version, len(versions))
	copy(out, versions)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Number > out[j].Number; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out, nil
}

// ListChanges returns change records, newest first.
func (s *DocumentStore) ListChanges(_ context.Context, limit int) ([]domain.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Change, 0, len(s.changes))
	for i := len(s.changes) - 1; i >= 0; i-- {
		out = append(out, s.changes[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

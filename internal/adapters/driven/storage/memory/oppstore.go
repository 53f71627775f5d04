package memory

import (
	"context"
	"sync"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// Ensure OpportunityStore implements the interface.
var _ driven.OpportunityStore = (*OpportunityStore)(nil)

// OpportunityStore is an in-memory implementation of driven.OpportunityStore.
type OpportunityStore struct {
	mu            sync.RWMutex
	opportunities []domain.Opportunity
}

// NewOpportunityStore creates a new in-memory opportunity store.
func NewOpportunityStore() *OpportunityStore {
	return &OpportunityStore{}
}

// Save stores an opportunity.
func (s *OpportunityStore) Save(_ context.Context, opp *domain.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities = append(s.opportunities, *opp)
	return nil
}

// List returns opportunities, newest first.
func (s *OpportunityStore) List(_ context.Context, limit int) ([]domain.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Opportunity, 0, len(s.opportunities))
	for i := len(s.opportunities) - 1; i >= 0; i-- {
		out = append(out, s.opportunities[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

package memory

import (
	"context"
	"sync"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// Ensure SubscriberStore implements the interface.
var _ driven.SubscriberStore = (*SubscriberStore)(nil)

// SubscriberStore is an in-memory implementation of driven.SubscriberStore.
type SubscriberStore struct {
	mu          sync.RWMutex
	subscribers map[string]domain.Subscriber
}

// NewSubscriberStore creates a new in-memory subscriber store.
func NewSubscriberStore() *SubscriberStore {
	return &SubscriberStore{
		subscribers: make(map[string]domain.Subscriber),
	}
}

// Save stores or updates a subscriber.
func (s *SubscriberStore) Save(_ context.Context, sub *domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[sub.ID] = *sub
	return nil
}

// ListActive returns active subscribers for a channel.
func (s *SubscriberStore) ListActive(_ context.Context, channel string) ([]domain.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Subscriber
	for _, sub := range s.subscribers {
		if sub.Active && sub.Channel == channel {
			out = append(out, sub)
		}
	}
	return out, nil
}

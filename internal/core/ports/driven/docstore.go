package driven

import (
	"context"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

// DocumentStore persists documents, their version history and change
// records. Implementations must scope writes per document: the grouped
// operations below either fully commit or leave no trace, so a failure
// on one document never corrupts siblings in the same ingestion run.
type DocumentStore interface {
	// GetByURL retrieves a document by (source, canonical URL) identity.
	// Returns domain.ErrNotFound when the document has never been seen.
	GetByURL(ctx context.Context, sourceID, url string) (*domain.Document, error)

	// LatestVersion returns the version with the highest number for a
	// document, or domain.ErrNotFound when no version exists.
	LatestVersion(ctx context.Context, documentID string) (*domain.Version, error)

	// CreateWithVersion atomically inserts a new document together with
	// its version 1. This is the first-sighting path.
	CreateWithVersion(ctx context.Context, doc *domain.Document, version *domain.Version) error

	// AppendVersion atomically appends a new version, updates the parent
	// document's fetch metadata, and persists the change record when one
	// is provided (nil means the delta was judged trivial).
	AppendVersion(ctx context.Context, doc *domain.Document, version *domain.Version, change *domain.Change) error

	// ListVersions returns all versions for a document, oldest first.
	ListVersions(ctx context.Context, documentID string) ([]domain.Version, error)

	// ListChanges returns change records, newest first, up to limit.
	// A limit <= 0 returns everything.
	ListChanges(ctx context.Context, limit int) ([]domain.Change, error)
}

// OpportunityStore persists extracted opportunities.
type OpportunityStore interface {
	// Save stores an opportunity.
	Save(ctx context.Context, opp *domain.Opportunity) error

	// List returns opportunities, newest first, up to limit.
	// A limit <= 0 returns everything.
	List(ctx context.Context, limit int) ([]domain.Opportunity, error)
}

// SubscriberStore persists notification subscribers.
type SubscriberStore interface {
	// Save stores or updates a subscriber.
	Save(ctx context.Context, sub *domain.Subscriber) error

	// ListActive returns active subscribers for a channel.
	ListActive(ctx context.Context, channel string) ([]domain.Subscriber, error)
}

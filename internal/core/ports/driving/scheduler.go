package driving

import "context"

// Scheduler drives periodic crawl-and-ingest cycles for active sources.
type Scheduler interface {
	// Start runs the scheduling loop until the context is cancelled or
	// Stop is called. It blocks for the lifetime of the loop.
	Start(ctx context.Context) error

	// Stop terminates the loop. Safe to call more than once.
	Stop()
}

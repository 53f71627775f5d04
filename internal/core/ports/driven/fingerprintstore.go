package driven

import "context"

// FingerprintStore holds the set of strong content hashes seen so far.
// The in-memory implementation confines exact dedup to one process;
// the sqlite-backed implementation makes it survive restarts. The
// near-duplicate index is run-scoped and never touches this store.
//
// Implementations are not required to be safe for concurrent writers;
// the pipeline processes documents sequentially.
type FingerprintStore interface {
	// SeenHash reports whether the strong hash was already recorded.
	SeenHash(ctx context.Context, hash string) (bool, error)

	// AddHash records a strong hash. Adding an existing hash is a no-op.
	AddHash(ctx context.Context, hash string) error
}

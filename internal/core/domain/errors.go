package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	// Used for crawl records missing required fields or carrying an
	// unparseable timestamp; such records are skipped, never ingested.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration contract violation
	// (negative overlap, non-positive chunk size). Detected at
	// construction time, before any document is processed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Change summaries and opportunity extraction are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrStoreUnavailable indicates the relational store cannot be reached
	// at all. This is the only failure that aborts an entire ingestion run.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrRateLimited indicates a remote endpoint rejected the request
	// due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)

package driven

import "context"

// LLMService provides language model completions for the change
// summarizer and opportunity extractor adapters. This is an optional
// service - when nil, extraction is disabled and ingestion still
// records versions.
//
// Implementations may include:
//   - OpenAI (and OpenAI-compatible endpoints)
//   - Ollama (local models)
type LLMService interface {
	// Complete produces a completion for a system prompt + user prompt
	// pair. Extraction adapters expect the completion to be JSON and
	// parse it themselves.
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompleteOptions configures completion behaviour.
type CompleteOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

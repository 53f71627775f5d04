// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Crawler: Fetches pages from a monitored source
//   - DocumentStore: Document/version/change persistence
//   - SourceStore: Source configuration persistence
//   - OpportunityStore: Extracted opportunity persistence
//   - FingerprintStore: Dedup fingerprint state (in-memory or persistent)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, the
//     retrieval index is disabled and add/query degrade to no-ops.
//   - VectorIndex: Vector storage/search. Only enabled when
//     EmbeddingService is configured.
//   - ChangeSummarizer / OpportunityExtractor: LLM-backed extraction.
//     Without them, versions are still recorded but no Change or
//     Opportunity rows are produced.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

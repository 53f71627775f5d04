// Package domain defines the core business entities for Grantwatch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A monitored web page or feed
//   - Document: A crawled document with its fingerprint
//   - Version: An immutable snapshot of a document's text
//   - Change: The delta between two consecutive versions
//   - Chunk: A retrieval-sized passage with citation metadata
//   - Opportunity: A structured grant/policy record extracted from a document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

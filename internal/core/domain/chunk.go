package domain

// Chunk is a retrieval-sized passage of one version's text. Chunks are
// not first-class relational entities: they are produced per ingestion,
// pushed into the retrieval index, and discarded. Every chunk carries
// enough metadata to be citable without dereferencing its version.
type Chunk struct {
	// ID is deterministic per (document, position) so that re-adding
	// the same logical chunk upserts instead of duplicating.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// VersionNumber is the version the chunk was cut from.
	VersionNumber int

	// URL is the source document URL.
	URL string

	// Title is the source document title.
	Title string

	// Heading is the most recent section heading above this chunk,
	// or empty when the text carried no headings.
	Heading string

	// Text is the chunk content.
	Text string

	// Position is the ordinal position within the document.
	Position int

	// Metadata duplicates url/title/heading for storage-layer flexibility.
	Metadata map[string]string
}

// RetrievedChunk is a chunk returned from a retrieval query,
// ranked by descending relevance.
type RetrievedChunk struct {
	Chunk Chunk

	// Score is cosine similarity normalised to 1 - distance.
	Score float64
}

// QueryFilters restricts retrieval to matching chunk metadata.
// A zero value matches everything.
type QueryFilters struct {
	// URL restricts results to chunks from one document URL.
	URL string

	// DocumentID restricts results to chunks from one document.
	DocumentID string
}

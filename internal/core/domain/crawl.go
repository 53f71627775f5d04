package domain

import (
	"fmt"
	"time"
)

// CrawlResult is one freshly fetched document as handed over by the
// crawler collaborator, one batch per crawl cycle.
type CrawlResult struct {
	// URL is the canonical location of the fetched page.
	URL string

	// Title is the page title.
	Title string

	// FetchedAt is the fetch timestamp in RFC 3339 form.
	FetchedAt string

	// ContentHash is the SHA-256 hex digest of RawText.
	ContentHash string

	// MIME is the reported content type.
	MIME string

	// RawText is the extracted plain text.
	RawText string
}

// Validate checks the integrity of a crawl record. A failing record is
// skipped by the pipeline and logged with its URL for a later retry.
func (c CrawlResult) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: missing url", ErrInvalidInput)
	}
	if c.ContentHash == "" {
		return fmt.Errorf("%w: missing content hash for %s", ErrInvalidInput, c.URL)
	}
	if _, err := c.FetchTime(); err != nil {
		return err
	}
	return nil
}

// FetchTime parses the FetchedAt timestamp.
func (c CrawlResult) FetchTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, c.FetchedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad fetched_at %q for %s", ErrInvalidInput, c.FetchedAt, c.URL)
	}
	return t, nil
}

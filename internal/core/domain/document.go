package domain

import "time"

// Document represents a crawled page, keyed by (source, URL).
// Its text history lives in an append-only sequence of Versions;
// the document itself carries only the latest fetch metadata.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourceID links to the Source that produced this document.
	SourceID string

	// URL is the canonical location the document was fetched from.
	URL string

	// Title is the human-readable title.
	Title string

	// FetchedAt is when the latest fetch of this document happened.
	FetchedAt time.Time

	// ContentHash is the SHA-256 hex digest of the latest fetched text.
	ContentHash string

	// MIME is the content type reported by the crawler.
	MIME string

	// CreatedAt is when the document was first seen.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Version is an immutable snapshot of a document's text.
// Versions are append-only: once written they are never mutated or
// deleted, and numbers are strictly increasing starting at 1.
type Version struct {
	// ID is the unique identifier for the version.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Number is the monotonic version number, starting at 1.
	Number int

	// Text is the full document text at this version.
	Text string

	// CreatedAt is when the version was recorded.
	CreatedAt time.Time
}

// Change records a non-trivial transition between two consecutive
// versions of a document. OldVersion 0 means "no prior version" and
// never appears in a stored Change: a first sighting is not a change.
type Change struct {
	// ID is the unique identifier for the change.
	ID string

	// DocumentID links to the changed Document.
	DocumentID string

	// OldVersion is the version number the document moved from.
	OldVersion int

	// NewVersion is the version number the document moved to.
	// Always equals the Version created alongside this Change.
	NewVersion int

	// Summary is the structured description of what changed.
	Summary ChangeSummary

	// CreatedAt is when the change was recorded.
	CreatedAt time.Time
}

// ChangeSummary is the structured output of the change summarizer.
// An empty WhatChanged means the delta was judged trivial and no
// Change record is persisted.
type ChangeSummary struct {
	WhatChanged     []string   `json:"what_changed"`
	WhoIsAffected   []string   `json:"who_is_affected"`
	KeyDates        []KeyDate  `json:"key_dates"`
	RequiredActions []string   `json:"required_actions"`
	Citations       []Citation `json:"citations"`
}

// IsEmpty reports whether the summarizer found nothing worth recording.
func (s ChangeSummary) IsEmpty() bool {
	return len(s.WhatChanged) == 0
}

// KeyDate is a labelled date extracted from document content.
type KeyDate struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// Citation points at the section of a document backing a claim.
type Citation struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Opportunity is a structured grant/scholarship/policy record extracted
// from a document by the opportunity extractor.
type Opportunity struct {
	// ID is the unique identifier for the opportunity.
	ID string

	// DocumentID links to the Document it was extracted from.
	DocumentID string

	// Title is the opportunity title.
	Title string

	// Agency is the issuing body.
	Agency string

	// URL points at the source page.
	URL string

	// Deadline is the application deadline, if one was found.
	Deadline *time.Time

	// Eligibility describes who may apply.
	Eligibility string

	// Amount is the award amount or range, as free text.
	Amount string

	// Action is a one-line call to action.
	Action string

	// Score is a ranking score, updated by downstream ranking.
	Score float64

	// CreatedAt is when the opportunity was recorded.
	CreatedAt time.Time
}

// Subscriber is a delivery target for digests and alerts. The message
// channel itself is an external collaborator; the pipeline only stores
// who should be notified.
type Subscriber struct {
	// ID is the unique identifier for the subscriber.
	ID string

	// Channel names the delivery channel (e.g. "whatsapp").
	Channel string

	// Handle is the channel-specific address.
	Handle string

	// Locale is the subscriber's preferred locale.
	Locale string

	// Active controls whether the subscriber receives notifications.
	Active bool

	// CreatedAt is when the subscriber was added.
	CreatedAt time.Time
}

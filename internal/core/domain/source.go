package domain

import "time"

// Source represents a monitored external site: a regulator or funding
// agency page that is crawled on a schedule.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Name is the human-readable name for this source.
	Name string

	// URL is the entry point crawled each cycle.
	URL string

	// Schedule is how often the source is crawled (used by the serve loop).
	Schedule time.Duration

	// Active controls whether the source participates in scheduled crawls.
	Active bool

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

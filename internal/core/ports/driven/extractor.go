package driven

import (
	"context"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

// ChangeSummarizer judges whether the delta between two versions of a
// document is meaningful. It is a pluggable strategy: the pipeline only
// looks at whether the returned summary is empty, never at the wording.
type ChangeSummarizer interface {
	// Summarize compares old and new text. oldText is empty on a first
	// sighting, in which case implementations must return an empty
	// summary. An empty WhatChanged list means "nothing worth recording".
	Summarize(ctx context.Context, url, fetchedAt, oldText, newText string) (domain.ChangeSummary, error)
}

// OpportunityExtractor pulls structured opportunity records out of
// document text. Zero results is a normal outcome.
type OpportunityExtractor interface {
	// Extract returns zero or more opportunities found in the text.
	Extract(ctx context.Context, url, title, text string) ([]domain.Opportunity, error)
}

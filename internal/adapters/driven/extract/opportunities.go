package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
	"github.com/grantwatch/grantwatch-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.OpportunityExtractor = (*Extractor)(nil)

// extractorSystemPrompt instructs the model to pull one opportunity
// out of a content window and answer with JSON only.
const extractorSystemPrompt = `From the NEW content, extract a potential grant/scholarship/policy opportunity. If none, return empty fields. Prefer items with deadlines and eligibility.

Schema:
{
  "title": "Opportunity title",
  "agency": "Agency name",
  "url": "Source URL",
  "deadline": "2026-01-15" or null,
  "eligibility": "Eligibility criteria" or null,
  "amount": "Amount or range" or null,
  "action": "1-line call to action"
}

If no opportunity found, return:
{
  "title": "",
  "agency": "",
  "url": "",
  "deadline": null,
  "eligibility": null,
  "amount": null,
  "action": ""
}

Respond with a single JSON object only. Do not include any text before or after the JSON.`

// oppExtract is the model's answer format. Deadline arrives as an ISO
// date string and is parsed into a time.Time.
type oppExtract struct {
	Title       string  `json:"title"`
	Agency      string  `json:"agency"`
	URL         string  `json:"url"`
	Deadline    *string `json:"deadline"`
	Eligibility *string `json:"eligibility"`
	Amount      *string `json:"amount"`
	Action      string  `json:"action"`
}

// Extractor pulls structured opportunities out of document text with
// an LLM, one content window at a time.
type Extractor struct {
	llm        driven.LLMService
	windowSize int
}

// NewExtractor creates an LLM-backed opportunity extractor.
func NewExtractor(llm driven.LLMService) (*Extractor, error) {
	if llm == nil {
		return nil, fmt.Errorf("%w: LLM service is required", domain.ErrInvalidConfig)
	}
	return &Extractor{llm: llm, windowSize: maxPromptChars}, nil
}

// Extract scans the document text window by window. A window that the
// model cannot handle is skipped; an error is returned only when every
// window failed, so one bad stretch of text never hides the rest.
func (e *Extractor) Extract(ctx context.Context, url, title, text string) ([]domain.Opportunity, error) {
	if text == "" {
		return nil, nil
	}

	var (
		opportunities []domain.Opportunity
		windows       int
		failures      int
		lastErr       error
	)

	for start := 0; start < len(text); {
		end := start + e.windowSize
		if end >= len(text) {
			end = len(text)
		} else {
			// Back the cut off to a rune boundary so a window never
			// splits a multi-byte character.
			for end > start && !isRuneStart(text[end]) {
				end--
			}
			if end == start {
				end = min(start+e.windowSize, len(text))
			}
		}
		windows++

		opp, err := e.extractWindow(ctx, url, title, text[start:end])
		start = end
		if err != nil {
			failures++
			lastErr = err
			logger.Warn("Opportunity window %d failed for %s: %v", windows, url, err)
			continue
		}
		if opp != nil {
			opportunities = append(opportunities, *opp)
		}
	}

	if failures == windows && lastErr != nil {
		return nil, fmt.Errorf("extract %s: %w", url, lastErr)
	}
	return opportunities, nil
}

// extractWindow asks the model about one window of text. A nil result
// with nil error means the window held no opportunity.
func (e *Extractor) extractWindow(ctx context.Context, url, title, window string) (*domain.Opportunity, error) {
	userPrompt := fmt.Sprintf("URL: %s\nTitle: %s\n\nContent:\n%s\n", url, title, window)

	completion, err := e.llm.Complete(ctx, extractorSystemPrompt, userPrompt, driven.CompleteOptions{
		MaxTokens:   512,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	var raw oppExtract
	if err := json.Unmarshal([]byte(extractJSON(completion)), &raw); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if raw.Title == "" {
		return nil, nil
	}

	opp := &domain.Opportunity{
		Title:  raw.Title,
		Agency: raw.Agency,
		URL:    raw.URL,
		Action: raw.Action,
	}
	if opp.Agency == "" {
		opp.Agency = "Unknown"
	}
	if opp.URL == "" {
		opp.URL = url
	}
	if opp.Action == "" {
		opp.Action = "See details"
	}
	if raw.Eligibility != nil {
		opp.Eligibility = *raw.Eligibility
	}
	if raw.Amount != nil {
		opp.Amount = *raw.Amount
	}
	if raw.Deadline != nil && *raw.Deadline != "" {
		if deadline, err := time.Parse("2006-01-02", *raw.Deadline); err == nil {
			opp.Deadline = &deadline
		}
	}

	return opp, nil
}

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// Ensure Summarizer implements the interface.
var _ driven.ChangeSummarizer = (*Summarizer)(nil)

// maxPromptChars bounds how much of each version is sent to the model.
const maxPromptChars = 4000

// summarizerSystemPrompt instructs the model to compare two versions
// and answer with a ChangeSummary JSON object.
const summarizerSystemPrompt = `You compare OLD vs NEW regulator/funding content. Output only valid JSON per the schema below. Be terse and factual, and include citations (URLs with anchors/headings). If nothing meaningful changed, set what_changed: [].

Schema:
{
  "what_changed": ["list of what changed"],
  "who_is_affected": ["list of who is affected"],
  "key_dates": [{"label": "deadline", "date": "2026-01-15"}],
  "required_actions": ["list of required actions"],
  "citations": [{"url": "https://...#section", "text": "section title"}]
}`

// Summarizer asks an LLM whether the delta between two document
// versions is meaningful and what it consists of.
type Summarizer struct {
	llm driven.LLMService
}

// NewSummarizer creates an LLM-backed change summarizer.
func NewSummarizer(llm driven.LLMService) (*Summarizer, error) {
	if llm == nil {
		return nil, fmt.Errorf("%w: LLM service is required", domain.ErrInvalidConfig)
	}
	return &Summarizer{llm: llm}, nil
}

// Summarize compares the old and new text of a document. An empty old
// text is a first sighting and always yields an empty summary without
// consulting the model.
func (s *Summarizer) Summarize(ctx context.Context, url, fetchedAt, oldText, newText string) (domain.ChangeSummary, error) {
	if strings.TrimSpace(oldText) == "" {
		return domain.ChangeSummary{}, nil
	}

	userPrompt := fmt.Sprintf("URL: %s\nFETCHED_AT: %s\n\n--- OLD ---\n%s\n\n--- NEW ---\n%s\n",
		url, fetchedAt, truncate(oldText, maxPromptChars), truncate(newText, maxPromptChars))

	completion, err := s.llm.Complete(ctx, summarizerSystemPrompt, userPrompt, driven.CompleteOptions{
		MaxTokens:   1024,
		Temperature: 0.1,
	})
	if err != nil {
		return domain.ChangeSummary{}, fmt.Errorf("summarize %s: %w", url, err)
	}

	var summary domain.ChangeSummary
	if err := json.Unmarshal([]byte(extractJSON(completion)), &summary); err != nil {
		return domain.ChangeSummary{}, fmt.Errorf("summarize %s: decode completion: %w", url, err)
	}

	// Citations without a URL point at the document itself.
	for i := range summary.Citations {
		if summary.Citations[i].URL == "" {
			summary.Citations[i].URL = url
		}
	}

	return summary, nil
}

// truncate caps s at n bytes without splitting the trailing rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !isRuneStart(s[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// extractJSON strips markdown fences and surrounding prose, leaving
// the outermost JSON value. Models occasionally wrap their answer
// despite being told not to.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}

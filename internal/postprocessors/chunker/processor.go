// Package chunker provides a heading-aware text chunking processor.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

// DefaultChunkSize is the default target number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters
// carried from one chunk into the next.
const DefaultChunkOverlap = 200

// headingPattern recognises markdown-style section headings (h1-h6).
var headingPattern = regexp.MustCompile(`(?m)^#{1,6}[ \t]+.+$`)

// Processor splits version text into retrieval-sized chunks. Chunks
// follow section boundaries where the text has headings and paragraph
// boundaries where it does not, and every chunk carries the heading
// that was active when it closed.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker processor. It fails fast on contract
// violations: the chunk size must be positive and the overlap must
// satisfy 0 <= overlap < chunk size, otherwise chunking degenerates
// into repeated full-content duplication.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, p.chunkSize)
	}
	if p.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidConfig, p.overlap)
	}
	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfig, p.overlap, p.chunkSize)
	}

	return p, nil
}

// segment is a heading anchor or the body text between two headings.
type segment struct {
	text      string
	isHeading bool
}

// rawChunk is an accumulated chunk before metadata is attached.
type rawChunk struct {
	text    string
	heading string
}

// Chunk splits the version's text into chunks for the given document.
// Empty text produces no chunks; a lone heading forms a chunk of its
// own. Chunk IDs are deterministic per (document, position) so
// re-chunking the same document upserts rather than duplicates.
func (p *Processor) Chunk(doc *domain.Document, version *domain.Version) []domain.Chunk {
	if strings.TrimSpace(version.Text) == "" {
		return nil
	}

	segments := splitSegments(version.Text)
	raw := p.accumulate(segments)
	raw = p.enforceCeiling(raw)

	chunks := make([]domain.Chunk, 0, len(raw))
	for i, rc := range raw {
		chunks = append(chunks, domain.Chunk{
			ID:            fmt.Sprintf("%s:%d", doc.ID, i),
			DocumentID:    doc.ID,
			VersionNumber: version.Number,
			URL:           doc.URL,
			Title:         doc.Title,
			Heading:       rc.heading,
			Text:          rc.text,
			Position:      i,
			Metadata: map[string]string{
				"url":     doc.URL,
				"title":   doc.Title,
				"heading": rc.heading,
			},
		})
	}
	return chunks
}

// splitSegments cuts text on heading lines. Each heading becomes its
// own anchor segment; the body between headings becomes one segment.
// Text without any headings falls back to blank-line paragraphs.
func splitSegments(text string) []segment {
	matches := headingPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		paragraphs := strings.Split(text, "\n\n")
		segments := make([]segment, 0, len(paragraphs))
		for _, para := range paragraphs {
			if trimmed := strings.TrimSpace(para); trimmed != "" {
				segments = append(segments, segment{text: trimmed})
			}
		}
		return segments
	}

	var segments []segment
	last := 0
	for _, m := range matches {
		if body := strings.TrimSpace(text[last:m[0]]); body != "" {
			segments = append(segments, segment{text: body})
		}
		segments = append(segments, segment{text: text[m[0]:m[1]], isHeading: true})
		last = m[1]
	}
	if body := strings.TrimSpace(text[last:]); body != "" {
		segments = append(segments, segment{text: body})
	}
	return segments
}

// accumulate greedily packs segments into chunks of at most chunkSize
// characters, seeding each new chunk with the tail of the previous one
// to preserve context across the boundary.
func (p *Processor) accumulate(segments []segment) []rawChunk {
	var chunks []rawChunk
	current := ""
	heading := ""

	for _, seg := range segments {
		if seg.isHeading {
			heading = seg.text
		}

		if current != "" && len(current)+len(seg.text) > p.chunkSize {
			chunks = append(chunks, rawChunk{text: strings.TrimSpace(current), heading: heading})

			if p.overlap > 0 {
				tail := current
				if len(tail) > p.overlap {
					tail = tail[len(tail)-p.overlap:]
				}
				current = tail + "\n\n" + seg.text
			} else {
				current = seg.text
			}
			continue
		}

		if current == "" {
			current = seg.text
		} else {
			current += "\n\n" + seg.text
		}
	}

	if current != "" {
		chunks = append(chunks, rawChunk{text: strings.TrimSpace(current), heading: heading})
	}
	return chunks
}

// enforceCeiling re-splits any chunk still above the target size on
// whitespace word boundaries. Sub-chunks inherit the parent's heading.
// A single word longer than the chunk size is emitted as-is rather
// than cut mid-word.
func (p *Processor) enforceCeiling(chunks []rawChunk) []rawChunk {
	final := make([]rawChunk, 0, len(chunks))
	for _, c := range chunks {
		if len(c.text) <= p.chunkSize {
			final = append(final, c)
			continue
		}

		current := ""
		for _, word := range strings.Fields(c.text) {
			switch {
			case current == "":
				current = word
			case len(current)+1+len(word) <= p.chunkSize:
				current += " " + word
			default:
				final = append(final, rawChunk{text: current, heading: c.heading})
				current = word
			}
		}
		if current != "" {
			final = append(final, rawChunk{text: current, heading: c.heading})
		}
	}
	return final
}

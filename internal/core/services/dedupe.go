package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
	"github.com/grantwatch/grantwatch-cli/internal/logger"
	"github.com/grantwatch/grantwatch-cli/internal/simhash"
)

// DefaultHammingThreshold is the default maximum Hamming distance at
// which two fingerprints count as near-duplicates. Lower is stricter.
const DefaultHammingThreshold = 3

// Deduper classifies content as novel, an exact duplicate, or a near
// duplicate of content seen before. The exact check (strong hash set
// membership) always runs before the near check, which is a linear
// scan over recorded fingerprints and redundant for identical content.
//
// The two checks have different lifetimes. Exact hashes live behind
// the injected FingerprintStore and may persist across runs: identical
// content stays identical forever. The near-duplicate index is scoped
// to a single DedupeRun, so an updated page is only compared against
// the other pages of the same crawl cycle, never against its own
// previous version.
type Deduper struct {
	fingerprints driven.FingerprintStore
	threshold    int
}

// DeduperOption configures a Deduper.
type DeduperOption func(*Deduper)

// WithHammingThreshold sets the near-duplicate distance threshold.
func WithHammingThreshold(threshold int) DeduperOption {
	return func(d *Deduper) {
		d.threshold = threshold
	}
}

// NewDeduper creates a deduper backed by the given fingerprint store.
func NewDeduper(fingerprints driven.FingerprintStore, opts ...DeduperOption) (*Deduper, error) {
	d := &Deduper{
		fingerprints: fingerprints,
		threshold:    DefaultHammingThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.fingerprints == nil {
		return nil, fmt.Errorf("%w: fingerprint store is required", domain.ErrInvalidConfig)
	}
	if d.threshold < 0 || d.threshold > 64 {
		return nil, fmt.Errorf("%w: hamming threshold %d outside [0,64]", domain.ErrInvalidConfig, d.threshold)
	}
	return d, nil
}

// NewRun starts a dedup run. Each run begins with an empty
// near-duplicate index and dies with the run.
func (d *Deduper) NewRun() *DedupeRun {
	return &DedupeRun{deduper: d}
}

// DedupeRun holds the dedup state for one ingestion run. Not safe for
// concurrent use; the pipeline processes documents sequentially.
type DedupeRun struct {
	deduper   *Deduper
	simhashes []uint64
}

// Classify runs the two-tier duplicate check and returns the verdict
// together with the fingerprints the decision was made on. Novel
// content is recorded so the next identical or near-identical fetch in
// this run is caught; duplicate content is never recorded twice.
func (r *DedupeRun) Classify(ctx context.Context, content string) (domain.Verdict, domain.Fingerprints, error) {
	sum := sha256.Sum256([]byte(content))
	fps := domain.Fingerprints{ContentHash: hex.EncodeToString(sum[:])}

	seen, err := r.deduper.fingerprints.SeenHash(ctx, fps.ContentHash)
	if err != nil {
		return domain.VerdictNovel, fps, fmt.Errorf("check content hash: %w", err)
	}
	if seen {
		logger.Debug("Exact duplicate: %s", fps.ContentHash[:12])
		return domain.VerdictExactDuplicate, fps, nil
	}
	if err := r.deduper.fingerprints.AddHash(ctx, fps.ContentHash); err != nil {
		return domain.VerdictNovel, fps, fmt.Errorf("record content hash: %w", err)
	}

	fp, ok := simhash.Fingerprint(content)
	if !ok {
		// No tokens to fingerprint; nothing to compare against.
		return domain.VerdictNovel, fps, nil
	}
	fps.Simhash = fp

	for _, existing := range r.simhashes {
		if dist := simhash.Distance(fp, existing); dist <= r.deduper.threshold {
			logger.Debug("Near duplicate at distance %d", dist)
			return domain.VerdictNearDuplicate, fps, nil
		}
	}

	r.simhashes = append(r.simhashes, fp)
	return domain.VerdictNovel, fps, nil
}

package domain

// Verdict classifies freshly fetched content against everything the
// deduper has already seen.
type Verdict int

const (
	// VerdictNovel means the content matched nothing seen before.
	VerdictNovel Verdict = iota

	// VerdictExactDuplicate means an identical strong hash was already
	// recorded.
	VerdictExactDuplicate

	// VerdictNearDuplicate means a recorded fingerprint was within the
	// Hamming threshold.
	VerdictNearDuplicate
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictExactDuplicate:
		return "exact-duplicate"
	case VerdictNearDuplicate:
		return "near-duplicate"
	default:
		return "novel"
	}
}

// IsDuplicate reports whether the verdict is either duplicate kind.
func (v Verdict) IsDuplicate() bool {
	return v == VerdictExactDuplicate || v == VerdictNearDuplicate
}

// Fingerprints carries the values a dedup decision was made on.
type Fingerprints struct {
	// ContentHash is the SHA-256 hex digest of the content.
	ContentHash string

	// Simhash is the 64-bit locality-sensitive fingerprint.
	// Zero when the exact check short-circuited.
	Simhash uint64
}

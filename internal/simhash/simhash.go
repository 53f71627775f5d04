// Package simhash computes 64-bit locality-sensitive fingerprints.
// Near-identical texts produce fingerprints within a small Hamming
// distance of each other, which makes the fingerprint suitable for
// near-duplicate detection.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
	"unicode"
)

// shingleWidth is the number of consecutive tokens hashed together.
// Shingles keep local word order in the fingerprint, so reordered
// documents do not collide.
const shingleWidth = 3

// Fingerprint computes the 64-bit SimHash of text. The boolean is
// false when the text contains no tokens at all.
func Fingerprint(text string) (uint64, bool) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0, false
	}

	var weights [64]int
	for _, sh := range shingles(tokens) {
		h := hashShingle(sh)
		for bit := 0; bit < 64; bit++ {
			if h&(uint64(1)<<bit) != 0 {
				weights[bit]++
			} else {
				weights[bit]--
			}
		}
	}

	var fp uint64
	for bit := 0; bit < 64; bit++ {
		if weights[bit] > 0 {
			fp |= uint64(1) << bit
		}
	}
	return fp, true
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

func tokenize(text string) []string {
	parts := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// shingles joins consecutive token windows. Texts shorter than the
// shingle width fall back to a single shingle over all tokens.
func shingles(tokens []string) []string {
	if len(tokens) <= shingleWidth {
		return []string{strings.Join(tokens, " ")}
	}
	out := make([]string, 0, len(tokens)-shingleWidth+1)
	for i := 0; i+shingleWidth <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+shingleWidth], " "))
	}
	return out
}

func hashShingle(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

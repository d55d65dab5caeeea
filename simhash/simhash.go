// Package simhash computes near-duplicate fingerprints of article bodies.
// Exact duplicates are caught by the store's unique URL constraint and the
// per-paragraph content digests; SimHash catches the syndicated copy with a
// retouched headline or a swapped paragraph, where every exact digest
// differs but the fingerprint lands within a few bits.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint computes a 64-bit SimHash of plain text: each word token is
// hashed with FNV-64a and votes its bits into a signed accumulator, and the
// sign of each accumulator position becomes one fingerprint bit.
func Fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var vector [64]int
	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}
	return fingerprint
}

// FingerprintParagraphs fingerprints an article body given as the ordered
// plain-text paragraphs produced by extraction.
func FingerprintParagraphs(paragraphs []string) uint64 {
	return Fingerprint(strings.Join(paragraphs, " "))
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits of
// each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

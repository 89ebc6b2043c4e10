package output

import (
	"fmt"
	"math"
	"regexp"
)

// ShannonEntropy returns the entropy of s in bits per character, computed over
// the frequency of each rune in s itself.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	freq := make(map[rune]int)
	n := 0
	for _, r := range s {
		freq[r]++
		n++
	}

	var entropy float64
	for _, count := range freq {
		p := float64(count) / float64(n)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// entropyCandidates matches base64-alphabet runs of at least minLen characters.
func entropyCandidates(minLen int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`[A-Za-z0-9+/=]{%d,}`, minLen))
}

// redactHighEntropy replaces every candidate run whose entropy exceeds threshold.
func redactHighEntropy(text string, candidates *regexp.Regexp, threshold float64, counts map[string]int) string {
	marker := Marker(LabelHighEntropy)
	return candidates.ReplaceAllStringFunc(text, func(run string) string {
		if ShannonEntropy(run) > threshold {
			counts[LabelHighEntropy]++
			return marker
		}
		return run
	})
}

package dedupe

import (
	"sort"
	"strings"
)

// BuildBuckets groups record indices by the lowercased leading characters
// of their text. Every record lands in exactly one bucket: records whose
// text is shorter than prefixLength use the full string as their key, and
// records with empty text all collide into the empty-string bucket.
//
// Blocking trades recall for speed: near-duplicates whose texts differ
// within the first prefixLength characters end up in different buckets and
// are never compared. Callers choosing a longer prefix get fewer
// comparisons and a higher chance of missed matches.
func BuildBuckets(texts []string, prefixLength int) map[string][]int {
	buckets := make(map[string][]int)
	for i, text := range texts {
		key := bucketKey(text, prefixLength)
		buckets[key] = append(buckets[key], i)
	}
	return buckets
}

func bucketKey(text string, prefixLength int) string {
	normalized := strings.ToLower(text)
	runes := []rune(normalized)
	if len(runes) <= prefixLength {
		return normalized
	}
	return string(runes[:prefixLength])
}

// BucketKeys returns the bucket keys in sorted order so callers iterate
// buckets deterministically.
func BucketKeys(buckets map[string][]int) []string {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TotalComparisons returns the number of pairwise comparisons the given
// bucketing requires: the sum of n*(n-1)/2 over all buckets.
func TotalComparisons(buckets map[string][]int) int {
	total := 0
	for _, indices := range buckets {
		n := len(indices)
		total += n * (n - 1) / 2
	}
	return total
}

// PossibleComparisons returns the unblocked comparison count n*(n-1)/2 for
// n records, for reporting how much work the bucketing avoided.
func PossibleComparisons(n int) int {
	return n * (n - 1) / 2
}

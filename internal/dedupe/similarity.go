package dedupe

// Jaro-Winkler constants: prefix agreement is rewarded up to four leading
// characters, scaled by a 0.1 boost factor.
const (
	winklerMaxPrefix   = 4
	winklerBoostFactor = 0.1
)

// Similarity returns the Jaro-Winkler similarity of two strings in [0, 1].
// Identical strings (including two empty strings) score 1.0; an empty
// string against a non-empty one scores 0.0. The function is pure,
// deterministic and symmetric.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	len1, len2 := len(a), len(b)
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	// Characters match if equal and within a window of half the longer
	// string's length
	matchWindow := maxInt(len1, len2)/2 - 1
	if matchWindow < 0 {
		matchWindow = 0
	}

	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)

	matches := 0
	for i := 0; i < len1; i++ {
		start := maxInt(0, i-matchWindow)
		end := minInt(len2, i+matchWindow+1)

		for j := start; j < end; j++ {
			if matched2[j] || a[i] != b[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Count transpositions between the matched character sequences
	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len1) + m/float64(len2) + (m-float64(transpositions)/2)/m) / 3.0

	// Winkler boost for shared leading characters
	prefix := 0
	limit := minInt(minInt(len1, len2), winklerMaxPrefix)
	for i := 0; i < limit; i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}

	return jaro + winklerBoostFactor*float64(prefix)*(1.0-jaro)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

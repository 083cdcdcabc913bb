package skillbook

import "strings"

// Similarity measures used for deduplication.
//
// Jaccard works on word sets and is the measure used by migration to detect
// duplicates across collections. Ratio is a character-bigram Dice
// coefficient used for in-collection dedup on add, where small wording
// edits ("...committing changes" vs "...committing code") should still
// count as the same lesson. Both are case-insensitive and return 0.0-1.0.

// Jaccard returns the token-set Jaccard similarity of two texts:
// |intersection of words| / |union of words|.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		set[token] = true
	}
	return set
}

// Ratio returns the character-bigram Dice similarity of two texts:
// 2 * |shared bigrams| / (|bigrams a| + |bigrams b|).
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	bigramsA := bigrams(a)
	bigramsB := bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}

	counts := make(map[string]int, len(bigramsA))
	for _, bg := range bigramsA {
		counts[bg]++
	}
	shared := 0
	for _, bg := range bigramsB {
		if counts[bg] > 0 {
			counts[bg]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(bigramsA)+len(bigramsB))
}

// Duplicate reports whether two skill texts describe the same lesson
// under either measure. Jaccard alone misses small single-word edits
// ("committing changes" vs "committing code" is only 5/7 on tokens), so
// the bigram ratio backs it up.
func Duplicate(a, b string, threshold float64) bool {
	return Jaccard(a, b) >= threshold || Ratio(a, b) >= threshold
}

func bigrams(text string) []string {
	runes := []rune(text)
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}

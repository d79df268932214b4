// Package matching scores candidate document names against a
// user-supplied reference string. It is pure and stateless: no I/O,
// no mutation, identical inputs always produce identical output, so
// every heuristic is unit-testable in isolation.
package matching

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultTopK is the number of ranked candidates returned when the
	// caller does not specify a limit.
	DefaultTopK = 5

	// InclusionThreshold is the minimum score for a candidate with no
	// exact token match to be kept in the ranking.
	InclusionThreshold = 0.25

	substringConfidence = 0.95
	reverseConfidence   = 0.90
	pathSegmentBonus    = 0.3
	partialTokenWeight  = 0.5
)

var tokenPattern = regexp.MustCompile(`\w+`)

// Candidate is a document considered during fuzzy resolution.
type Candidate struct {
	Path       string
	Confidence float64
	Reason     string
}

// Score rates how well candidate matches reference, returning a
// confidence in [0,1] and a human-readable reason.
func Score(reference, candidate string) (float64, string) {
	confidence, reason, _ := score(reference, candidate)
	return confidence, reason
}

// Rank scores every candidate against reference and returns the
// matches sorted by descending confidence, truncated to topK
// (DefaultTopK when topK <= 0).
//
// A candidate is kept when its score exceeds InclusionThreshold or it
// shares at least one exact word token with the reference; the token
// rule protects short single-word references whose ratio scores are
// otherwise too low. Ties keep the caller's enumeration order; there
// is no secondary sort key.
func Rank(reference string, candidates []string, topK int) []Candidate {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var ranked []Candidate
	for _, candidate := range candidates {
		confidence, reason, exactTokens := score(reference, candidate)
		if confidence > InclusionThreshold || exactTokens > 0 {
			ranked = append(ranked, Candidate{
				Path:       candidate,
				Confidence: confidence,
				Reason:     reason,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// score runs the full heuristic ladder and additionally reports the
// number of exact token matches, which Rank needs for its inclusion
// rule.
func score(reference, candidate string) (float64, string, int) {
	refClean := clean(reference)
	candClean := clean(candidate)

	if refClean == "" || candClean == "" {
		return 0, "empty input", 0
	}

	// 1. Exact substring containment wins outright.
	if strings.Contains(candClean, refClean) {
		return substringConfidence, fmt.Sprintf("contains '%s'", refClean), len(tokens(refClean))
	}

	// 2. Reverse containment: the candidate name appears inside the
	// (longer) reference.
	if strings.Contains(refClean, candClean) {
		return reverseConfidence, "name contained in reference", 0
	}

	refTokens := tokens(refClean)
	candTokens := tokens(candClean)

	// 3. Token overlap: exact matches count 1.0, partial containment 0.5.
	exactMatches := 0
	partialMatches := 0.0
	for _, rt := range refTokens {
		for _, ct := range candTokens {
			switch {
			case rt == ct:
				exactMatches++
			case strings.Contains(ct, rt) || strings.Contains(rt, ct):
				partialMatches += partialTokenWeight
			}
		}
	}

	wordScore := 0.0
	if len(refTokens) > 0 {
		wordScore = (float64(exactMatches) + partialMatches) / float64(len(refTokens))
	}

	// 4. Character-sequence similarity over the full cleaned strings.
	similarity := sequenceRatio(refClean, candClean)

	// 5. Pattern bonus: a path-shaped reference whose final segment
	// matches the candidate.
	bonus := 0.0
	if strings.Contains(reference, "/") {
		segments := strings.Split(reference, "/")
		if last := clean(segments[len(segments)-1]); last != "" && strings.Contains(candClean, last) {
			bonus = pathSegmentBonus
		}
	}

	final := wordScore
	if similarity > final {
		final = similarity
	}
	final += bonus
	if final > 1.0 {
		final = 1.0
	}

	return final, describeScore(exactMatches, partialMatches, similarity, bonus), exactMatches
}

// sequenceRatio is the longest-common-block similarity ratio over the
// two strings, compared rune by rune.
func sequenceRatio(a, b string) float64 {
	matcher := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return matcher.Ratio()
}

func describeScore(exactMatches int, partialMatches, similarity, bonus float64) string {
	var parts []string
	if exactMatches > 0 {
		parts = append(parts, fmt.Sprintf("%d exact word matches", exactMatches))
	}
	if partialMatches > 0 {
		parts = append(parts, fmt.Sprintf("%.1f partial matches", partialMatches))
	}
	if similarity > 0.3 {
		parts = append(parts, fmt.Sprintf("%.0f%% similarity", similarity*100))
	}
	if bonus > 0 {
		parts = append(parts, "path segment match")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("low similarity (%.0f%%)", similarity*100)
	}
	return strings.Join(parts, ", ")
}

// clean lowercases, strips the markdown extension and trims
// surrounding whitespace so scoring ignores case and extension noise.
func clean(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ".md", "")
	return strings.TrimSpace(s)
}

func tokens(s string) []string {
	return tokenPattern.FindAllString(s, -1)
}

package memory

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// patternRule names one phrasing the user employs when referring to a
// document. Rules are declarative so new phrasings are added here,
// not in control flow.
type patternRule struct {
	name string
	re   *regexp.Regexp
}

var patternRules = []patternRule{
	{name: "possessive", re: regexp.MustCompile(`my\s+([a-z]+(?:\s+[a-z]+)*)`)},
	{name: "authored", re: regexp.MustCompile(`the\s+([a-z]+(?:\s+[a-z]+)*)\s+(?:i\s+(?:created|wrote|made))`)},
}

const maxSuggestions = 5

// LearnPattern scans userInput for known reference phrasings ("my
// thesis", "the draft I wrote") and records which document each
// phrase resolved to. Persisted synchronously like every other
// mutation.
func (s *Store) LearnPattern(userInput, resolvedPath string) error {
	if resolvedPath == "" {
		return nil
	}

	input := strings.ToLower(userInput)
	learned := false
	for _, rule := range patternRules {
		for _, match := range rule.re.FindAllStringSubmatch(input, -1) {
			phrase := strings.TrimSpace(match[1])
			if phrase == "" {
				continue
			}
			key := "user_refers_to_" + strings.ReplaceAll(phrase, " ", "_")
			if !contains(s.patterns[key], resolvedPath) {
				s.patterns[key] = append(s.patterns[key], resolvedPath)
				learned = true
			}
		}
	}

	if !learned {
		return nil
	}
	if err := s.saveRecordSet(patternsFile, s.patterns); err != nil {
		s.log.Warnf("failed to persist patterns: %v", err)
		return err
	}
	return nil
}

// PatternDocuments returns the documents previously associated with a
// learned phrasing, most recently learned last.
func (s *Store) PatternDocuments(phrase string) []string {
	key := "user_refers_to_" + strings.ReplaceAll(NormalizeTerm(phrase), " ", "_")
	return append([]string(nil), s.patterns[key]...)
}

// SuggestCompletions offers up to five completions for a partial
// reference, drawn from learned alias terms (shown as the document's
// base name) and known entity names, ranked by fuzzy match quality.
func (s *Store) SuggestCompletions(partial string) []string {
	partial = NormalizeTerm(partial)
	if partial == "" {
		return nil
	}

	// Source strings to match against, each mapped to the suggestion
	// it should surface as.
	var source []string
	display := make(map[string]string)
	for term, alias := range s.aliases {
		stem := strings.TrimSuffix(path.Base(alias.ResolvedPath), path.Ext(alias.ResolvedPath))
		source = append(source, term)
		display[term] = stem
	}
	for name := range s.entities {
		lower := strings.ToLower(name)
		source = append(source, lower)
		display[lower] = name
	}
	sort.Strings(source) // deterministic match order

	var suggestions []string
	seen := make(map[string]struct{})
	for _, match := range fuzzy.Find(partial, source) {
		suggestion := display[source[match.Index]]
		if _, dup := seen[suggestion]; dup {
			continue
		}
		seen[suggestion] = struct{}{}
		suggestions = append(suggestions, suggestion)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

package session

import (
	"regexp"
	"strings"

	"github.com/entrhq/recall/pkg/memory"
)

// ExtractedEntity is an entity mention found in free text.
type ExtractedEntity struct {
	Name string
	Type memory.EntityType
}

// entityRule is one named extraction pattern. The capture group holds
// the entity name; keepTitle prepends the matched honorific so
// "Prof. Liu" is stored as written, not re-titled.
type entityRule struct {
	name      string
	re        *regexp.Regexp
	entity    memory.EntityType
	keepTitle bool
}

var entityRules = []entityRule{
	{
		name:      "honorific",
		re:        regexp.MustCompile(`(Dr\.|Prof\.|Professor)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		entity:    memory.EntityPerson,
		keepTitle: true,
	},
	{
		name:   "named-project",
		re:     regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(?:project|research|study)`),
		entity: memory.EntityProject,
	},
	{
		name:   "project-about",
		re:     regexp.MustCompile(`(?:project|research|study)\s+(?:on|about)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		entity: memory.EntityProject,
	},
}

// ExtractEntities finds entity mentions in text. Pure: same text,
// same result.
func ExtractEntities(text string) []ExtractedEntity {
	var entities []ExtractedEntity
	seen := make(map[string]struct{})

	for _, rule := range entityRules {
		for _, match := range rule.re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(match[len(match)-1])
			if rule.keepTitle {
				name = strings.TrimSpace(match[1]) + " " + name
			}
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			entities = append(entities, ExtractedEntity{Name: name, Type: rule.entity})
		}
	}
	return entities
}

// referenceRule is one named phrasing by which users point at a
// document in an utterance.
type referenceRule struct {
	name string
	re   *regexp.Regexp
}

var referenceRules = []referenceRule{
	{name: "determined", re: regexp.MustCompile(`(?i)(?:my|the)\s+([a-zA-Z][a-zA-Z0-9 ]{2,30}?)(?:\s+note\b|\s*[,.!?]|\s*$)`)},
	{name: "typed", re: regexp.MustCompile(`(?i)([a-zA-Z][a-zA-Z0-9]{2,30})\s+(?:note|document|file)\b`)},
	{name: "quoted", re: regexp.MustCompile(`"([^"]+)"`)},
	{name: "title-case", re: regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)},
}

// ExtractReferences finds the phrases a user used to point at
// documents, e.g. `open my standup note` yields "standup". Very short
// fragments are dropped as noise.
func ExtractReferences(text string) []string {
	var refs []string
	seen := make(map[string]struct{})

	for _, rule := range referenceRules {
		for _, match := range rule.re.FindAllStringSubmatch(text, -1) {
			ref := strings.TrimSpace(match[1])
			if len(ref) <= 2 {
				continue
			}
			key := strings.ToLower(ref)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

// commandRule captures the request phrasing after a politeness
// prefix, used to count how the user tends to ask for things.
type commandRule struct {
	name string
	re   *regexp.Regexp
}

var commandRules = []commandRule{
	{name: "can-you", re: regexp.MustCompile(`can you (.+)`)},
	{name: "please", re: regexp.MustCompile(`please (.+)`)},
	{name: "need-to", re: regexp.MustCompile(`i need to (.+)`)},
	{name: "help-me", re: regexp.MustCompile(`help me (.+)`)},
}

// ExtractCommandPatterns returns the request phrasings present in one
// lowercased utterance.
func ExtractCommandPatterns(input string) []string {
	input = strings.ToLower(input)
	var patterns []string
	for _, rule := range commandRules {
		for _, match := range rule.re.FindAllStringSubmatch(input, -1) {
			if p := strings.TrimSpace(match[1]); p != "" {
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}

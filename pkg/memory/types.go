package memory

import (
	"strings"
	"time"
)

// EntityType classifies what kind of thing an entity is.
type EntityType string

const (
	EntityPerson   EntityType = "person"
	EntityProject  EntityType = "project"
	EntityConcept  EntityType = "concept"
	EntityLocation EntityType = "location"

	// EntityAutoDetected marks entities registered by session-level
	// extraction rather than an explicit caller.
	EntityAutoDetected EntityType = "auto-detected"
)

// Alias is a learned mapping from how the user refers to a document to
// the document's resolved path. Keys are normalized terms; many
// aliases may point at the same document.
type Alias struct {
	UserTerm     string    `json:"user_term"`
	ResolvedPath string    `json:"resolved_path"`
	Confidence   float64   `json:"confidence"`
	FirstUsed    time.Time `json:"first_used"`
	LastUsed     time.Time `json:"last_used"`
	UsageCount   int       `json:"usage_count"`
	Context      string    `json:"context,omitempty"`
}

// Entity is a person, project, concept or location mentioned in
// conversation, linked to the documents it appeared in.
type Entity struct {
	Name             string     `json:"name"`
	Type             EntityType `json:"type"`
	RelatedDocuments []string   `json:"related_documents"`
	FirstMentioned   time.Time  `json:"first_mentioned"`
	LastMentioned    time.Time  `json:"last_mentioned"`
	Context          string     `json:"context,omitempty"`
}

// Stats aggregates store sizes for diagnostics.
type Stats struct {
	Aliases         int `json:"aliases"`
	Entities        int `json:"entities"`
	Patterns        int `json:"patterns"`
	UniqueDocuments int `json:"unique_documents"`
}

// NormalizeTerm is the canonical key form for alias lookups: lowercase
// and whitespace-trimmed, so "  Stanford SOP " and "stanford sop" hit
// the same record.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

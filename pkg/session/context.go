// Package session tracks conversational state for a single session:
// recent turns, the document currently in focus, and which entities
// came up. It is the piece that lets "add a section to it" land on
// the right document. Everything here is in-memory only and discarded
// at session end; durable learning lives in pkg/memory.
package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/recall/pkg/memory"
)

const (
	// DefaultMaxHistory caps the conversation turn ring buffer.
	DefaultMaxHistory = 20

	// DefaultMaxOperations caps the recent-operations ring buffer.
	DefaultMaxOperations = 10

	// DefaultMaxOpened caps the most-recently-opened document list.
	DefaultMaxOpened = 5
)

// Operation classifies what a successful tool execution did to a
// document. Focus tracking keys off this.
type Operation string

const (
	OpCreate   Operation = "create"
	OpEdit     Operation = "edit"
	OpInsert   Operation = "insert"
	OpAppend   Operation = "append"
	OpOpen     Operation = "open"
	OpOpenMany Operation = "open-many"
	OpRead     Operation = "read"
	OpDelete   Operation = "delete"
)

// Turn is one user utterance and the system's reaction to it.
type Turn struct {
	ID                string
	Timestamp         time.Time
	UserInput         string
	SystemResponse    string
	ToolInvocations   []string
	ResolvedDocuments []string
}

// OperationRecord is one entry in the recent-operations ring.
type OperationRecord struct {
	Timestamp time.Time
	Operation Operation
	Document  string
}

// Context is the session-scoped conversation tracker. Not safe for
// concurrent use: a session is a single synchronous loop.
type Context struct {
	memory *memory.Store

	maxHistory    int
	maxOperations int
	maxOpened     int

	history          []Turn
	recentOperations []OperationRecord

	currentFocus string
	lastCreated  string
	lastModified string
	lastOpened   []string

	sessionEntities map[string][]string // entity name -> related documents
	userPatterns    map[string]int      // request phrasing -> frequency
}

// Option configures a Context.
type Option func(*Context)

// WithMaxHistory overrides the turn ring capacity.
func WithMaxHistory(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxHistory = n
		}
	}
}

// WithMaxOperations overrides the operations ring capacity.
func WithMaxOperations(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxOperations = n
		}
	}
}

// New creates a session context backed by the given persistent
// memory store.
func New(mem *memory.Store, opts ...Option) (*Context, error) {
	if mem == nil {
		return nil, fmt.Errorf("session: memory store is required")
	}
	c := &Context{
		memory:          mem,
		maxHistory:      DefaultMaxHistory,
		maxOperations:   DefaultMaxOperations,
		maxOpened:       DefaultMaxOpened,
		sessionEntities: make(map[string][]string),
		userPatterns:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ResolveReference maps a pronoun or contextual phrase to a document.
// The rules are a fixed priority list; the first match wins. A miss
// means the caller should fall through to fuzzy matching.
func (c *Context) ResolveReference(reference string) (string, bool) {
	ref := strings.ToLower(strings.TrimSpace(reference))

	// 1. Bare pronouns point at whatever is most alive: the focused
	// document, else the last modified, else the last created.
	switch ref {
	case "it", "that", "this", "the note":
		for _, doc := range []string{c.currentFocus, c.lastModified, c.lastCreated} {
			if doc != "" {
				return doc, true
			}
		}
		return "", false
	}

	// 2. Explicit creation references.
	if strings.Contains(ref, "just created") || strings.Contains(ref, "i created") {
		return c.lastCreated, c.lastCreated != ""
	}

	// 3. Recently opened.
	if strings.Contains(ref, "last opened") || strings.Contains(ref, "opened") {
		if len(c.lastOpened) > 0 {
			return c.lastOpened[0], true
		}
		return "", false
	}

	// 4. The current focus by name.
	if strings.Contains(ref, "current") || strings.Contains(ref, "this note") {
		return c.currentFocus, c.currentFocus != ""
	}

	// 5. Learned aliases.
	if doc, ok := c.memory.ResolveReference(reference); ok {
		return doc, true
	}

	// 6. Entities mentioned earlier this session.
	for _, entity := range c.sortedEntityNames() {
		if strings.Contains(strings.ToLower(entity), ref) {
			if docs := c.sessionEntities[entity]; len(docs) > 0 {
				return docs[0], true
			}
		}
	}

	return "", false
}

// UpdateFocus records the effect of one successful tool execution.
// Every successful execution must call this exactly once; skipping it
// breaks pronoun resolution on the next turn.
func (c *Context) UpdateFocus(document string, op Operation) {
	switch op {
	case OpCreate:
		c.currentFocus = document
		c.lastCreated = document
	case OpEdit, OpInsert, OpAppend:
		c.currentFocus = document
		c.lastModified = document
	case OpOpen:
		c.pushOpened(document)
		c.currentFocus = document
	case OpOpenMany:
		// Several documents opened at once: remember them, but none
		// becomes the focus.
		c.pushOpened(document)
	}

	c.recentOperations = append(c.recentOperations, OperationRecord{
		Timestamp: time.Now(),
		Operation: op,
		Document:  document,
	})
	if len(c.recentOperations) > c.maxOperations {
		c.recentOperations = c.recentOperations[len(c.recentOperations)-c.maxOperations:]
	}
}

// pushOpened prepends a document to the opened list, de-duplicated
// and capped, most recent first.
func (c *Context) pushOpened(document string) {
	opened := make([]string, 0, c.maxOpened)
	opened = append(opened, document)
	for _, doc := range c.lastOpened {
		if doc != document {
			opened = append(opened, doc)
		}
		if len(opened) == c.maxOpened {
			break
		}
	}
	c.lastOpened = opened
}

// AddTurn appends a conversation turn and learns from it: entities
// are extracted and linked to the resolved documents, phrasing
// patterns are counted, and the way the user referred to each
// resolved document is registered as a durable alias.
func (c *Context) AddTurn(userInput, systemResponse string, toolInvocations, resolvedDocuments []string) {
	c.history = append(c.history, Turn{
		ID:                uuid.New().String(),
		Timestamp:         time.Now(),
		UserInput:         userInput,
		SystemResponse:    systemResponse,
		ToolInvocations:   toolInvocations,
		ResolvedDocuments: resolvedDocuments,
	})
	if len(c.history) > c.maxHistory {
		c.history = c.history[len(c.history)-c.maxHistory:]
	}

	for _, entity := range ExtractEntities(userInput) {
		c.RegisterEntity(entity.Name, resolvedDocuments)
	}

	for _, pattern := range ExtractCommandPatterns(userInput) {
		c.userPatterns[pattern]++
	}

	for _, doc := range resolvedDocuments {
		_ = c.memory.LearnPattern(userInput, doc)
		for _, ref := range ExtractReferences(userInput) {
			_ = c.memory.RegisterReference(ref, doc, userInput)
		}
	}
}

// RegisterEntity links an entity to documents for this session and
// mirrors it into persistent memory.
func (c *Context) RegisterEntity(name string, relatedDocuments []string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	merged := c.sessionEntities[name]
	for _, doc := range relatedDocuments {
		if doc != "" && !containsString(merged, doc) {
			merged = append(merged, doc)
		}
	}
	c.sessionEntities[name] = merged

	_ = c.memory.RegisterEntity(name, memory.EntityAutoDetected, relatedDocuments, "session context")
}

// Focus accessors. Empty string means unset.

func (c *Context) CurrentFocus() string { return c.currentFocus }
func (c *Context) LastCreated() string  { return c.lastCreated }
func (c *Context) LastModified() string { return c.lastModified }

// LastOpened returns the opened list, most recent first.
func (c *Context) LastOpened() []string {
	return append([]string(nil), c.lastOpened...)
}

// ClearFocus unsets the current focus without touching the rest of
// the state.
func (c *Context) ClearFocus() {
	c.currentFocus = ""
}

// History returns the retained turns, oldest first.
func (c *Context) History() []Turn {
	return append([]Turn(nil), c.history...)
}

// RecentOperations returns the retained operation records, oldest
// first.
func (c *Context) RecentOperations() []OperationRecord {
	return append([]OperationRecord(nil), c.recentOperations...)
}

// Snapshot is the planner-facing view of the session: enough context
// for an external command planner to phrase its next move, without
// handing it the whole state.
type Snapshot struct {
	RecentTurns      []Turn
	CurrentFocus     string
	LastCreated      string
	LastModified     string
	LastOpened       []string
	SessionEntities  map[string][]string
	RecentOperations []OperationRecord
}

// Snapshot returns the current planner context: the last five turns,
// the focus state, up to three recently opened documents, and the
// last five operations.
func (c *Context) Snapshot() Snapshot {
	turns := c.history
	if len(turns) > 5 {
		turns = turns[len(turns)-5:]
	}
	ops := c.recentOperations
	if len(ops) > 5 {
		ops = ops[len(ops)-5:]
	}
	opened := c.lastOpened
	if len(opened) > 3 {
		opened = opened[:3]
	}

	entities := make(map[string][]string, len(c.sessionEntities))
	for name, docs := range c.sessionEntities {
		entities[name] = append([]string(nil), docs...)
	}

	return Snapshot{
		RecentTurns:      append([]Turn(nil), turns...),
		CurrentFocus:     c.currentFocus,
		LastCreated:      c.lastCreated,
		LastModified:     c.lastModified,
		LastOpened:       append([]string(nil), opened...),
		SessionEntities:  entities,
		RecentOperations: append([]OperationRecord(nil), ops...),
	}
}

// SuggestNextActions proposes follow-ups from the current state: work
// on the freshly created or focused document, or pull together
// entities that span several documents. At most five suggestions.
func (c *Context) SuggestNextActions() []string {
	var suggestions []string

	if c.lastCreated != "" {
		suggestions = append(suggestions,
			fmt.Sprintf("Open %s", c.lastCreated),
			fmt.Sprintf("Add sections to %s", c.lastCreated),
		)
	}
	if c.currentFocus != "" {
		suggestions = append(suggestions,
			fmt.Sprintf("Link %s to other notes", c.currentFocus),
			fmt.Sprintf("Summarize %s", c.currentFocus),
		)
	}
	for _, entity := range c.sortedEntityNames() {
		if len(c.sessionEntities[entity]) > 1 {
			suggestions = append(suggestions, fmt.Sprintf("Create overview of %s across notes", entity))
		}
	}

	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

// ContextStats reports session-state sizes plus the backing memory
// store's stats.
type ContextStats struct {
	Turns            int
	SessionEntities  int
	UserPatterns     int
	RecentOperations int
	Memory           memory.Stats
}

func (c *Context) Stats() ContextStats {
	return ContextStats{
		Turns:            len(c.history),
		SessionEntities:  len(c.sessionEntities),
		UserPatterns:     len(c.userPatterns),
		RecentOperations: len(c.recentOperations),
		Memory:           c.memory.Stats(),
	}
}

// sortedEntityNames keeps entity iteration deterministic.
func (c *Context) sortedEntityNames() []string {
	names := make([]string, 0, len(c.sessionEntities))
	for name := range c.sessionEntities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

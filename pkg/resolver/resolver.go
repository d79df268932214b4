// Package resolver orchestrates reference resolution: it runs the
// fallback cascade over learned memory, conversational context, the
// literal path, and fuzzy matching, and closes the learning loop when
// a human confirms an ambiguous choice.
//
// The public surface is total. Every call returns an Outcome; no
// error or panic escapes, because the caller is mid-conversation and
// "I couldn't find it" is always a better answer than a crash.
package resolver

import (
	"fmt"
	"strings"

	"github.com/entrhq/recall/pkg/logging"
	"github.com/entrhq/recall/pkg/matching"
	"github.com/entrhq/recall/pkg/memory"
	"github.com/entrhq/recall/pkg/session"
	"github.com/entrhq/recall/pkg/vault"
)

// Status is the terminal state of one resolution attempt.
type Status string

const (
	// StatusResolved means the term maps to exactly one document with
	// enough confidence to proceed without asking.
	StatusResolved Status = "resolved"

	// StatusNeedsDisambiguation means fuzzy matching produced ranked
	// candidates and a human must choose. Fuzzy-only hits are never
	// auto-applied, whatever their score.
	StatusNeedsDisambiguation Status = "needs-disambiguation"

	// StatusNotFound means nothing in the store plausibly matches.
	StatusNotFound Status = "not-found"

	// StatusInvalid means the term was rejected before the cascade ran
	// (empty or whitespace-only).
	StatusInvalid Status = "invalid"
)

// Source says which cascade step produced a resolution.
type Source string

const (
	SourceMemory  Source = "memory"
	SourceContext Source = "context"
	SourceLiteral Source = "literal"
)

// Outcome is the result of one resolution attempt. NotFound and
// NeedsDisambiguation are valid terminal outcomes, not errors.
type Outcome struct {
	Status     Status
	Path       string
	Source     Source
	Confidence float64
	Candidates []matching.Candidate
}

// Engine runs the resolution cascade. Construct with New; a nil
// collaborator is a construction error, so an Engine that exists is
// always usable.
type Engine struct {
	memory  *memory.Store
	session *session.Context
	vault   vault.Store
	topK    int
	log     *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTopK overrides how many fuzzy candidates are surfaced for
// disambiguation.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// New creates a resolution engine over the given collaborators.
func New(mem *memory.Store, sess *session.Context, store vault.Store, opts ...Option) (*Engine, error) {
	if mem == nil {
		return nil, fmt.Errorf("resolver: memory store is required")
	}
	if sess == nil {
		return nil, fmt.Errorf("resolver: session context is required")
	}
	if store == nil {
		return nil, fmt.Errorf("resolver: document store is required")
	}

	log, _ := logging.NewLogger("resolver")

	e := &Engine{
		memory:  mem,
		session: sess,
		vault:   store,
		topK:    matching.DefaultTopK,
		log:     log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Resolve maps a user-supplied reference to a document. The cascade
// short-circuits on the first success:
//
//  1. learned alias (exact normalized lookup)
//  2. conversational context (pronouns, focus, session entities)
//  3. the term taken literally as a path
//  4. fuzzy matching over the whole document set
//
// Fuzzy candidates always come back as NeedsDisambiguation; the
// caller confirms a choice via ConfirmResolution, which is what makes
// the same term resolve at step 1 next time.
func (e *Engine) Resolve(term string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("panic while resolving %q: %v", term, r)
			outcome = Outcome{Status: StatusNotFound}
		}
	}()

	if strings.TrimSpace(term) == "" {
		return Outcome{Status: StatusInvalid}
	}

	// 1. Memory: a term the user has confirmed before.
	if path, ok := e.memory.ResolveReference(term); ok {
		if e.vault.Exists(path) {
			e.log.Debugf("memory resolved %q -> %q", term, path)
			return Outcome{Status: StatusResolved, Path: path, Source: SourceMemory, Confidence: 1.0}
		}
		// The document moved or was deleted since the alias was
		// learned; fall through rather than hand back a dead path.
		e.log.Warnf("stale alias %q -> %q (document missing)", term, path)
	}

	// 2. Session context: pronouns, focus state, session entities.
	if path, ok := e.session.ResolveReference(term); ok && path != "" {
		if e.vault.Exists(path) {
			e.log.Debugf("context resolved %q -> %q", term, path)
			// Remember the phrasing so it survives the session.
			_ = e.memory.RegisterReference(term, path, "context resolution")
			return Outcome{Status: StatusResolved, Path: path, Source: SourceContext, Confidence: 1.0}
		}
	}

	// 3. The term as a literal path, with the default extension
	// appended when missing.
	for _, candidate := range literalForms(term) {
		if e.vault.Exists(candidate) {
			e.log.Debugf("literal path %q -> %q", term, candidate)
			return Outcome{Status: StatusResolved, Path: candidate, Source: SourceLiteral, Confidence: 1.0}
		}
	}

	// 4. Fuzzy matching over the full document set.
	docs, err := e.vault.List("")
	if err != nil {
		e.log.Errorf("listing documents for %q: %v", term, err)
		return Outcome{Status: StatusNotFound}
	}

	candidates := matching.Rank(term, docs, e.topK)
	if len(candidates) == 0 {
		e.log.Debugf("no candidates for %q", term)
		return Outcome{Status: StatusNotFound}
	}

	e.log.Debugf("%d candidates for %q, best %q (%.2f)",
		len(candidates), term, candidates[0].Path, candidates[0].Confidence)
	return Outcome{Status: StatusNeedsDisambiguation, Candidates: candidates}
}

// ConfirmResolution records the human's choice for an ambiguous term.
// From then on the identical term resolves from memory with full
// confidence.
func (e *Engine) ConfirmResolution(term, chosenPath string) error {
	if strings.TrimSpace(term) == "" {
		return fmt.Errorf("resolver: cannot confirm an empty term")
	}
	if chosenPath == "" {
		return fmt.Errorf("resolver: cannot confirm an empty path")
	}
	return e.memory.RegisterReference(term, chosenPath, "confirmed disambiguation")
}

// literalForms returns the term and, when it has no extension yet,
// the term with the default extension appended.
func literalForms(term string) []string {
	term = strings.TrimSpace(term)
	forms := []string{term}
	if !strings.HasSuffix(term, vault.DefaultExtension) {
		forms = append(forms, term+vault.DefaultExtension)
	}
	return forms
}

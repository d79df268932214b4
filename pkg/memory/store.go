// Package memory is the durable half of reference learning: a store
// of alias, entity and phrasing-pattern records that survives process
// restarts. Every mutation is flushed synchronously with an atomic
// write, so a learned resolution is never lost to a crash. Reads
// favor availability: a corrupt or missing file degrades to an
// empty record set with a logged warning, never an error to the
// caller.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/entrhq/recall/pkg/logging"
)

const (
	aliasesFile  = "aliases.json"
	entitiesFile = "entities.json"
	patternsFile = "patterns.json"
)

// Store holds the persistent memory record sets. It is safe for use
// from a single session goroutine; concurrent processes sharing the
// same directory race on whole-file rewrites and last-writer-wins.
type Store struct {
	dir      string
	aliases  map[string]*Alias   // normalized term -> alias
	entities map[string]*Entity  // canonical name -> entity
	patterns map[string][]string // phrasing pattern -> document paths
	log      *logging.Logger
}

// New opens (or creates) a memory store in dir. Failure to create the
// directory is a construction error; failure to read any existing
// record set is not; the affected set starts empty and the problem
// is logged.
func New(dir string) (*Store, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("memory: resolve home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".recall", "memory")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("memory: init directory %s: %w", dir, err)
	}

	log, _ := logging.NewLogger("memory")

	s := &Store{
		dir:      dir,
		aliases:  make(map[string]*Alias),
		entities: make(map[string]*Entity),
		patterns: make(map[string][]string),
		log:      log,
	}
	s.load()
	return s, nil
}

// Dir returns the directory the store persists into.
func (s *Store) Dir() string {
	return s.dir
}

// RegisterReference records how the user referred to a document. The
// upsert is idempotent on (term, path): re-registering bumps
// usage_count and last_used, and refreshes the context with the
// latest utterance. The store is persisted before returning.
func (s *Store) RegisterReference(term, path, context string) error {
	key := NormalizeTerm(term)
	if key == "" {
		return fmt.Errorf("memory: cannot register empty reference term")
	}

	now := time.Now()
	if existing, ok := s.aliases[key]; ok && existing.ResolvedPath == path {
		existing.LastUsed = now
		existing.UsageCount++
		existing.Context = context
	} else {
		s.aliases[key] = &Alias{
			UserTerm:     key,
			ResolvedPath: path,
			Confidence:   1.0,
			FirstUsed:    now,
			LastUsed:     now,
			UsageCount:   1,
			Context:      context,
		}
	}

	if err := s.saveRecordSet(aliasesFile, s.aliases); err != nil {
		// In-memory state stays valid for the rest of the session.
		s.log.Warnf("failed to persist aliases: %v", err)
		return err
	}
	s.log.Debugf("remembered %q -> %q", key, path)
	return nil
}

// ResolveReference looks up a learned alias by exact normalized term.
// It never fails; an unknown term is simply a miss.
func (s *Store) ResolveReference(term string) (string, bool) {
	alias, ok := s.aliases[NormalizeTerm(term)]
	if !ok {
		return "", false
	}
	return alias.ResolvedPath, true
}

// Alias returns the full learned record for a term, when present.
func (s *Store) Alias(term string) (*Alias, bool) {
	alias, ok := s.aliases[NormalizeTerm(term)]
	if !ok {
		return nil, false
	}
	record := *alias
	return &record, true
}

// RegisterEntity upserts an entity, merging related documents as a
// set union. The store is persisted before returning.
func (s *Store) RegisterEntity(name string, typ EntityType, relatedDocs []string, context string) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return fmt.Errorf("memory: cannot register entity with empty name")
	}

	now := time.Now()
	if existing, ok := s.entities[key]; ok {
		existing.RelatedDocuments = unionSorted(existing.RelatedDocuments, relatedDocs)
		existing.LastMentioned = now
		existing.Context = context
	} else {
		s.entities[key] = &Entity{
			Name:             key,
			Type:             typ,
			RelatedDocuments: unionSorted(nil, relatedDocs),
			FirstMentioned:   now,
			LastMentioned:    now,
			Context:          context,
		}
	}

	if err := s.saveRecordSet(entitiesFile, s.entities); err != nil {
		s.log.Warnf("failed to persist entities: %v", err)
		return err
	}
	return nil
}

// FindRelatedDocuments returns documents linked to an entity: exact
// name match first, then case-insensitive substring match in either
// direction across known entity names.
func (s *Store) FindRelatedDocuments(entityName string) []string {
	key := strings.TrimSpace(entityName)

	if entity, ok := s.entities[key]; ok {
		return append([]string(nil), entity.RelatedDocuments...)
	}

	keyLower := strings.ToLower(key)
	for _, name := range sortedKeys(s.entities) {
		nameLower := strings.ToLower(name)
		if strings.Contains(nameLower, keyLower) || strings.Contains(keyLower, nameLower) {
			return append([]string(nil), s.entities[name].RelatedDocuments...)
		}
	}
	return nil
}

// Stats reports record-set sizes.
func (s *Store) Stats() Stats {
	docs := make(map[string]struct{})
	for _, alias := range s.aliases {
		docs[alias.ResolvedPath] = struct{}{}
	}
	return Stats{
		Aliases:         len(s.aliases),
		Entities:        len(s.entities),
		Patterns:        len(s.patterns),
		UniqueDocuments: len(docs),
	}
}

// Clear wipes every record set in memory and on disk. This is the
// only deletion path the store offers.
func (s *Store) Clear() error {
	s.aliases = make(map[string]*Alias)
	s.entities = make(map[string]*Entity)
	s.patterns = make(map[string][]string)

	var firstErr error
	for _, name := range []string{aliasesFile, entitiesFile, patternsFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("memory: remove %s: %w", name, err)
			}
		}
	}
	s.log.Infof("memory cleared")
	return firstErr
}

// load reads every record set, tolerating missing or corrupt files.
// A failed load leaves the affected set empty; decoding into a map
// can populate it partially before erroring.
func (s *Store) load() {
	if s.loadRecordSet(aliasesFile, &s.aliases) {
		s.migrateAliases()
	} else {
		s.aliases = make(map[string]*Alias)
	}
	if s.loadRecordSet(entitiesFile, &s.entities) {
		s.migrateEntities()
	} else {
		s.entities = make(map[string]*Entity)
	}
	if !s.loadRecordSet(patternsFile, &s.patterns) {
		s.patterns = make(map[string][]string)
	}
}

// migrateAliases defaults fields that older or hand-edited files may
// be missing, so the rest of the code never checks for zero values.
func (s *Store) migrateAliases() {
	now := time.Now()
	for key, alias := range s.aliases {
		if alias == nil {
			delete(s.aliases, key)
			continue
		}
		if alias.UserTerm == "" {
			alias.UserTerm = key
		}
		if alias.UsageCount < 1 {
			alias.UsageCount = 1
		}
		if alias.Confidence <= 0 {
			alias.Confidence = 1.0
		}
		if alias.FirstUsed.IsZero() {
			alias.FirstUsed = now
		}
		if alias.LastUsed.IsZero() {
			alias.LastUsed = alias.FirstUsed
		}
	}
}

func (s *Store) migrateEntities() {
	now := time.Now()
	for key, entity := range s.entities {
		if entity == nil {
			delete(s.entities, key)
			continue
		}
		if entity.Name == "" {
			entity.Name = key
		}
		if entity.Type == "" {
			entity.Type = EntityAutoDetected
		}
		if entity.FirstMentioned.IsZero() {
			entity.FirstMentioned = now
		}
		if entity.LastMentioned.IsZero() {
			entity.LastMentioned = entity.FirstMentioned
		}
	}
}

// loadRecordSet decodes one JSON file into target. Returns true when
// the file existed and decoded; read and parse failures are logged,
// never surfaced.
func (s *Store) loadRecordSet(name string, target interface{}) bool {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnf("could not read %s, starting empty: %v", name, err)
		}
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		s.log.Warnf("could not parse %s, starting empty: %v", name, err)
		return false
	}
	return true
}

// saveRecordSet writes one JSON file atomically via temp-and-rename,
// so a partial write can never corrupt the record set on disk.
func (s *Store) saveRecordSet(name string, data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0600); err != nil {
		return fmt.Errorf("memory: write temp file for %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("memory: atomic rename %s: %w", name, err)
	}
	return nil
}

func unionSorted(existing, added []string) []string {
	set := make(map[string]struct{}, len(existing)+len(added))
	for _, v := range existing {
		set[v] = struct{}{}
	}
	for _, v := range added {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]*Entity) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package vault provides read-only access to the user's document
// store: a directory tree of markdown files. The resolution engine
// only ever needs two things from it, an enumeration of documents
// and an existence check, so that is the whole surface. Nothing in
// this package writes document content.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
)

// DefaultExtension is appended to document names that arrive without
// an extension.
const DefaultExtension = ".md"

// DefaultIgnorePatterns excludes tool-internal directories commonly
// found inside markdown vaults.
var DefaultIgnorePatterns = []string{".obsidian/**", ".trash/**", ".git/**"}

var invalidNameChars = regexp.MustCompile(`[<>:"|?*\\]`)

// Store is the read surface the resolution engine depends on.
type Store interface {
	// List returns relative, slash-separated document paths, optionally
	// restricted to a folder. Order is stable across calls.
	List(folder string) ([]string, error)

	// Exists reports whether the given relative path names a document.
	Exists(path string) bool
}

// FS is a filesystem-backed Store rooted at a vault directory.
type FS struct {
	root      string
	extension string
	ignore    []glob.Glob
}

// Option configures an FS.
type Option func(*FS)

// WithExtension overrides the default document extension.
func WithExtension(ext string) Option {
	return func(f *FS) {
		if ext != "" {
			f.extension = ext
		}
	}
}

// WithIgnorePatterns replaces the default ignore patterns.
func WithIgnorePatterns(patterns []string) Option {
	return func(f *FS) {
		f.ignore = compilePatterns(patterns)
	}
}

// NewFS creates a filesystem vault rooted at root. The root must
// already exist and be a directory; an engine pointed at a missing
// vault is a configuration error, not something to discover later.
func NewFS(root string, opts ...Option) (*FS, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("vault: root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root %s is not a directory", root)
	}

	f := &FS{
		root:      root,
		extension: DefaultExtension,
		ignore:    compilePatterns(DefaultIgnorePatterns),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func compilePatterns(patterns []string) []glob.Glob {
	var compiled []glob.Glob
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue // an unparseable ignore pattern just doesn't ignore anything
		}
		compiled = append(compiled, g)
	}
	return compiled
}

// List enumerates documents under the root (or under folder, when
// given) recursively, returning sorted slash-separated paths relative
// to the root.
func (f *FS) List(folder string) ([]string, error) {
	base := f.root
	if folder != "" {
		resolved, err := f.resolve(folder)
		if err != nil {
			return nil, err
		}
		base = resolved
	}

	pattern := filepath.Join(base, "**", "*"+f.extension)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("vault: list %s: %w", base, err)
	}

	var docs []string
	for _, m := range matches {
		rel, err := filepath.Rel(f.root, m)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if f.ignored(rel) {
			continue
		}
		docs = append(docs, rel)
	}
	sort.Strings(docs)
	return docs, nil
}

// Exists reports whether path names a document inside the vault.
// Paths escaping the root are never considered to exist.
func (f *FS) Exists(path string) bool {
	resolved, err := f.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(resolved)
	return err == nil && !info.IsDir()
}

// Root returns the vault root directory.
func (f *FS) Root() string {
	return f.root
}

// NormalizeName strips characters that cannot appear in a document
// name and appends the vault extension when missing.
func (f *FS) NormalizeName(name string) string {
	safe := invalidNameChars.ReplaceAllString(name, "_")
	if !strings.HasSuffix(safe, f.extension) {
		safe += f.extension
	}
	return safe
}

func (f *FS) ignored(rel string) bool {
	for _, g := range f.ignore {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// resolve joins a relative path onto the root, rejecting traversal
// outside the vault.
func (f *FS) resolve(rel string) (string, error) {
	rootAbs, err := filepath.Abs(f.root)
	if err != nil {
		return "", fmt.Errorf("vault: abs root: %w", err)
	}
	resolved := filepath.Join(rootAbs, filepath.FromSlash(rel))
	if resolved != rootAbs && !strings.HasPrefix(resolved, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("vault: path %q escapes the vault root", rel)
	}
	return resolved, nil
}

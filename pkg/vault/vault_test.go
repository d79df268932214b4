package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T, files ...string) *FS {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte("# "+f+"\n"), 0600))
	}
	fs, err := NewFS(root)
	require.NoError(t, err)
	return fs
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestNewFSRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "notes.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := NewFS(file)
	assert.Error(t, err)
}

func TestListReturnsSortedRelativePaths(t *testing.T) {
	fs := newTestVault(t,
		"Weekly Review.md",
		"Daily Standup.md",
		"projects/Roadmap.md",
	)

	docs, err := fs.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Daily Standup.md", "Weekly Review.md", "projects/Roadmap.md"}, docs)
}

func TestListRestrictedToFolder(t *testing.T) {
	fs := newTestVault(t, "top.md", "projects/Roadmap.md", "projects/Ideas.md")

	docs, err := fs.List("projects")
	require.NoError(t, err)
	assert.Equal(t, []string{"projects/Ideas.md", "projects/Roadmap.md"}, docs)
}

func TestListSkipsIgnoredDirectories(t *testing.T) {
	fs := newTestVault(t, "keep.md", ".obsidian/workspace.md", ".trash/old.md")

	docs, err := fs.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.md"}, docs)
}

func TestListIgnoresNonMarkdownFiles(t *testing.T) {
	fs := newTestVault(t, "note.md")
	require.NoError(t, os.WriteFile(filepath.Join(fs.Root(), "image.png"), []byte("png"), 0600))

	docs, err := fs.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"note.md"}, docs)
}

func TestExists(t *testing.T) {
	fs := newTestVault(t, "Daily Standup.md", "projects/Roadmap.md")

	assert.True(t, fs.Exists("Daily Standup.md"))
	assert.True(t, fs.Exists("projects/Roadmap.md"))
	assert.False(t, fs.Exists("Missing.md"))
	assert.False(t, fs.Exists("projects")) // directories are not documents
}

func TestExistsRejectsTraversal(t *testing.T) {
	fs := newTestVault(t, "note.md")
	assert.False(t, fs.Exists("../note.md"))
	assert.False(t, fs.Exists("../../etc/passwd"))
}

func TestNormalizeName(t *testing.T) {
	fs := newTestVault(t)

	assert.Equal(t, "Daily Standup.md", fs.NormalizeName("Daily Standup"))
	assert.Equal(t, "Daily Standup.md", fs.NormalizeName("Daily Standup.md"))
	assert.Equal(t, "what_ really_.md", fs.NormalizeName(`what? really*`))
}

package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillmark/quill/internal/registry"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "first-post.md", `---
title: First Post
date: 2024-01-15
---
Body one.
`)
	writeFile(t, dir, "nested/second-post.markdown", `---
title: Second Post
date: 2024-02-15
draft: true
---
Body two.
`)
	writeFile(t, dir, "notes.txt", "not a post")

	reg := registry.NewPostRegistry()
	s := NewPostScanner(reg, nil)
	defer s.Close()

	require.NoError(t, s.ScanDirectory(dir))
	assert.Equal(t, 2, reg.Count())

	first, ok := reg.Get("first-post")
	require.True(t, ok)
	assert.Equal(t, "First Post", first.Title)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.False(t, first.Draft)
	assert.Equal(t, 2, first.WordCount)
	assert.NotEmpty(t, first.Hash)

	second, ok := reg.Get("second-post")
	require.True(t, ok)
	assert.True(t, second.Draft)
}

func TestScanDirectoryMissing(t *testing.T) {
	reg := registry.NewPostRegistry()
	s := NewPostScanner(reg, nil)
	defer s.Close()

	assert.Error(t, s.ScanDirectory(filepath.Join(t.TempDir(), "missing")))
}

func TestScanFileSlugOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "some-file.md", `---
title: T
slug: custom
---
Body.
`)

	reg := registry.NewPostRegistry()
	s := NewPostScanner(reg, nil)
	defer s.Close()

	require.NoError(t, s.ScanFile(path))
	_, ok := reg.Get("custom")
	assert.True(t, ok)
	_, ok = reg.Get("some-file")
	assert.False(t, ok)
}

func TestScanFileUnchangedHashSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "post.md", "---\ntitle: T\n---\nBody.\n")

	reg := registry.NewPostRegistry()
	s := NewPostScanner(reg, nil)
	defer s.Close()

	require.NoError(t, s.ScanFile(path))
	events := reg.Watch()

	// Rescan without modification: no new event
	require.NoError(t, s.ScanFile(path))
	select {
	case <-events:
		t.Fatal("unchanged file should not re-register")
	case <-time.After(50 * time.Millisecond):
	}

	// Modify and rescan: updated event
	writeFile(t, dir, "post.md", "---\ntitle: Changed\n---\nBody.\n")
	require.NoError(t, s.ScanFile(path))
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("modified file should re-register")
	}
}

func TestScanFileBadFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.md", "---\ntitle: Broken\nno closing fence\n")

	reg := registry.NewPostRegistry()
	s := NewPostScanner(reg, nil)
	defer s.Close()

	assert.Error(t, s.ScanFile(path))
	assert.Equal(t, 0, reg.Count())
}

func TestExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kept.md", "---\ntitle: K\n---\nBody.\n")
	writeFile(t, dir, "ignored.bak.md", "---\ntitle: I\n---\nBody.\n")
	writeFile(t, dir, "_drafts/hidden.md", "---\ntitle: H\n---\nBody.\n")

	reg := registry.NewPostRegistry()
	s := NewPostScanner(reg, []string{"*.bak.md", "_*"})
	defer s.Close()

	require.NoError(t, s.ScanDirectory(dir))
	assert.Equal(t, 1, reg.Count())
	_, ok := reg.Get("kept")
	assert.True(t, ok)
}

func TestSlugify(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Dependency Injection Basics", "dependency-injection-basics"},
		{"hello_world", "hello-world"},
		{"Already-Slugged", "already-slugged"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"Symbols!@#Removed", "symbolsremoved"},
		{"ends with space ", "ends-with-space"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slugify(tc.input))
		})
	}
}

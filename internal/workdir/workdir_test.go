// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workdir

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/manhwa-translate/pkg/types"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.png", "1"},
		{"output/12.jpeg", "12"},
		{"noext", "noext"},
		{"a.b.json", "a.b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stem(tt.in), tt.in)
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2.png", "10.jpg", "1.PNG", "3.jpeg", "notes.txt", "4.tif"} {
		touch(t, dir, name)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "5.png"), 0o755))

	got, err := ListImages(dir)
	require.NoError(t, err)
	// Lexicographic, not numeric.
	assert.Equal(t, []string{"1.PNG", "10.jpg", "2.png", "3.jpeg"}, got)
}

func TestListMissingDirectory(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "nope"), ".json")
	require.Error(t, err)
}

func TestReset(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "output")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	touch(t, stale, "old.png")
	fresh := filepath.Join(root, "ocr_results")

	require.NoError(t, Reset(stale, fresh))

	entries, err := os.ReadDir(stale)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.DirExists(t, fresh)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1.txt")
	require.NoError(t, WriteFileAtomic(path, []byte("first")))
	require.NoError(t, WriteFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestManifestRoundTrip(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = old })

	path := filepath.Join(t.TempDir(), "manifest.yaml")

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Empty(t, m.Pages, "missing manifest is empty")

	require.NoError(t, UpdateManifest(path, func(m *types.Manifest) {
		m.Source = "input/main-raw.pdf"
		Page(m, "1").Image = "output/1.png"
		Page(m, "2").Image = "output/2.jpg"
	}))
	require.NoError(t, UpdateManifest(path, func(m *types.Manifest) {
		p := Page(m, "1")
		p.OCR = "ocr_results/1.json"
		p.Regions = 3
	}))

	got, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "input/main-raw.pdf", got.Source)
	assert.True(t, got.UpdatedAt.Equal(fixed))
	require.Len(t, got.Pages, 2)
	assert.Equal(t, types.PageEntry{ID: "1", Image: "output/1.png", OCR: "ocr_results/1.json", Regions: 3}, got.Pages[0])
	assert.Equal(t, "2", got.Pages[1].ID)
}

func TestUpdateManifestDisabled(t *testing.T) {
	called := false
	require.NoError(t, UpdateManifest("", func(*types.Manifest) { called = true }))
	assert.False(t, called)
}

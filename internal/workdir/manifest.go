// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// LoadManifest reads the manifest at path. A missing file yields an empty
// manifest, matching the rule that absent stage data is empty data.
func LoadManifest(path string) (*types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.Manifest{}, nil
		}
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m types.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// SaveManifest stamps UpdatedAt and writes the manifest atomically.
func SaveManifest(path string, m *types.Manifest) error {
	m.UpdatedAt = now()
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating manifest directory: %w", err)
		}
	}
	return WriteFileAtomic(path, data)
}

// UpdateManifest loads the manifest, applies fn, and saves it. An empty path
// disables the manifest and fn is not called.
func UpdateManifest(path string, fn func(m *types.Manifest)) error {
	if path == "" {
		return nil
	}
	m, err := LoadManifest(path)
	if err != nil {
		return err
	}
	fn(m)
	return SaveManifest(path, m)
}

// Page returns the entry for id, appending a new one when absent. The pointer
// is valid until the next call that appends.
func Page(m *types.Manifest, id string) *types.PageEntry {
	for i := range m.Pages {
		if m.Pages[i].ID == id {
			return &m.Pages[i]
		}
	}
	m.Pages = append(m.Pages, types.PageEntry{ID: id})
	return &m.Pages[len(m.Pages)-1]
}

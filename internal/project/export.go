// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manhwa-translate/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ExportYAML writes all projects, with their pages, to ProjectsDir/export.yaml.
func (s *Store) ExportYAML(ctx context.Context, opts ListOptions) (string, error) {
	projects, err := s.exportProjects(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "export.yaml")
	data, err := yaml.Marshal(projects)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes all projects, with their pages, to ProjectsDir/export.json.
func (s *Store) ExportJSON(ctx context.Context, opts ListOptions) (string, error) {
	projects, err := s.exportProjects(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "export.json")
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// Export dispatches on format ("yaml" or "json").
func (s *Store) Export(ctx context.Context, format string, opts ListOptions) (string, error) {
	switch format {
	case FormatYAML:
		return s.ExportYAML(ctx, opts)
	case FormatJSON:
		return s.ExportJSON(ctx, opts)
	default:
		return "", fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
}

func (s *Store) exportProjects(ctx context.Context, opts ListOptions) ([]types.Project, error) {
	projects, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	for i := range projects {
		pages, err := s.pages(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Pages = pages
	}
	if projects == nil {
		projects = []types.Project{}
	}
	return projects, nil
}

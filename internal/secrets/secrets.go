// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from the environment and from a directory of
// plain-text files. In the directory each file is one secret: the filename is
// the key name and the trimmed file contents are the value.
//
// Supported key files: gemini-api-key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// GeminiAPIKeyEnv is the environment variable holding the translation API key.
	GeminiAPIKeyEnv = "GEMINI_API_KEY"

	// GeminiAPIKeyFile is the secrets-directory filename for the same key.
	GeminiAPIKeyFile = "gemini-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("secrets.unreadable", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns the first non-empty value among the environment variable
// envKey and loaded[fileKey]. The environment wins so that a .env file or an
// exported variable overrides the secrets directory.
func Resolve(envKey, fileKey string, loaded map[string]string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	return loaded[fileKey]
}

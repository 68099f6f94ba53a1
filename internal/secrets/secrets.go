// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text
// files and from .env files. In the directory, each file is one secret:
// the filename is the key name and the trimmed contents are the value.
//
// Recognized key files: semantic-scholar-api-key, openalex-email.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Key file names, and the environment variables that carry the same values.
const (
	SemanticScholarKeyFile = "semantic-scholar-api-key"
	OpenAlexEmailFile      = "openalex-email"

	SemanticScholarKeyEnv = "SEMANTIC_SCHOLAR_API_KEY"
	OpenAlexEmailEnv      = "OPENALEX_EMAIL"
)

// Credentials are the optional values the discovery sources accept.
type Credentials struct {
	SemanticScholarAPIKey string
	OpenAlexEmail         string
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
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
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// LoadEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// LoadCredentials resolves credentials from the environment first, then
// from the key files in dir.
func LoadCredentials(dir string) (Credentials, error) {
	files, err := Load(dir)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{
		SemanticScholarAPIKey: firstNonEmpty(os.Getenv(SemanticScholarKeyEnv), files[SemanticScholarKeyFile]),
		OpenAlexEmail:         firstNonEmpty(os.Getenv(OpenAlexEmailEnv), files[OpenAlexEmailFile]),
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

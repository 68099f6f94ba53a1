// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/openpaper/pkg/types"
)

const manifestName = "manifest.json"

// LoadManifest reads <root>/manifest.json. A missing manifest yields an
// empty slice; a malformed one yields an error.
func LoadManifest(root string) ([]types.ManifestEntry, error) {
	path := filepath.Join(root, manifestName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []types.ManifestEntry{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}

	var entries []types.ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if entries == nil {
		entries = []types.ManifestEntry{}
	}
	return entries, nil
}

// recordDownload replaces any entry with the same ID by entry and rewrites
// the manifest. An unreadable manifest is treated as empty.
func (d *Downloader) recordDownload(entry types.ManifestEntry) error {
	entries, err := LoadManifest(d.Root)
	if err != nil {
		d.logger().Debug("manifest unreadable, starting empty", "err", err)
		entries = nil
	}

	kept := make([]types.ManifestEntry, 0, len(entries)+1)
	for _, e := range entries {
		if e.ID != entry.ID {
			kept = append(kept, e)
		}
	}
	kept = append(kept, entry)

	return writeJSON(filepath.Join(d.Root, manifestName), kept)
}

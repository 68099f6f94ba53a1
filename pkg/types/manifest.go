// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ManifestEntry is one row of <root>/manifest.json, keyed by ID.
type ManifestEntry struct {
	Title string `json:"title" yaml:"title"`

	// Author is the first author, or "Unknown".
	Author string `json:"author" yaml:"author"`

	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// ID is the derived identifier; it also names the per-paper directory.
	ID string `json:"id" yaml:"id"`

	// Path is the artifact path relative to the storage root.
	Path string `json:"path" yaml:"path"`

	// DownloadedAt is an RFC 3339 timestamp.
	DownloadedAt string `json:"downloaded_at" yaml:"downloaded_at"`
}

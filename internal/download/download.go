// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download turns approved paper records into on-disk state under a
// storage root:
//
//	<root>/<id>/paper.pdf
//	<root>/<id>/metadata.json
//	<root>/manifest.json
//	<root>/unavailable.json
//
// The manifest and unavailable index are loaded, mutated and rewritten in
// full on every update. Callers must serialize use of a Downloader.
package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/openpaper/internal/httputil"
	"github.com/pdiddy/openpaper/internal/legality"
	"github.com/pdiddy/openpaper/pkg/types"
)

const (
	artifactName = "paper.pdf"
	metadataName = "metadata.json"
	unknownID    = "unknown_id"
)

// Downloader fetches artifacts and maintains the manifest and the
// unavailable index under Root.
type Downloader struct {
	Client    *http.Client
	Root      string
	UserAgent string

	// Delay is the pause between consecutive downloads in Batch.
	Delay time.Duration

	Logger *log.Logger

	// Now stamps manifest entries; tests replace it.
	Now func() time.Time
}

// New returns a Downloader configured from cfg.
func New(cfg types.DownloadConfig, logger *log.Logger) *Downloader {
	if logger == nil {
		logger = log.Default()
	}
	return &Downloader{
		Client:    httputil.NewClient(cfg.HTTPConfig),
		Root:      cfg.StorageRoot,
		UserAgent: cfg.UserAgent,
		Delay:     cfg.Delay,
		Logger:    logger,
		Now:       time.Now,
	}
}

// DeriveID returns the filesystem-safe identifier for p, taken from the
// first of DOI, arXiv id and source-native id that is set, or "unknown_id".
// A leading http:// or https:// is stripped and every character other than
// ASCII letters, digits, '.' and '-' becomes '_'.
func DeriveID(p types.Paper) string {
	raw := unknownID
	for _, c := range []string{p.DOI, p.ArxivID, p.SourceID()} {
		if c != "" {
			raw = c
			break
		}
	}
	raw = strings.TrimPrefix(raw, "https://")
	raw = strings.TrimPrefix(raw, "http://")

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, raw)
}

// DownloadPaper fetches the artifact for p, writes it with its metadata
// into <Root>/<id>/, records it in the manifest and returns the per-paper
// directory. The directory is created only after a 2xx response.
func (d *Downloader) DownloadPaper(ctx context.Context, p types.Paper) (string, error) {
	if !legality.IsLegallyDownloadable(p) {
		return "", ErrNotOpenAccess
	}
	if p.PDFURL == "" {
		return "", ErrMissingPDFURL
	}

	id := DeriveID(p)
	header := httputil.UserAgentHeader(d.UserAgent)
	header.Set("Accept", "application/pdf")

	resp, err := httputil.Get(ctx, d.client(), p.PDFURL, header)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", id, err)
	}
	defer resp.Body.Close()

	dir := filepath.Join(d.Root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	pdfPath := filepath.Join(dir, artifactName)
	if err := writeStream(resp.Body, pdfPath); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(dir, metadataName), p); err != nil {
		return "", err
	}

	entry := types.ManifestEntry{
		Title:        p.Title,
		Author:       p.FirstAuthor(),
		Year:         p.Year,
		ID:           id,
		Path:         filepath.Join(id, artifactName),
		DownloadedAt: d.now().Format(time.RFC3339),
	}
	if err := d.recordDownload(entry); err != nil {
		return "", err
	}

	d.logger().Info("downloaded", "id", id, "path", pdfPath)
	return dir, nil
}

func (d *Downloader) client() *http.Client {
	if d.Client == nil {
		return http.DefaultClient
	}
	return d.Client
}

func (d *Downloader) logger() *log.Logger {
	if d.Logger == nil {
		return log.Default()
	}
	return d.Logger
}

func (d *Downloader) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// writeStream copies r to destPath through a temporary file in the same
// directory, renaming it into place once the copy completes.
func writeStream(r io.Reader, destPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return &StorageError{Op: "create", Path: destPath, Err: err}
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return &StorageError{Op: "write", Path: destPath, Err: copyErr}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &StorageError{Op: "close", Path: destPath, Err: closeErr}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return &StorageError{Op: "rename", Path: destPath, Err: err}
	}
	return nil
}

// writeJSON writes v as two-space indented JSON.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/openpaper/internal/httputil"
	"github.com/pdiddy/openpaper/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake"

// newTestServer serves fake PDFs under /pdf/ and 404 for /missing/.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/pdf/"):
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testDownloader(ts *httptest.Server, root string, now time.Time) *Downloader {
	return &Downloader{
		Client:    ts.Client(),
		Root:      root,
		UserAgent: "openpaper-test/0.1",
		Logger:    log.New(io.Discard),
		Now:       func() time.Time { return now },
	}
}

func oaPaper(ts *httptest.Server) types.Paper {
	return types.Paper{
		Title:   "Attention Is All You Need",
		Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
		Year:    2017,
		DOI:     "10.48550/arXiv.1706.03762",
		ArxivID: "1706.03762",
		PDFURL:  ts.URL + "/pdf/1706.03762",
		IsOA:    true,
	}
}

func readManifest(t *testing.T, root string) []types.ManifestEntry {
	t.Helper()
	entries, err := LoadManifest(root)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return entries
}

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name  string
		paper types.Paper
		want  string
	}{
		{"doi wins", types.Paper{DOI: "10.1145/123.456", ArxivID: "2301.07041"}, "10.1145_123.456"},
		{"arxiv next", types.Paper{ArxivID: "2301.07041", SemanticScholarID: "abc"}, "2301.07041"},
		{"semantic scholar id", types.Paper{SemanticScholarID: "649def34f8be52c8b66281af98ae884c09aef38b"}, "649def34f8be52c8b66281af98ae884c09aef38b"},
		{"openalex url stripped", types.Paper{OpenAlexID: "https://openalex.org/W2741809807"}, "openalex.org_W2741809807"},
		{"http doi stripped", types.Paper{DOI: "http://doi.org/10.1/x y"}, "doi.org_10.1_x_y"},
		{"old style arxiv", types.Paper{ArxivID: "hep-th/9901001"}, "hep-th_9901001"},
		{"non ascii replaced", types.Paper{DOI: "10.1/é"}, "10.1__"},
		{"nothing set", types.Paper{Title: "x"}, "unknown_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveID(tt.paper); got != tt.want {
				t.Errorf("DeriveID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownloadPaper(t *testing.T) {
	ts := newTestServer(t)
	root := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := testDownloader(ts, root, now)
	p := oaPaper(ts)

	dir, err := d.DownloadPaper(context.Background(), p)
	if err != nil {
		t.Fatalf("DownloadPaper: %v", err)
	}
	wantDir := filepath.Join(root, "10.48550_arXiv.1706.03762")
	if dir != wantDir {
		t.Errorf("dir = %q, want %q", dir, wantDir)
	}

	data, err := os.ReadFile(filepath.Join(dir, "paper.pdf"))
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("PDF content = %q, want %q", data, fakePDFContent)
	}

	metaData, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		t.Fatalf("reading metadata: %v", err)
	}
	var meta types.Paper
	if err := json.Unmarshal(metaData, &meta); err != nil {
		t.Fatalf("parsing metadata: %v", err)
	}
	if meta.Title != p.Title || meta.DOI != p.DOI || !meta.IsOA {
		t.Errorf("metadata = %+v, want record %+v", meta, p)
	}
	if !strings.Contains(string(metaData), "\n  \"title\"") {
		t.Errorf("metadata not indented:\n%s", metaData)
	}

	entries := readManifest(t, root)
	if len(entries) != 1 {
		t.Fatalf("manifest entries = %d, want 1", len(entries))
	}
	want := types.ManifestEntry{
		Title:        p.Title,
		Author:       "Ashish Vaswani",
		Year:         2017,
		ID:           DeriveID(p),
		Path:         filepath.Join("10.48550_arXiv.1706.03762", "paper.pdf"),
		DownloadedAt: "2026-03-01T12:00:00Z",
	}
	if entries[0] != want {
		t.Errorf("manifest entry = %+v, want %+v", entries[0], want)
	}
}

func TestDownloadPaperTwiceKeepsOneEntry(t *testing.T) {
	ts := newTestServer(t)
	root := t.TempDir()
	p := oaPaper(ts)

	first := testDownloader(ts, root, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if _, err := first.DownloadPaper(context.Background(), p); err != nil {
		t.Fatalf("first download: %v", err)
	}

	other := types.Paper{Title: "Other", ArxivID: "2301.07041", PDFURL: ts.URL + "/pdf/2301.07041", IsOA: true}
	if _, err := first.DownloadPaper(context.Background(), other); err != nil {
		t.Fatalf("other download: %v", err)
	}

	second := testDownloader(ts, root, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	if _, err := second.DownloadPaper(context.Background(), p); err != nil {
		t.Fatalf("second download: %v", err)
	}

	entries := readManifest(t, root)
	if len(entries) != 2 {
		t.Fatalf("manifest entries = %d, want 2", len(entries))
	}
	var matches int
	for _, e := range entries {
		if e.ID == DeriveID(p) {
			matches++
			if e.DownloadedAt != "2026-02-02T00:00:00Z" {
				t.Errorf("DownloadedAt = %q, want second call's timestamp", e.DownloadedAt)
			}
		}
	}
	if matches != 1 {
		t.Errorf("entries for %s = %d, want 1", DeriveID(p), matches)
	}
}

func TestDownloadPaperRejections(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		paper   types.Paper
		wantErr error
	}{
		{"not open access", types.Paper{Title: "Closed", DOI: "10.1/closed", PDFURL: ts.URL + "/pdf/closed"}, ErrNotOpenAccess},
		{"missing pdf url", types.Paper{Title: "No PDF", DOI: "10.1/nopdf", IsOA: true}, ErrMissingPDFURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			d := testDownloader(ts, root, time.Now())

			_, err := d.DownloadPaper(context.Background(), tt.paper)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			assertEmptyDir(t, root)
		})
	}
}

func TestDownloadPaperNonSuccessLeavesNoDirectory(t *testing.T) {
	ts := newTestServer(t)
	root := t.TempDir()
	d := testDownloader(ts, root, time.Now())

	p := types.Paper{Title: "Gone", DOI: "10.1/gone", PDFURL: ts.URL + "/missing/gone.pdf", IsOA: true}
	_, err := d.DownloadPaper(context.Background(), p)

	var se *httputil.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *httputil.StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}
	assertEmptyDir(t, root)
}

func TestDownloadPaperUnparsableManifest(t *testing.T) {
	ts := newTestServer(t)
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "manifest.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := testDownloader(ts, root, time.Now())
	if _, err := d.DownloadPaper(context.Background(), oaPaper(ts)); err != nil {
		t.Fatalf("DownloadPaper: %v", err)
	}
	if entries := readManifest(t, root); len(entries) != 1 {
		t.Errorf("manifest entries = %d, want 1", len(entries))
	}
}

func TestLoadManifestMissing(t *testing.T) {
	entries, err := LoadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}

func TestLoadManifestMalformed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "manifest.json"), []byte("[{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(root); err == nil {
		t.Error("expected error for malformed manifest")
	}
}

func TestNewFromConfig(t *testing.T) {
	d := New(types.DownloadConfig{
		HTTPConfig:  types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "ua"},
		StorageRoot: "downloads",
		Delay:       time.Second,
	}, nil)
	if d.Root != "downloads" || d.UserAgent != "ua" || d.Delay != time.Second {
		t.Errorf("New = %+v", d)
	}
	if d.Client.Timeout != 5*time.Second {
		t.Errorf("client timeout = %v, want 5s", d.Client.Timeout)
	}
	if d.Logger == nil || d.Now == nil {
		t.Error("New left Logger or Now unset")
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	names, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	if len(names) != 0 {
		t.Errorf("%s has %d entries, want none", dir, len(names))
	}
}

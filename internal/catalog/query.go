// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/openpaper/pkg/types"
)

// List returns every catalogued paper, most recently downloaded first.
func (c *Catalog) List(ctx context.Context) ([]types.ManifestEntry, error) {
	return c.query(ctx, "", nil)
}

// Search returns papers whose title or first author contains term,
// ignoring case, most recently downloaded first. A blank term lists all.
func (c *Catalog) Search(ctx context.Context, term string) ([]types.ManifestEntry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.List(ctx)
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return c.query(ctx,
		` WHERE lower(title) LIKE ? ESCAPE '\' OR lower(author) LIKE ? ESCAPE '\'`,
		[]any{pattern, pattern})
}

func (c *Catalog) query(ctx context.Context, where string, args []any) ([]types.ManifestEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, title, author, year, path, downloaded_at FROM papers`+where+
			` ORDER BY downloaded_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []types.ManifestEntry
	for rows.Next() {
		var e types.ManifestEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Author, &e.Year, &e.Path, &e.DownloadedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ExportYAML writes every catalogued paper to w as a YAML list.
func (c *Catalog) ExportYAML(ctx context.Context, w io.Writer) error {
	entries, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []types.ManifestEntry{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/openpaper/pkg/types"
)

const (
	unavailableName = "unavailable.json"

	// GeneralSearchKey buckets records from a query with no dimension set.
	GeneralSearchKey = "General Search"

	// RecordsKey holds a node's own records once that node also has
	// narrower keys beneath it.
	RecordsKey = "_records"
)

// KeyPath returns the unavailable-index path for q: the non-blank
// affiliation, category, author and title, in that order, or
// GeneralSearchKey alone.
func KeyPath(q types.Query) []string {
	var path []string
	for _, v := range []string{q.Affiliation, q.Category, q.Author, q.Title} {
		if v = strings.TrimSpace(v); v != "" {
			path = append(path, v)
		}
	}
	if len(path) == 0 {
		return []string{GeneralSearchKey}
	}
	return path
}

type titleYear struct {
	title string
	year  int
}

// SaveUnavailable files records under q's key path in
// <Root>/unavailable.json, skipping any whose (title, year) is already in
// that leaf. It does nothing when records is empty.
//
// A key can be both a leaf and a parent: an author-only query stores an
// array under the author, while author plus title needs an object there.
// When that happens the node becomes an object and its array moves under
// RecordsKey.
func (d *Downloader) SaveUnavailable(q types.Query, records []types.Paper) error {
	if len(records) == 0 {
		return nil
	}

	path := filepath.Join(d.Root, unavailableName)
	doc := d.loadUnavailable(path)

	keys := KeyPath(q)
	node := doc
	for _, k := range keys[:len(keys)-1] {
		node = d.childObject(node, k)
	}

	leafKey := keys[len(keys)-1]
	if obj, ok := node[leafKey].(map[string]any); ok {
		node, leafKey = obj, RecordsKey
	}
	var leaf []any
	switch existing := node[leafKey].(type) {
	case nil:
	case []any:
		leaf = existing
	default:
		d.logger().Warn("unavailable index: replacing non-array leaf", "key", leafKey)
	}

	seen := make(map[titleYear]bool, len(leaf))
	for _, item := range leaf {
		if m, ok := item.(map[string]any); ok {
			seen[keyOf(m)] = true
		}
	}
	for _, p := range records {
		k := titleYear{p.Title, p.Year}
		if seen[k] {
			continue
		}
		seen[k] = true
		leaf = append(leaf, p)
	}
	node[leafKey] = leaf

	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: d.Root, Err: err}
	}
	return writeJSON(path, doc)
}

// childObject returns node[k] as an object, creating it when absent. An
// existing array is kept under RecordsKey in the new object; any other
// value is dropped.
func (d *Downloader) childObject(node map[string]any, k string) map[string]any {
	switch child := node[k].(type) {
	case map[string]any:
		return child
	case []any:
		next := map[string]any{RecordsKey: child}
		node[k] = next
		return next
	case nil:
	default:
		d.logger().Warn("unavailable index: replacing non-object node", "key", k)
	}
	next := map[string]any{}
	node[k] = next
	return next
}

// loadUnavailable returns the decoded index, or an empty object when the
// file is missing or not a JSON object.
func (d *Downloader) loadUnavailable(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger().Debug("unavailable index unreadable, starting empty", "err", err)
		}
		return map[string]any{}
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		d.logger().Debug("unavailable index unparsable, starting empty", "path", path)
		return map[string]any{}
	}
	return doc
}

func keyOf(m map[string]any) titleYear {
	var k titleYear
	k.title, _ = m["title"].(string)
	if y, ok := m["year"].(float64); ok {
		k.year = int(y)
	}
	return k
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the openpaper pipeline:
// the query a caller builds, the canonical Paper record sources produce,
// ranked matches, and durable manifest entries.
package types

import "strings"

// DefaultLimit is the per-source result count used when Query.Limit is unset.
const DefaultLimit = 10

// Query is the caller's search intent. It is built once per invocation and
// treated as read-only afterwards. Every dimension is optional, but callers
// reject a query where all of them are empty (see IsEmpty).
type Query struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`

	// Limit caps results per source; values <= 0 mean DefaultLimit.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// IsEmpty reports whether the query has no search dimension.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Title) == "" &&
		strings.TrimSpace(q.Author) == "" &&
		strings.TrimSpace(q.Affiliation) == "" &&
		strings.TrimSpace(q.Category) == ""
}

// EffectiveLimit returns Limit, or DefaultLimit when Limit is not positive.
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Match pairs a candidate with its title edit distance to the query.
// Lower is better; 0 means the titles are identical.
type Match struct {
	Paper    Paper `json:"paper" yaml:"paper"`
	Distance int   `json:"distance" yaml:"distance"`
}

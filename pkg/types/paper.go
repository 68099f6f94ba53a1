// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// UntitledPlaceholder stands in for a title the source omitted, so Paper.Title
// is never empty after normalization.
const UntitledPlaceholder = "Untitled"

// Paper is the canonical record every discovery source produces and every
// downstream stage consumes. Optional string fields are empty when the
// source does not report them; Year is 0 when unknown.
//
// IsOA and PDFURL are independent: an open-access record may still lack a
// PDF location, so anything that needs a fetchable artifact checks both.
type Paper struct {
	// Title is the paper title; never empty (see UntitledPlaceholder).
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, 0 when the source omits it.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	DOI               string `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID           string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	SemanticScholarID string `json:"semantic_scholar_id,omitempty" yaml:"semantic_scholar_id,omitempty"`
	OpenAlexID        string `json:"open_alex_id,omitempty" yaml:"open_alex_id,omitempty"`

	// Venue is the journal or conference name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Abstract is the paper abstract when the source returns plain text.
	Abstract string `json:"abstract_text,omitempty" yaml:"abstract_text,omitempty"`

	// PDFURL is the location of the open-access artifact, if known.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// IsOA reports whether the source marks the work as open access.
	IsOA bool `json:"is_oa" yaml:"is_oa"`

	// Categories is reserved; no source populates it yet.
	Categories []string `json:"categories" yaml:"categories"`
}

// FirstAuthor returns the first listed author or "Unknown".
func (p Paper) FirstAuthor() string {
	if len(p.Authors) == 0 || p.Authors[0] == "" {
		return "Unknown"
	}
	return p.Authors[0]
}

// SourceID returns the source-native identifier, preferring Semantic Scholar.
func (p Paper) SourceID() string {
	if p.SemanticScholarID != "" {
		return p.SemanticScholarID
	}
	return p.OpenAlexID
}

// NormalizeTitle returns title, or UntitledPlaceholder when title is blank.
func NormalizeTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return UntitledPlaceholder
	}
	return title
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve ranks discovered candidates against the query title by
// edit distance and prepares them for a human to choose from.
package resolve

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/pdiddy/openpaper/internal/legality"
	"github.com/pdiddy/openpaper/pkg/types"
)

// Resolve pairs each candidate with the character-level edit distance
// between queryTitle and its title, keeping those within threshold in
// input order.
//
// An empty queryTitle (author- or affiliation-driven searches) skips
// scoring: every candidate is returned with distance 0.
func Resolve(queryTitle string, candidates []types.Paper, threshold int) []types.Match {
	matches := make([]types.Match, 0, len(candidates))
	if queryTitle == "" {
		for _, p := range candidates {
			matches = append(matches, types.Match{Paper: p})
		}
		return matches
	}

	for _, p := range candidates {
		d := levenshtein.ComputeDistance(queryTitle, p.Title)
		if d <= threshold {
			matches = append(matches, types.Match{Paper: p, Distance: d})
		}
	}
	return matches
}

// Unmatched returns the candidates Resolve drops for exceeding threshold,
// in input order. An empty queryTitle drops nothing.
func Unmatched(queryTitle string, candidates []types.Paper, threshold int) []types.Paper {
	if queryTitle == "" {
		return nil
	}
	var out []types.Paper
	for _, p := range candidates {
		if levenshtein.ComputeDistance(queryTitle, p.Title) > threshold {
			out = append(out, p)
		}
	}
	return out
}

// SortBySimilarity sorts matches by ascending distance in place and
// returns them. Equal distances keep their relative order.
func SortBySimilarity(matches []types.Match) []types.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}

// Actionable keeps the matches a caller can offer for download: allowed by
// the legality policy and carrying a PDF location.
func Actionable(matches []types.Match) []types.Match {
	var out []types.Match
	for _, m := range matches {
		if legality.IsLegallyDownloadable(m.Paper) && m.Paper.PDFURL != "" {
			out = append(out, m)
		}
	}
	return out
}

// Rejected returns the candidates from matches that Actionable drops.
func Rejected(matches []types.Match) []types.Paper {
	var out []types.Paper
	for _, m := range matches {
		if !legality.IsLegallyDownloadable(m.Paper) || m.Paper.PDFURL == "" {
			out = append(out, m.Paper)
		}
	}
	return out
}

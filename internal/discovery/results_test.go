// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/openpaper/pkg/types"
)

func TestResultsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	q := types.Query{Title: "attention", Category: "cs.CL", Limit: 5}
	out := Output{
		Papers: []types.Paper{
			{Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}, Year: 2017, ArxivID: "1706.03762", IsOA: true, PDFURL: "https://arxiv.org/pdf/1706.03762"},
			{Title: "Closed", DOI: "10.1/x"},
		},
		SourceErrors: []string{"openalex: HTTP 500"},
	}

	require.NoError(t, WriteResultsFile(path, q, out))

	rf, err := ReadResultsFile(path)
	require.NoError(t, err)
	assert.Equal(t, q, rf.Query)
	assert.Equal(t, 2, rf.Summary.Total)
	assert.Equal(t, out.SourceErrors, rf.Summary.SourceErrors)
	require.Len(t, rf.Papers, 2)
	assert.Equal(t, "1706.03762", rf.Papers[0].ArxivID)
	assert.True(t, rf.Papers[0].IsOA)
	assert.False(t, rf.Summary.Timestamp.IsZero())
}

func TestReadResultsFileErrors(t *testing.T) {
	_, err := ReadResultsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFormatCSL(t *testing.T) {
	papers := []types.Paper{
		{Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani", "Plato"}, Year: 2017, Venue: "NeurIPS", DOI: "10.5555/3295222"},
		{Title: "Preprint", ArxivID: "2301.07041"},
	}
	var buf bytes.Buffer
	require.NoError(t, FormatCSL(papers, &buf))
	out := buf.String()

	for _, want := range []string{
		"id: 10.5555/3295222",
		"family: Vaswani",
		"given: Ashish",
		"literal: Plato",
		"container-title: NeurIPS",
		"DOI: 10.5555/3295222",
		"2301.07041",
	} {
		assert.True(t, strings.Contains(out, want), "CSL output missing %q:\n%s", want, out)
	}
}

func TestToCSLItemNoYear(t *testing.T) {
	item := toCSLItem(types.Paper{Title: "Untitled", SemanticScholarID: "abc"})
	assert.Nil(t, item.Issued)
	assert.Equal(t, "abc", item.ID)
}

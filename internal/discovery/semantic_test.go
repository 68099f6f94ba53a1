// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/openpaper/internal/httputil"
	"github.com/pdiddy/openpaper/pkg/types"
)

func withSemanticServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := semanticAPIBase
	semanticAPIBase = ts.URL
	t.Cleanup(func() {
		semanticAPIBase = old
		ts.Close()
	})
	return ts
}

// --- Query building ---

func TestBuildSemanticQuery(t *testing.T) {
	tests := []struct {
		name  string
		query types.Query
		want  string
	}{
		{"title only", types.Query{Title: "Attention"}, "Attention"},
		{"author only", types.Query{Author: "Vaswani"}, "Vaswani"},
		{"affiliation only", types.Query{Affiliation: "Google"}, "Google"},
		{"all fields", types.Query{Title: "Attention", Author: "Vaswani", Affiliation: "Google"}, "Attention Vaswani Google"},
		{"trims fields", types.Query{Title: "  Attention ", Author: " Vaswani"}, "Attention Vaswani"},
		{"category ignored", types.Query{Category: "cs.CL"}, ""},
		{"empty", types.Query{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildSemanticQuery(tt.query); got != tt.want {
				t.Errorf("buildSemanticQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Request construction ---

func TestSemanticSearchRequest(t *testing.T) {
	var captured *http.Request
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	})

	s := &SemanticScholarSource{Client: ts.Client(), APIKey: "key-1", UserAgent: "test/0.1"}
	if _, err := s.Search(context.Background(), types.Query{Title: "attention", Limit: 7}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := captured.URL.Query()
	if got := q.Get("query"); got != "attention" {
		t.Errorf("query = %q", got)
	}
	if got := q.Get("limit"); got != "7" {
		t.Errorf("limit = %q, want 7", got)
	}
	for _, f := range []string{"title", "authors", "year", "externalIds", "isOpenAccess", "openAccessPdf"} {
		if !strings.Contains(q.Get("fields"), f) {
			t.Errorf("fields %q missing %q", q.Get("fields"), f)
		}
	}
	if got := captured.Header.Get("x-api-key"); got != "key-1" {
		t.Errorf("x-api-key = %q", got)
	}
	if got := captured.Header.Get("User-Agent"); got != "test/0.1" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestSemanticSearchNoAPIKeyHeader(t *testing.T) {
	var captured *http.Request
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"data":[]}`)
	})

	s := &SemanticScholarSource{Client: ts.Client()}
	if _, err := s.Search(context.Background(), types.Query{Title: "x"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, ok := captured.Header["X-Api-Key"]; ok {
		t.Error("x-api-key header should be absent")
	}
	if got := captured.URL.Query().Get("limit"); got != "10" {
		t.Errorf("default limit = %q, want 10", got)
	}
}

// --- Response mapping ---

func TestSemanticSearchMapsFields(t *testing.T) {
	withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total":2,"data":[
			{"paperId":"abc","title":"Attention Is All You Need","year":2017,"venue":"NeurIPS",
			 "abstract":"We propose...","authors":[{"authorId":"1","name":"Ashish Vaswani"},{"name":"Noam Shazeer"}],
			 "externalIds":{"DOI":"10.5555/3295222","ArXiv":"1706.03762"},
			 "isOpenAccess":true,"openAccessPdf":{"url":"https://arxiv.org/pdf/1706.03762"}},
			{"paperId":"def","title":null,"year":null,"authors":[],"externalIds":null,
			 "isOpenAccess":null,"openAccessPdf":null}
		]}`)
	})

	s := &SemanticScholarSource{Client: http.DefaultClient}
	papers, err := s.Search(context.Background(), types.Query{Title: "attention"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len = %d, want 2", len(papers))
	}

	p := papers[0]
	if p.Title != "Attention Is All You Need" || p.Year != 2017 || p.Venue != "NeurIPS" {
		t.Errorf("basic fields = %+v", p)
	}
	if p.DOI != "10.5555/3295222" || p.ArxivID != "1706.03762" || p.SemanticScholarID != "abc" {
		t.Errorf("identifiers = doi %q arxiv %q s2 %q", p.DOI, p.ArxivID, p.SemanticScholarID)
	}
	if !p.IsOA || p.PDFURL != "https://arxiv.org/pdf/1706.03762" {
		t.Errorf("oa = %v pdf = %q", p.IsOA, p.PDFURL)
	}
	if len(p.Authors) != 2 || p.Authors[1] != "Noam Shazeer" {
		t.Errorf("authors = %v", p.Authors)
	}
	if p.OpenAlexID != "" {
		t.Errorf("OpenAlexID should be empty, got %q", p.OpenAlexID)
	}

	// Absent fields map to zero values rather than failing.
	q := papers[1]
	if q.Title != types.UntitledPlaceholder {
		t.Errorf("missing title = %q, want placeholder", q.Title)
	}
	if q.IsOA || q.PDFURL != "" || q.DOI != "" || q.Year != 0 {
		t.Errorf("absent fields not zeroed: %+v", q)
	}
	if q.Authors == nil || q.Categories == nil {
		t.Error("Authors and Categories should be non-nil empty slices")
	}
}

// --- Error cases ---

func TestSemanticSearchErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		s := &SemanticScholarSource{Client: http.DefaultClient}
		_, err := s.Search(context.Background(), types.Query{Title: "x"})
		var se *httputil.StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
			t.Errorf("err = %v, want StatusError 429", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"data":[`)
		})
		s := &SemanticScholarSource{Client: http.DefaultClient}
		_, err := s.Search(context.Background(), types.Query{Title: "x"})
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("err = %v, want DecodeError", err)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		s := &SemanticScholarSource{Client: http.DefaultClient}
		if _, err := s.Search(context.Background(), types.Query{Category: "cs.CL"}); err == nil {
			t.Error("expected error for query with no free-text fields")
		}
	})
}

// --- Rate limiting ---

func TestSemanticSearchWaitsOnLimiter(t *testing.T) {
	var calls int32
	withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"data":[]}`)
	})

	s := NewSemanticScholarSource(http.DefaultClient, types.DiscoveryConfig{
		SemanticScholarRate:  20,
		SemanticScholarBurst: 1,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := s.Search(context.Background(), types.Query{Title: "x"}); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 throttled searches took %v, want >= 80ms", elapsed)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestSemanticSearchLimiterCancelled(t *testing.T) {
	s := NewSemanticScholarSource(http.DefaultClient, types.DiscoveryConfig{SemanticScholarRate: 0.001})
	// Drain the only token.
	_ = s.Limiter.Wait(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Search(ctx, types.Query{Title: "x"}); err == nil {
		t.Error("expected limiter error on cancelled context")
	}
}

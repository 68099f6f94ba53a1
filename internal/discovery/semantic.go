// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/openpaper/internal/httputil"
	"github.com/pdiddy/openpaper/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,authors,year,venue,abstract,externalIds,isOpenAccess,openAccessPdf"

// SemanticScholarSource queries the Semantic Scholar graph API. Each request
// first takes a token from Limiter.
type SemanticScholarSource struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	Limiter   *httputil.Limiter
}

// NewSemanticScholarSource returns a source with its own limiter built from
// cfg.SemanticScholarRate and cfg.SemanticScholarBurst.
func NewSemanticScholarSource(client *http.Client, cfg types.DiscoveryConfig) *SemanticScholarSource {
	return &SemanticScholarSource{
		Client:    client,
		APIKey:    cfg.SemanticScholarAPIKey,
		UserAgent: cfg.UserAgent,
		Limiter:   httputil.NewLimiter(cfg.SemanticScholarRate, cfg.SemanticScholarBurst),
	}
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return "semantic_scholar" }

// Search queries Semantic Scholar with title, author and affiliation as
// free text.
func (s *SemanticScholarSource) Search(ctx context.Context, q types.Query) ([]types.Paper, error) {
	text := buildSemanticQuery(q)
	if text == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"query":  {text},
		"fields": {semanticFields},
		"limit":  {strconv.Itoa(q.EffectiveLimit())},
	}
	header := httputil.UserAgentHeader(s.UserAgent)
	if s.APIKey != "" {
		header.Set("x-api-key", s.APIKey)
	}

	resp, err := get(ctx, s.Client, semanticAPIBase+"?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &DecodeError{Source: s.Name(), Err: err}
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, sp := range sr.Data {
		papers = append(papers, sp.toPaper())
	}
	return papers, nil
}

// buildSemanticQuery space-joins the non-empty title, author and
// affiliation fields.
func buildSemanticQuery(q types.Query) string {
	var parts []string
	for _, f := range []string{q.Title, q.Author, q.Affiliation} {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

func (sp semanticPaper) toPaper() types.Paper {
	p := newPaper()
	p.Title = types.NormalizeTitle(sp.Title)
	p.Year = sp.Year
	p.Venue = sp.Venue
	p.Abstract = sp.Abstract
	p.SemanticScholarID = sp.PaperID
	p.IsOA = sp.IsOpenAccess
	for _, a := range sp.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	if sp.ExternalIDs != nil {
		p.DOI = sp.ExternalIDs.DOI
		p.ArxivID = sp.ExternalIDs.ArXiv
	}
	if sp.OpenAccessPDF != nil {
		p.PDFURL = sp.OpenAccessPDF.URL
	}
	return p
}

// Semantic Scholar API JSON structures. JSON null leaves a field at its
// zero value.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string                 `json:"paperId"`
	Title         string                 `json:"title"`
	Year          int                    `json:"year"`
	Venue         string                 `json:"venue"`
	Abstract      string                 `json:"abstract"`
	Authors       []semanticAuthor       `json:"authors"`
	ExternalIDs   *semanticExternalIDs   `json:"externalIds"`
	IsOpenAccess  bool                   `json:"isOpenAccess"`
	OpenAccessPDF *semanticOpenAccessPDF `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticOpenAccessPDF struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

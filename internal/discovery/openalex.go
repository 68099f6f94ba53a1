// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/openpaper/internal/httputil"
	"github.com/pdiddy/openpaper/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// openAlexAffiliationFilter is the filter key used for affiliation queries.
const openAlexAffiliationFilter = "raw_affiliation_strings.search"

// OpenAlexSource queries the OpenAlex works API. It does not rebuild
// abstracts from the inverted index and never reports an arXiv ID.
type OpenAlexSource struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email     string
	UserAgent string
}

// Name returns the source identifier.
func (s *OpenAlexSource) Name() string { return "openalex" }

// Search queries OpenAlex by affiliation filter, title/author search, or
// both.
func (s *OpenAlexSource) Search(ctx context.Context, q types.Query) ([]types.Paper, error) {
	qs := buildOpenAlexQuery(q)
	if qs == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}
	qs += fmt.Sprintf("&per_page=%d", q.EffectiveLimit())
	if s.Email != "" {
		qs += "&mailto=" + url.QueryEscape(s.Email)
	}

	resp, err := get(ctx, s.Client, openAlexSearchBase+"?"+qs, httputil.UserAgentHeader(s.UserAgent))
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, &DecodeError{Source: s.Name(), Err: err}
	}

	papers := make([]types.Paper, 0, len(oar.Results))
	for _, w := range oar.Results {
		papers = append(papers, w.toPaper())
	}
	return papers, nil
}

// buildOpenAlexQuery returns the raw query string: a filter clause for the
// affiliation (value escaped, key and colon literal), a search clause for
// title and author, or both joined with "&".
func buildOpenAlexQuery(q types.Query) string {
	var clauses []string
	if aff := strings.TrimSpace(q.Affiliation); aff != "" {
		clauses = append(clauses, "filter="+openAlexAffiliationFilter+":"+url.QueryEscape(aff))
	}

	var terms []string
	for _, f := range []string{q.Title, q.Author} {
		if f = strings.TrimSpace(f); f != "" {
			terms = append(terms, f)
		}
	}
	if len(terms) > 0 {
		clauses = append(clauses, "search="+url.QueryEscape(strings.Join(terms, " ")))
	}
	return strings.Join(clauses, "&")
}

func (w openAlexWork) toPaper() types.Paper {
	p := newPaper()
	title := w.Title
	if title == "" {
		title = w.DisplayName
	}
	p.Title = types.NormalizeTitle(title)
	p.Year = w.PublicationYear
	p.OpenAlexID = w.ID
	// Strip the https://doi.org/ prefix to get the bare DOI.
	p.DOI = strings.TrimPrefix(w.DOI, "https://doi.org/")
	p.IsOA = w.OpenAccess.IsOA

	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			p.Authors = append(p.Authors, a.Author.DisplayName)
		}
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		p.Venue = w.PrimaryLocation.Source.DisplayName
	}
	switch {
	case w.BestOALocation != nil && w.BestOALocation.PDFURL != "":
		p.PDFURL = w.BestOALocation.PDFURL
	case w.PrimaryLocation != nil && w.PrimaryLocation.PDFURL != "":
		p.PDFURL = w.PrimaryLocation.PDFURL
	}
	return p
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DisplayName     string               `json:"display_name"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	OpenAccess      openAlexOpenAccess   `json:"open_access"`
	PrimaryLocation *openAlexLocation    `json:"primary_location"`
	BestOALocation  *openAlexLocation    `json:"best_oa_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

type openAlexLocation struct {
	PDFURL     string             `json:"pdf_url"`
	LandingURL string             `json:"landing_page_url"`
	Source     *openAlexHostVenue `json:"source"`
}

type openAlexHostVenue struct {
	DisplayName string `json:"display_name"`
}

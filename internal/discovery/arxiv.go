// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/openpaper/internal/httputil"
	"github.com/pdiddy/openpaper/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API. Every record it returns is open
// access.
type ArxivSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search issues one request and streams the Atom feed through
// parseArxivFeed. A malformed feed yields the entries completed before the
// error rather than an error.
func (s *ArxivSource) Search(ctx context.Context, q types.Query) ([]types.Paper, error) {
	sq := buildArxivQuery(q)
	if sq == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	params := url.Values{
		"search_query": {sq},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(q.EffectiveLimit())},
	}

	resp, err := get(ctx, s.Client, arxivAPIBase+"?"+params.Encode(), httputil.UserAgentHeader(s.UserAgent))
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	return parseArxivFeed(resp.Body), nil
}

// buildArxivQuery joins one quoted clause per present field with AND, in
// the order title, author, category, affiliation. arXiv has no affiliation
// field, so that clause searches all fields.
func buildArxivQuery(q types.Query) string {
	var clauses []string
	add := func(prefix, value string) {
		if value = strings.TrimSpace(value); value != "" {
			clauses = append(clauses, fmt.Sprintf("%s:%q", prefix, value))
		}
	}
	add("ti", q.Title)
	add("au", q.Author)
	add("cat", q.Category)
	add("all", q.Affiliation)
	return strings.Join(clauses, " AND ")
}

// arxivState says which accumulator the next text token belongs to.
type arxivState int

const (
	stateNone arxivState = iota
	stateTitle
	stateSummary
	statePublished
	stateAuthorName
	stateID
)

// stateFor maps an element name inside an entry to its capture state.
func stateFor(local string) arxivState {
	switch local {
	case "title":
		return stateTitle
	case "summary":
		return stateSummary
	case "published":
		return statePublished
	case "name":
		return stateAuthorName
	case "id":
		return stateID
	default:
		return stateNone
	}
}

type arxivLink struct {
	href  string
	title string
	typ   string
}

// arxivEntry accumulates one <entry> while it is being streamed.
type arxivEntry struct {
	title     string
	summary   string
	published string
	id        string
	author    string
	authors   []string
	links     []arxivLink
}

func (e *arxivEntry) capture(state arxivState, text string) {
	switch state {
	case stateTitle:
		e.title += text
	case stateSummary:
		e.summary += text
	case statePublished:
		e.published += text
	case stateAuthorName:
		e.author += text
	case stateID:
		e.id += text
	}
}

func (e *arxivEntry) endAuthorName() {
	if name := strings.TrimSpace(e.author); name != "" {
		e.authors = append(e.authors, name)
	}
	e.author = ""
}

func (e *arxivEntry) paper() types.Paper {
	p := newPaper()
	p.Title = types.NormalizeTitle(collapseSpace(e.title))
	p.Abstract = strings.TrimSpace(e.summary)
	p.Authors = append(p.Authors, e.authors...)
	p.ArxivID = extractArxivID(strings.TrimSpace(e.id))
	p.IsOA = true

	if y, err := strconv.Atoi(strings.SplitN(strings.TrimSpace(e.published), "-", 2)[0]); err == nil {
		p.Year = y
	}
	for _, l := range e.links {
		if l.title == "pdf" || l.typ == "application/pdf" {
			p.PDFURL = l.href
			break
		}
	}
	return p
}

// parseArxivFeed streams an Atom feed and emits one Paper per closed
// <entry>. Per-entry state resets on every <entry> start. Parsing stops at
// the first malformed token; entries already closed are kept.
func parseArxivFeed(r io.Reader) []types.Paper {
	dec := xml.NewDecoder(r)

	var (
		papers  []types.Paper
		entry   arxivEntry
		inEntry bool
		state   arxivState
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			// io.EOF ends a well-formed feed; anything else truncates it.
			return papers
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "entry":
				entry = arxivEntry{}
				inEntry = true
				state = stateNone
			case !inEntry:
			case t.Name.Local == "link":
				entry.links = append(entry.links, linkFromAttrs(t.Attr))
			default:
				state = stateFor(t.Name.Local)
			}
		case xml.CharData:
			if inEntry {
				entry.capture(state, string(t))
			}
		case xml.EndElement:
			if !inEntry {
				continue
			}
			switch {
			case t.Name.Local == "entry":
				papers = append(papers, entry.paper())
				inEntry = false
			case state == stateAuthorName:
				entry.endAuthorName()
			}
			state = stateNone
		}
	}
}

func linkFromAttrs(attrs []xml.Attr) arxivLink {
	var l arxivLink
	for _, a := range attrs {
		switch a.Name.Local {
		case "href":
			l.href = a.Value
		case "title":
			l.title = a.Value
		case "type":
			l.typ = a.Value
		}
	}
	return l
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

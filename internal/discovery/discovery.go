// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discovery fans a query out to the bibliographic sources
// (Semantic Scholar, arXiv, OpenAlex), normalizes their responses into
// types.Paper records, and joins them in a fixed source order.
package discovery

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/openpaper/internal/httputil"
	"github.com/pdiddy/openpaper/pkg/types"
)

// Source searches a single bibliographic service. Implementations never
// panic on transport or parse failures; they return an error instead.
type Source interface {
	Name() string
	Search(ctx context.Context, q types.Query) ([]types.Paper, error)
}

// DecodeError reports a response body that could not be parsed.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Output holds the joined records of one discovery run and the failures
// that were excluded from it.
type Output struct {
	Papers       []types.Paper
	SourceErrors []string
}

// Orchestrator runs the fixed set of sources concurrently. The set and its
// order are fixed at construction: Semantic Scholar, arXiv, OpenAlex.
type Orchestrator struct {
	sources []Source
	logger  *log.Logger
}

// NewOrchestrator returns an orchestrator over the bibliographic-graph,
// preprint-repository and open-index sources, in that priority order.
// A nil logger falls back to log.Default().
func NewOrchestrator(graph, preprint, index Source, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		sources: []Source{graph, preprint, index},
		logger:  logger,
	}
}

// NewDefaultOrchestrator wires the three production sources from cfg,
// sharing one HTTP client.
func NewDefaultOrchestrator(cfg types.DiscoveryConfig, logger *log.Logger) *Orchestrator {
	client := httputil.NewClient(cfg.HTTPConfig)
	return NewOrchestrator(
		NewSemanticScholarSource(client, cfg),
		&ArxivSource{Client: client, UserAgent: cfg.UserAgent},
		&OpenAlexSource{Client: client, Email: cfg.OpenAlexEmail, UserAgent: cfg.UserAgent},
		logger,
	)
}

// SearchAll returns the records of every source that succeeded,
// concatenated in source priority order. It never fails as a whole.
func (o *Orchestrator) SearchAll(ctx context.Context, q types.Query) []types.Paper {
	return o.Run(ctx, q).Papers
}

// Run is SearchAll that also reports which sources failed.
//
// All sources are awaited; a failing or slow source does not cancel the
// others. Output order depends only on which sources succeeded.
func (o *Orchestrator) Run(ctx context.Context, q types.Query) Output {
	results := make([][]types.Paper, len(o.sources))
	errs := make([]error, len(o.sources))

	var wg sync.WaitGroup
	for i, s := range o.sources {
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()
			results[i], errs[i] = s.Search(ctx, q)
		}(i, s)
	}
	wg.Wait()

	var out Output
	for i, s := range o.sources {
		if errs[i] != nil {
			o.logger.Warn("source failed", "source", s.Name(), "err", errs[i])
			out.SourceErrors = append(out.SourceErrors, fmt.Sprintf("%s: %v", s.Name(), errs[i]))
			continue
		}
		o.logger.Debug("source done", "source", s.Name(), "count", len(results[i]))
		out.Papers = append(out.Papers, results[i]...)
	}
	return out
}

// Sources returns the source names in priority order.
func (o *Orchestrator) Sources() []string {
	names := make([]string, len(o.sources))
	for i, s := range o.sources {
		names[i] = s.Name()
	}
	return names
}

func newPaper() types.Paper {
	return types.Paper{Authors: []string{}, Categories: []string{}}
}

// Shared request helper: every adapter issues one GET and decodes the body.
func get(ctx context.Context, client *http.Client, rawURL string, header http.Header) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	return httputil.Get(ctx, client, rawURL, header)
}

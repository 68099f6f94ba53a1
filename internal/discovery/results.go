// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/openpaper/pkg/types"
)

// ResultsFile is the on-disk form of a discovery run. A saved run can be
// resolved and fetched later without re-querying the sources.
type ResultsFile struct {
	Query   types.Query    `yaml:"query"`
	Papers  []types.Paper  `yaml:"papers"`
	Summary ResultsSummary `yaml:"summary"`
}

// ResultsSummary stores result statistics and a timestamp.
type ResultsSummary struct {
	Total        int       `yaml:"total"`
	SourceErrors []string  `yaml:"source_errors,omitempty"`
	Timestamp    time.Time `yaml:"timestamp"`
}

// WriteResultsFile saves a query and its discovery output to a YAML file.
func WriteResultsFile(path string, q types.Query, out Output) error {
	rf := ResultsFile{
		Query:  q,
		Papers: out.Papers,
		Summary: ResultsSummary{
			Total:        len(out.Papers),
			SourceErrors: out.SourceErrors,
			Timestamp:    time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling results file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultsFile loads a previously saved results file from disk.
func ReadResultsFile(path string) (*ResultsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	var rf ResultsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing results file: %w", err)
	}
	return &rf, nil
}

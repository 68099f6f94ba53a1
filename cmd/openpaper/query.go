package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/openpaper/internal/discovery"
	"github.com/pdiddy/openpaper/pkg/types"
)

// addQueryFlags registers the query dimensions shared by search and fetch.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "paper title to match")
	cmd.Flags().String("author", "", "author name")
	cmd.Flags().String("category", "", "subject category (arXiv category, e.g. cs.LG)")
	cmd.Flags().String("affiliation", "", "author affiliation (institution)")
	cmd.Flags().Int("limit", 0, "maximum results per source (default 10)")
	cmd.Flags().Int("threshold", 0, "maximum title edit distance (default 5)")
}

// bindQueryFlags points the shared viper keys at cmd's flags. It runs per
// command because search and fetch each own a flag set.
func bindQueryFlags(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlag("search.limit", cmd.Flags().Lookup("limit")); err != nil {
		return err
	}
	return viper.BindPFlag("resolve.threshold", cmd.Flags().Lookup("threshold"))
}

func queryFromFlags(cmd *cobra.Command, v *viper.Viper) types.Query {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	category, _ := cmd.Flags().GetString("category")
	affiliation, _ := cmd.Flags().GetString("affiliation")

	return types.Query{
		Title:       strings.TrimSpace(title),
		Author:      strings.TrimSpace(author),
		Category:    strings.TrimSpace(category),
		Affiliation: strings.TrimSpace(affiliation),
		Limit:       v.GetInt("search.limit"),
	}
}

// threshold returns the edit-distance cutoff; negative values are rejected.
func threshold(v *viper.Viper) (int, error) {
	t := v.GetInt("resolve.threshold")
	if t < 0 {
		return 0, fmt.Errorf("threshold must be >= 0, got %d", t)
	}
	return t, nil
}

// discover runs every source for q, showing a spinner when stdout is a
// terminal.
func discover(ctx context.Context, q types.Query) discovery.Output {
	orch := discovery.NewDefaultOrchestrator(discoveryConfig(viper.GetViper()), logger)
	logger.Debug("searching", "sources", orch.Sources(), "title", q.Title, "author", q.Author,
		"category", q.Category, "affiliation", q.Affiliation, "limit", q.EffectiveLimit())

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return orch.Run(ctx, q)
	}

	var (
		out discovery.Output
		ran bool
	)
	err := spinner.New().
		Title("Searching " + strings.Join(orch.Sources(), ", ") + "...").
		Action(func() {
			out = orch.Run(ctx, q)
			ran = true
		}).
		Run()
	if err != nil {
		logger.Debug("spinner failed", "err", err)
	}
	if !ran {
		out = orch.Run(ctx, q)
	}
	return out
}

func requireQuery(q types.Query) error {
	if q.IsEmpty() {
		return fmt.Errorf("provide at least one of --title, --author, --category, --affiliation")
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/openpaper/internal/discovery"
	"github.com/pdiddy/openpaper/internal/resolve"
	"github.com/pdiddy/openpaper/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search all sources and rank candidates by title",
	Long: `Search queries Semantic Scholar, arXiv and OpenAlex concurrently and ranks
the combined candidates by edit distance to --title. Only open-access
candidates with a PDF location are shown unless --all is given.

Use --save to keep the raw results for a later "openpaper fetch --from-file".`,
	PreRunE: bindQueryFlags,
	RunE:    runSearch,
}

func init() {
	addQueryFlags(searchCmd)
	searchCmd.Flags().Bool("all", false, "include candidates that cannot be downloaded")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL YAML")
	searchCmd.Flags().String("save", "", "write raw results to this YAML file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	q := queryFromFlags(cmd, v)
	if err := requireQuery(q); err != nil {
		return err
	}
	th, err := threshold(v)
	if err != nil {
		return err
	}

	out := discover(cmd.Context(), q)

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := discovery.WriteResultsFile(save, q, out); err != nil {
			return err
		}
		logger.Info("saved results", "path", save, "count", len(out.Papers))
	}

	matches := resolve.SortBySimilarity(resolve.Resolve(q.Title, out.Papers, th))
	if all, _ := cmd.Flags().GetBool("all"); !all {
		matches = resolve.Actionable(matches)
	}

	w := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	switch {
	case asJSON && asCSL:
		return fmt.Errorf("--json and --csl are mutually exclusive")
	case asJSON:
		return resolve.FormatJSON(matches, w)
	case asCSL:
		return discovery.FormatCSL(papersOf(matches), w)
	default:
		resolve.FormatTable(matches, w)
		return nil
	}
}

func papersOf(matches []types.Match) []types.Paper {
	out := make([]types.Paper, len(matches))
	for i, m := range matches {
		out[i] = m.Paper
	}
	return out
}

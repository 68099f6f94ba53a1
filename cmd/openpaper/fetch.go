package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/openpaper/internal/discovery"
	"github.com/pdiddy/openpaper/internal/download"
	"github.com/pdiddy/openpaper/internal/resolve"
	"github.com/pdiddy/openpaper/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Search, pick candidates, and download them",
	Long: `Fetch runs a search (or loads one saved with "search --save"), lists the
open-access candidates that have a PDF location, and downloads the ones you
select, one at a time.

Selection is a single number, a comma-separated list, "all" for the top
--top candidates, or "q" to quit. Pass it with --select, or answer the prompt.

Candidates that were found but not downloadable, and downloads that failed,
are recorded in unavailable.json under the storage root.`,
	PreRunE: bindQueryFlags,
	RunE:    runFetch,
}

func init() {
	addQueryFlags(fetchCmd)
	fetchCmd.Flags().String("from-file", "", "use results saved by \"search --save\" instead of querying")
	fetchCmd.Flags().String("select", "", "selection to download without prompting (e.g. \"1,3\" or \"all\")")
	fetchCmd.Flags().Int("top", 0, "how many candidates \"all\" selects (default every candidate)")
	fetchCmd.Flags().Duration("delay", 0, "pause between consecutive downloads")
	viper.BindPFlag("download.delay", fetchCmd.Flags().Lookup("delay"))

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	th, err := threshold(v)
	if err != nil {
		return err
	}

	q, papers, err := loadCandidates(cmd, v)
	if err != nil {
		return err
	}

	matches := resolve.SortBySimilarity(resolve.Resolve(q.Title, papers, th))
	candidates := resolve.Actionable(matches)
	// Everything discovered but not offered is recorded as unavailable.
	rejected := append(resolve.Rejected(matches), resolve.Unmatched(q.Title, papers, th)...)

	d := download.New(downloadConfig(v), logger)
	w := cmd.OutOrStdout()
	resolve.FormatTable(candidates, w)

	if len(candidates) == 0 {
		saveUnavailable(d, q, rejected)
		return nil
	}

	topN, _ := cmd.Flags().GetInt("top")
	sel, err := chooseCandidates(cmd, len(candidates), topN)
	if err != nil {
		return err
	}
	if sel.Quit {
		fmt.Fprintln(w, "No papers selected.")
		saveUnavailable(d, q, rejected)
		return nil
	}

	chosen := make([]types.Paper, len(sel.Indices))
	for i, idx := range sel.Indices {
		chosen[i] = candidates[idx].Paper
	}

	result := download.Batch(cmd.Context(), d, chosen, w)

	if result.Downloaded > 0 {
		if err := syncCatalog(cmd.Context(), d.Root); err != nil {
			logger.Warn("catalog sync failed", "err", err)
		}
	}
	saveUnavailable(d, q, append(rejected, result.FailedPapers...))
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed to download", result.Failed)
	}
	return nil
}

// loadCandidates returns the query and discovered records, either from a
// saved results file or from a live search.
func loadCandidates(cmd *cobra.Command, v *viper.Viper) (types.Query, []types.Paper, error) {
	if path, _ := cmd.Flags().GetString("from-file"); path != "" {
		rf, err := discovery.ReadResultsFile(path)
		if err != nil {
			return types.Query{}, nil, err
		}
		logger.Debug("loaded saved results", "path", path, "count", len(rf.Papers))
		return rf.Query, rf.Papers, nil
	}

	q := queryFromFlags(cmd, v)
	if err := requireQuery(q); err != nil {
		return types.Query{}, nil, err
	}
	return q, discover(cmd.Context(), q).Papers, nil
}

// chooseCandidates reads the selection from --select, or prompts when
// stdin is a terminal.
func chooseCandidates(cmd *cobra.Command, n, topN int) (resolve.Selection, error) {
	if cmd.Flags().Changed("select") {
		input, _ := cmd.Flags().GetString("select")
		return resolve.ParseSelection(input, n, topN)
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return resolve.Selection{}, fmt.Errorf("stdin is not a terminal; pass --select")
	}
	return promptSelection(n, topN)
}

func promptSelection(n, topN int) (resolve.Selection, error) {
	top := n
	if topN > 0 && topN < n {
		top = topN
	}

	var input string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Select papers to download").
				Description(fmt.Sprintf("1-%d, comma-separated, \"all\" for the top %d, or \"q\" to quit", n, top)).
				Placeholder("1").
				Value(&input).
				Validate(func(s string) error {
					_, err := resolve.ParseSelection(s, n, topN)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		return resolve.Selection{}, fmt.Errorf("prompt cancelled: %w", err)
	}
	return resolve.ParseSelection(input, n, topN)
}

// saveUnavailable records the papers that were not downloaded. Failures
// are logged, not returned.
func saveUnavailable(d *download.Downloader, q types.Query, records []types.Paper) {
	if len(records) == 0 {
		return
	}
	if err := d.SaveUnavailable(q, records); err != nil {
		logger.Warn("recording unavailable papers failed", "err", err)
		return
	}
	logger.Info("recorded unavailable papers", "count", len(records), "key", download.KeyPath(q))
}

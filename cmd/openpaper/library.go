package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/openpaper/internal/catalog"
	"github.com/pdiddy/openpaper/internal/download"
	"github.com/pdiddy/openpaper/internal/resolve"
	"github.com/pdiddy/openpaper/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List downloaded papers",
	Long: `Library lists the papers recorded in the manifest, newest first. The
listing is served from a SQLite catalog (catalog.db) under the storage root,
refreshed from manifest.json on every run.`,
	RunE: runLibrary,
}

func init() {
	libraryCmd.Flags().String("search", "", "only show papers whose title or first author contains this text")
	libraryCmd.Flags().Bool("yaml", false, "output the whole library as YAML")

	rootCmd.AddCommand(libraryCmd)
}

func runLibrary(cmd *cobra.Command, args []string) error {
	root := viper.GetString("storage_root")
	ctx := cmd.Context()

	c, err := openSynced(ctx, root)
	if err != nil {
		return err
	}
	defer c.Close()

	w := cmd.OutOrStdout()
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return c.ExportYAML(ctx, w)
	}

	term, _ := cmd.Flags().GetString("search")
	entries, err := c.Search(ctx, term)
	if err != nil {
		return err
	}
	printLibrary(entries, w)
	return nil
}

// openSynced opens the catalog under root and refreshes it from the manifest.
func openSynced(ctx context.Context, root string) (*catalog.Catalog, error) {
	entries, err := download.LoadManifest(root)
	if err != nil {
		return nil, err
	}
	c, err := catalog.Open(root)
	if err != nil {
		return nil, err
	}
	if err := c.Sync(ctx, entries); err != nil {
		c.Close()
		return nil, err
	}
	logger.Debug("catalog synced", "path", c.Path(), "entries", len(entries))
	return c, nil
}

func syncCatalog(ctx context.Context, root string) error {
	c, err := openSynced(ctx, root)
	if err != nil {
		return err
	}
	return c.Close()
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func printLibrary(entries []types.ManifestEntry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No papers downloaded yet.")
		return
	}
	header := fmt.Sprintf("%-20s  %-50s  %-20s  %-4s  %s", "Downloaded", "Title", "Author", "Year", "Path")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		year := ""
		if e.Year > 0 {
			year = fmt.Sprintf("%d", e.Year)
		}
		fmt.Fprintf(w, "%-20s  %-50s  %-20s  %-4s  %s\n",
			e.DownloadedAt, resolve.Truncate(e.Title, 50), resolve.Truncate(e.Author, 20), year, e.Path)
	}
	fmt.Fprintf(w, "\n%d papers\n", len(entries))
}

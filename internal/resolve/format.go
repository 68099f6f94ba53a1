package resolve

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/openpaper/pkg/types"
)

// FormatTable writes matches as a numbered, human-readable table to w.
// Ranks are 1-based to line up with ParseSelection.
func FormatTable(matches []types.Match, w io.Writer) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matching open-access papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-4s  %-60s  %-20s  %-4s  %s\n",
		"Rank", "Dist", "Title", "Authors", "Year", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, m := range matches {
		year := ""
		if m.Paper.Year > 0 {
			year = fmt.Sprintf("%d", m.Paper.Year)
		}
		fmt.Fprintf(w, "%-4d  %-4d  %-60s  %-20s  %-4s  %s\n",
			i+1, m.Distance, Truncate(m.Paper.Title, 60), formatAuthors(m.Paper.Authors), year, displayID(m.Paper))
	}
	fmt.Fprintf(w, "\n%d candidates\n", len(matches))
}

// FormatJSON writes matches as indented JSON to w.
func FormatJSON(matches []types.Match, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(matches)
}

func displayID(p types.Paper) string {
	switch {
	case p.DOI != "":
		return "doi:" + p.DOI
	case p.ArxivID != "":
		return "arXiv:" + p.ArxivID
	default:
		return p.SourceID()
	}
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return Truncate(authors[0], 20)
	default:
		return Truncate(authors[0], 14) + " et al."
	}
}

// Truncate shortens s to max runes, ending in "..." when it cuts.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

package resolve

import (
	"fmt"
	"strconv"
	"strings"
)

// Selection is a parsed human choice over a numbered candidate list.
type Selection struct {
	// Indices are zero-based positions in the list, in the order given.
	Indices []int
	// Quit is set when the user asked to stop without downloading.
	Quit bool
}

// ParseSelection parses input against a list of n candidates. Accepted
// forms: a single 1-based index, comma-separated indices, "all" (the first
// topN candidates, or all n when topN <= 0), and "q"/"quit". Repeated
// indices are collapsed to their first occurrence.
func ParseSelection(input string, n, topN int) (Selection, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "":
		return Selection{}, fmt.Errorf("empty selection")
	case "q", "quit":
		return Selection{Quit: true}, nil
	case "all":
		count := n
		if topN > 0 && topN < n {
			count = topN
		}
		sel := Selection{Indices: make([]int, count)}
		for i := range sel.Indices {
			sel.Indices[i] = i
		}
		return sel, nil
	}

	var sel Selection
	seen := make(map[int]bool)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		k, err := strconv.Atoi(tok)
		if err != nil {
			return Selection{}, fmt.Errorf("invalid selection %q", tok)
		}
		if k < 1 || k > n {
			return Selection{}, fmt.Errorf("selection %d out of range 1-%d", k, n)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		sel.Indices = append(sel.Indices, k-1)
	}
	return sel, nil
}

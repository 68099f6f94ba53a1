// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/openpaper/pkg/types"
)

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Failed     int

	// Dirs are the per-paper directories of successful downloads.
	Dirs []string

	// FailedPapers are the records that could not be downloaded.
	FailedPapers []types.Paper
}

// Total returns the number of records processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Failed
}

// HasFailures reports whether any record failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Batch downloads records one at a time, printing per-item status to w. It
// continues after individual failures and waits d.Delay between
// consecutive downloads.
func Batch(ctx context.Context, d *Downloader, records []types.Paper, w io.Writer) BatchResult {
	var result BatchResult
	for i, p := range records {
		if i > 0 && d.Delay > 0 {
			if err := sleep(ctx, d.Delay); err != nil {
				for _, rest := range records[i:] {
					fmt.Fprintf(w, "failed:     %s (%v)\n", rest.Title, err)
					result.Failed++
					result.FailedPapers = append(result.FailedPapers, rest)
				}
				break
			}
		}

		dir, err := d.DownloadPaper(ctx, p)
		if err != nil {
			fmt.Fprintf(w, "failed:     %s (%v)\n", p.Title, err)
			result.Failed++
			result.FailedPapers = append(result.FailedPapers, p)
			continue
		}
		fmt.Fprintf(w, "downloaded: %s -> %s\n", p.Title, dir)
		result.Downloaded++
		result.Dirs = append(result.Dirs, dir)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d failed (total: %d)\n",
		result.Downloaded, result.Failed, result.Total())
	return result
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

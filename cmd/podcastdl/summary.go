package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"podcastdl/internal/download"
)

// printSummary writes the end-of-run report. Terminals get a rendered table;
// pipes and files get plain line output.
func printSummary(w io.Writer, summary *download.Summary) {
	fmt.Fprintf(w, "\nPodcast: %s\n", summary.PodcastTitle)
	fmt.Fprintf(w, "Directory: %s\n", summary.OutputDir)

	if stdoutIsTerminal() {
		rows := [][]string{
			{"Downloaded", strconv.Itoa(summary.Downloaded)},
			{"Skipped", strconv.Itoa(summary.Skipped)},
			{"Failed", strconv.Itoa(summary.Failed)},
		}
		fmt.Fprintln(w, renderTable([]string{"Result", "Episodes"}, rows, []columnAlignment{alignLeft, alignRight}))
	} else {
		fmt.Fprintf(w, "Downloaded: %d  Skipped: %d  Failed: %d\n",
			summary.Downloaded, summary.Skipped, summary.Failed)
	}

	for _, failure := range summary.FailedOutcomes() {
		fmt.Fprintf(w, "failed: %s (%s)\n", failure.Episode.Title, failure.Reason)
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

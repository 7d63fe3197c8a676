package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podcastdl/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent download runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.PodcastTitle,
					strconv.Itoa(run.Downloaded),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Failed),
				})
			}
			headers := []string{"Run", "Started", "Podcast", "Downloaded", "Skipped", "Failed"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to display")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-episode outcomes for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			episodes, err := store.RunEpisodes(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("list run episodes: %w", err)
			}
			if len(episodes) == 0 {
				return fmt.Errorf("no episodes recorded for run %s", args[0])
			}

			rows := make([][]string, 0, len(episodes))
			for _, episode := range episodes {
				rows = append(rows, []string{
					strconv.Itoa(episode.Position),
					episode.Title,
					episode.Status,
					episode.Detail,
				})
			}
			headers := []string{"#", "Episode", "Status", "Detail"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
}

func openHistory(ctx *commandContext) (*ledger.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errors.New("run history is disabled in configuration")
	}
	store, err := ledger.Open(cfg.HistoryDBPath())
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return store, nil
}

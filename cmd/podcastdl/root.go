package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var outputFlag string
	var concurrencyFlag int

	ctx := newCommandContext(&configFlag, &outputFlag, &concurrencyFlag)

	rootCmd := &cobra.Command{
		Use:           "podcastdl <feed-url>",
		Short:         "Download every episode of a podcast RSS feed",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, ctx, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory that receives downloaded episodes")
	rootCmd.Flags().IntVarP(&concurrencyFlag, "concurrency", "c", 0, "Number of simultaneous downloads")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

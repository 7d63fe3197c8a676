package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"podcastdl/internal/download"
	"podcastdl/internal/feed"
	"podcastdl/internal/ledger"
	"podcastdl/internal/logging"
	"podcastdl/internal/preflight"
	"podcastdl/internal/textutil"
)

// lockFileName guards the output directory against concurrent runs.
const lockFileName = ".podcastdl.lock"

func runDownload(cmd *cobra.Command, cctx *commandContext, feedURL string) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}

	if failures := preflight.Failed(preflight.RunAll(cfg, feedURL)); len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "preflight %s: %s\n", failure.Name, failure.Detail)
		}
		return errors.New("preflight checks failed")
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	parsed, err := feed.NewClient(cfg, logger).Fetch(ctx, feedURL)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}

	outputDir := cfg.Paths.OutputDir
	if cfg.OutputDirIsDefault() {
		outputDir = filepath.Join(outputDir, textutil.SanitizeFileName(parsed.Title))
	}
	if abs, absErr := filepath.Abs(outputDir); absErr == nil {
		outputDir = abs
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %q: %w", outputDir, err)
	}

	lock := flock.New(filepath.Join(outputDir, lockFileName))
	held, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output directory lock: %w", err)
	}
	if !held {
		return fmt.Errorf("output directory %s is already in use by another run", outputDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	worker := download.NewWorker(cfg, logger)
	orchestrator := download.NewOrchestrator(worker, cfg.Download.Concurrency, logger)
	summary, err := orchestrator.Run(ctx, parsed, outputDir)
	if err != nil {
		return fmt.Errorf("run downloads: %w", err)
	}

	if cfg.History.Enabled {
		run := ledger.Run{
			ID:           runID,
			FeedURL:      feedURL,
			PodcastTitle: summary.PodcastTitle,
			OutputDir:    summary.OutputDir,
			Downloaded:   summary.Downloaded,
			Skipped:      summary.Skipped,
			Failed:       summary.Failed,
			StartedAt:    startedAt,
			FinishedAt:   time.Now().UTC(),
		}
		recordHistory(cfg.HistoryDBPath(), run, summary.Outcomes, logger)
	}

	printSummary(cmd.OutOrStdout(), summary)

	if summary.Failed > 0 {
		if ctx.Err() != nil {
			return context.Canceled
		}
		return fmt.Errorf("%d of %d episodes failed", summary.Failed, len(summary.Outcomes))
	}
	return nil
}

// recordHistory persists the run outcome. History is informational, so a
// recording failure is logged and the run result stands.
func recordHistory(dbPath string, run ledger.Run, outcomes []download.Outcome, logger *slog.Logger) {
	store, err := ledger.Open(dbPath)
	if err != nil {
		logger.Warn("open history database", logging.Error(err))
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.RecordRun(ctx, run, outcomes); err != nil {
		logger.Warn("record run history", logging.Error(err))
	}
}

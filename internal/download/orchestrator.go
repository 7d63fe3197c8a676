package download

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"podcastdl/internal/feed"
	"podcastdl/internal/logging"
	"podcastdl/internal/naming"
)

// Runner executes one episode download. Satisfied by *Worker; tests inject
// instrumented implementations.
type Runner interface {
	Run(ctx context.Context, episode feed.Episode, paths naming.TargetPaths) Outcome
}

// Orchestrator drives a full run: it dispatches episodes to a bounded pool
// of workers, collects one outcome per episode, and assembles the summary.
type Orchestrator struct {
	runner      Runner
	concurrency int
	logger      *slog.Logger
}

// NewOrchestrator constructs an orchestrator over the given runner. A
// concurrency below 1 is raised to 1.
func NewOrchestrator(runner Runner, concurrency int, logger *slog.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		runner:      runner,
		concurrency: concurrency,
		logger:      logger.With(logging.String(logging.FieldComponent, "orchestrator")),
	}
}

// Run downloads every episode of parsed into dir and returns the summary.
//
// Dispatch follows feed order (oldest first); completion order is
// unconstrained, but the summary always reports outcomes in feed order. A
// failing episode never stops the run. When ctx is cancelled, no new work is
// dispatched, in-flight workers are cancelled through the same context, and
// every undispatched episode is recorded as Failed with a cancel reason.
func (o *Orchestrator) Run(ctx context.Context, parsed *feed.Feed, dir string) (*Summary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	episodes := parsed.Episodes
	outcomes := make([]Outcome, len(episodes))
	slots := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	o.logger.Info("starting run",
		logging.String("feed", parsed.Title),
		logging.Int("episodes", len(episodes)),
		logging.Int("concurrency", o.concurrency),
	)

dispatch:
	for i, episode := range episodes {
		if ctx.Err() != nil {
			markCancelled(outcomes, episodes, i, dir)
			break dispatch
		}
		select {
		case <-ctx.Done():
			markCancelled(outcomes, episodes, i, dir)
			break dispatch
		case slots <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, episode feed.Episode) {
			defer wg.Done()
			defer func() { <-slots }()
			outcomes[i] = o.runner.Run(ctx, episode, naming.Resolve(episode, dir))
		}(i, episode)
	}
	wg.Wait()

	summary := newSummary(parsed.Title, dir, outcomes)
	o.logger.Info("run finished",
		logging.String("feed", parsed.Title),
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

// markCancelled records a cancelled outcome for every episode from index on.
// Each still gets exactly one outcome so the summary stays complete.
func markCancelled(outcomes []Outcome, episodes []feed.Episode, from int, dir string) {
	for i := from; i < len(episodes); i++ {
		outcomes[i] = Outcome{
			Episode: episodes[i],
			Paths:   naming.Resolve(episodes[i], dir),
			Status:  StatusFailed,
			Reason:  ReasonCancelled,
			Err:     context.Canceled,
		}
	}
}

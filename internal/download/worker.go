package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"podcastdl/internal/config"
	"podcastdl/internal/feed"
	"podcastdl/internal/fileutil"
	"podcastdl/internal/logging"
	"podcastdl/internal/naming"
)

// errTransferStalled is the watchdog cause when a media stream goes idle for
// longer than the request timeout.
var errTransferStalled = errors.New("no data received within the request timeout")

// Worker downloads one episode at a time: completion check, streaming
// transfer to a temporary file, metadata sidecar, atomic rename.
type Worker struct {
	client    HTTPDoer
	checker   *Checker
	userAgent string
	attempts  int
	// timeout bounds connect, header wait, and the gap between body reads.
	// It is not a whole-transfer budget: a slow stream that keeps
	// delivering bytes may run as long as it needs.
	timeout time.Duration
	logger  *slog.Logger
}

// NewWorker constructs a worker from application config.
func NewWorker(cfg *config.Config, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := 30 * time.Second
	userAgent := ""
	attempts := 1
	if cfg != nil {
		timeout = time.Duration(cfg.Download.RequestTimeout) * time.Second
		userAgent = cfg.Download.UserAgent
		attempts = cfg.Download.RetryAttempts
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
	}
	client := &http.Client{Transport: transport}
	return &Worker{
		client:    client,
		checker:   NewChecker(client, userAgent),
		userAgent: userAgent,
		attempts:  attempts,
		timeout:   timeout,
		logger:    logger.With(logging.String(logging.FieldComponent, "worker")),
	}
}

// NewWorkerWithClient constructs a worker around an explicit HTTP doer.
// Used by tests to inject failures and count requests. The stall watchdog is
// disabled; the injected client governs its own timeouts.
func NewWorkerWithClient(client HTTPDoer, userAgent string, attempts int, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	if attempts < 1 {
		attempts = 1
	}
	return &Worker{
		client:    client,
		checker:   NewChecker(client, userAgent),
		userAgent: userAgent,
		attempts:  attempts,
		logger:    logger.With(logging.String(logging.FieldComponent, "worker")),
	}
}

// Run downloads one episode into its target paths and reports the outcome.
// Errors never escape: every failure mode maps to a Failed outcome.
func (w *Worker) Run(ctx context.Context, episode feed.Episode, paths naming.TargetPaths) Outcome {
	outcome := Outcome{Episode: episode, Paths: paths}

	if w.checker.Complete(ctx, episode.MediaURL, paths.MediaPath) {
		w.logger.Info("episode already complete, skipping",
			logging.String(logging.FieldEpisode, episode.Title),
		)
		outcome.Status = StatusSkipped
		outcome.Reason = ReasonAlreadyExists
		return outcome
	}

	var (
		written int64
		err     error
	)
	for attempt := 1; attempt <= w.attempts; attempt++ {
		written, err = w.transfer(ctx, episode, paths)
		if err == nil {
			break
		}
		if ctx.Err() != nil || !retryable(err) || attempt == w.attempts {
			break
		}
		w.logger.Warn("download attempt failed, retrying",
			logging.String(logging.FieldEpisode, episode.Title),
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
	}
	if err != nil {
		return w.fail(outcome, err)
	}

	w.logger.Info("episode downloaded",
		logging.String(logging.FieldEpisode, episode.Title),
		logging.Int64("bytes", written),
	)
	outcome.Status = StatusDownloaded
	outcome.Bytes = written
	return outcome
}

func (w *Worker) fail(outcome Outcome, err error) Outcome {
	outcome.Status = StatusFailed
	outcome.Err = err
	outcome.Reason = failureReason(err)
	w.logger.Error("episode download failed",
		logging.String(logging.FieldEpisode, outcome.Episode.Title),
		logging.Error(err),
	)
	return outcome
}

// transfer streams the media URL to the partial path, writes the sidecar,
// and renames the media into place. The sidecar lands before the media file
// publishes, so a complete media file always has its sidecar beside it. On
// any error the partial file is removed so a later run never mistakes it for
// a finished download.
//
// The stall watchdog cancels the request when no bytes arrive for the
// configured timeout; every read pushes the deadline out again.
func (w *Worker) transfer(ctx context.Context, episode feed.Episode, paths naming.TargetPaths) (written int64, err error) {
	reqCtx := ctx
	var watchdog *time.Timer
	if w.timeout > 0 {
		var cancel context.CancelCauseFunc
		reqCtx, cancel = context.WithCancelCause(ctx)
		defer cancel(nil)
		watchdog = time.AfterFunc(w.timeout, func() { cancel(errTransferStalled) })
		defer watchdog.Stop()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, episode.MediaURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build media request: %w", err)
	}
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch media: %w", stalledCause(reqCtx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &httpStatusError{code: resp.StatusCode, status: resp.Status}
	}

	file, err := os.Create(paths.PartialPath)
	if err != nil {
		return 0, fmt.Errorf("create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			file.Close()
			_ = os.Remove(paths.PartialPath)
		}
	}()

	progress := &progressWriter{
		total:    resp.ContentLength,
		sampler:  logging.NewProgressSampler(0),
		logger:   w.logger,
		episode:  episode.Title,
		watchdog: watchdog,
		idle:     w.timeout,
	}

	written, err = io.Copy(io.MultiWriter(file, progress), resp.Body)
	if err != nil {
		return written, fmt.Errorf("stream media: %w", stalledCause(reqCtx, err))
	}
	if err = file.Close(); err != nil {
		return written, fmt.Errorf("close temporary file: %w", err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		err = fmt.Errorf("size mismatch: wrote %d bytes, expected %d", written, resp.ContentLength)
		return written, err
	}

	if err = writeSidecar(paths.MetadataPath, episode); err != nil {
		err = fmt.Errorf("write metadata sidecar: %w", err)
		return written, err
	}
	if err = fileutil.MoveFile(paths.PartialPath, paths.MediaPath); err != nil {
		return written, err
	}
	return written, nil
}

// stalledCause surfaces the watchdog cause hidden behind the transport's
// generic cancellation error.
func stalledCause(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); errors.Is(cause, errTransferStalled) {
		return cause
	}
	return err
}

func writeSidecar(path string, episode feed.Episode) error {
	var b strings.Builder
	b.WriteString("Title: " + episode.Title + "\n")
	b.WriteString("Published: " + naming.DatePrefix(episode.PublishedAt) + "\n")
	if episode.Description != "" {
		b.WriteString("\n" + episode.Description + "\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

type httpStatusError struct {
	code   int
	status string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("server returned %s", e.status)
}

// retryable reports whether a second attempt could plausibly succeed.
// Client errors (4xx) and cancellations will not heal on retry.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.code >= http.StatusInternalServerError
	}
	return true
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return ReasonCancelled
	case isTimeout(err):
		return ReasonTimeout
	default:
		return err.Error()
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errTransferStalled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// progressWriter logs byte progress through a sampler so large downloads emit
// a handful of lines instead of one per chunk, and feeds the stall watchdog:
// every write pushes the idle deadline out by the request timeout.
type progressWriter struct {
	total    int64
	written  int64
	sampler  *logging.ProgressSampler
	logger   *slog.Logger
	episode  string
	watchdog *time.Timer
	idle     time.Duration
}

func (p *progressWriter) Write(data []byte) (int, error) {
	if p.watchdog != nil {
		p.watchdog.Reset(p.idle)
	}
	p.written += int64(len(data))
	percent := -1.0
	if p.total > 0 {
		percent = float64(p.written) / float64(p.total) * 100
	}
	if p.sampler.ShouldLog(percent, p.episode) {
		attrs := []logging.Attr{
			logging.String(logging.FieldEpisode, p.episode),
			logging.Int64("bytes", p.written),
		}
		if percent >= 0 {
			attrs = append(attrs, logging.Float64("percent", percent))
		}
		p.logger.Debug("download progress", logging.Args(attrs...)...)
	}
	return len(data), nil
}

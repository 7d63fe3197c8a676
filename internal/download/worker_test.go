package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"podcastdl/internal/config"
	"podcastdl/internal/download"
	"podcastdl/internal/feed"
	"podcastdl/internal/naming"
)

const mediaBody = "FAKE-AUDIO-CONTENT"

func testEpisode(mediaURL string) feed.Episode {
	published, _ := time.Parse(time.DateOnly, "2024-02-10")
	return feed.Episode{
		Title:       "Test Episode",
		PublishedAt: published,
		MediaURL:    mediaURL,
		Description: "Notes about the test episode.",
	}
}

// countingTransport counts requests per method on the way to the inner doer.
type countingTransport struct {
	inner http.RoundTripper
	gets  atomic.Int64
	heads atomic.Int64
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch req.Method {
	case http.MethodGet:
		c.gets.Add(1)
	case http.MethodHead:
		c.heads.Add(1)
	}
	return c.inner.RoundTrip(req)
}

func mediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mediaBody))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestWorkerDownloadsMediaAndSidecar(t *testing.T) {
	server := mediaServer(t)
	dir := t.TempDir()
	episode := testEpisode(server.URL + "/ep.mp3")
	paths := naming.Resolve(episode, dir)

	worker := download.NewWorkerWithClient(server.Client(), "", 1, nil)
	outcome := worker.Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusDownloaded {
		t.Fatalf("expected downloaded, got %s (%v)", outcome.Status, outcome.Err)
	}
	if outcome.Bytes != int64(len(mediaBody)) {
		t.Fatalf("unexpected byte count: %d", outcome.Bytes)
	}

	media, err := os.ReadFile(paths.MediaPath)
	if err != nil {
		t.Fatalf("read media: %v", err)
	}
	if string(media) != mediaBody {
		t.Fatalf("media content mismatch: %q", media)
	}

	sidecar, err := os.ReadFile(paths.MetadataPath)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	text := string(sidecar)
	if !strings.Contains(text, "Title: Test Episode") {
		t.Fatalf("sidecar missing title: %q", text)
	}
	if !strings.Contains(text, "Published: 2024-02-10") {
		t.Fatalf("sidecar missing date: %q", text)
	}
	if !strings.Contains(text, "Notes about the test episode.") {
		t.Fatalf("sidecar missing description: %q", text)
	}

	if _, err := os.Stat(paths.PartialPath); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind: %v", err)
	}
}

func TestWorkerSkipsCompleteFileWithoutNetworkCall(t *testing.T) {
	server := mediaServer(t)
	dir := t.TempDir()
	episode := testEpisode(server.URL + "/ep.mp3")
	paths := naming.Resolve(episode, dir)

	if err := os.WriteFile(paths.MediaPath, []byte(mediaBody), 0o644); err != nil {
		t.Fatal(err)
	}

	counting := &countingTransport{inner: http.DefaultTransport}
	client := &http.Client{Transport: counting}
	worker := download.NewWorkerWithClient(client, "", 1, nil)

	outcome := worker.Run(context.Background(), episode, paths)
	if outcome.Status != download.StatusSkipped {
		t.Fatalf("expected skipped, got %s", outcome.Status)
	}
	if outcome.Reason != download.ReasonAlreadyExists {
		t.Fatalf("unexpected reason: %q", outcome.Reason)
	}
	if counting.gets.Load() != 0 {
		t.Fatalf("expected zero GET requests, got %d", counting.gets.Load())
	}
}

func TestWorkerReportsHTTPStatusFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	episode := testEpisode(server.URL + "/gone.mp3")
	paths := naming.Resolve(episode, dir)

	worker := download.NewWorkerWithClient(server.Client(), "", 1, nil)
	outcome := worker.Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Reason, "404") {
		t.Fatalf("reason should carry status: %q", outcome.Reason)
	}
	if _, err := os.Stat(paths.MediaPath); !os.IsNotExist(err) {
		t.Fatal("no media file should exist after a failed download")
	}
}

func TestWorkerRemovesPartialOnTruncatedStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("only a little"))
		// Hijack and drop the connection so the client sees a short body.
		if hj, ok := w.(http.Hijacker); ok {
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	episode := testEpisode(server.URL + "/cut.mp3")
	paths := naming.Resolve(episode, dir)

	worker := download.NewWorkerWithClient(server.Client(), "", 1, nil)
	outcome := worker.Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if _, err := os.Stat(paths.MediaPath); !os.IsNotExist(err) {
		t.Fatal("final media path must never hold partial content")
	}
	if _, err := os.Stat(paths.PartialPath); !os.IsNotExist(err) {
		t.Fatal("partial file must be cleaned up on failure")
	}
}

func TestWorkerRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			http.Error(w, "nope", http.StatusMethodNotAllowed)
			return
		}
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(mediaBody))
	}))
	defer server.Close()

	dir := t.TempDir()
	episode := testEpisode(server.URL + "/flaky.mp3")
	paths := naming.Resolve(episode, dir)

	worker := download.NewWorkerWithClient(server.Client(), "", 2, nil)
	outcome := worker.Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusDownloaded {
		t.Fatalf("expected retry to succeed, got %s (%v)", outcome.Status, outcome.Err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 GET attempts, got %d", calls.Load())
	}
}

func TestWorkerDoesNotRetryClientErrors(t *testing.T) {
	var gets atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	episode := testEpisode(server.URL + "/gone.mp3")
	paths := naming.Resolve(episode, dir)

	worker := download.NewWorkerWithClient(server.Client(), "", 3, nil)
	outcome := worker.Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if gets.Load() != 1 {
		t.Fatalf("404 must not be retried, got %d attempts", gets.Load())
	}
}

func TestWorkerRedownloadsSizeMismatch(t *testing.T) {
	server := mediaServer(t)
	dir := t.TempDir()
	episode := testEpisode(server.URL + "/ep.mp3")
	paths := naming.Resolve(episode, dir)

	// Leave a truncated file from a hypothetical earlier run.
	if err := os.WriteFile(paths.MediaPath, []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}

	worker := download.NewWorkerWithClient(server.Client(), "", 1, nil)
	outcome := worker.Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusDownloaded {
		t.Fatalf("expected re-download, got %s (%v)", outcome.Status, outcome.Err)
	}
	media, err := os.ReadFile(paths.MediaPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(media) != mediaBody {
		t.Fatalf("expected refreshed content, got %q", media)
	}
}

// shortTimeoutWorker builds a production worker with a one-second request
// timeout, the shortest the config allows.
func shortTimeoutWorker() *download.Worker {
	cfg := config.Default()
	cfg.Download.RequestTimeout = 1
	return download.NewWorker(&cfg, nil)
}

func TestWorkerAllowsSlowButActiveStream(t *testing.T) {
	const chunks = 15
	chunk := strings.Repeat("a", 64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer must support flushing")
			return
		}
		// Trickle the body for longer than the request timeout. The
		// stream is never idle, so the transfer must finish.
		for i := 0; i < chunks; i++ {
			_, _ = w.Write([]byte(chunk))
			flusher.Flush()
			time.Sleep(100 * time.Millisecond)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	episode := testEpisode(server.URL + "/slow.mp3")
	paths := naming.Resolve(episode, dir)

	outcome := shortTimeoutWorker().Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusDownloaded {
		t.Fatalf("slow but active stream must finish, got %s (%v)", outcome.Status, outcome.Err)
	}
	if outcome.Bytes != int64(chunks*len(chunk)) {
		t.Fatalf("unexpected byte count: %d", outcome.Bytes)
	}
}

func TestWorkerFailsStalledStream(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("first bytes"))
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		// Hold the connection open without sending anything further.
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	dir := t.TempDir()
	episode := testEpisode(server.URL + "/stalled.mp3")
	paths := naming.Resolve(episode, dir)

	outcome := shortTimeoutWorker().Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if outcome.Reason != download.ReasonTimeout {
		t.Fatalf("expected timeout reason, got %q (%v)", outcome.Reason, outcome.Err)
	}
	if _, err := os.Stat(paths.PartialPath); !os.IsNotExist(err) {
		t.Fatal("partial file must be cleaned up after a stalled stream")
	}
	if _, err := os.Stat(paths.MediaPath); !os.IsNotExist(err) {
		t.Fatal("no media file should exist after a stalled stream")
	}
}

func TestWorkerDoesNotPublishMediaWithoutSidecar(t *testing.T) {
	server := mediaServer(t)
	dir := t.TempDir()
	episode := testEpisode(server.URL + "/ep.mp3")
	paths := naming.Resolve(episode, dir)
	// Point the sidecar somewhere unwritable so it fails after the stream.
	paths.MetadataPath = filepath.Join(dir, "missing", "ep.txt")

	worker := download.NewWorkerWithClient(server.Client(), "", 1, nil)
	outcome := worker.Run(context.Background(), episode, paths)

	if outcome.Status != download.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if _, err := os.Stat(paths.MediaPath); !os.IsNotExist(err) {
		t.Fatal("media must not be published when the sidecar cannot be written")
	}
	if _, err := os.Stat(paths.PartialPath); !os.IsNotExist(err) {
		t.Fatal("partial file must be cleaned up")
	}
}

func TestWorkerCancelledContext(t *testing.T) {
	server := mediaServer(t)
	dir := t.TempDir()
	episode := testEpisode(server.URL + "/ep.mp3")
	paths := naming.Resolve(episode, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	worker := download.NewWorkerWithClient(server.Client(), "", 1, nil)
	outcome := worker.Run(ctx, episode, paths)

	if outcome.Status != download.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if outcome.Reason != download.ReasonCancelled {
		t.Fatalf("expected cancel reason, got %q", outcome.Reason)
	}
}

package main

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"podcastdl/internal/testsupport"
)

func testEpisodes() []testsupport.FeedEpisode {
	return []testsupport.FeedEpisode{
		{Title: "Episode One", PubDate: "Mon, 01 Jan 2024 08:00:00 +0000", Path: "/media/ep1.mp3", Body: "audio one"},
		{Title: "Episode Two", PubDate: "Mon, 08 Jan 2024 08:00:00 +0000", Path: "/media/ep2.mp3", Body: "audio two"},
		{Title: "Episode Three", PubDate: "Mon, 15 Jan 2024 08:00:00 +0000", Path: "/media/ep3.mp3", Body: "audio three"},
	}
}

func TestDownloadRunWritesEpisodesAndSidecars(t *testing.T) {
	env := setupCLITestEnv(t)
	server := testsupport.FeedServer(t, "Test Show", testEpisodes())

	out, _, err := runCLI(t, env.configPath, server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Podcast: Test Show")
	requireContains(t, out, "Downloaded: 3  Skipped: 0  Failed: 0")

	for _, name := range []string{
		"2024-01-01 - Episode One.mp3",
		"2024-01-08 - Episode Two.mp3",
		"2024-01-15 - Episode Three.mp3",
	} {
		requireFile(t, filepath.Join(env.outputDir, name))
		sidecar := name[:len(name)-len(".mp3")] + ".txt"
		requireFile(t, filepath.Join(env.outputDir, sidecar))
	}
}

func TestDownloadRunSecondPassSkipsEverything(t *testing.T) {
	env := setupCLITestEnv(t)
	server := testsupport.FeedServer(t, "Test Show", testEpisodes())

	if _, _, err := runCLI(t, env.configPath, server.URL+"/feed.xml"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out, _, err := runCLI(t, env.configPath, server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "Downloaded: 0  Skipped: 3  Failed: 0")
}

func TestDownloadRunReportsFailuresAndExitsNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	episodes := testEpisodes()
	episodes[1].Status = http.StatusNotFound
	server := testsupport.FeedServer(t, "Test Show", episodes)

	out, _, err := runCLI(t, env.configPath, server.URL+"/feed.xml")
	if err == nil {
		t.Fatal("expected an error when an episode fails")
	}
	requireContains(t, err.Error(), "1 of 3 episodes failed")
	requireContains(t, out, "Downloaded: 2  Skipped: 0  Failed: 1")
	requireContains(t, out, "failed: Episode Two")

	requireFile(t, filepath.Join(env.outputDir, "2024-01-01 - Episode One.mp3"))
	requireFile(t, filepath.Join(env.outputDir, "2024-01-15 - Episode Three.mp3"))
	if _, statErr := os.Stat(filepath.Join(env.outputDir, "2024-01-08 - Episode Two.mp3")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no media file for the failed episode, got %v", statErr)
	}
}

func TestDownloadRunDefaultDirectoryUsesPodcastTitle(t *testing.T) {
	base := t.TempDir()
	testsupport.Chdir(t, base)

	configPath := filepath.Join(base, "config.toml")
	body := "[paths]\nstate_dir = \"" + filepath.Join(base, "state") + "\"\n\n[history]\nenabled = false\n\n[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	server := testsupport.FeedServer(t, "My Great Show", testEpisodes()[:1])
	if _, _, err := runCLI(t, configPath, server.URL+"/feed.xml"); err != nil {
		t.Fatalf("run: %v", err)
	}

	requireFile(t, filepath.Join(base, "podcast_episodes", "My Great Show", "2024-01-01 - Episode One.mp3"))
}

func TestDownloadRunOutputFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	override := filepath.Join(env.baseDir, "elsewhere")
	server := testsupport.FeedServer(t, "Test Show", testEpisodes()[:1])

	if _, _, err := runCLI(t, env.configPath, "--output", override, server.URL+"/feed.xml"); err != nil {
		t.Fatalf("run: %v", err)
	}

	// The override is used verbatim, without a podcast title subdirectory.
	requireFile(t, filepath.Join(override, "2024-01-01 - Episode One.mp3"))
}

func TestDownloadRunRejectsInvalidFeedURL(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := runCLI(t, env.configPath, "ftp://example.com/feed.xml")
	if err == nil {
		t.Fatal("expected preflight failure for non-http URL")
	}
	requireContains(t, stderr, "preflight")
}

func TestDownloadRunRejectsInvalidConcurrency(t *testing.T) {
	env := setupCLITestEnv(t)
	server := testsupport.FeedServer(t, "Test Show", testEpisodes()[:1])

	if _, _, err := runCLI(t, env.configPath, "--concurrency", "99", server.URL+"/feed.xml"); err == nil {
		t.Fatal("expected config validation failure for out-of-range concurrency")
	}
}

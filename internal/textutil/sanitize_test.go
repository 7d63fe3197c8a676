package textutil_test

import (
	"testing"

	"podcastdl/internal/textutil"
)

func TestSanitizeFileNameStripsUnsafeCharacters(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Episode One", "Episode One"},
		{"slashes", "AC/DC Special", "AC-DC Special"},
		{"colon", "Part 2: The Return", "Part 2- The Return"},
		{"removed chars", `What? "Really" <yes> |maybe|`, "What Really yes maybe"},
		{"whitespace run", "Too   many\tspaces", "Too many spaces"},
		{"leading trailing", "  .hidden.  ", "hidden"},
		{"empty", "", "untitled"},
		{"only unsafe", `?"<>|`, "untitled"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileNameIsDeterministic(t *testing.T) {
	in := "Ep. 42: Ünïcode / Teaser?"
	first := textutil.SanitizeFileName(in)
	for i := 0; i < 3; i++ {
		if got := textutil.SanitizeFileName(in); got != first {
			t.Fatalf("sanitize not deterministic: %q vs %q", got, first)
		}
	}
}

package query

import (
	"strings"
	"testing"
)

func TestBuildPrompt_JoinsContexts(t *testing.T) {
	prompt := buildPrompt("what changed?", []string{"first chunk", "second chunk"})

	if !strings.Contains(prompt, "first chunk"+contextSeparator+"second chunk") {
		t.Errorf("contexts not joined with separator:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Question: what changed?") {
		t.Errorf("question missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, fallbackAnswer) {
		t.Errorf("fallback instruction missing:\n%s", prompt)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under limit", "short", 10, "short"},
		{"at limit", "exact", 5, "exact"},
		{"over limit", "abcdefgh", 5, "abcde..."},
		{"no limit", "anything at all", 0, "anything at all"},
		{"multibyte", "héllo wörld", 5, "héllo..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncate(tc.in, tc.max); got != tc.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}

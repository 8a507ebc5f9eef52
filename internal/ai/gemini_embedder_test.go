package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"talentscan/internal/types"
)

func TestBuildEmbedText(t *testing.T) {
	posting := types.JobPosting{
		Title:       "Data Analyst",
		Description: "Own the reporting stack.",
	}

	got := BuildEmbedText(posting, 0)
	if !strings.Contains(got, "Job Title: Data Analyst") {
		t.Errorf("embed text missing title section: %q", got)
	}
	if !strings.Contains(got, "Job Description: Own the reporting stack.") {
		t.Errorf("embed text missing description section: %q", got)
	}

	capped := BuildEmbedText(posting, 20)
	if len(capped) > 20 {
		t.Errorf("expected at most 20 bytes, got %d", len(capped))
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     string
	}{
		{
			name:     "no limit",
			text:     "hello",
			maxChars: 0,
			want:     "hello",
		},
		{
			name:     "under limit",
			text:     "hello",
			maxChars: 10,
			want:     "hello",
		},
		{
			name:     "ascii cut",
			text:     "hello world",
			maxChars: 5,
			want:     "hello",
		},
		{
			name:     "cut lands inside a multi-byte rune",
			text:     "préférences", // é is two bytes, byte 3 is mid-rune
			maxChars: 3,
			want:     "pr",
		},
		{
			name:     "cut lands on a rune boundary",
			text:     "préférences",
			maxChars: 4,
			want:     "pré",
		},
		{
			name:     "cut inside a four-byte rune",
			text:     "a\U0001F600b", // emoji occupies bytes 1-4
			maxChars: 3,
			want:     "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateText(tt.text, tt.maxChars)
			if got != tt.want {
				t.Errorf("truncateText(%q, %d) = %q, want %q", tt.text, tt.maxChars, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncated text is not valid UTF-8: %q", got)
			}
		})
	}
}

package budget

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("é", 8), 2},
	}
	for _, c := range cases {
		if got := EstimateTokens(c.in); got != c.want {
			t.Fatalf("EstimateTokens(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestContextWindow(t *testing.T) {
	cases := map[string]int{
		"":              defaultWindow,
		"GPT-4o":        128_000,
		"my-model-32k":  32 * 1024,
		"long-ctx-1m":   1_000_000,
		"unknown-model": defaultWindow,
		"gpt-oss-20b":   4_096,
	}
	for model, want := range cases {
		if got := ContextWindow(model); got != want {
			t.Fatalf("ContextWindow(%q) = %d, want %d", model, got, want)
		}
	}
}

func TestMaxInputRunes(t *testing.T) {
	// 2048 window, 512 headroom, 500 reserved, 36 for the fixed text.
	fixed := strings.Repeat("x", 144)
	if got := MaxInputRunes("tiny-2k", 500, fixed); got != (2048-512-500-36)*4 {
		t.Fatalf("MaxInputRunes = %d", got)
	}
	if got := MaxInputRunes("tiny-2k", 5000, fixed); got != 0 {
		t.Fatalf("over-reserved budget = %d, want 0", got)
	}
}

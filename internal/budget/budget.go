// Package budget sizes summarization prompts against a model's context
// window using a characters-per-token estimate.
package budget

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// charsPerToken is the conservative estimate for mostly-English text.
const charsPerToken = 4

// defaultWindow is assumed for models nothing else is known about.
const defaultWindow = 8192

// EstimateTokens returns the estimated token count of s, at least 1 for
// non-empty input.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / charsPerToken))
}

var windowSuffix = regexp.MustCompile(`(\d+)([km])$`)

// ContextWindow returns the context size of model in tokens: a known value,
// one read from a "-32k" style suffix, or 8192.
func ContextWindow(model string) int {
	name := strings.ToLower(strings.TrimSpace(model))
	if v, ok := knownWindows[name]; ok {
		return v
	}
	if m := windowSuffix.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			if m[2] == "m" {
				return n * 1_000_000
			}
			return n * 1024
		}
	}
	return defaultWindow
}

// Headroom is the safety margin kept free of prompt and output: 5% of the
// window, at least 512 tokens.
func Headroom(model string) int {
	h := int(math.Ceil(float64(ContextWindow(model)) * 0.05))
	if h < 512 {
		return 512
	}
	return h
}

// MaxInputRunes returns how many runes of input text fit next to fixed
// prompt text when reserveOutput tokens are kept for the answer. It never
// returns less than zero.
func MaxInputRunes(model string, reserveOutput int, fixed string) int {
	if reserveOutput < 0 {
		reserveOutput = 0
	}
	free := ContextWindow(model) - Headroom(model) - reserveOutput - EstimateTokens(fixed)
	if free <= 0 {
		return 0
	}
	return free * charsPerToken
}

var knownWindows = map[string]int{
	"gpt-4o":             128_000,
	"gpt-4o-mini":        128_000,
	"gpt-4-turbo":        128_000,
	"gpt-3.5-turbo":      16_384,
	"llama-3":            8_192,
	"llama-3.1":          128_000,
	"openai/gpt-oss-20b": 4_096,
	"gpt-oss-20b":        4_096,
}

// Package summarize turns page or paragraph text into a bullet-point summary
// using an OpenAI-compatible chat model.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/ytreader/internal/budget"
	"github.com/hyperifyio/ytreader/internal/cache"
	"github.com/hyperifyio/ytreader/internal/llm"
)

const (
	// MaxInputRunes is how much of the input text reaches the model.
	MaxInputRunes = 4000
	// MinParagraphLen and MinVideoTextLen are the shortest inputs accepted.
	MinParagraphLen = 50
	MinVideoTextLen = 30

	promptPrefix = "Summarize the following text in detailed bullet points:\n"
	systemPrompt = "You summarize text faithfully. Answer with the summary only, " +
		"between 150 and 400 words, one point per line. Do not add facts that are not in the text."
)

var (
	// ErrTextTooShort is returned before any model call when the input is
	// below the minimum length.
	ErrTextTooShort = errors.New("summarize: text too short")
	// ErrNoSummary is returned when the model answers with nothing usable.
	ErrNoSummary = errors.New("summarize: no summary returned")
)

var bulletLine = regexp.MustCompile(`(?m)^\s*[-•]`)

// Summarizer calls the model and caches answers by model and prompt.
type Summarizer struct {
	Client llm.Client
	Model  string
	Cache  *cache.LLMCache
	// CacheOnly answers from the cache and fails on a miss.
	CacheOnly bool
	// MaxTokens caps the completion; zero leaves it to the server.
	MaxTokens int
	// RetryDelay is the pause before the single retry.
	RetryDelay time.Duration
}

type cachedSummary struct {
	Summary string `json:"summary"`
}

// SummarizeParagraph summarizes user-supplied text of at least 50 characters.
func (s *Summarizer) SummarizeParagraph(ctx context.Context, text string) (string, error) {
	if len([]rune(strings.TrimSpace(text))) < MinParagraphLen {
		return "", fmt.Errorf("%w: need at least %d characters", ErrTextTooShort, MinParagraphLen)
	}
	return s.Summarize(ctx, text)
}

// SummarizeVideo summarizes a transcript or description of at least 30
// characters.
func (s *Summarizer) SummarizeVideo(ctx context.Context, text string) (string, error) {
	if len([]rune(strings.TrimSpace(text))) < MinVideoTextLen {
		return "", fmt.Errorf("%w: need at least %d characters", ErrTextTooShort, MinVideoTextLen)
	}
	return s.Summarize(ctx, text)
}

// Summarize returns the model's summary of text formatted as bullet lines.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return "", errors.New("summarizer not configured")
	}
	user := BuildPrompt(s.fitContext(text))
	key := cache.KeyFrom(s.Model, systemPrompt+"\n\n"+user)

	if s.Cache != nil {
		if raw, ok, _ := s.Cache.Get(ctx, key); ok {
			var c cachedSummary
			if err := json.Unmarshal(raw, &c); err == nil && strings.TrimSpace(c.Summary) != "" {
				log.Debug().Str("key", key[:12]).Msg("summary cache hit")
				return c.Summary, nil
			}
		}
	}
	if s.CacheOnly {
		return "", fmt.Errorf("%w: cache-only and no cached summary", ErrNoSummary)
	}

	req := openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		MaxTokens:   s.MaxTokens,
		N:           1,
	}
	resp, err := s.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("summary request failed, retrying once")
		delay := s.RetryDelay
		if delay <= 0 {
			delay = 200 * time.Millisecond
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		resp, err = s.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("summary call (after retry): %w", err)
		}
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoSummary
	}
	out := FormatBullets(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrNoSummary
	}
	if s.Cache != nil {
		payload, _ := json.Marshal(cachedSummary{Summary: out})
		if err := s.Cache.Save(ctx, key, payload); err != nil {
			log.Warn().Err(err).Msg("summary cache save failed")
		}
	}
	return out, nil
}

// fitContext shortens text further when the model's context window cannot
// hold the full prompt next to the reserved answer.
func (s *Summarizer) fitContext(text string) string {
	limit := budget.MaxInputRunes(s.Model, s.MaxTokens, systemPrompt+promptPrefix)
	r := []rune(text)
	if limit >= MaxInputRunes || len(r) <= limit {
		return text
	}
	log.Debug().Str("model", s.Model).Int("runes", limit).Msg("input trimmed to fit context window")
	return string(r[:limit])
}

// BuildPrompt prefixes the instruction to the first 4000 runes of text.
func BuildPrompt(text string) string {
	r := []rune(text)
	if len(r) > MaxInputRunes {
		r = r[:MaxInputRunes]
	}
	return promptPrefix + string(r)
}

// FormatBullets leaves text that already has "-" or "•" bullet lines as is
// (trimmed). Otherwise every sentence becomes its own "• " line.
func FormatBullets(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || bulletLine.MatchString(text) {
		return text
	}
	sentences := splitSentences(text)
	lines := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, "• "+s)
		}
	}
	return strings.Join(lines, "\n")
}

// splitSentences breaks after '.', '!' or '?' when whitespace follows.
func splitSentences(text string) []string {
	var out []string
	r := []rune(text)
	start := 0
	for i := 0; i < len(r)-1; i++ {
		if (r[i] == '.' || r[i] == '!' || r[i] == '?') && unicode.IsSpace(r[i+1]) {
			out = append(out, string(r[start:i+1]))
			j := i + 1
			for j < len(r) && unicode.IsSpace(r[j]) {
				j++
			}
			start = j
			i = j - 1
		}
	}
	if start < len(r) {
		out = append(out, string(r[start:]))
	}
	return out
}

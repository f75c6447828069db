package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/ytreader/internal/cache"
)

type fakeClient struct {
	replies []string
	errs    []error
	calls   int
	lastReq openai.ChatCompletionRequest
}

func (f *fakeClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := f.calls
	f.calls++
	f.lastReq = req
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	content := ""
	if i < len(f.replies) {
		content = f.replies[i]
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
	}}}, nil
}

const longText = "Go is an open source programming language that makes it simple to build secure, scalable systems."

func TestFormatBullets_SplitsProse(t *testing.T) {
	got := FormatBullets("First point. Second one!  Third?\nFourth")
	want := "• First point.\n• Second one!\n• Third?\n• Fourth"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFormatBullets_KeepsExistingBullets(t *testing.T) {
	in := "Intro line.\n- already a bullet. with two sentences"
	if got := FormatBullets(in); got != in {
		t.Fatalf("got %q", got)
	}
	if got := FormatBullets("  • one\n• two  "); got != "• one\n• two" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatBullets_NoSplitInsideNumbers(t *testing.T) {
	if got := FormatBullets("Version 1.5 shipped. Done"); got != "• Version 1.5 shipped.\n• Done" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildPrompt_TruncatesRunes(t *testing.T) {
	in := strings.Repeat("é", MaxInputRunes+10)
	p := BuildPrompt(in)
	if !strings.HasPrefix(p, "Summarize the following text in detailed bullet points:\n") {
		t.Fatalf("prompt prefix missing: %q", p[:40])
	}
	if n := len([]rune(strings.TrimPrefix(p, promptPrefix))); n != MaxInputRunes {
		t.Fatalf("body runes = %d", n)
	}
}

func TestSummarizeParagraph_RejectsShortText(t *testing.T) {
	fc := &fakeClient{}
	s := &Summarizer{Client: fc, Model: "m"}
	_, err := s.SummarizeParagraph(context.Background(), "too short to bother")
	if !errors.Is(err, ErrTextTooShort) {
		t.Fatalf("expected ErrTextTooShort, got %v", err)
	}
	if fc.calls != 0 {
		t.Fatalf("model called for short text")
	}
}

func TestSummarizeVideo_Threshold(t *testing.T) {
	fc := &fakeClient{replies: []string{"Short video. About things."}}
	s := &Summarizer{Client: fc, Model: "m"}
	if _, err := s.SummarizeVideo(context.Background(), strings.Repeat("x", 29)); !errors.Is(err, ErrTextTooShort) {
		t.Fatalf("expected ErrTextTooShort, got %v", err)
	}
	out, err := s.SummarizeVideo(context.Background(), strings.Repeat("x", 30))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "• Short video.\n• About things." {
		t.Fatalf("out = %q", out)
	}
	if fc.lastReq.Temperature != 0 || fc.lastReq.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("unexpected request %+v", fc.lastReq)
	}
}

func TestSummarize_RetriesOnce(t *testing.T) {
	fc := &fakeClient{errs: []error{errors.New("boom")}, replies: []string{"", "- ok"}}
	s := &Summarizer{Client: fc, Model: "m", RetryDelay: 1}
	out, err := s.Summarize(context.Background(), longText)
	if err != nil || out != "- ok" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	if fc.calls != 2 {
		t.Fatalf("calls = %d", fc.calls)
	}

	fc = &fakeClient{errs: []error{errors.New("a"), errors.New("b")}}
	s.Client = fc
	if _, err := s.Summarize(context.Background(), longText); err == nil {
		t.Fatalf("expected error after two failures")
	}
}

func TestSummarize_EmptyAnswer(t *testing.T) {
	s := &Summarizer{Client: &fakeClient{replies: []string{"   \n "}}, Model: "m"}
	if _, err := s.Summarize(context.Background(), longText); !errors.Is(err, ErrNoSummary) {
		t.Fatalf("expected ErrNoSummary, got %v", err)
	}
}

func TestSummarize_UsesCache(t *testing.T) {
	c := &cache.LLMCache{Dir: t.TempDir()}
	fc := &fakeClient{replies: []string{"Cached answer."}}
	s := &Summarizer{Client: fc, Model: "m", Cache: c}
	first, err := s.Summarize(context.Background(), longText)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	offline := &Summarizer{Client: &fakeClient{}, Model: "m", Cache: c, CacheOnly: true}
	second, err := offline.Summarize(context.Background(), longText)
	if err != nil || second != first {
		t.Fatalf("cache-only got %q, %v", second, err)
	}
	if _, err := offline.Summarize(context.Background(), longText+" more"); !errors.Is(err, ErrNoSummary) {
		t.Fatalf("expected miss to fail with ErrNoSummary, got %v", err)
	}
}

func TestSummarize_TrimsToContextWindow(t *testing.T) {
	fc := &fakeClient{replies: []string{"- ok"}}
	s := &Summarizer{Client: fc, Model: "tiny-2k", MaxTokens: 1000}
	if _, err := s.Summarize(context.Background(), strings.Repeat("a", MaxInputRunes)); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	body := strings.TrimPrefix(fc.lastReq.Messages[1].Content, promptPrefix)
	if n := len([]rune(body)); n >= MaxInputRunes || n == 0 {
		t.Fatalf("prompt body runes = %d, want trimmed below %d", n, MaxInputRunes)
	}
}

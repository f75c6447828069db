// Package app wires the reader-mode engine, extraction and summarization
// into the command-line modes.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ytreader/internal/cache"
	"github.com/hyperifyio/ytreader/internal/dom/htmldom"
	"github.com/hyperifyio/ytreader/internal/fetch"
	"github.com/hyperifyio/ytreader/internal/llm"
	"github.com/hyperifyio/ytreader/internal/reader"
	"github.com/hyperifyio/ytreader/internal/summarize"
	"github.com/hyperifyio/ytreader/internal/transcript"
)

// ErrNoInputText is returned when a page or paragraph yields nothing to
// summarize.
var ErrNoInputText = errors.New("no input text to summarize")

// App runs one mode of the tool.
type App struct {
	cfg        Config
	client     llm.Client
	summarizer *summarize.Summarizer
	fetcher    *fetch.Client
	stdin      io.Reader
	stdout     io.Writer
}

// Option customizes an App.
type Option func(*App)

// WithLLMClient replaces the OpenAI-compatible client built from Config.
func WithLLMClient(c llm.Client) Option { return func(a *App) { a.client = c } }

// WithStdio replaces stdin and stdout.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(a *App) { a.stdin, a.stdout = in, out }
}

// New prepares caches and clients. The model preflight is best-effort.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, stdin: os.Stdin, stdout: os.Stdout}
	for _, o := range opts {
		o(a)
	}

	var llmCache *cache.LLMCache
	var httpCache *cache.HTTPCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		llmCache = &cache.LLMCache{Dir: filepath.Join(cfg.CacheDir, "llm"), StrictPerms: cfg.CacheStrictPerms}
		httpCache = &cache.HTTPCache{Dir: filepath.Join(cfg.CacheDir, "http"), StrictPerms: cfg.CacheStrictPerms}
	}

	if a.client == nil {
		p := llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey)
		a.client = p
		if !cfg.DryRun && !cfg.SummarySet && cfg.Mode != ModeHost {
			preflight(ctx, p)
		}
	}
	a.summarizer = &summarize.Summarizer{
		Client:    a.client,
		Model:     cfg.LLMModel,
		Cache:     llmCache,
		CacheOnly: cfg.LLMCacheOnly,
		MaxTokens: cfg.LLMMaxTokens,
	}
	a.fetcher = &fetch.Client{
		UserAgent:         cfg.UserAgent,
		AcceptLanguage:    cfg.AcceptLanguage,
		MaxAttempts:       2,
		PerRequestTimeout: 20 * time.Second,
		Cache:             httpCache,
		CacheOnly:         cfg.HTTPCacheOnly,
	}
	return a, nil
}

func preflight(ctx context.Context, p llm.ModelLister) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := p.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	log.Debug().Int("count", len(models.Models)).Msg("LLM models available")
}

// Run executes the configured mode.
func (a *App) Run(ctx context.Context) error {
	switch a.cfg.Mode {
	case ModePage, "":
		return a.runPage(ctx)
	case ModeParagraph:
		return a.runParagraph(ctx)
	case ModeHost:
		return a.runHost(ctx)
	}
	return fmt.Errorf("unknown mode %q", a.cfg.Mode)
}

func (a *App) loadPage(ctx context.Context) ([]byte, string, error) {
	if a.cfg.InputPath != "" {
		b, err := os.ReadFile(a.cfg.InputPath)
		if err != nil {
			return nil, "", fmt.Errorf("read input: %w", err)
		}
		return b, a.cfg.InputPath, nil
	}
	b, _, err := a.fetcher.Get(ctx, a.cfg.URL)
	if err != nil {
		return nil, "", fmt.Errorf("fetch page: %w", err)
	}
	return b, a.cfg.URL, nil
}

func (a *App) runPage(ctx context.Context) error {
	raw, source, err := a.loadPage(ctx)
	if err != nil {
		return err
	}
	doc, err := htmldom.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	static := transcript.FromHTML(raw)
	summary, err := a.pageSummary(ctx, doc, static)
	if err != nil {
		return err
	}

	engine := reader.New(doc, reader.WithNotifier(logNotifier{}))
	if err := engine.Enable(summary); err != nil {
		return fmt.Errorf("enable reader mode: %w", err)
	}
	log.Info().Str("source", source).Msg("reader mode enabled")

	if a.cfg.Disable {
		btn, err := doc.ByID("yt-reader-disable-button")
		if err != nil || btn == nil || !doc.Click(btn) {
			return errors.New("disable button not found after enable")
		}
		if engine.Active() {
			return errors.New("reader mode still active after disable")
		}
	}

	if err := writeDoc(doc, a.cfg.OutputPath, a.stdout); err != nil {
		return err
	}
	log.Info().Str("path", a.cfg.OutputPath).Msg("page written")

	if a.cfg.OutputPDFPath != "" && strings.TrimSpace(summary) != "" {
		title := static.Title
		if title == "" {
			title = "Video summary"
		}
		if err := writeSummaryPDF(title, source, summary, a.cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", a.cfg.OutputPDFPath).Msg("summary pdf written")
	}
	return nil
}

// pageSummary resolves the summary text: given explicitly, skipped on dry
// runs, or produced from the transcript, the description or the static page
// text, in that order.
func (a *App) pageSummary(ctx context.Context, doc *htmldom.Document, static transcript.Document) (string, error) {
	if a.cfg.SummarySet {
		return a.cfg.Summary, nil
	}
	res, err := transcript.FromPage(doc)
	if errors.Is(err, transcript.ErrNoText) {
		res, err = static.Best()
	}
	if err != nil {
		if errors.Is(err, transcript.ErrNoText) {
			return "", fmt.Errorf("%w: %v", ErrNoInputText, err)
		}
		return "", err
	}
	log.Info().Str("from", string(res.Source)).Int("chars", len(res.Text)).Msg("text extracted")
	if a.cfg.DryRun {
		log.Info().Msg("dry run: skipping summarization")
		return "", nil
	}
	return a.summarizer.SummarizeVideo(ctx, res.Text)
}

func (a *App) runParagraph(ctx context.Context) error {
	text := a.cfg.Text
	if strings.TrimSpace(text) == "" {
		b, err := io.ReadAll(io.LimitReader(a.stdin, 1<<20))
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrNoInputText
	}
	if a.cfg.DryRun {
		_, err := fmt.Fprintln(a.stdout, summarize.BuildPrompt(text))
		return err
	}
	out, err := a.summarizer.SummarizeParagraph(ctx, text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, out)
	return err
}

func writeDoc(doc *htmldom.Document, path string, stdout io.Writer) error {
	if path == "-" {
		return doc.Render(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := doc.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render page: %w", err)
	}
	return f.Close()
}

// logNotifier records in-page disables for runs without a message channel.
type logNotifier struct{}

func (logNotifier) ReaderModeDisabled() error {
	log.Info().Msg("reader mode disabled from page")
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ytreader/internal/app"
	"github.com/hyperifyio/ytreader/internal/summarize"
	"github.com/hyperifyio/ytreader/internal/transcript"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		cfg         app.Config
		configPath  string
		envFiles    string
		showVersion bool
		block       string
	)
	flag.StringVar(&cfg.Mode, "mode", "", "Mode: page, paragraph or host (default page)")
	flag.StringVar(&cfg.InputPath, "input", "", "Saved watch page HTML to rewrite")
	flag.StringVar(&cfg.URL, "url", "", "Watch page URL (fetched in page mode, opened in the browser in host mode)")
	flag.StringVar(&cfg.OutputPath, "output", "", "Where to write the rewritten page; '-' for stdout (default reader.html)")
	flag.StringVar(&cfg.OutputPDFPath, "output.pdf", "", "Optional path for a PDF of the summary")
	flag.StringVar(&cfg.Summary, "summary", "", "Use this summary instead of calling the model")
	flag.BoolVar(&cfg.Disable, "disable", false, "Click the in-page disable button after enabling, writing the restored page")
	flag.StringVar(&cfg.Text, "text", "", "Paragraph to summarize in paragraph mode; empty reads stdin")
	flag.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&cfg.LLMModel, "llm.model", "", "Model name")
	flag.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")
	flag.IntVar(&cfg.LLMMaxTokens, "llm.maxTokens", 0, "Completion token cap (default 700)")
	flag.BoolVar(&cfg.LLMCacheOnly, "llm.cacheOnly", false, "Serve summaries from cache only")
	flag.BoolVar(&cfg.HTTPCacheOnly, "fetch.cacheOnly", false, "Serve pages from cache only")
	flag.StringVar(&cfg.UserAgent, "fetch.ua", "", "User-Agent for page fetches")
	flag.StringVar(&cfg.BrowserURL, "browser.url", "", "DevTools WebSocket URL of a running Chrome; empty launches one")
	flag.BoolVar(&cfg.Headful, "browser.headful", false, "Show the launched browser window")
	flag.BoolVar(&cfg.Stealth, "browser.stealth", false, "Mask automation fingerprints in opened tabs")
	flag.StringVar(&block, "browser.block", "", "Comma-separated resource types to block: images,fonts,media,stylesheets")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Extract text but do not call the model")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.StringVar(&cfg.CacheDir, "cache.dir", "", "Cache directory path (default .ytreader-cache)")
	flag.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Purge cache entries older than this; 0 disables")
	flag.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear the cache directory before running")
	flag.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.StringVar(&configPath, "config", "", "YAML or JSON config file")
	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("ytreader %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "summary" {
			cfg.SummarySet = true
		}
	})
	cfg.BlockResources = splitList(block)

	if err := app.LoadEnvFiles(splitList(envFiles)...); err != nil {
		log.Fatal().Err(err).Msg("load env files")
	}
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyDefaults(&cfg)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		stop()
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}

// exitCode is 2 when the input gave nothing to summarize or the model gave
// nothing back, 1 for every other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoInputText),
		errors.Is(err, transcript.ErrNoText),
		errors.Is(err, summarize.ErrTextTooShort),
		errors.Is(err, summarize.ErrNoSummary):
		return 2
	}
	return 1
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

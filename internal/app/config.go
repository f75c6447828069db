package app

import "time"

// Modes.
const (
	ModePage      = "page"
	ModeParagraph = "paragraph"
	ModeHost      = "host"
)

// Config holds runtime configuration for the application.
type Config struct {
	Mode string

	// Page mode
	InputPath     string
	URL           string
	OutputPath    string
	OutputPDFPath string
	// Summary, when SummarySet, is used as-is instead of calling the model.
	Summary    string
	SummarySet bool
	// Disable clicks the in-page disable button after enabling, leaving the
	// restored page in the output.
	Disable bool

	// Paragraph mode; empty reads stdin.
	Text string

	// LLM
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	LLMMaxTokens int

	// Fetch
	UserAgent      string
	AcceptLanguage string

	// Browser (host mode)
	BrowserURL     string
	Headful        bool
	Stealth        bool
	BlockResources []string

	// Behavior
	DryRun           bool
	Verbose          bool
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	LLMCacheOnly     bool
	HTTPCacheOnly    bool
}

const (
	defaultUserAgent      = "ytreader/1.0 (+https://github.com/hyperifyio/ytreader)"
	defaultAcceptLanguage = "en-US,en;q=0.8"
	defaultCacheDir       = ".ytreader-cache"
	defaultOutput         = "reader.html"
	defaultMaxTokens      = 700
)

// ApplyDefaults fills settings nothing else provided.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Mode == "" {
		cfg.Mode = ModePage
	}
	if cfg.OutputPath == "" && cfg.Mode == ModePage {
		cfg.OutputPath = defaultOutput
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = defaultAcceptLanguage
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir
	}
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = defaultMaxTokens
	}
}

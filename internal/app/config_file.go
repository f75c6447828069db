package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the YAML or JSON configuration file schema.
type FileConfig struct {
	Mode      string `yaml:"mode" json:"mode"`
	Input     string `yaml:"input" json:"input"`
	URL       string `yaml:"url" json:"url"`
	Output    string `yaml:"output" json:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF"`

	LLM struct {
		BaseURL   string `yaml:"base" json:"base"`
		Model     string `yaml:"model" json:"model"`
		APIKey    string `yaml:"key" json:"key"`
		MaxTokens int    `yaml:"maxTokens" json:"maxTokens"`
		CacheOnly bool   `yaml:"cacheOnly" json:"cacheOnly"`
	} `yaml:"llm" json:"llm"`

	Fetch struct {
		UserAgent      string `yaml:"ua" json:"ua"`
		AcceptLanguage string `yaml:"acceptLanguage" json:"acceptLanguage"`
		CacheOnly      bool   `yaml:"cacheOnly" json:"cacheOnly"`
	} `yaml:"fetch" json:"fetch"`

	Browser struct {
		URL            string   `yaml:"url" json:"url"`
		Headful        bool     `yaml:"headful" json:"headful"`
		Stealth        bool     `yaml:"stealth" json:"stealth"`
		BlockResources []string `yaml:"blockResources" json:"blockResources"`
	} `yaml:"browser" json:"browser"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	DryRun  bool `yaml:"dryRun" json:"dryRun"`
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig, choosing by extension
// and trying both for anything else.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig fills fields of cfg still unset after flags and env.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setStr := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, v bool) {
		if v {
			*dst = true
		}
	}
	setStr(&cfg.Mode, fc.Mode)
	setStr(&cfg.InputPath, fc.Input)
	setStr(&cfg.URL, fc.URL)
	setStr(&cfg.OutputPath, fc.Output)
	setStr(&cfg.OutputPDFPath, fc.OutputPDF)

	setStr(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setStr(&cfg.LLMModel, fc.LLM.Model)
	setStr(&cfg.LLMAPIKey, fc.LLM.APIKey)
	if cfg.LLMMaxTokens == 0 && fc.LLM.MaxTokens > 0 {
		cfg.LLMMaxTokens = fc.LLM.MaxTokens
	}
	setBool(&cfg.LLMCacheOnly, fc.LLM.CacheOnly)

	setStr(&cfg.UserAgent, fc.Fetch.UserAgent)
	setStr(&cfg.AcceptLanguage, fc.Fetch.AcceptLanguage)
	setBool(&cfg.HTTPCacheOnly, fc.Fetch.CacheOnly)

	setStr(&cfg.BrowserURL, fc.Browser.URL)
	setBool(&cfg.Headful, fc.Browser.Headful)
	setBool(&cfg.Stealth, fc.Browser.Stealth)
	if len(cfg.BlockResources) == 0 && len(fc.Browser.BlockResources) > 0 {
		cfg.BlockResources = append([]string(nil), fc.Browser.BlockResources...)
	}

	setStr(&cfg.CacheDir, fc.Cache.Dir)
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	setBool(&cfg.CacheClear, fc.Cache.Clear)
	setBool(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)

	setBool(&cfg.DryRun, fc.DryRun)
	setBool(&cfg.Verbose, fc.Verbose)
}

// ValidateConfig checks the settings each mode needs.
func ValidateConfig(cfg Config) error {
	var errs []string
	switch cfg.Mode {
	case ModePage:
		if trim(cfg.InputPath) == "" && trim(cfg.URL) == "" {
			errs = append(errs, "page mode needs -input or -url")
		}
		if trim(cfg.OutputPath) == "" {
			errs = append(errs, "page mode needs -output")
		}
		if !cfg.SummarySet && !cfg.DryRun && trim(cfg.LLMModel) == "" {
			errs = append(errs, "llm.model is required unless -summary or -dry-run is given")
		}
	case ModeParagraph:
		if !cfg.DryRun && trim(cfg.LLMModel) == "" {
			errs = append(errs, "llm.model is required unless -dry-run is given")
		}
	case ModeHost:
		if trim(cfg.URL) == "" {
			errs = append(errs, "host mode needs -url")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown mode %q", cfg.Mode))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func trim(s string) string { return strings.TrimSpace(s) }

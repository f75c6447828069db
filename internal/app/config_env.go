package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig fills unset fields of cfg from the environment. Explicit
// values in cfg win.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setStr := func(dst *string, key string) {
		if *dst == "" {
			*dst = strings.TrimSpace(os.Getenv(key))
		}
	}
	setBool := func(dst *bool, key string) {
		if *dst {
			return
		}
		if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
			*dst = b
		}
	}

	setStr(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setStr(&cfg.LLMModel, "LLM_MODEL")
	setStr(&cfg.LLMAPIKey, "LLM_API_KEY")
	setStr(&cfg.CacheDir, "CACHE_DIR")
	setStr(&cfg.BrowserURL, "BROWSER_URL")

	if cfg.CacheMaxAge == 0 {
		if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv("CACHE_MAX_AGE"))); err == nil && d > 0 {
			cfg.CacheMaxAge = d
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.DryRun, "DRY_RUN")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.LLMCacheOnly, "LLM_CACHE_ONLY")
}

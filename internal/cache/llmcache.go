package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// LLMCache stores summaries on disk keyed by a digest of model and prompt,
// so re-running on the same page text does not call the model again.
type LLMCache struct {
	Dir string
	// StrictPerms restricts the cache to 0700 directories and 0600 files.
	StrictPerms bool
}

// KeyFrom derives the cache key for a model/prompt pair.
func KeyFrom(model string, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *LLMCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached bytes for key. A miss is (nil, false, nil).
func (c *LLMCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.Dir == "" {
		return nil, false, errors.New("cache dir not configured")
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	// Touch on access so age-based purging keeps hot entries.
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes data under key.
func (c *LLMCache) Save(_ context.Context, key string, data []byte) error {
	if c == nil {
		return errors.New("cache dir not configured")
	}
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, fileMode(c.StrictPerms))
}

func ensureDir(dir string, strict bool) error {
	if dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if strict {
		perm = 0o700
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	if strict {
		// MkdirAll leaves an existing directory alone.
		if info, err := os.Stat(dir); err == nil && info.Mode().Perm() != 0o700 {
			_ = os.Chmod(dir, 0o700)
		}
	}
	return nil
}

func fileMode(strict bool) os.FileMode {
	if strict {
		return 0o600
	}
	return 0o644
}

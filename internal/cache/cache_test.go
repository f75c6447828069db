package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLLMCache_SaveGet(t *testing.T) {
	c := &LLMCache{Dir: t.TempDir()}
	key := KeyFrom("model", "prompt")
	data := []byte(`{"summary":"• a"}`)
	if err := c.Save(context.Background(), key, data); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if string(got) != string(data) {
		t.Fatalf("mismatch: %s", got)
	}
	if _, ok, _ := c.Get(context.Background(), KeyFrom("model", "other")); ok {
		t.Fatalf("expected miss")
	}
}

func TestKeyFrom_DependsOnModel(t *testing.T) {
	if KeyFrom("a", "p") == KeyFrom("b", "p") {
		t.Fatalf("model must be part of the key")
	}
}

func TestStrictPerms(t *testing.T) {
	base := t.TempDir()
	llmDir := filepath.Join(base, "llm")
	c := &LLMCache{Dir: llmDir, StrictPerms: true}
	key := KeyFrom("m", "p")
	if err := c.Save(context.Background(), key, []byte("{}")); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(llmDir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o700 {
		t.Fatalf("dir mode = %o", got)
	}
	finfo, err := os.Stat(filepath.Join(llmDir, key+".json"))
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if got := finfo.Mode().Perm(); got != 0o600 {
		t.Fatalf("file mode = %o", got)
	}

	h := &HTTPCache{Dir: filepath.Join(base, "http"), StrictPerms: true}
	if err := h.Save(context.Background(), "https://example.com/watch?v=1", "text/html", `"e"`, "", []byte("x")); err != nil {
		t.Fatalf("save page: %v", err)
	}
	info, _ = os.Stat(h.Dir)
	if got := info.Mode().Perm(); got != 0o700 {
		t.Fatalf("http dir mode = %o", got)
	}
}

func TestHTTPCache_RoundTrip(t *testing.T) {
	h := &HTTPCache{Dir: t.TempDir()}
	url := "https://example.com/watch?v=abc"
	if err := h.Save(context.Background(), url, "text/html", `"etag"`, "Mon", []byte("<html></html>")); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := h.LoadMeta(context.Background(), url)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.ETag != `"etag"` || meta.URL != url || meta.SavedAt.IsZero() {
		t.Fatalf("meta = %+v", meta)
	}
	body, err := h.LoadBody(context.Background(), url)
	if err != nil || string(body) != "<html></html>" {
		t.Fatalf("body = %q err=%v", body, err)
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	h := &HTTPCache{Dir: dir}
	c := &LLMCache{Dir: dir}
	ctx := context.Background()
	if err := h.Save(ctx, "https://example.com/a", "text/html", "", "", []byte("a")); err != nil {
		t.Fatalf("save: %v", err)
	}
	key := KeyFrom("m", "p")
	if err := c.Save(ctx, key, []byte("{}")); err != nil {
		t.Fatalf("save: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	_ = os.Chtimes(filepath.Join(dir, key+".json"), old, old)

	// Rewrite the page meta with an old timestamp.
	metaKey := h.key("https://example.com/a")
	stale := []byte(`{"url":"https://example.com/a","saved_at":"2000-01-01T00:00:00Z"}`)
	if err := os.WriteFile(filepath.Join(dir, metaKey+".meta.json"), stale, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	removed, err := PurgeByAge(dir, time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, metaKey+".body")); !os.IsNotExist(err) {
		t.Fatalf("body not purged")
	}
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	_ = os.MkdirAll(dir, 0o755)
	_ = os.WriteFile(filepath.Join(dir, "x.json"), []byte("{}"), 0o644)
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("dir not empty")
	}
	if err := ClearDir("  "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/ytreader/internal/cache"
)

const testUA = "ytreader-test"

func htmlServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestGet_SendsHeadersAndReturnsBody(t *testing.T) {
	srv := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != testUA {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept-Language") != "en" {
			t.Errorf("accept-language = %q", r.Header.Get("Accept-Language"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	})

	c := &Client{UserAgent: testUA, AcceptLanguage: "en", MaxAttempts: 2, PerRequestTimeout: 2 * time.Second}
	body, ct, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(ct, "text/html") || !strings.Contains(string(body), "ok") {
		t.Fatalf("got ct=%q body=%q", ct, body)
	}
}

func TestGet_RetriesOn5xx(t *testing.T) {
	var calls int32
	srv := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	})

	c := &Client{UserAgent: testUA, MaxAttempts: 2, PerRequestTimeout: 2 * time.Second}
	if _, _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestGet_DoesNotRetry4xx(t *testing.T) {
	var calls int32
	srv := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})
	c := &Client{MaxAttempts: 3}
	if _, _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestGet_Conditional304_UsesCache(t *testing.T) {
	var calls int32
	etag := `"abc123"`
	srv := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/html")
		if n > 1 && r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		_, _ = w.Write([]byte("first"))
	})

	c := &Client{MaxAttempts: 1, Cache: &cache.HTTPCache{Dir: t.TempDir()}}
	b1, _, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	b2, _, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if string(b1) != "first" || string(b2) != "first" {
		t.Fatalf("bodies = %q, %q", b1, b2)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestGet_CacheOnly(t *testing.T) {
	var calls int32
	srv := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("cached page"))
	})
	hc := &cache.HTTPCache{Dir: t.TempDir()}

	offline := &Client{Cache: hc, CacheOnly: true}
	if _, _, err := offline.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected miss in cache-only mode")
	}

	if _, _, err := (&Client{Cache: hc}).Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("warm: %v", err)
	}
	body, _, err := offline.Get(context.Background(), srv.URL)
	if err != nil || string(body) != "cached page" {
		t.Fatalf("cache-only get = %q, %v", body, err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestGet_RejectsNonHTTPScheme(t *testing.T) {
	c := &Client{}
	if _, _, err := c.Get(context.Background(), "file:///etc/passwd"); err == nil {
		t.Fatalf("expected error for file scheme")
	}
}

func TestGet_RejectsNonHTMLContent(t *testing.T) {
	srv := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	c := &Client{}
	_, _, err := c.Get(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "unsupported content type") {
		t.Fatalf("expected content-type error, got %v", err)
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	})
	c := &Client{RedirectMaxHops: 2}
	_, _, err := c.Get(context.Background(), srv.URL+"/")
	if err == nil || !strings.Contains(err.Error(), "too many redirects") {
		t.Fatalf("expected redirect error, got %v", err)
	}
}

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ytreader/internal/cache"
)

// ErrServer marks 5xx responses, which are retried.
var ErrServer = errors.New("server error")

// Client downloads watch pages with per-request timeouts, a bounded retry on
// transient failures, and optional conditional revalidation against the
// on-disk page cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// AcceptLanguage steers the site toward a language the extractors expect.
	AcceptLanguage string
	// MaxAttempts includes the first attempt. Values below 1 mean 1.
	MaxAttempts       int
	PerRequestTimeout time.Duration
	Cache             *cache.HTTPCache
	// BypassCache skips revalidation but still stores the fresh response.
	BypassCache bool
	// CacheOnly serves from cache and never touches the network.
	CacheOnly bool
	// RedirectMaxHops caps redirects; zero means 5.
	RedirectMaxHops int
}

// Get fetches rawURL and returns the body and its content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			if c.CacheOnly {
				body, err := c.Cache.LoadBody(ctx, rawURL)
				return body, meta.ContentType, err
			}
			etag, lastMod = meta.ETag, meta.LastModified
		}
	}
	if c.CacheOnly {
		return nil, "", fmt.Errorf("cache-only: no cached page for %s", rawURL)
	}

	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			if res.status == http.StatusNotModified && c.Cache != nil {
				body, err := c.Cache.LoadBody(ctx, rawURL)
				if err == nil {
					log.Debug().Str("url", rawURL).Msg("page not modified, served from cache")
					return body, res.contentType, nil
				}
				// Cache lost its body; refetch unconditionally.
				etag, lastMod = "", ""
				lastErr = err
				continue
			}
			if c.Cache != nil {
				if err := c.Cache.Save(ctx, rawURL, res.contentType, res.etag, res.lastModified, res.body); err != nil {
					log.Warn().Err(err).Msg("page cache save failed")
				}
			}
			return res.body, res.contentType, nil
		}
		lastErr = err
		if !isTransient(err) {
			return nil, "", err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
			}
		}
	}
	return nil, "", lastErr
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.AcceptLanguage)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	out := response{
		status:       resp.StatusCode,
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	switch {
	case resp.StatusCode >= 500:
		return out, fmt.Errorf("%w: %d", ErrServer, resp.StatusCode)
	case resp.StatusCode == http.StatusNotModified:
		return out, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return out, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if !isHTMLContentType(out.contentType) {
		return out, fmt.Errorf("unsupported content type: %s", out.contentType)
	}
	out.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("read body: %w", err)
	}
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	check := func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
	if c.HTTPClient != nil {
		// Copy so the caller's client keeps its own redirect policy.
		base := *c.HTTPClient
		base.CheckRedirect = check
		return &base
	}
	return &http.Client{CheckRedirect: check}
}

func isTransient(err error) bool {
	return errors.Is(err, ErrServer) || errors.Is(err, context.DeadlineExceeded)
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

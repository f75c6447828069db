// Package browser starts or attaches to Chrome and opens watch pages in it.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog/log"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome. Empty
	// launches a local one.
	RemoteURL string
	// Headful shows the launched window.
	Headful bool
	// Stealth opens tabs with automation fingerprints masked.
	Stealth bool
	// NavTimeout bounds navigation and load. Default 30s.
	NavTimeout time.Duration
	// BlockResources lists resource types not to load: images, fonts,
	// media, stylesheets.
	BlockResources []string
}

// Manager owns one browser connection.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager returns a manager; Start connects it.
func NewManager(cfg Config) *Manager {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	return &Manager{cfg: cfg}
}

// Start launches or connects to Chrome.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("browser: manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	wsURL := m.cfg.RemoteURL
	if wsURL != "" {
		log.Info().Str("url", wsURL).Msg("connecting to remote browser")
	} else {
		l := launcher.New().Headless(!m.cfg.Headful).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info().Str("url", wsURL).Bool("headful", m.cfg.Headful).Msg("launched local browser")
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		m.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return b, nil
}

// Close disconnects and stops a launched Chrome.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.cleanup()
}

func (m *Manager) cleanup() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return err
}

// Tab is an open page.
type Tab struct {
	Page *rod.Page
	URL  string
}

// OpenTab creates a tab and navigates it to pageURL, waiting for load within
// the navigation timeout. A load timeout is logged, not returned: the page
// is usable once navigation commits.
func (m *Manager) OpenTab(ctx context.Context, pageURL string) (*Tab, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, errors.New("browser: not started")
	}

	var page *rod.Page
	var err error
	if m.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	if len(m.cfg.BlockResources) > 0 {
		blockResources(page, m.cfg.BlockResources)
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("page load wait timed out")
	}
	return &Tab{Page: page.Context(ctx), URL: pageURL}, nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page == nil {
		return nil
	}
	return t.Page.Close()
}

func blockResources(page *rod.Page, types []string) {
	blocked := make(map[proto.NetworkResourceType]bool, len(types))
	for _, t := range types {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "images", "image":
			blocked[proto.NetworkResourceTypeImage] = true
		case "fonts", "font":
			blocked[proto.NetworkResourceTypeFont] = true
		case "media":
			blocked[proto.NetworkResourceTypeMedia] = true
		case "stylesheets", "stylesheet":
			blocked[proto.NetworkResourceTypeStylesheet] = true
		}
	}
	router := page.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		if blocked[h.Request.Type()] {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
}

// Package reader implements the reversible reader-mode rewrite of a video
// watch page: it hides a fixed catalog of page chrome, restyles the player
// into a centered dark column, injects a summary panel, and restores the
// page exactly on Disable.
package reader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ytreader/internal/dom"
)

// Notifier receives the event emitted when the user turns reader mode off
// from the injected in-page control.
type Notifier interface {
	ReaderModeDisabled() error
}

// Engine owns one page's reader-mode state. Create one per page context and
// share it with every caller that toggles that page.
type Engine struct {
	mu       sync.Mutex
	doc      dom.Document
	notifier Notifier
	newID    func() string
	// ledger is nil outside an enable/disable cycle.
	ledger *ledger
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the collaborator told about in-page disables.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithIDGenerator overrides how ledger marker ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New returns an engine bound to doc.
func New(doc dom.Document, opts ...Option) *Engine {
	e := &Engine{doc: doc, newID: uuid.NewString}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Active reports whether a cycle is in progress.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger != nil
}

// Enable switches the page into reader mode showing summary. Calling it
// again before Disable reuses the injected panel and keeps the ledger.
//
// Ledger entries are committed one element at a time before each hide, so a
// failure part way through still leaves a state Disable can fully undo.
func (e *Engine) Enable(summary string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger == nil {
		e.ledger = newLedger()
	}
	for _, el := range []dom.Element{e.doc.Root(), e.doc.Body()} {
		if el == nil {
			continue
		}
		if err := el.SetStyle(pageBackground.name, pageBackground.value, true); err != nil {
			return fmt.Errorf("page background: %w", err)
		}
	}
	if err := e.suppress(); err != nil {
		return err
	}

	found := make(map[string]dom.Element, len(layoutTargets))
	for _, t := range layoutTargets {
		el, err := t.find(e.doc)
		if err != nil {
			return fmt.Errorf("find %s: %w", t.name, err)
		}
		if el == nil {
			log.Debug().Str("target", t.name).Msg("reader: layout target not found")
			continue
		}
		if err := t.apply(el); err != nil {
			return fmt.Errorf("restyle %s: %w", t.name, err)
		}
		found[t.name] = el
	}

	if err := e.injectPanel(summary, found["primary"], found["player"]); err != nil {
		return fmt.Errorf("inject panel: %w", err)
	}
	return nil
}

func (e *Engine) suppress() error {
	hidden, protected := 0, 0
	for _, sel := range suppressionCatalog {
		els, err := e.doc.QueryAll(sel)
		if err != nil {
			return fmt.Errorf("suppress %q: %w", sel, err)
		}
		for _, el := range els {
			if isProtected(el) {
				protected++
				continue
			}
			if err := e.hide(el); err != nil {
				return fmt.Errorf("hide %q: %w", sel, err)
			}
			hidden++
		}
	}
	log.Debug().Int("hidden", hidden).Int("protected", protected).Int("ledger", e.ledger.len()).Msg("reader: suppression pass")
	return nil
}

// hide records el's original display once, then forces display:none. An
// inline none is recorded as unset, so it comes back as no inline display.
func (e *Engine) hide(el dom.Element) error {
	if id, ok := el.Attr(markerAttr); ok && e.ledger.has(id) {
		return el.SetStyle("display", "none", true)
	}
	value, important := el.Style("display")
	id := e.newID()
	if err := el.SetAttr(markerAttr, id); err != nil {
		return err
	}
	set := value != "" && value != "none"
	e.ledger.record(id, ledgerEntry{display: value, important: important, set: set})
	return el.SetStyle("display", "none", true)
}

// Disable undoes Enable. It is safe to call at any time and as often as
// needed; without an active cycle it leaves the page's own styles alone.
// Failures on individual elements are collected and do not stop the rest
// of the restoration.
func (e *Engine) Disable() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if e.ledger != nil {
		for _, el := range []dom.Element{e.doc.Root(), e.doc.Body()} {
			if el == nil {
				continue
			}
			if err := el.RemoveStyle(pageBackground.name); err != nil {
				errs = append(errs, err)
			}
		}

		restored, stale := 0, 0
		for _, id := range e.ledger.order {
			els, err := e.doc.QueryAll(markerSelector(id))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if len(els) == 0 {
				stale++
				continue
			}
			entry := e.ledger.entries[id]
			for _, el := range els {
				if err := entry.restore(el); err != nil {
					errs = append(errs, err)
					continue
				}
				restored++
			}
		}
		log.Debug().Int("restored", restored).Int("stale", stale).Msg("reader: restore pass")
	}

	if c, err := e.doc.ByID(containerID); err != nil {
		errs = append(errs, err)
	} else if c != nil {
		if err := c.Remove(); err != nil {
			errs = append(errs, err)
		}
	}

	if e.ledger != nil {
		for _, t := range layoutTargets {
			el, err := t.find(e.doc)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if el == nil {
				continue
			}
			if err := t.reset(el); err != nil {
				errs = append(errs, err)
			}
		}
	}

	e.ledger = nil
	return errors.Join(errs...)
}

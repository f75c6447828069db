// Package roddom adapts a live browser page driven by rod to dom.Document.
// Every element operation is a small script evaluated with this bound to
// the element.
package roddom

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/ysmood/gson"

	"github.com/hyperifyio/ytreader/internal/dom"
)

// clickBinding is the page-global function bound to the Go dispatcher.
const clickBinding = "__ytreaderClick"

// clickAttr carries the handler key on elements with a bound click.
const clickAttr = "data-ytreader-click"

// Document wraps a rod page.
type Document struct {
	page *rod.Page

	mu       sync.Mutex
	handlers map[string]func()
	exposed  bool
	stop     func() error
}

// New wraps page. Call Close to unbind the click dispatcher.
func New(page *rod.Page) *Document {
	return &Document{page: page, handlers: map[string]func(){}}
}

// Page returns the underlying page.
func (d *Document) Page() *rod.Page { return d.page }

// Close removes the exposed click dispatcher, if any.
func (d *Document) Close() error {
	d.mu.Lock()
	stop := d.stop
	d.stop, d.exposed = nil, false
	d.mu.Unlock()
	if stop != nil {
		return stop()
	}
	return nil
}

func (d *Document) wrap(el *rod.Element) dom.Element {
	if el == nil {
		return nil
	}
	return &Element{doc: d, el: el}
}

func (d *Document) own(el dom.Element) (*Element, error) {
	e, ok := el.(*Element)
	if !ok || e == nil || e.doc != d {
		return nil, dom.ErrForeignElement
	}
	return e, nil
}

// fromObject turns an evaluated remote object into an element handle; null
// and non-object results map to nil.
func (d *Document) fromObject(obj *proto.RuntimeRemoteObject) (dom.Element, error) {
	if obj == nil || obj.ObjectID == "" {
		return nil, nil
	}
	el, err := d.page.ElementFromObject(obj)
	if err != nil {
		return nil, err
	}
	return d.wrap(el), nil
}

func (d *Document) QueryAll(selector string) ([]dom.Element, error) {
	els, err := d.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, d.wrap(el))
	}
	return out, nil
}

func (d *Document) Query(selector string) (dom.Element, error) {
	ok, el, err := d.page.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if !ok {
		return nil, nil
	}
	return d.wrap(el), nil
}

func (d *Document) ByID(id string) (dom.Element, error) {
	return d.Query("[id=" + strconv.Quote(id) + "]")
}

func (d *Document) Root() dom.Element {
	el, _ := d.Query("html")
	return el
}

func (d *Document) Body() dom.Element {
	el, _ := d.Query("body")
	return el
}

func (d *Document) CreateElement(tag string) (dom.Element, error) {
	obj, err := d.page.Evaluate(rod.Eval(`function(t) { return document.createElement(t) }`, tag).ByObject())
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", tag, err)
	}
	return d.fromObject(obj)
}

// BindClick tags el with a handler key and routes its click events to fn
// through one exposed page binding. fn runs on its own goroutine.
func (d *Document) BindClick(el dom.Element, fn func()) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	if err := d.expose(); err != nil {
		return err
	}
	key := uuid.NewString()
	d.mu.Lock()
	d.handlers[key] = fn
	d.mu.Unlock()

	_, err = e.call(`function(attr, key, binding) {
		this.setAttribute(attr, key);
		this.addEventListener('click', function() { window[binding](key); });
	}`, clickAttr, key, clickBinding)
	if err != nil {
		d.mu.Lock()
		delete(d.handlers, key)
		d.mu.Unlock()
		return fmt.Errorf("bind click: %w", err)
	}
	return nil
}

func (d *Document) forget(keys []string) {
	if len(keys) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range keys {
		delete(d.handlers, k)
	}
}

func (d *Document) handlerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}

func (d *Document) expose() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.exposed {
		return nil
	}
	stop, err := d.page.Expose(clickBinding, d.dispatch)
	if err != nil {
		return fmt.Errorf("expose click binding: %w", err)
	}
	d.stop, d.exposed = stop, true
	return nil
}

func (d *Document) dispatch(arg gson.JSON) (interface{}, error) {
	key := arg.Str()
	d.mu.Lock()
	fn := d.handlers[key]
	d.mu.Unlock()
	if fn == nil {
		log.Debug().Str("key", key).Msg("click for unknown handler")
		return nil, nil
	}
	// The handler drives the page again; leave the binding callback first.
	go fn()
	return nil, nil
}

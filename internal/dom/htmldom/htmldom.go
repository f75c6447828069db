// Package htmldom implements dom.Document over a parsed golang.org/x/net/html
// tree. Selectors are compiled with cascadia and evaluated through goquery;
// inline styles are parsed with douceur and written back to the style
// attribute.
package htmldom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hyperifyio/ytreader/internal/dom"
)

var errDetached = errors.New("htmldom: element has no parent")

// Document is a mutable in-memory HTML document.
type Document struct {
	root     *html.Node
	handlers map[*html.Node]func()
}

// Parse reads a full HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root, handlers: make(map[*html.Node]func())}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var b bytes.Buffer
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// Click fires the handler bound to el, if any, and reports whether one ran.
func (d *Document) Click(el dom.Element) bool {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return false
	}
	fn := d.handlers[e.node]
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (d *Document) wrap(n *html.Node) dom.Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) own(el dom.Element) (*Element, error) {
	e, ok := el.(*Element)
	if !ok || e == nil || e.doc != d {
		return nil, dom.ErrForeignElement
	}
	return e, nil
}

func (d *Document) QueryAll(selector string) ([]dom.Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}
	nodes := goquery.NewDocumentFromNode(d.root).FindMatcher(sel).Nodes
	out := make([]dom.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out, nil
}

func (d *Document) Query(selector string) (dom.Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}
	return d.wrap(sel.MatchFirst(d.root)), nil
}

func (d *Document) ByID(id string) (dom.Element, error) {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return d.wrap(found), nil
}

func (d *Document) Root() dom.Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return d.wrap(c)
		}
	}
	return nil
}

func (d *Document) Body() dom.Element {
	root := d.Root()
	if root == nil {
		return nil
	}
	for c := root.(*Element).node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Body {
			return d.wrap(c)
		}
	}
	return nil
}

func (d *Document) CreateElement(tag string) (dom.Element, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil, errors.New("htmldom: empty tag name")
	}
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return d.wrap(n), nil
}

func (d *Document) BindClick(el dom.Element, fn func()) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	d.handlers[e.node] = fn
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

package htmldom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/hyperifyio/ytreader/internal/dom"
)

// ErrBadStyle is returned when an element's style attribute cannot be parsed.
var ErrBadStyle = errors.New("htmldom: unparsable style attribute")

// Element wraps a node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

func (e *Element) ID() string { return attr(e.node, "id") }

func (e *Element) HasClass(name string) bool {
	for _, c := range strings.Fields(attr(e.node, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Element) Parent() dom.Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) SetAttr(name, value string) error {
	for i := range e.node.Attr {
		if e.node.Attr[i].Key == name {
			e.node.Attr[i].Val = value
			return nil
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

func (e *Element) RemoveAttr(name string) error {
	kept := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Key != name {
			kept = append(kept, a)
		}
	}
	e.node.Attr = kept
	return nil
}

// Style reports an inline property. An unparsable style attribute reads as
// if the property were unset.
func (e *Element) Style(prop string) (string, bool) {
	prop = strings.ToLower(prop)
	decls, err := e.declarations()
	if err != nil {
		return "", false
	}
	for _, d := range decls {
		if strings.ToLower(d.Property) == prop {
			return d.Value, d.Important
		}
	}
	return "", false
}

// SetStyle sets one inline property. It fails without touching the
// attribute when the existing style cannot be parsed.
func (e *Element) SetStyle(prop, value string, important bool) error {
	prop = strings.ToLower(prop)
	if strings.TrimSpace(value) == "" {
		return e.RemoveStyle(prop)
	}
	decls, err := e.declarations()
	if err != nil {
		return err
	}
	for _, d := range decls {
		if strings.ToLower(d.Property) == prop {
			d.Value = value
			d.Important = important
			return e.writeDeclarations(decls)
		}
	}
	decls = append(decls, &css.Declaration{Property: prop, Value: value, Important: important})
	return e.writeDeclarations(decls)
}

func (e *Element) RemoveStyle(prop string) error {
	prop = strings.ToLower(prop)
	decls, err := e.declarations()
	if err != nil {
		return err
	}
	kept := decls[:0]
	for _, d := range decls {
		if strings.ToLower(d.Property) != prop {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(decls) {
		return nil
	}
	return e.writeDeclarations(kept)
}

func (e *Element) SetCSSText(text string) error {
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return err
	}
	return e.writeDeclarations(decls)
}

// declarations parses the style attribute. The parser loses the value of a
// final declaration that has no terminating semicolon, so one is added.
func (e *Element) declarations() ([]*css.Declaration, error) {
	raw, ok := e.Attr("style")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return nil, nil
	}
	if !strings.HasSuffix(raw, ";") {
		raw += ";"
	}
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadStyle, raw, err)
	}
	return decls, nil
}

func (e *Element) writeDeclarations(decls []*css.Declaration) error {
	if len(decls) == 0 {
		return e.RemoveAttr("style")
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		s := d.Property + ": " + d.Value
		if d.Important {
			s += " !important"
		}
		parts = append(parts, s)
	}
	return e.SetAttr("style", strings.Join(parts, "; ")+";")
}

func (e *Element) Text() string {
	return goquery.NewDocumentFromNode(e.node).Text()
}

func (e *Element) SetText(s string) error {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return nil
}

func (e *Element) AppendChild(child dom.Element) error {
	c, err := e.doc.own(child)
	if err != nil {
		return err
	}
	detach(c.node)
	e.node.AppendChild(c.node)
	return nil
}

func (e *Element) InsertAfter(sibling dom.Element) error {
	s, err := e.doc.own(sibling)
	if err != nil {
		return err
	}
	parent := e.node.Parent
	if parent == nil {
		return errDetached
	}
	detach(s.node)
	parent.InsertBefore(s.node, e.node.NextSibling)
	return nil
}

func (e *Element) Remove() error {
	detach(e.node)
	var drop func(*html.Node)
	drop = func(n *html.Node) {
		delete(e.doc.handlers, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			drop(c)
		}
	}
	drop(e.node)
	return nil
}

func (e *Element) Contains(selector string) bool {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return false
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if sel.MatchFirst(c) != nil {
			return true
		}
	}
	return false
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

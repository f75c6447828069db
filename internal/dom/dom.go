// Package dom defines the minimal document capability the reader-mode engine
// and the text extractors depend on. Backends adapt a parsed HTML tree or a
// live browser page to these interfaces.
package dom

import "errors"

// ErrForeignElement is returned when an element from one backend is passed to
// another backend's mutation method.
var ErrForeignElement = errors.New("dom: element belongs to a different document")

// Document is a handle to a mutable, externally-owned document tree.
//
// Lookups report a miss as a nil Element with a nil error. An error is only
// returned when the backend itself fails (malformed selector, lost browser
// connection).
type Document interface {
	// QueryAll returns every element matching the CSS selector in document order.
	QueryAll(selector string) ([]Element, error)
	// Query returns the first element matching the selector, or nil.
	Query(selector string) (Element, error)
	// ByID returns the element with the given id attribute, or nil.
	ByID(id string) (Element, error)
	// Root returns the document element (<html>), or nil.
	Root() Element
	// Body returns <body>, or nil.
	Body() Element
	// CreateElement returns a new detached element.
	CreateElement(tag string) (Element, error)
	// BindClick arranges for fn to run when el is clicked.
	BindClick(el Element, fn func()) error
}

// Element is a single node handle. Getters return zero values for detached or
// unreachable nodes; they never fail.
type Element interface {
	ID() string
	HasClass(name string) bool
	// Parent returns the parent element, or nil at the document root.
	Parent() Element

	Attr(name string) (string, bool)
	SetAttr(name, value string) error
	RemoveAttr(name string) error

	// Style returns the inline value of prop and whether it carries !important.
	Style(prop string) (value string, important bool)
	SetStyle(prop, value string, important bool) error
	RemoveStyle(prop string) error
	// SetCSSText replaces the whole inline style declaration block.
	SetCSSText(css string) error

	Text() string
	SetText(s string) error

	AppendChild(child Element) error
	// InsertAfter places sibling directly after the receiver.
	InsertAfter(sibling Element) error
	Remove() error
	// Contains reports whether a strict descendant matches selector. It
	// returns false when the selector cannot be evaluated.
	Contains(selector string) bool
}

// Closest walks el and its ancestors and returns the first one for which
// match is true.
func Closest(el Element, match func(Element) bool) Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if match(cur) {
			return cur
		}
	}
	return nil
}

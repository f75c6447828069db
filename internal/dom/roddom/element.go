package roddom

import (
	"errors"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hyperifyio/ytreader/internal/dom"
)

var errDetached = errors.New("roddom: element has no parent")

// Element is a remote handle to a node in the page.
type Element struct {
	doc *Document
	el  *rod.Element
}

// Rod returns the underlying rod element.
func (e *Element) Rod() *rod.Element { return e.el }

func (e *Element) call(js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	return e.el.Evaluate(rod.Eval(js, args...))
}

func (e *Element) str(js string, args ...interface{}) string {
	res, err := e.call(js, args...)
	if err != nil || res.Value.Nil() {
		return ""
	}
	return res.Value.Str()
}

func (e *Element) boolean(js string, args ...interface{}) bool {
	res, err := e.call(js, args...)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (e *Element) ID() string {
	return e.str(`function() { return this.id || '' }`)
}

func (e *Element) HasClass(name string) bool {
	return e.boolean(`function(c) { return !!this.classList && this.classList.contains(c) }`, name)
}

func (e *Element) Parent() dom.Element {
	obj, err := e.el.Evaluate(rod.Eval(`function() { return this.parentElement }`).ByObject())
	if err != nil {
		return nil
	}
	p, err := e.doc.fromObject(obj)
	if err != nil {
		return nil
	}
	return p
}

func (e *Element) Attr(name string) (string, bool) {
	res, err := e.call(`function(n) { return this.getAttribute(n) }`, name)
	if err != nil || res.Value.Nil() {
		return "", false
	}
	return res.Value.Str(), true
}

func (e *Element) SetAttr(name, value string) error {
	_, err := e.call(`function(n, v) { this.setAttribute(n, v) }`, name, value)
	return err
}

func (e *Element) RemoveAttr(name string) error {
	_, err := e.call(`function(n) { this.removeAttribute(n) }`, name)
	return err
}

func (e *Element) Style(prop string) (string, bool) {
	res, err := e.call(`function(p) {
		return [this.style.getPropertyValue(p), this.style.getPropertyPriority(p)]
	}`, prop)
	if err != nil {
		return "", false
	}
	arr := res.Value.Arr()
	if len(arr) != 2 {
		return "", false
	}
	return arr[0].Str(), arr[1].Str() == "important"
}

func (e *Element) SetStyle(prop, value string, important bool) error {
	priority := ""
	if important {
		priority = "important"
	}
	_, err := e.call(`function(p, v, i) { this.style.setProperty(p, v, i) }`, prop, value, priority)
	return err
}

func (e *Element) RemoveStyle(prop string) error {
	_, err := e.call(`function(p) {
		this.style.removeProperty(p);
		if (this.style.length === 0) this.removeAttribute('style');
	}`, prop)
	return err
}

func (e *Element) SetCSSText(css string) error {
	_, err := e.call(`function(c) { this.style.cssText = c }`, css)
	return err
}

func (e *Element) Text() string {
	return e.str(`function() { return this.innerText || this.textContent || '' }`)
}

func (e *Element) SetText(s string) error {
	_, err := e.call(`function(s) { this.textContent = s }`, s)
	return err
}

func (e *Element) AppendChild(child dom.Element) error {
	c, err := e.doc.own(child)
	if err != nil {
		return err
	}
	_, err = e.call(`function(c) { this.appendChild(c) }`, c.el.Object)
	return err
}

func (e *Element) InsertAfter(sibling dom.Element) error {
	s, err := e.doc.own(sibling)
	if err != nil {
		return err
	}
	res, err := e.call(`function(s) {
		if (!this.parentNode) return false;
		this.parentNode.insertBefore(s, this.nextSibling);
		return true;
	}`, s.el.Object)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return errDetached
	}
	return nil
}

// Remove detaches the element and forgets click handlers bound inside it.
func (e *Element) Remove() error {
	res, err := e.call(`function(attr) {
		var keys = [];
		if (this.hasAttribute && this.hasAttribute(attr)) keys.push(this.getAttribute(attr));
		if (this.querySelectorAll) {
			this.querySelectorAll('[' + attr + ']').forEach(function(n) { keys.push(n.getAttribute(attr)); });
		}
		this.remove();
		return keys;
	}`, clickAttr)
	if err != nil {
		return err
	}
	keys := make([]string, 0)
	for _, k := range res.Value.Arr() {
		keys = append(keys, k.Str())
	}
	e.doc.forget(keys)
	return nil
}

func (e *Element) Contains(selector string) bool {
	return e.boolean(`function(s) {
		try { return this.querySelector(s) !== null } catch (err) { return false }
	}`, selector)
}

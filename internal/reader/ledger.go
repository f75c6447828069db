package reader

import (
	"errors"
	"strconv"

	"github.com/hyperifyio/ytreader/internal/dom"
)

// ledgerEntry is the inline display an element had before it was hidden.
// set is false when the element had no inline display at all.
type ledgerEntry struct {
	display   string
	important bool
	set       bool
}

// ledger maps marker ids to original display values. Only elements hidden by
// the owning engine are ever entered, and each id is entered once.
type ledger struct {
	order   []string
	entries map[string]ledgerEntry
}

func newLedger() *ledger {
	return &ledger{entries: make(map[string]ledgerEntry)}
}

func (l *ledger) has(id string) bool {
	_, ok := l.entries[id]
	return ok
}

func (l *ledger) record(id string, e ledgerEntry) {
	if l.has(id) {
		return
	}
	l.order = append(l.order, id)
	l.entries[id] = e
}

func (l *ledger) len() int { return len(l.order) }

// restore applies an entry back onto el and drops the marker. The marker
// goes even if the display cannot be written back.
func (e ledgerEntry) restore(el dom.Element) error {
	var err error
	if e.set {
		err = el.SetStyle("display", e.display, e.important)
	} else {
		err = el.RemoveStyle("display")
	}
	return errors.Join(err, el.RemoveAttr(markerAttr))
}

func markerSelector(id string) string {
	return "[" + markerAttr + "=" + strconv.Quote(id) + "]"
}

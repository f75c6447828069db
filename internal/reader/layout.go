package reader

import (
	"github.com/hyperifyio/ytreader/internal/dom"
)

type styleProp struct {
	name  string
	value string
}

// layoutTarget is one of the elements restyled into the single-column dark
// layout. lookups are tried in order; the first hit wins.
type layoutTarget struct {
	name      string
	lookups   []string
	overrides []styleProp
}

var layoutTargets = []layoutTarget{
	{
		name:    "primary",
		lookups: []string{"ytd-watch-flexy #primary", "#primary"},
		overrides: []styleProp{
			{"background", "black"},
			{"color", "white"},
			{"padding", "0"},
			{"margin", "0 auto"},
			{"max-width", "100%"},
			{"display", "block"},
		},
	},
	{
		name:    "player-container-outer",
		lookups: []string{"#player-container-outer"},
		overrides: []styleProp{
			{"background", "black"},
			{"display", "block"},
			{"width", "100%"},
			{"max-width", "unset"},
		},
	},
	{
		name:    "player-container",
		lookups: []string{"#player-container"},
		overrides: []styleProp{
			{"max-width", "900px"},
			{"margin", "20px auto"},
			{"background", "black"},
			{"display", "block"},
		},
	},
	{
		name:    "player",
		lookups: []string{"#player"},
		overrides: []styleProp{
			{"margin", "0 auto"},
			{"display", "block"},
			{"max-width", "100%"},
			{"width", "100%"},
			{"height", "auto"},
			{"z-index", "1000"},
			{"background", "black"},
		},
	},
}

// find returns the first element matched by the target's lookups, or nil.
func (t layoutTarget) find(doc dom.Document) (dom.Element, error) {
	for _, sel := range t.lookups {
		el, err := doc.Query(sel)
		if err != nil {
			return nil, err
		}
		if el != nil {
			return el, nil
		}
	}
	return nil, nil
}

func (t layoutTarget) apply(el dom.Element) error {
	for _, p := range t.overrides {
		if err := el.SetStyle(p.name, p.value, true); err != nil {
			return err
		}
	}
	return nil
}

// reset clears every property apply sets, whatever it held before Enable.
func (t layoutTarget) reset(el dom.Element) error {
	for _, p := range t.overrides {
		if err := el.RemoveStyle(p.name); err != nil {
			return err
		}
	}
	return nil
}

// pageBackground is forced on <html> and <body> while reader mode is on.
var pageBackground = styleProp{"background", "black"}

package reader

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ytreader/internal/dom"
)

const containerCSS = `max-width: 900px; margin: 20px auto; padding: 20px;
background: #1a1a1a; color: #f0f0f0; border-radius: 8px;
box-shadow: 0 4px 15px rgba(0,0,0,0.5); font-family: 'Segoe UI', Arial, sans-serif;
line-height: 1.6; font-size: 1.1em; position: relative; z-index: 9999; display: block;`

const summaryBoxCSS = `white-space: pre-wrap;`

const disableButtonCSS = `background: #444; color: #fff; border: none; border-radius: 5px;
padding: 8px 15px; cursor: pointer; font-size: 0.95em; margin-top: 15px; display: block;
width: fit-content; margin-left: auto; margin-right: auto; transition: background 0.3s ease;`

var errNoAttachPoint = errors.New("reader: no element to attach the summary panel to")

// injectPanel makes sure exactly one summary container exists and shows
// summary. Existing container, panel and button are reused in place.
func (e *Engine) injectPanel(summary string, primary, player dom.Element) error {
	container, err := e.doc.ByID(containerID)
	if err != nil {
		return err
	}
	if container == nil {
		container, err = e.newElement("div", containerID, containerCSS)
		if err != nil {
			return err
		}
		if err := e.attachContainer(container, primary, player); err != nil {
			return err
		}
	}

	box, err := e.doc.ByID(summaryBoxID)
	if err != nil {
		return err
	}
	if box == nil {
		if box, err = e.newElement("div", summaryBoxID, summaryBoxCSS); err != nil {
			return err
		}
		if err := container.AppendChild(box); err != nil {
			return err
		}
	}
	if strings.TrimSpace(summary) == "" {
		summary = fallbackSummary
	}
	if err := box.SetText(summary); err != nil {
		return err
	}

	btn, err := e.doc.ByID(disableButtonID)
	if err != nil {
		return err
	}
	if btn != nil {
		return nil
	}
	if btn, err = e.newElement("button", disableButtonID, disableButtonCSS); err != nil {
		return err
	}
	if err := btn.SetText(disableButtonText); err != nil {
		return err
	}
	if err := container.AppendChild(btn); err != nil {
		return err
	}
	return e.doc.BindClick(btn, e.disableFromPage)
}

// attachContainer places the container at the end of the primary column,
// else right after the player, else at the end of <body>.
func (e *Engine) attachContainer(container, primary, player dom.Element) error {
	if primary != nil {
		return primary.AppendChild(container)
	}
	if player != nil {
		err := player.InsertAfter(container)
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Msg("reader: insert after player failed, falling back to body")
	}
	if body := e.doc.Body(); body != nil {
		return body.AppendChild(container)
	}
	return errNoAttachPoint
}

func (e *Engine) newElement(tag, id, css string) (dom.Element, error) {
	el, err := e.doc.CreateElement(tag)
	if err != nil {
		return nil, err
	}
	if err := el.SetAttr("id", id); err != nil {
		return nil, err
	}
	if err := el.SetCSSText(css); err != nil {
		return nil, err
	}
	return el, nil
}

// disableFromPage is the in-page toggle: restore the page, then tell the
// popup side that reader mode went off from within the page.
func (e *Engine) disableFromPage() {
	if err := e.Disable(); err != nil {
		log.Warn().Err(err).Msg("reader: disable from page")
	}
	if e.notifier == nil {
		return
	}
	if err := e.notifier.ReaderModeDisabled(); err != nil {
		log.Warn().Err(err).Msg("reader: notify disabled")
	}
}

package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/ytreader/internal/browser"
	"github.com/hyperifyio/ytreader/internal/dom"
	"github.com/hyperifyio/ytreader/internal/dom/roddom"
	"github.com/hyperifyio/ytreader/internal/messaging"
	"github.com/hyperifyio/ytreader/internal/reader"
)

// runHost opens the page in a browser and serves reader-mode commands over
// native-messaging frames on stdin and stdout until stdin closes.
func (a *App) runHost(ctx context.Context) error {
	m := browser.NewManager(browser.Config{
		RemoteURL:      a.cfg.BrowserURL,
		Headful:        a.cfg.Headful,
		Stealth:        a.cfg.Stealth,
		BlockResources: a.cfg.BlockResources,
	})
	if _, err := m.Start(ctx); err != nil {
		return err
	}
	defer m.Close()

	tab, err := m.OpenTab(ctx, a.cfg.URL)
	if err != nil {
		return err
	}
	defer tab.Close()

	doc := roddom.New(tab.Page)
	defer doc.Close()
	log.Info().Str("url", a.cfg.URL).Msg("host ready")
	return a.serve(ctx, doc)
}

// serve attaches a reader-mode engine to doc and runs the message loop.
func (a *App) serve(ctx context.Context, doc dom.Document) error {
	conn := messaging.NewConn(a.stdin, a.stdout)
	engine := reader.New(doc, reader.WithNotifier(&messaging.StreamNotifier{Conn: conn}))
	if err := messaging.Serve(ctx, conn, &messaging.Handler{Target: engine}); err != nil {
		return fmt.Errorf("serve messages: %w", err)
	}
	if engine.Active() {
		if err := engine.Disable(); err != nil {
			log.Warn().Err(err).Msg("restore page on exit")
		}
	}
	return nil
}

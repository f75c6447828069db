// Package messaging carries the reader-mode message contract between the
// popup side and a page: inbound enable/disable/ping commands and the
// outbound notice sent when the user turns reader mode off in the page.
package messaging

import (
	"github.com/rs/zerolog/log"
)

// Message types.
const (
	TypeEnable   = "ENABLE_READER_MODE"
	TypeDisable  = "DISABLE_READER_MODE"
	TypePing     = "PING"
	TypeDisabled = "READER_MODE_DISABLED"

	StatusPong = "PONG"
)

// Message is one framed JSON message. Summary is only meaningful for
// ENABLE_READER_MODE; an absent summary and an empty one are equivalent.
type Message struct {
	Type    string  `json:"type"`
	Summary *string `json:"summary,omitempty"`
}

// Response is the synchronous reply to PING.
type Response struct {
	Status string `json:"status"`
}

// Toggler is the page-side target of inbound commands.
type Toggler interface {
	Enable(summary string) error
	Disable() error
}

// Handler dispatches inbound messages to a Toggler. Enable and disable are
// fire-and-forget: their failures are logged, never answered.
type Handler struct {
	Target Toggler
}

// Handle processes msg and returns a response for message types that have
// one.
func (h *Handler) Handle(msg Message) *Response {
	switch msg.Type {
	case TypeEnable:
		summary := ""
		if msg.Summary != nil {
			summary = *msg.Summary
		}
		if err := h.Target.Enable(summary); err != nil {
			log.Warn().Err(err).Msg("enable reader mode")
		}
	case TypeDisable:
		if err := h.Target.Disable(); err != nil {
			log.Warn().Err(err).Msg("disable reader mode")
		}
	case TypePing:
		return &Response{Status: StatusPong}
	default:
		log.Debug().Str("type", msg.Type).Msg("ignoring unknown message")
	}
	return nil
}

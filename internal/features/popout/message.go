package popout

import (
	"context"

	"eegdash/internal/features/widget"
)

type MessageType string

const (
	// MessageInit is the first message a surface receives
	MessageInit MessageType = "init"
	// MessageState pushes the latest widget content to a surface
	MessageState MessageType = "state"
	// MessageUpdate carries a patch from a surface back to the dashboard
	MessageUpdate MessageType = "update"
	// MessageClosed is sent by a surface that is being closed by the user
	MessageClosed MessageType = "closed"
	// MessageError reports a rejected update back to the surface
	MessageError MessageType = "error"
	// MessageDisconnected is raised by the transport when a surface goes away
	// without saying goodbye. It carries no sequence number.
	MessageDisconnected MessageType = "disconnected"
)

// Payload is what a popped-out surface needs to render its widget
type Payload struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Data     any            `json:"data,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// payloadOf carries content built by the widget's kind. Unregistered types
// fall back to the raw data.
func payloadOf(w *widget.Widget, registry *widget.Registry) *Payload {
	p := &Payload{ID: w.ID, Type: w.Type, Title: w.Title, Data: w.Data, Settings: w.Settings}
	if registry == nil {
		return p
	}
	if content, err := registry.Build(w); err == nil {
		p.Data = content
	}
	return p
}

// Message is one frame on the channel between the dashboard and a surface.
// Seq increases per surface and per direction.
type Message struct {
	Type     MessageType   `json:"type"`
	WidgetID string        `json:"widgetId"`
	Seq      uint64        `json:"seq"`
	Widget   *Payload      `json:"widget,omitempty"`
	Patch    *widget.Patch `json:"patch,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Windowing opens and talks to secondary surfaces. Message handlers may be
// called from any goroutine.
type Windowing interface {
	Open(ctx context.Context, surfaceID string, init Message) error
	Close(surfaceID string) error
	OnMessage(surfaceID string, handle func(Message)) error
	Send(surfaceID string, msg Message) error
}

// Updater applies a patch through the dashboard's validated update path
type Updater interface {
	UpdateWidget(id string, patch widget.Patch) (*widget.Widget, error)
}

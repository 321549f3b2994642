package popout

import (
	"context"
	"errors"
	"fmt"

	"eegdash/internal/features/layout"
	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type surface struct {
	id       string
	widgetID string
	recvSeq  uint64
	sendSeq  uint64
}

// Manager moves widgets between the main canvas and secondary surfaces.
// Every method must run on the owning workspace's loop; inbound surface
// messages are brought onto it through dispatch.
type Manager struct {
	store    *widget.Store
	engine   *layout.Engine
	windows  Windowing
	updater  Updater
	dispatch func(func())
	onChange func()
	owner    string
	log      *zap.Logger

	surfaces map[string]*surface
	newID    func() string
}

type ManagerOptions struct {
	Store    *widget.Store
	Engine   *layout.Engine
	Windows  Windowing
	Updater  Updater
	Dispatch func(func())
	// OnChange runs after a surface message changed the store
	OnChange func()
	// Owner is the user whose surfaces this manager opens
	Owner  string
	Logger *zap.Logger
}

func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		store:    opts.Store,
		engine:   opts.Engine,
		windows:  opts.Windows,
		updater:  opts.Updater,
		dispatch: opts.Dispatch,
		onChange: opts.OnChange,
		owner:    opts.Owner,
		log:      opts.Logger,
		surfaces: make(map[string]*surface),
		newID:    uuid.NewString,
	}
	if m.dispatch == nil {
		m.dispatch = func(fn func()) { fn() }
	}
	if m.onChange == nil {
		m.onChange = func() {}
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	return m
}

// SurfaceID returns the surface a popped-out widget is shown on
func (m *Manager) SurfaceID(widgetID string) (string, bool) {
	s, ok := m.surfaces[widgetID]
	if !ok {
		return "", false
	}
	return s.id, true
}

func (m *Manager) busy(id string) bool {
	if d := m.store.Drag(); d != nil && d.WidgetID == id {
		return true
	}
	if r := m.store.Resize(); r != nil && r.WidgetID == id {
		return true
	}
	return false
}

// PopOut opens a surface for the widget and takes it off the canvas. The
// canvas geometry is kept on the widget so PopIn can put it back.
func (m *Manager) PopOut(ctx context.Context, id string) (*widget.Widget, string, error) {
	w, err := m.store.Widget(id)
	if err != nil {
		return nil, "", err
	}
	if w.IsPopOut {
		return nil, "", ErrAlreadyPopped
	}
	if m.busy(id) {
		return nil, "", widget.ErrGestureBusy
	}

	s := &surface{id: m.newID(), widgetID: id, sendSeq: 1}
	init := Message{Type: MessageInit, WidgetID: id, Seq: s.sendSeq, Widget: payloadOf(w, m.store.Registry())}
	handle := func(msg Message) {
		m.dispatch(func() { m.receive(s.id, msg) })
	}
	if err := m.windows.Open(WithOwner(ctx, m.owner), s.id, init); err != nil {
		return nil, "", fmt.Errorf("open popout surface: %w", err)
	}
	if err := m.windows.OnMessage(s.id, handle); err != nil {
		_ = m.windows.Close(s.id)
		return nil, "", fmt.Errorf("subscribe popout surface: %w", err)
	}

	out, err := m.store.MarkPoppedOut(id)
	if err != nil {
		_ = m.windows.Close(s.id)
		return nil, "", err
	}
	m.surfaces[id] = s

	m.log.Info("Widget popped out", zap.String("widget_id", id), zap.String("surface_id", s.id))
	return out, s.id, nil
}

// PopIn closes the widget's surface and returns it to the canvas at its
// previous geometry. When that spot is taken the engine looks for the
// nearest free one; failing that the widget comes back minimized.
func (m *Manager) PopIn(ctx context.Context, id string) (*widget.Widget, error) {
	w, err := m.store.Widget(id)
	if err != nil {
		return nil, err
	}
	if !w.IsPopOut {
		return nil, ErrNotPopped
	}

	if s, ok := m.surfaces[id]; ok {
		delete(m.surfaces, id)
		if err := m.windows.Close(s.id); err != nil {
			m.log.Debug("Popout surface already gone", zap.String("surface_id", s.id), zap.Error(err))
		}
	}
	return m.restore(w)
}

func (m *Manager) restore(w *widget.Widget) (*widget.Widget, error) {
	candidate := *w
	if w.PreviousPosition != nil {
		candidate.Position = *w.PreviousPosition
	}
	if w.PreviousSize != nil {
		candidate.Size = *w.PreviousSize
	}
	candidate.Size = layout.BoundSize(candidate.Size, candidate.MinSize, candidate.MaxSize)
	// judge the restored rect as if it were back on the canvas
	candidate.IsPopOut = false

	scene := layout.SceneOf(m.store)
	rect := candidate.Rect()
	minimized := false

	if !m.engine.Fits(scene, candidate) {
		resolved, err := m.engine.Resolve(scene, candidate, layout.Proposal{Kind: layout.Move, Rect: rect})
		if err == nil {
			rect = resolved
		} else {
			m.log.Info("No room to restore popped-in widget, minimizing", zap.String("widget_id", w.ID))
			minimized = true
			rect = geometry.NewRect(geometry.Point{
				X: geometry.Sanitize(rect.X),
				Y: geometry.Sanitize(rect.Y),
			}, rect.Size())
		}
	}

	return m.store.MarkPoppedIn(w.ID, rect, minimized)
}

// Forget closes the surface of a widget that is being removed
func (m *Manager) Forget(id string) {
	s, ok := m.surfaces[id]
	if !ok {
		return
	}
	delete(m.surfaces, id)
	if err := m.windows.Close(s.id); err != nil {
		m.log.Debug("Popout surface already gone", zap.String("surface_id", s.id), zap.Error(err))
	}
}

// PopInAll returns every popped-out widget of the current layout to the
// canvas. Widgets flagged popped out without a live surface, as after a
// session restore, are included.
func (m *Manager) PopInAll(ctx context.Context) []string {
	var ids []string
	for _, w := range m.store.Widgets() {
		if !w.IsPopOut {
			continue
		}
		if _, err := m.PopIn(ctx, w.ID); err != nil {
			m.log.Warn("Failed to pop in widget", zap.String("widget_id", w.ID), zap.Error(err))
			continue
		}
		ids = append(ids, w.ID)
	}
	return ids
}

// Sync pushes the widget's current content to its surface, if it has one.
// Delivery failures are logged and dropped.
func (m *Manager) Sync(id string) {
	s, ok := m.surfaces[id]
	if !ok {
		return
	}
	w, err := m.store.Widget(id)
	if err != nil {
		return
	}
	m.send(s, Message{Type: MessageState, WidgetID: id, Widget: payloadOf(w, m.store.Registry())})
}

func (m *Manager) send(s *surface, msg Message) {
	s.sendSeq++
	msg.Seq = s.sendSeq
	err := m.windows.Send(s.id, msg)
	if err == nil {
		return
	}
	m.log.Warn("Dropped popout message",
		zap.String("surface_id", s.id),
		zap.String("type", string(msg.Type)),
		zap.Error(err),
	)
	if errors.Is(err, ErrUnknownSurface) {
		// the transport forgot the surface, so it will never report closing
		id := s.id
		m.dispatch(func() { m.receive(id, Message{Type: MessageDisconnected, WidgetID: s.widgetID}) })
	}
}

func (m *Manager) surfaceByID(surfaceID string) *surface {
	for _, s := range m.surfaces {
		if s.id == surfaceID {
			return s
		}
	}
	return nil
}

// receive handles one inbound message on the loop
func (m *Manager) receive(surfaceID string, msg Message) {
	s := m.surfaceByID(surfaceID)
	if s == nil {
		m.log.Debug("Message for closed popout surface", zap.String("surface_id", surfaceID))
		return
	}

	if msg.Type != MessageDisconnected {
		if msg.Seq <= s.recvSeq {
			m.log.Debug("Dropped stale popout message",
				zap.String("surface_id", surfaceID),
				zap.Uint64("seq", msg.Seq),
				zap.Uint64("last_seq", s.recvSeq),
			)
			return
		}
		s.recvSeq = msg.Seq
	}

	switch msg.Type {
	case MessageUpdate:
		if msg.Patch == nil {
			return
		}
		if _, err := m.updater.UpdateWidget(s.widgetID, *msg.Patch); err != nil {
			m.log.Warn("Rejected popout update", zap.String("widget_id", s.widgetID), zap.Error(err))
			m.send(s, Message{Type: MessageError, WidgetID: s.widgetID, Error: err.Error()})
			return
		}
		m.onChange()

	case MessageClosed, MessageDisconnected:
		w, err := m.store.Widget(s.widgetID)
		delete(m.surfaces, s.widgetID)
		if msg.Type == MessageClosed {
			_ = m.windows.Close(s.id)
		}
		if err != nil {
			m.log.Warn("Popout closed for missing widget", zap.String("widget_id", s.widgetID))
			return
		}
		if _, err := m.restore(w); err != nil {
			m.log.Warn("Failed to pop in closed surface", zap.String("widget_id", s.widgetID), zap.Error(err))
			return
		}
		m.log.Info("Widget popped in from closed surface", zap.String("widget_id", s.widgetID))
		m.onChange()

	default:
		m.log.Debug("Ignored popout message", zap.String("type", string(msg.Type)))
	}
}

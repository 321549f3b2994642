package popout

import (
	"context"
	"errors"
	"testing"

	"eegdash/internal/features/layout"
	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"go.uber.org/zap"
)

type fakeWindows struct {
	opened  map[string]func(Message)
	owners  map[string]string
	inits   map[string]Message
	sent    map[string][]Message
	closed  []string
	openErr error
}

func newFakeWindows() *fakeWindows {
	return &fakeWindows{
		opened: make(map[string]func(Message)),
		owners: make(map[string]string),
		inits:  make(map[string]Message),
		sent:   make(map[string][]Message),
	}
}

func (f *fakeWindows) Open(ctx context.Context, id string, init Message) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened[id] = nil
	f.owners[id] = ownerFrom(ctx)
	f.inits[id] = init
	return nil
}

func (f *fakeWindows) OnMessage(id string, handle func(Message)) error {
	if _, ok := f.opened[id]; !ok {
		return ErrUnknownSurface
	}
	f.opened[id] = handle
	return nil
}

func (f *fakeWindows) Close(id string) error {
	if _, ok := f.opened[id]; !ok {
		return ErrUnknownSurface
	}
	delete(f.opened, id)
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeWindows) Send(id string, msg Message) error {
	if _, ok := f.opened[id]; !ok {
		return ErrUnknownSurface
	}
	f.sent[id] = append(f.sent[id], msg)
	return nil
}

type storeUpdater struct{ store *widget.Store }

func (u storeUpdater) UpdateWidget(id string, patch widget.Patch) (*widget.Widget, error) {
	return u.store.UpdateWidget(id, patch)
}

type fixture struct {
	store   *widget.Store
	windows *fakeWindows
	manager *Manager
	changes int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, widget.DefaultRegistry())
}

func newFixtureWith(t *testing.T, registry *widget.Registry) *fixture {
	t.Helper()
	f := &fixture{
		store:   widget.NewStore(registry, widget.Policy{EnableCollisionDetection: true}, geometry.Size{Width: 1200, Height: 800}),
		windows: newFakeWindows(),
	}
	f.manager = NewManager(ManagerOptions{
		Store:    f.store,
		Engine:   layout.NewEngine(zap.NewNop()),
		Windows:  f.windows,
		Updater:  storeUpdater{f.store},
		OnChange: func() { f.changes++ },
		Owner:    "user-1",
		Logger:   zap.NewNop(),
	})
	return f
}

func (f *fixture) add(t *testing.T, x, y, w, h float64) *widget.Widget {
	t.Helper()
	out, err := f.store.AddWidget(widget.Spec{
		Type:     "dda-results",
		Position: &geometry.Point{X: x, Y: y},
		Size:     &geometry.Size{Width: w, Height: h},
	})
	if err != nil {
		t.Fatalf("AddWidget() error = %v", err)
	}
	return out
}

func TestPopOutPopInRestoresGeometry(t *testing.T) {
	f := newFixture(t)
	w := f.add(t, 40, 60, 300, 200)
	yes := true
	if _, err := f.store.UpdateWidget(w.ID, widget.Patch{IsMaximized: &yes}); err != nil {
		t.Fatalf("UpdateWidget() error = %v", err)
	}

	out, sid, err := f.manager.PopOut(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	if !out.IsPopOut || out.IsMaximized {
		t.Errorf("Expected popped out and not maximized, got %+v", out)
	}
	init := f.windows.inits[sid]
	if init.Type != MessageInit || init.Widget == nil || init.Widget.ID != w.ID || init.Widget.Type != "dda-results" {
		t.Errorf("Unexpected init message %+v", init)
	}
	if owner := f.windows.owners[sid]; owner != "user-1" {
		t.Errorf("Surface opened for %q, want user-1", owner)
	}

	in, err := f.manager.PopIn(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("PopIn() error = %v", err)
	}
	if in.Rect() != w.Rect() {
		t.Errorf("PopIn() restored %+v, want %+v", in.Rect(), w.Rect())
	}
	if in.IsPopOut || in.IsMinimized || in.PreviousPosition != nil || in.PreviousSize != nil {
		t.Errorf("Expected a clean popped-in widget, got %+v", in)
	}
	if len(f.windows.closed) != 1 || f.windows.closed[0] != sid {
		t.Errorf("Expected surface %s closed, got %v", sid, f.windows.closed)
	}
}

func TestPopOutErrors(t *testing.T) {
	f := newFixture(t)
	w := f.add(t, 0, 0, 300, 200)
	ctx := context.Background()

	if _, _, err := f.manager.PopOut(ctx, "missing"); !errors.Is(err, widget.ErrNotFound) {
		t.Errorf("PopOut unknown: got %v", err)
	}
	if _, err := f.manager.PopIn(ctx, w.ID); !errors.Is(err, ErrNotPopped) {
		t.Errorf("PopIn docked widget: got %v", err)
	}
	if _, _, err := f.manager.PopOut(ctx, w.ID); err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	if _, _, err := f.manager.PopOut(ctx, w.ID); !errors.Is(err, ErrAlreadyPopped) {
		t.Errorf("Second PopOut: got %v", err)
	}
}

func TestPopOutOpenFailureLeavesWidget(t *testing.T) {
	f := newFixture(t)
	w := f.add(t, 0, 0, 300, 200)
	f.windows.openErr = errors.New("window blocked")

	if _, _, err := f.manager.PopOut(context.Background(), w.ID); err == nil {
		t.Fatal("Expected PopOut to fail")
	}
	got, _ := f.store.Widget(w.ID)
	if got.IsPopOut {
		t.Error("Failed PopOut must not flag the widget")
	}
}

func TestPopInSlotTaken(t *testing.T) {
	f := newFixture(t)
	w := f.add(t, 0, 0, 300, 200)
	ctx := context.Background()
	if _, _, err := f.manager.PopOut(ctx, w.ID); err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	// fill the vacated slot
	f.add(t, 0, 0, 300, 200)

	in, err := f.manager.PopIn(ctx, w.ID)
	if err != nil {
		t.Fatalf("PopIn() error = %v", err)
	}
	if in.IsMinimized {
		t.Fatalf("Expected a free slot to be found")
	}
	if in.Position != (geometry.Point{X: 0, Y: 200}) {
		t.Errorf("PopIn() position = %+v, want just below the new widget", in.Position)
	}
}

func TestPopInNoRoomMinimizes(t *testing.T) {
	f := newFixture(t)
	f.store.SetCanvas(geometry.Size{Width: 300, Height: 200})
	w := f.add(t, 0, 0, 300, 200)
	ctx := context.Background()
	if _, _, err := f.manager.PopOut(ctx, w.ID); err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	f.add(t, 0, 0, 300, 200)

	in, err := f.manager.PopIn(ctx, w.ID)
	if err != nil {
		t.Fatalf("PopIn() error = %v", err)
	}
	if !in.IsMinimized || in.IsPopOut {
		t.Errorf("Expected widget back minimized, got %+v", in)
	}
}

func TestSurfaceMessages(t *testing.T) {
	f := newFixture(t)
	w := f.add(t, 40, 60, 300, 200)
	_, sid, err := f.manager.PopOut(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	handle := f.windows.opened[sid]

	title := "Results (detached)"
	handle(Message{Type: MessageUpdate, WidgetID: w.ID, Seq: 2, Patch: &widget.Patch{Title: &title}})
	stale := "stale"
	handle(Message{Type: MessageUpdate, WidgetID: w.ID, Seq: 1, Patch: &widget.Patch{Title: &stale}})

	got, _ := f.store.Widget(w.ID)
	if got.Title != title {
		t.Errorf("Title = %q, want %q", got.Title, title)
	}
	if f.changes != 1 {
		t.Errorf("Expected one change notification, got %d", f.changes)
	}

	yes := true
	handle(Message{Type: MessageUpdate, WidgetID: w.ID, Seq: 3, Patch: &widget.Patch{IsMaximized: &yes}})
	sent := f.windows.sent[sid]
	if len(sent) != 1 || sent[0].Type != MessageError || sent[0].Seq != 2 {
		t.Errorf("Expected one error reply with seq 2, got %+v", sent)
	}

	handle(Message{Type: MessageClosed, WidgetID: w.ID, Seq: 4})
	got, _ = f.store.Widget(w.ID)
	if got.IsPopOut || got.Rect() != w.Rect() {
		t.Errorf("Closed surface must pop the widget back in, got %+v", got)
	}
	if _, ok := f.manager.SurfaceID(w.ID); ok {
		t.Error("Surface still tracked after close")
	}
}

func TestDisconnectPopsIn(t *testing.T) {
	f := newFixture(t)
	w := f.add(t, 0, 0, 300, 200)
	_, sid, err := f.manager.PopOut(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}

	f.windows.opened[sid](Message{Type: MessageDisconnected})

	got, _ := f.store.Widget(w.ID)
	if got.IsPopOut {
		t.Error("Expected disconnect to pop the widget in")
	}
}

func TestSyncAndPopInAll(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, 0, 0, 300, 200)
	b := f.add(t, 400, 0, 300, 200)
	ctx := context.Background()
	_, sid, err := f.manager.PopOut(ctx, a.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	// flagged without a surface, as after a restore
	if _, err := f.store.MarkPoppedOut(b.ID); err != nil {
		t.Fatalf("MarkPoppedOut() error = %v", err)
	}

	f.manager.Sync(a.ID)
	if sent := f.windows.sent[sid]; len(sent) != 1 || sent[0].Type != MessageState {
		t.Errorf("Expected a state message, got %+v", sent)
	}

	ids := f.manager.PopInAll(ctx)
	if len(ids) != 2 {
		t.Errorf("PopInAll() = %v, want both widgets", ids)
	}
	for _, w := range f.store.Widgets() {
		if w.IsPopOut {
			t.Errorf("Widget %s still popped out", w.ID)
		}
	}
}

func TestPayloadBuiltByKind(t *testing.T) {
	registry := widget.NewRegistry()
	if err := registry.Register(widget.Kind{
		Type:        "dda-results",
		DefaultSize: geometry.Size{Width: 300, Height: 200},
		New: func(data any, _ map[string]any) widget.Content {
			return map[string]any{"scales": data}
		},
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	f := newFixtureWith(t, registry)
	w, err := f.store.AddWidget(widget.Spec{Type: "dda-results", Data: []int{1, 2, 4}})
	if err != nil {
		t.Fatalf("AddWidget() error = %v", err)
	}

	_, sid, err := f.manager.PopOut(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	content, ok := f.windows.inits[sid].Widget.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected built content in init, got %#v", f.windows.inits[sid].Widget.Data)
	}
	if scales, _ := content["scales"].([]int); len(scales) != 3 {
		t.Errorf("Unexpected content %#v", content)
	}
}

func TestSendToLostSurfacePopsIn(t *testing.T) {
	f := newFixture(t)
	w := f.add(t, 40, 60, 300, 200)
	_, sid, err := f.manager.PopOut(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}

	// the transport dropped the surface without reporting it
	delete(f.windows.opened, sid)
	f.manager.Sync(w.ID)

	got, _ := f.store.Widget(w.ID)
	if got.IsPopOut || got.Rect() != w.Rect() {
		t.Errorf("Expected widget back at its canvas spot, got %+v", got)
	}
	if _, ok := f.manager.SurfaceID(w.ID); ok {
		t.Error("Lost surface still tracked")
	}
	if f.changes != 1 {
		t.Errorf("Expected one change notification, got %d", f.changes)
	}
	// nothing left to sync to
	f.manager.Sync(w.ID)
	if f.changes != 1 {
		t.Errorf("Sync without a surface must not notify, got %d", f.changes)
	}
}

func TestPopInClampsStoredSize(t *testing.T) {
	f := newFixture(t)
	w := f.add(t, 40, 60, 300, 200)
	_, _, err := f.manager.PopOut(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	// the store takes any size; snapshot one below the kind minimum
	tiny := geometry.Size{Width: 5, Height: 5}
	if _, err := f.store.UpdateWidget(w.ID, widget.Patch{Size: &tiny}); err != nil {
		t.Fatalf("UpdateWidget() error = %v", err)
	}
	if _, err := f.store.MarkPoppedOut(w.ID); err != nil {
		t.Fatalf("MarkPoppedOut() error = %v", err)
	}

	in, err := f.manager.PopIn(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("PopIn() error = %v", err)
	}
	if in.Size.Width < w.MinSize.Width || in.Size.Height < w.MinSize.Height {
		t.Errorf("PopIn() size %+v below minimum %+v", in.Size, *w.MinSize)
	}
}

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"eegdash/internal/features/layout"
	"eegdash/internal/features/popout"
	"eegdash/internal/features/session"
	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"go.uber.org/zap"
)

type fakeWindows struct {
	mu       sync.Mutex
	handlers map[string]func(popout.Message)
	sent     map[string][]popout.Message
	closed   []string
}

func newFakeWindows() *fakeWindows {
	return &fakeWindows{
		handlers: make(map[string]func(popout.Message)),
		sent:     make(map[string][]popout.Message),
	}
}

func (f *fakeWindows) Open(_ context.Context, surfaceID string, init popout.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[surfaceID] = nil
	f.sent[surfaceID] = append(f.sent[surfaceID], init)
	return nil
}

func (f *fakeWindows) OnMessage(surfaceID string, handle func(popout.Message)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.handlers[surfaceID]; !ok {
		return popout.ErrUnknownSurface
	}
	f.handlers[surfaceID] = handle
	return nil
}

func (f *fakeWindows) Send(surfaceID string, msg popout.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.handlers[surfaceID]; !ok {
		return popout.ErrUnknownSurface
	}
	f.sent[surfaceID] = append(f.sent[surfaceID], msg)
	return nil
}

func (f *fakeWindows) Close(surfaceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.handlers[surfaceID]; !ok {
		return popout.ErrUnknownSurface
	}
	delete(f.handlers, surfaceID)
	f.closed = append(f.closed, surfaceID)
	return nil
}

func (f *fakeWindows) deliver(surfaceID string, msg popout.Message) {
	f.mu.Lock()
	handle := f.handlers[surfaceID]
	f.mu.Unlock()
	if handle != nil {
		handle(msg)
	}
}

// lose drops the surface without notifying anyone, like a window that never
// connected
func (f *fakeWindows) lose(surfaceID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, surfaceID)
}

func (f *fakeWindows) messages(surfaceID string) []popout.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]popout.Message(nil), f.sent[surfaceID]...)
}

func testOptions(storage session.StorageAdapter, windows popout.Windowing) WorkspaceOptions {
	return WorkspaceOptions{
		UserID:   "user-1",
		Registry: widget.DefaultRegistry(),
		Policy:   widget.Policy{GridSize: 20, EnableCollisionDetection: true},
		Canvas:   geometry.Size{Width: 1200, Height: 800},
		Storage:  storage,
		Windows:  windows,
		Debounce: time.Hour,
		Logger:   zap.NewNop(),
	}
}

func openWorkspace(t *testing.T, opts WorkspaceOptions) (*Workspace, RestoreReport) {
	t.Helper()
	ws, report, err := NewWorkspace(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewWorkspace() error = %v", err)
	}
	t.Cleanup(func() { ws.loop.Stop() })
	return ws, report
}

func addAt(t *testing.T, ws *Workspace, typ string, x, y float64) *widget.Widget {
	t.Helper()
	w, err := ws.AddWidget(context.Background(), widget.Spec{Type: typ, Position: &geometry.Point{X: x, Y: y}})
	if err != nil {
		t.Fatalf("AddWidget(%s) error = %v", typ, err)
	}
	return w
}

func storedSession(t *testing.T, storage session.StorageAdapter, userID string) (session.SessionState, bool) {
	t.Helper()
	raw, ok, err := storage.Get(context.Background(), SessionKey(userID))
	if err != nil {
		t.Fatalf("storage.Get() error = %v", err)
	}
	if !ok {
		return session.SessionState{}, false
	}
	var state session.SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		t.Fatalf("stored session is not valid JSON: %v", err)
	}
	return state, true
}

func TestAddWidgetAvoidsOverlap(t *testing.T) {
	ctx := context.Background()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), newFakeWindows()))

	first := addAt(t, ws, "annotations", 20, 20)
	second := addAt(t, ws, "annotations", 100, 20)

	if first.Position != (geometry.Point{X: 20, Y: 20}) {
		t.Errorf("first widget at %+v, want {20 20}", first.Position)
	}
	if second.Position != (geometry.Point{X: 100, Y: 220}) {
		t.Errorf("second widget at %+v, want {100 220}", second.Position)
	}

	overlaps, err := ws.Overlaps(ctx)
	if err != nil {
		t.Fatalf("Overlaps() error = %v", err)
	}
	if len(overlaps) != 0 {
		t.Errorf("Expected no overlaps, got %+v", overlaps)
	}
}

func TestAddWidgetNoRoom(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(session.NewMemoryStorage(), newFakeWindows())
	opts.Canvas = geometry.Size{Width: 300, Height: 200}
	ws, _ := openWorkspace(t, opts)

	first := addAt(t, ws, "annotations", 20, 20)
	if first.Position != (geometry.Point{}) {
		t.Errorf("Expected widget to be clamped into the canvas, got %+v", first.Position)
	}

	_, err := ws.AddWidget(ctx, widget.Spec{Type: "annotations"})
	if !errors.Is(err, layout.ErrLayoutConflict) {
		t.Fatalf("AddWidget() error = %v, want ErrLayoutConflict", err)
	}

	snap, _ := ws.Snapshot(ctx)
	if len(snap.Widgets) != 1 {
		t.Errorf("Expected the rejected widget to be discarded, got %d widgets", len(snap.Widgets))
	}
}

func TestUpdateWidgetResolvesGeometry(t *testing.T) {
	ctx := context.Background()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), newFakeWindows()))

	a := addAt(t, ws, "annotations", 0, 0)
	b := addAt(t, ws, "annotations", 600, 0)

	moved, err := ws.MoveWidget(ctx, b.ID, geometry.Point{X: 280, Y: 0})
	if err != nil {
		t.Fatalf("MoveWidget() error = %v", err)
	}
	if moved.Position != (geometry.Point{X: 300, Y: 0}) {
		t.Errorf("Expected %s to be pushed off %s to {300 0}, got %+v", b.ID, a.ID, moved.Position)
	}

	resized, err := ws.ResizeWidget(ctx, a.ID, geometry.Size{Width: 400, Height: 200})
	if err != nil {
		t.Fatalf("ResizeWidget() error = %v", err)
	}
	if resized.Size != (geometry.Size{Width: 300, Height: 200}) {
		t.Errorf("Expected resize to stop at the neighbour, got %+v", resized.Size)
	}

	title := "Notes"
	renamed, err := ws.UpdateWidget(ctx, a.ID, widget.Patch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateWidget() error = %v", err)
	}
	if renamed.Title != "Notes" || renamed.Position != (geometry.Point{}) {
		t.Errorf("Unexpected widget after title update: %+v", renamed)
	}

	if _, err := ws.UpdateWidget(ctx, "missing", widget.Patch{Title: &title}); !errors.Is(err, widget.ErrNotFound) {
		t.Errorf("UpdateWidget(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMinimizeFreesSpace(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(session.NewMemoryStorage(), newFakeWindows())
	opts.Canvas = geometry.Size{Width: 300, Height: 200}
	ws, _ := openWorkspace(t, opts)

	a := addAt(t, ws, "annotations", 0, 0)
	if _, err := ws.SetMinimized(ctx, a.ID, true); err != nil {
		t.Fatalf("SetMinimized() error = %v", err)
	}
	b := addAt(t, ws, "annotations", 0, 0)

	// a cannot come back while b holds the only spot
	if _, err := ws.SetMinimized(ctx, a.ID, false); !errors.Is(err, layout.ErrLayoutConflict) {
		t.Fatalf("SetMinimized(false) error = %v, want ErrLayoutConflict", err)
	}
	if err := ws.RemoveWidget(ctx, b.ID); err != nil {
		t.Fatalf("RemoveWidget() error = %v", err)
	}
	restored, err := ws.SetMinimized(ctx, a.ID, false)
	if err != nil {
		t.Fatalf("SetMinimized(false) error = %v", err)
	}
	if restored.IsMinimized {
		t.Error("Expected widget to be restored")
	}
}

func TestGesturesThroughWorkspace(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	ws, _ := openWorkspace(t, testOptions(storage, newFakeWindows()))

	a := addAt(t, ws, "annotations", 0, 0)

	if err := ws.StartDrag(ctx, a.ID, geometry.Point{X: 10, Y: 10}); err != nil {
		t.Fatalf("StartDrag() error = %v", err)
	}
	if err := ws.StartResize(ctx, a.ID, widget.HandleSE, geometry.Point{}); !errors.Is(err, widget.ErrGestureBusy) {
		t.Errorf("StartResize() during drag error = %v, want ErrGestureBusy", err)
	}
	if _, err := ws.DragTo(ctx, geometry.Point{X: 110, Y: 60}); err != nil {
		t.Fatalf("DragTo() error = %v", err)
	}
	moved, err := ws.EndDrag(ctx)
	if err != nil {
		t.Fatalf("EndDrag() error = %v", err)
	}
	if moved.Position != (geometry.Point{X: 100, Y: 50}) {
		t.Errorf("Expected drag to land at {100 50}, got %+v", moved.Position)
	}

	if err := ws.StartResize(ctx, a.ID, widget.HandleE, geometry.Point{X: 400, Y: 100}); err != nil {
		t.Fatalf("StartResize() error = %v", err)
	}
	if _, err := ws.ResizeTo(ctx, geometry.Point{X: 500, Y: 100}); err != nil {
		t.Fatalf("ResizeTo() error = %v", err)
	}
	resized, err := ws.EndResize(ctx)
	if err != nil {
		t.Fatalf("EndResize() error = %v", err)
	}
	if resized.Size.Width != 400 {
		t.Errorf("Expected width 400, got %v", resized.Size.Width)
	}

	if err := ws.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	state, ok := storedSession(t, storage, "user-1")
	if !ok || len(state.UIElements) != 1 || state.UIElements[0].Size.Width != 400 {
		t.Errorf("Expected committed gesture to be saved, got %+v", state.UIElements)
	}
}

func TestRemoveWidgetEndsItsGesture(t *testing.T) {
	ctx := context.Background()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), newFakeWindows()))

	a := addAt(t, ws, "annotations", 0, 0)
	if err := ws.StartDrag(ctx, a.ID, geometry.Point{}); err != nil {
		t.Fatalf("StartDrag() error = %v", err)
	}
	if err := ws.RemoveWidget(ctx, a.ID); err != nil {
		t.Fatalf("RemoveWidget() error = %v", err)
	}

	snap, _ := ws.Snapshot(ctx)
	if snap.DragState != nil {
		t.Errorf("Expected drag state to be cleared, got %+v", snap.DragState)
	}
	if _, err := ws.EndDrag(ctx); !errors.Is(err, widget.ErrNoGesture) {
		t.Errorf("EndDrag() error = %v, want ErrNoGesture", err)
	}
}

func TestPopOutRoundTrip(t *testing.T) {
	ctx := context.Background()
	windows := newFakeWindows()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), windows))

	a := addAt(t, ws, "eeg-time-series", 100, 100)

	out, surfaceID, err := ws.PopOut(ctx, a.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	if !out.IsPopOut || surfaceID == "" {
		t.Fatalf("Expected widget to be popped out with a surface, got %+v %q", out, surfaceID)
	}

	// geometry from a popped-out surface is ignored, content is applied
	title := "Fp1-F3"
	pos := geometry.Point{X: 900, Y: 500}
	updated, err := ws.UpdateWidget(ctx, a.ID, widget.Patch{Title: &title, Position: &pos})
	if err != nil {
		t.Fatalf("UpdateWidget() error = %v", err)
	}
	if updated.Title != title || updated.Position != a.Position {
		t.Errorf("Unexpected popped-out widget after update: %+v", updated)
	}
	msgs := windows.messages(surfaceID)
	if last := msgs[len(msgs)-1]; last.Type != popout.MessageState || last.Widget.Title != title {
		t.Errorf("Expected surface to receive the new state, got %+v", last)
	}

	if _, err := ws.SetMaximized(ctx, a.ID, true); !errors.Is(err, widget.ErrFlagConflict) {
		t.Errorf("SetMaximized() error = %v, want ErrFlagConflict", err)
	}

	back, err := ws.PopIn(ctx, a.ID)
	if err != nil {
		t.Fatalf("PopIn() error = %v", err)
	}
	if back.IsPopOut || back.Position != a.Position || back.Size != a.Size {
		t.Errorf("Expected original geometry back, got %+v", back)
	}
	if _, err := ws.PopIn(ctx, a.ID); !errors.Is(err, popout.ErrNotPopped) {
		t.Errorf("second PopIn() error = %v, want ErrNotPopped", err)
	}
}

func TestSurfaceClosedPopsIn(t *testing.T) {
	ctx := context.Background()
	windows := newFakeWindows()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), windows))

	a := addAt(t, ws, "annotations", 0, 0)
	_, surfaceID, err := ws.PopOut(ctx, a.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}

	windows.deliver(surfaceID, popout.Message{Type: popout.MessageClosed, WidgetID: a.ID, Seq: 1})

	// the message is handled on the loop; a Do after it observes the result
	w, err := ws.Widget(ctx, a.ID)
	if err != nil {
		t.Fatalf("Widget() error = %v", err)
	}
	if w.IsPopOut {
		t.Error("Expected closed surface to pop the widget back in")
	}
}

func TestLostSurfacePopsIn(t *testing.T) {
	ctx := context.Background()
	windows := newFakeWindows()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), windows))

	a := addAt(t, ws, "annotations", 0, 0)
	_, surfaceID, err := ws.PopOut(ctx, a.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	windows.lose(surfaceID)

	// the state push fails and hands the widget back to the canvas
	title := "Events"
	if _, err := ws.UpdateWidget(ctx, a.ID, widget.Patch{Title: &title}); err != nil {
		t.Fatalf("UpdateWidget() error = %v", err)
	}
	w, err := ws.Widget(ctx, a.ID)
	if err != nil {
		t.Fatalf("Widget() error = %v", err)
	}
	if w.IsPopOut || w.Position != a.Position {
		t.Errorf("Expected widget back at %+v, got %+v", a.Position, w)
	}
	if _, err := ws.PopIn(ctx, a.ID); !errors.Is(err, popout.ErrNotPopped) {
		t.Errorf("PopIn() error = %v, want ErrNotPopped", err)
	}
}

func TestSizeBoundsHoldOffCanvas(t *testing.T) {
	ctx := context.Background()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), newFakeWindows()))

	a := addAt(t, ws, "eeg-time-series", 100, 100)
	minSize := *a.MinSize

	if _, err := ws.SetMinimized(ctx, a.ID, true); err != nil {
		t.Fatalf("SetMinimized() error = %v", err)
	}
	shrunk, err := ws.ResizeWidget(ctx, a.ID, geometry.Size{Width: 5, Height: 5})
	if err != nil {
		t.Fatalf("ResizeWidget() error = %v", err)
	}
	if shrunk.Size != minSize {
		t.Errorf("Minimized resize gave %+v, want clamped to %+v", shrunk.Size, minSize)
	}

	if _, _, err := ws.PopOut(ctx, a.ID); err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	if _, err := ws.SetMinimized(ctx, a.ID, false); err != nil {
		t.Fatalf("SetMinimized(false) error = %v", err)
	}
	back, err := ws.PopIn(ctx, a.ID)
	if err != nil {
		t.Fatalf("PopIn() error = %v", err)
	}
	if back.IsMinimized || back.IsPopOut {
		t.Fatalf("Expected a visible docked widget, got %+v", back)
	}
	if back.Size.Width < minSize.Width || back.Size.Height < minSize.Height {
		t.Errorf("Docked widget size %+v below minimum %+v", back.Size, minSize)
	}
}

func TestRestoreAfterRestart(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	ws, _ := openWorkspace(t, testOptions(storage, newFakeWindows()))

	a := addAt(t, ws, "annotations", 40, 40)
	b := addAt(t, ws, "dda-results", 600, 200)
	if _, _, err := ws.PopOut(ctx, b.ID); err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	if err := ws.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	// a second process opens the same session; b's surface did not survive
	restarted, report := openWorkspace(t, testOptions(storage, newFakeWindows()))
	if !report.Session.Found || report.Session.Defaulted {
		t.Fatalf("Expected stored session to be used, got %+v", report.Session)
	}
	if len(report.PoppedIn) != 1 || report.PoppedIn[0] != b.ID {
		t.Errorf("Expected %s to be popped in on restore, got %v", b.ID, report.PoppedIn)
	}

	snap, _ := restarted.Snapshot(ctx)
	if len(snap.Widgets) != 2 {
		t.Fatalf("Expected 2 widgets, got %d", len(snap.Widgets))
	}
	for _, w := range snap.Widgets {
		switch w.ID {
		case a.ID:
			if w.Position != a.Position {
				t.Errorf("%s restored at %+v, want %+v", w.ID, w.Position, a.Position)
			}
		case b.ID:
			if w.IsPopOut || w.Position != b.Position {
				t.Errorf("%s restored as %+v, want docked at %+v", w.ID, w, b.Position)
			}
		default:
			t.Errorf("Unexpected widget %s", w.ID)
		}
	}
}

func TestRestoreRepairsLayout(t *testing.T) {
	storage := session.NewMemoryStorage()
	record := `{
		"version": 2,
		"activeTab": "dda",
		"panelSizes": [30, 70],
		"uiElements": [
			{"id": "a", "type": "annotations", "title": "A", "position": {"x": 0, "y": 0}, "size": {"width": 300, "height": 200}},
			{"id": "b", "type": "retired-panel", "title": "B", "position": {"x": 0, "y": 0}, "size": {"width": 100, "height": 100}},
			{"id": "c", "type": "annotations", "title": "C", "position": {"x": 0, "y": 0}, "size": {"width": 300, "height": 200}}
		]
	}`
	if err := storage.Set(context.Background(), SessionKey("user-1"), record); err != nil {
		t.Fatal(err)
	}

	opts := testOptions(storage, newFakeWindows())
	opts.Canvas = geometry.Size{Width: 300, Height: 200}
	ws, report := openWorkspace(t, opts)

	if fmt.Sprint(report.Dropped) != "[b]" {
		t.Errorf("Dropped = %v, want [b]", report.Dropped)
	}
	if fmt.Sprint(report.Minimized) != "[c]" {
		t.Errorf("Minimized = %v, want [c]", report.Minimized)
	}

	state, err := ws.Session(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state.ActiveTab != "dda" {
		t.Errorf("ActiveTab = %q, want dda", state.ActiveTab)
	}
	overlaps, _ := ws.Overlaps(context.Background())
	if len(overlaps) != 0 {
		t.Errorf("Expected restored layout without overlaps, got %+v", overlaps)
	}
}

func TestSwitchLayoutDocksPopouts(t *testing.T) {
	ctx := context.Background()
	windows := newFakeWindows()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), windows))

	a := addAt(t, ws, "annotations", 0, 0)
	_, surfaceID, err := ws.PopOut(ctx, a.ID)
	if err != nil {
		t.Fatalf("PopOut() error = %v", err)
	}
	original, _, _ := ws.Layouts(ctx)

	second, err := ws.CreateLayout(ctx, "Review")
	if err != nil {
		t.Fatalf("CreateLayout() error = %v", err)
	}
	snap, err := ws.SwitchLayout(ctx, second.ID)
	if err != nil {
		t.Fatalf("SwitchLayout() error = %v", err)
	}
	if snap.CurrentLayoutID != second.ID || len(snap.Widgets) != 0 {
		t.Errorf("Unexpected snapshot after switch: %+v", snap)
	}
	if len(windows.closed) != 1 || windows.closed[0] != surfaceID {
		t.Errorf("Expected surface %s to be closed, got %v", surfaceID, windows.closed)
	}

	if _, err := ws.SwitchLayout(ctx, "nope"); !errors.Is(err, widget.ErrLayoutNotFound) {
		t.Errorf("SwitchLayout(nope) error = %v, want ErrLayoutNotFound", err)
	}

	snap, err = ws.SwitchLayout(ctx, original[0].ID)
	if err != nil {
		t.Fatalf("SwitchLayout() back error = %v", err)
	}
	if len(snap.Widgets) != 1 || snap.Widgets[0].IsPopOut {
		t.Errorf("Expected docked widget in original layout, got %+v", snap.Widgets)
	}
}

func TestSessionPatchKeepsLayout(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	ws, _ := openWorkspace(t, testOptions(storage, newFakeWindows()))

	a := addAt(t, ws, "annotations", 0, 0)
	tab := "dda"
	state, err := ws.SaveSession(ctx, session.Patch{
		ActiveTab:  &tab,
		PanelSizes: []float64{40, 60},
		UIElements: []widget.Widget{},
	})
	if err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if state.ActiveTab != "dda" || len(state.UIElements) != 1 || state.UIElements[0].ID != a.ID {
		t.Errorf("Unexpected session after patch: %+v", state)
	}

	if err := ws.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if _, ok := storedSession(t, storage, "user-1"); !ok {
		t.Fatal("Expected session to be written")
	}

	if err := ws.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if _, ok := storedSession(t, storage, "user-1"); ok {
		t.Error("Expected session record to be removed")
	}
	snap, _ := ws.Snapshot(ctx)
	if len(snap.Widgets) != 1 {
		t.Errorf("Expected live layout to survive a cleared session, got %d widgets", len(snap.Widgets))
	}
}

func TestSetCanvasReflows(t *testing.T) {
	ctx := context.Background()
	ws, _ := openWorkspace(t, testOptions(session.NewMemoryStorage(), newFakeWindows()))

	addAt(t, ws, "annotations", 0, 0)
	far := addAt(t, ws, "annotations", 900, 600)

	minimized, err := ws.SetCanvas(ctx, geometry.Size{Width: 600, Height: 400})
	if err != nil {
		t.Fatalf("SetCanvas() error = %v", err)
	}
	if len(minimized) != 0 {
		t.Errorf("Expected every widget to fit, minimized %v", minimized)
	}
	w, _ := ws.Widget(ctx, far.ID)
	if w.Rect().Right() > 600 || w.Rect().Bottom() > 400 {
		t.Errorf("Expected %s inside the new canvas, got %+v", far.ID, w.Rect())
	}
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(session.NewMemoryStorage(), newFakeWindows())
	opts.Canvas = geometry.Size{Width: 1920, Height: 1080}
	ws, _ := openWorkspace(t, opts)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := ws.AddWidget(ctx, widget.Spec{Type: "annotations", Position: &geometry.Point{X: float64(i * 40), Y: 0}})
			if err != nil {
				t.Errorf("AddWidget() error = %v", err)
				return
			}
			_, _ = ws.MoveWidget(ctx, w.ID, geometry.Point{X: 0, Y: float64(i * 30)})
		}(i)
	}
	wg.Wait()

	overlaps, err := ws.Overlaps(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(overlaps) != 0 {
		t.Errorf("Expected no overlaps after concurrent edits, got %+v", overlaps)
	}
}

func TestCloseFlushesAndStops(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	ws, _, err := NewWorkspace(ctx, testOptions(storage, newFakeWindows()))
	if err != nil {
		t.Fatal(err)
	}

	a := addAt(t, ws, "annotations", 0, 0)
	if _, _, err := ws.PopOut(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := ws.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	state, ok := storedSession(t, storage, "user-1")
	if !ok || len(state.UIElements) != 1 || state.UIElements[0].IsPopOut {
		t.Errorf("Expected docked widget to be saved on close, got %+v", state.UIElements)
	}
	if _, err := ws.Snapshot(ctx); !errors.Is(err, ErrWorkspaceClosed) {
		t.Errorf("Snapshot() after close error = %v, want ErrWorkspaceClosed", err)
	}
}

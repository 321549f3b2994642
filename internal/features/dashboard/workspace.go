package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"eegdash/internal/features/gesture"
	"eegdash/internal/features/layout"
	"eegdash/internal/features/popout"
	"eegdash/internal/features/session"
	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"go.uber.org/zap"
)

const loopBuffer = 256

type WorkspaceOptions struct {
	UserID   string
	Registry *widget.Registry
	Policy   widget.Policy
	Canvas   geometry.Size
	Storage  session.StorageAdapter
	Files    session.FileIndex
	Windows  popout.Windowing
	Debounce time.Duration
	Logger   *zap.Logger
}

// RestoreReport is what happened while turning the stored session back into
// a live dashboard
type RestoreReport struct {
	Session session.Report `json:"session"`
	// Dropped lists widgets whose type is no longer registered
	Dropped []string `json:"dropped,omitempty"`
	// Minimized lists widgets that no longer fit and came back minimized
	Minimized []string `json:"minimized,omitempty"`
	// PoppedIn lists widgets saved popped out; their surfaces did not survive
	PoppedIn []string `json:"poppedIn,omitempty"`
}

// Workspace is one user's live dashboard. The store and everything built on
// it is confined to the workspace loop; exported methods hop onto the loop
// and wait for the result.
type Workspace struct {
	UserID string

	loop    *Loop
	store   *widget.Store
	engine  *layout.Engine
	drag    *gesture.Drag
	resize  *gesture.Resize
	popout  *popout.Manager
	session *session.SessionServiceImpl
	log     *zap.Logger

	lastUsed  atomic.Int64
	lastSaved atomic.Int64
	saveFails atomic.Int64
}

func NewWorkspace(ctx context.Context, opts WorkspaceOptions) (*Workspace, RestoreReport, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("user_id", opts.UserID))

	w := &Workspace{
		UserID: opts.UserID,
		loop:   NewLoop(loopBuffer),
		store:  widget.NewStore(opts.Registry, opts.Policy, opts.Canvas),
		engine: layout.NewEngine(log),
		log:    log,
	}
	w.drag = gesture.NewDrag(w.store, w.engine, log)
	w.resize = gesture.NewResize(w.store, w.engine, log)
	w.session = session.NewSessionService(session.Options{
		Storage:  opts.Storage,
		Key:      SessionKey(opts.UserID),
		Files:    opts.Files,
		Debounce: opts.Debounce,
		OnSaved:  w.onSaved,
		Logger:   log,
	})
	w.popout = popout.NewManager(popout.ManagerOptions{
		Store:    w.store,
		Engine:   w.engine,
		Windows:  opts.Windows,
		Updater:  loopUpdater{w},
		Dispatch: func(fn func()) { w.loop.Post(fn) },
		OnChange: w.persist,
		Owner:    opts.UserID,
		Logger:   log,
	})
	w.touch()

	var report RestoreReport
	err := w.loop.Do(ctx, func() error {
		report = w.restore(ctx)
		return nil
	})
	if err != nil {
		w.loop.Stop()
		return nil, report, err
	}
	return w, report, nil
}

// SessionKey is the storage key of a user's session record
func SessionKey(userID string) string {
	return "eegdash:session:" + userID
}

func (w *Workspace) onSaved(_ session.SessionState, err error) {
	if err != nil {
		w.saveFails.Add(1)
		w.log.Warn("Background session save failed", zap.Error(err))
		return
	}
	w.lastSaved.Store(time.Now().UnixNano())
}

func (w *Workspace) touch() {
	w.lastUsed.Store(time.Now().UnixNano())
}

// LastUsed is the time of the last call into the workspace
func (w *Workspace) LastUsed() time.Time {
	return time.Unix(0, w.lastUsed.Load())
}

// do runs fn on the loop
func (w *Workspace) do(ctx context.Context, fn func() error) error {
	w.touch()
	return w.loop.Do(ctx, fn)
}

// persist hands the current layouts to the session service. The write
// itself happens later, off the loop.
func (w *Workspace) persist() {
	current := w.store.CurrentLayout()
	id := current.ID
	w.session.SaveSession(session.Patch{
		UIElements:      current.Widgets,
		Layouts:         w.store.AllLayouts(),
		CurrentLayoutID: &id,
	})
}

// restore loads the session into the store. Runs on the loop.
func (w *Workspace) restore(ctx context.Context) RestoreReport {
	state, sessionReport := w.session.LoadSession(ctx)
	report := RestoreReport{Session: sessionReport}
	if sessionReport.Defaulted {
		return report
	}

	if len(state.Layouts) > 0 {
		w.store.RestoreLayouts(state.Layouts, state.CurrentLayoutID)
	} else {
		w.store.ReplaceWidgets(state.UIElements)
	}

	report.Dropped, report.Minimized = w.settle()
	report.PoppedIn = w.popout.PopInAll(ctx)

	for _, id := range report.Dropped {
		w.log.Warn("Dropped widget of unknown type", zap.String("widget_id", id))
	}
	return report
}

// settle makes the current layout valid: widgets of unregistered types are
// dropped and widgets that overlap earlier ones are moved or, failing that,
// minimized. Earlier widgets in z-order keep their place.
func (w *Workspace) settle() (dropped, minimized []string) {
	policy := w.store.Policy()
	canvas := w.store.Canvas()
	kept := make([]widget.Widget, 0)

	for _, wd := range w.store.Widgets() {
		if _, ok := w.store.Registry().Lookup(wd.Type); !ok {
			dropped = append(dropped, wd.ID)
			continue
		}
		wd.Position = geometry.Point{X: geometry.Sanitize(wd.Position.X), Y: geometry.Sanitize(wd.Position.Y)}
		wd.Size = layout.BoundSize(wd.Size, wd.MinSize, wd.MaxSize)

		if wd.Collides() {
			scene := layout.Scene{Policy: policy, Canvas: canvas, Widgets: kept}
			if !w.engine.Fits(scene, wd) {
				rect, err := w.engine.Resolve(scene, wd, layout.Proposal{Kind: layout.Move, Rect: wd.Rect()})
				if err != nil {
					wd.IsMinimized = true
					minimized = append(minimized, wd.ID)
				} else {
					wd.Position, wd.Size = rect.Position(), rect.Size()
				}
			}
		}
		kept = append(kept, wd)
	}

	w.store.ReplaceWidgets(kept)
	return dropped, minimized
}

// loopUpdater lets the popout manager reach the validated update path. It
// is only called from the loop.
type loopUpdater struct{ w *Workspace }

func (u loopUpdater) UpdateWidget(id string, patch widget.Patch) (*widget.Widget, error) {
	return u.w.updateWidget(id, patch)
}

// updateWidget runs geometry changes through the engine before committing.
// Runs on the loop.
func (w *Workspace) updateWidget(id string, patch widget.Patch) (*widget.Widget, error) {
	cur, err := w.store.Widget(id)
	if err != nil {
		return nil, err
	}

	if cur.IsPopOut {
		// a popped-out widget has no canvas geometry to change
		patch.Position = nil
		patch.Size = nil
	}

	if patch.AffectsGeometry() {
		candidate := cur.Clone()
		if patch.Position != nil {
			candidate.Position = *patch.Position
		}
		if patch.Size != nil {
			candidate.Size = *patch.Size
		}
		if patch.MinSize != nil {
			candidate.MinSize = patch.MinSize
		}
		if patch.MaxSize != nil {
			candidate.MaxSize = patch.MaxSize
		}
		if patch.IsMinimized != nil {
			candidate.IsMinimized = *patch.IsMinimized
		}

		if candidate.Collides() {
			proposal := layout.Proposal{Kind: layout.Move, Rect: candidate.Rect()}
			if candidate.Size != cur.Size || patch.MinSize != nil || patch.MaxSize != nil {
				proposal.Kind = layout.Resize
				proposal.Handle = widget.HandleSE
			}
			rect, err := w.engine.Resolve(layout.SceneOf(w.store), candidate, proposal)
			if err != nil {
				return nil, err
			}
			pos, size := rect.Position(), rect.Size()
			patch.Position, patch.Size = &pos, &size
		} else {
			// nothing to collide with off the canvas, but size bounds still hold
			size := layout.BoundSize(candidate.Size, candidate.MinSize, candidate.MaxSize)
			patch.Size = &size
			if !cur.IsPopOut {
				pos := geometry.Point{X: geometry.Sanitize(candidate.Position.X), Y: geometry.Sanitize(candidate.Position.Y)}
				patch.Position = &pos
			}
		}
	}

	out, err := w.store.UpdateWidget(id, patch)
	if err != nil {
		return nil, err
	}
	if out.IsPopOut {
		w.popout.Sync(id)
	}
	w.persist()
	return out, nil
}

func (w *Workspace) Snapshot(ctx context.Context) (widget.Snapshot, error) {
	var snap widget.Snapshot
	err := w.do(ctx, func() error {
		snap = w.store.Snapshot()
		return nil
	})
	return snap, err
}

func (w *Workspace) Widget(ctx context.Context, id string) (*widget.Widget, error) {
	var out *widget.Widget
	err := w.do(ctx, func() error {
		var err error
		out, err = w.store.Widget(id)
		return err
	})
	return out, err
}

// AddWidget creates a widget and places it at the nearest free spot to the
// requested position. ErrLayoutConflict means the canvas has no room.
func (w *Workspace) AddWidget(ctx context.Context, spec widget.Spec) (*widget.Widget, error) {
	var out *widget.Widget
	err := w.do(ctx, func() error {
		added, err := w.store.AddWidget(spec)
		if err != nil {
			return err
		}
		rect, err := w.engine.Resolve(layout.SceneOf(w.store), *added, layout.Proposal{Kind: layout.Move, Rect: added.Rect()})
		if err != nil {
			_ = w.store.RemoveWidget(added.ID)
			return err
		}
		pos, size := rect.Position(), rect.Size()
		out, err = w.store.UpdateWidget(added.ID, widget.Patch{Position: &pos, Size: &size})
		if err != nil {
			return err
		}
		w.persist()
		return nil
	})
	return out, err
}

func (w *Workspace) UpdateWidget(ctx context.Context, id string, patch widget.Patch) (*widget.Widget, error) {
	var out *widget.Widget
	err := w.do(ctx, func() error {
		var err error
		out, err = w.updateWidget(id, patch)
		return err
	})
	return out, err
}

func (w *Workspace) MoveWidget(ctx context.Context, id string, pos geometry.Point) (*widget.Widget, error) {
	return w.UpdateWidget(ctx, id, widget.Patch{Position: &pos})
}

// ResizeWidget sets the widget's size, keeping its top-left corner
func (w *Workspace) ResizeWidget(ctx context.Context, id string, size geometry.Size) (*widget.Widget, error) {
	return w.UpdateWidget(ctx, id, widget.Patch{Size: &size})
}

func (w *Workspace) SetMinimized(ctx context.Context, id string, minimized bool) (*widget.Widget, error) {
	return w.UpdateWidget(ctx, id, widget.Patch{IsMinimized: &minimized})
}

func (w *Workspace) SetMaximized(ctx context.Context, id string, maximized bool) (*widget.Widget, error) {
	return w.UpdateWidget(ctx, id, widget.Patch{IsMaximized: &maximized})
}

func (w *Workspace) RemoveWidget(ctx context.Context, id string) error {
	return w.do(ctx, func() error {
		if err := w.store.RemoveWidget(id); err != nil {
			return err
		}
		w.popout.Forget(id)
		if d := w.store.Drag(); d != nil && d.WidgetID == id {
			w.store.EndGesture()
		}
		if r := w.store.Resize(); r != nil && r.WidgetID == id {
			w.store.EndGesture()
		}
		w.persist()
		return nil
	})
}

func (w *Workspace) SelectWidget(ctx context.Context, id string) error {
	return w.do(ctx, func() error {
		return w.store.SelectWidget(id)
	})
}

func (w *Workspace) ClearSelection(ctx context.Context) error {
	return w.do(ctx, func() error {
		w.store.ClearSelection()
		return nil
	})
}

func (w *Workspace) BringToFront(ctx context.Context, id string) error {
	return w.do(ctx, func() error {
		if err := w.store.BringToFront(id); err != nil {
			return err
		}
		w.persist()
		return nil
	})
}

// Overlaps lists overlapping widget pairs of the current layout. It is empty
// whenever collision detection is on.
func (w *Workspace) Overlaps(ctx context.Context) ([]layout.Overlap, error) {
	var out []layout.Overlap
	err := w.do(ctx, func() error {
		out = w.engine.Validate(layout.SceneOf(w.store))
		return nil
	})
	return out, err
}

// SetCanvas changes the canvas size and pulls widgets that no longer fit
// back inside it
func (w *Workspace) SetCanvas(ctx context.Context, size geometry.Size) ([]string, error) {
	var minimized []string
	err := w.do(ctx, func() error {
		if w.store.ActiveGesture() != widget.GestureNone {
			return widget.ErrGestureBusy
		}
		w.store.SetCanvas(size)
		_, minimized = w.settle()
		w.persist()
		return nil
	})
	return minimized, err
}

func (w *Workspace) SetPolicy(ctx context.Context, policy widget.Policy) ([]string, error) {
	var minimized []string
	err := w.do(ctx, func() error {
		if w.store.ActiveGesture() != widget.GestureNone {
			return widget.ErrGestureBusy
		}
		w.store.SetPolicy(policy)
		_, minimized = w.settle()
		w.persist()
		return nil
	})
	return minimized, err
}

func (w *Workspace) StartDrag(ctx context.Context, id string, pointer geometry.Point) error {
	return w.do(ctx, func() error {
		return w.drag.Start(id, pointer)
	})
}

func (w *Workspace) DragTo(ctx context.Context, pointer geometry.Point) (geometry.Point, error) {
	var pos geometry.Point
	err := w.do(ctx, func() error {
		var err error
		pos, err = w.drag.Move(pointer)
		return err
	})
	return pos, err
}

func (w *Workspace) EndDrag(ctx context.Context) (*widget.Widget, error) {
	var out *widget.Widget
	err := w.do(ctx, func() error {
		var err error
		out, err = w.drag.End()
		if err == nil {
			w.persist()
		}
		return err
	})
	return out, err
}

func (w *Workspace) CancelDrag(ctx context.Context) (*widget.Widget, error) {
	var out *widget.Widget
	err := w.do(ctx, func() error {
		var err error
		out, err = w.drag.Cancel()
		return err
	})
	return out, err
}

func (w *Workspace) StartResize(ctx context.Context, id string, handle widget.Handle, pointer geometry.Point) error {
	return w.do(ctx, func() error {
		return w.resize.Start(id, handle, pointer)
	})
}

func (w *Workspace) ResizeTo(ctx context.Context, pointer geometry.Point) (geometry.Rect, error) {
	var rect geometry.Rect
	err := w.do(ctx, func() error {
		var err error
		rect, err = w.resize.Move(pointer)
		return err
	})
	return rect, err
}

func (w *Workspace) EndResize(ctx context.Context) (*widget.Widget, error) {
	var out *widget.Widget
	err := w.do(ctx, func() error {
		var err error
		out, err = w.resize.End()
		if err == nil {
			w.persist()
		}
		return err
	})
	return out, err
}

func (w *Workspace) CancelResize(ctx context.Context) (*widget.Widget, error) {
	var out *widget.Widget
	err := w.do(ctx, func() error {
		var err error
		out, err = w.resize.Cancel()
		return err
	})
	return out, err
}

func (w *Workspace) PopOut(ctx context.Context, id string) (*widget.Widget, string, error) {
	var (
		out       *widget.Widget
		surfaceID string
	)
	err := w.do(ctx, func() error {
		var err error
		out, surfaceID, err = w.popout.PopOut(ctx, id)
		if err != nil {
			return err
		}
		w.persist()
		return nil
	})
	return out, surfaceID, err
}

func (w *Workspace) PopIn(ctx context.Context, id string) (*widget.Widget, error) {
	var out *widget.Widget
	err := w.do(ctx, func() error {
		var err error
		out, err = w.popout.PopIn(ctx, id)
		if err != nil {
			return err
		}
		w.persist()
		return nil
	})
	return out, err
}

func (w *Workspace) Layouts(ctx context.Context) ([]widget.LayoutSummary, string, error) {
	var (
		out     []widget.LayoutSummary
		current string
	)
	err := w.do(ctx, func() error {
		out = w.store.Layouts()
		current = w.store.CurrentLayoutID()
		return nil
	})
	return out, current, err
}

func (w *Workspace) Layout(ctx context.Context, id string) (widget.DashboardLayout, error) {
	var out widget.DashboardLayout
	err := w.do(ctx, func() error {
		var err error
		out, err = w.store.Layout(id)
		return err
	})
	return out, err
}

func (w *Workspace) CreateLayout(ctx context.Context, name string) (widget.DashboardLayout, error) {
	var out widget.DashboardLayout
	err := w.do(ctx, func() error {
		out = w.store.CreateLayout(name)
		w.persist()
		return nil
	})
	return out, err
}

func (w *Workspace) RenameLayout(ctx context.Context, id, name string) error {
	return w.do(ctx, func() error {
		if err := w.store.RenameLayout(id, name); err != nil {
			return err
		}
		w.persist()
		return nil
	})
}

func (w *Workspace) DeleteLayout(ctx context.Context, id string) error {
	return w.do(ctx, func() error {
		if err := w.store.DeleteLayout(id); err != nil {
			return err
		}
		w.persist()
		return nil
	})
}

// SwitchLayout docks every popped-out widget of the current layout, then
// swaps in the other layout
func (w *Workspace) SwitchLayout(ctx context.Context, id string) (widget.Snapshot, error) {
	var snap widget.Snapshot
	err := w.do(ctx, func() error {
		if w.store.ActiveGesture() != widget.GestureNone {
			return widget.ErrGestureBusy
		}
		if _, err := w.store.Layout(id); err != nil {
			return err
		}
		w.popout.PopInAll(ctx)
		if err := w.store.SwitchLayout(id); err != nil {
			return err
		}
		w.settle()
		w.persist()
		snap = w.store.Snapshot()
		return nil
	})
	return snap, err
}

func (w *Workspace) Session(ctx context.Context) (session.SessionState, error) {
	var out session.SessionState
	err := w.do(ctx, func() error {
		out = w.session.Current()
		return nil
	})
	return out, err
}

// SaveSession merges the non-layout parts of the session. Widgets and
// layouts are owned by the store and are ignored here.
func (w *Workspace) SaveSession(ctx context.Context, patch session.Patch) (session.SessionState, error) {
	patch.UIElements = nil
	patch.Layouts = nil
	patch.CurrentLayoutID = nil

	var out session.SessionState
	err := w.do(ctx, func() error {
		out = w.session.SaveSession(patch)
		return nil
	})
	return out, err
}

// ClearSession removes the stored record. The live layout is kept and is
// written again on the next change.
func (w *Workspace) ClearSession(ctx context.Context) error {
	return w.do(ctx, func() error {
		return w.session.ClearSession(ctx)
	})
}

func (w *Workspace) Flush(ctx context.Context) error {
	return w.session.Flush(ctx)
}

// Close docks popped-out widgets, stops the loop and writes the session
func (w *Workspace) Close(ctx context.Context) error {
	err := w.loop.Do(ctx, func() error {
		if len(w.popout.PopInAll(ctx)) > 0 {
			w.persist()
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrWorkspaceClosed) {
		w.log.Warn("Failed to dock popouts before close", zap.Error(err))
	}
	w.loop.Stop()

	if err := w.session.Flush(ctx); err != nil {
		return fmt.Errorf("flush session: %w", err)
	}
	return nil
}

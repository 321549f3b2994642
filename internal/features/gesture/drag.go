package gesture

import (
	"errors"

	"eegdash/internal/features/layout"
	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"go.uber.org/zap"
)

// Drag turns a pointer drag into a committed position. The live position is
// kept in the store's drag state only; the widget itself is written once, on
// End.
type Drag struct {
	store  *widget.Store
	engine *layout.Engine
	log    *zap.Logger
}

func NewDrag(store *widget.Store, engine *layout.Engine, log *zap.Logger) *Drag {
	return &Drag{store: store, engine: engine, log: log}
}

func (d *Drag) Start(widgetID string, pointer geometry.Point) error {
	w, err := d.store.Widget(widgetID)
	if err != nil {
		return err
	}
	if !w.Collides() {
		return ErrNotInteractive
	}
	return d.store.BeginDrag(widget.DragState{
		WidgetID:        w.ID,
		StartPosition:   w.Position,
		MouseStart:      pointer,
		CurrentPosition: w.Position,
	})
}

// Move previews the position for the pointer. On rejection the previous
// preview is kept and returned together with the error.
func (d *Drag) Move(pointer geometry.Point) (geometry.Point, error) {
	st := d.store.Drag()
	if st == nil {
		return geometry.Point{}, widget.ErrNoGesture
	}
	w, err := d.store.Widget(st.WidgetID)
	if err != nil {
		d.store.EndGesture()
		return geometry.Point{}, err
	}

	dx := geometry.SanitizeSigned(pointer.X - st.MouseStart.X)
	dy := geometry.SanitizeSigned(pointer.Y - st.MouseStart.Y)
	proposed := geometry.NewRect(st.StartPosition, w.Size).Translate(dx, dy)

	rect, err := d.engine.Resolve(layout.SceneOf(d.store), *w, layout.Proposal{Kind: layout.Move, Rect: proposed})
	if err != nil {
		_ = d.store.UpdateDrag(func(s *widget.DragState) { s.Rejected = true })
		return st.CurrentPosition, err
	}

	pos := rect.Position()
	_ = d.store.UpdateDrag(func(s *widget.DragState) {
		s.CurrentPosition = pos
		s.Accepted = true
		s.Rejected = false
	})
	return pos, nil
}

// End commits the last accepted position. A drag whose every move was
// rejected leaves the widget where it started, and reports ErrLayoutConflict
// when that start position is itself invalid.
func (d *Drag) End() (*widget.Widget, error) {
	st := d.store.Drag()
	if st == nil {
		return nil, widget.ErrNoGesture
	}
	defer d.store.EndGesture()

	w, err := d.store.Widget(st.WidgetID)
	if err != nil {
		return nil, err
	}
	if !st.Accepted {
		// nothing to commit; the drag fails only if the start no longer fits either
		if st.Rejected && !d.engine.Fits(layout.SceneOf(d.store), *w) {
			d.log.Info("Drag cancelled, no valid position", zap.String("widget_id", st.WidgetID))
			return w, layout.ErrLayoutConflict
		}
		return w, nil
	}

	// the scene may have changed since the last preview
	rect, err := d.engine.Resolve(layout.SceneOf(d.store), *w, layout.Proposal{
		Kind: layout.Move,
		Rect: geometry.NewRect(st.CurrentPosition, w.Size),
	})
	if err != nil {
		if errors.Is(err, layout.ErrLayoutConflict) {
			d.log.Info("Drag cancelled at commit", zap.String("widget_id", st.WidgetID))
		}
		return w, err
	}
	pos := rect.Position()
	return d.store.UpdateWidget(st.WidgetID, widget.Patch{Position: &pos})
}

// Cancel drops the gesture. The widget was never written, so it is still at
// its start position.
func (d *Drag) Cancel() (*widget.Widget, error) {
	st := d.store.Drag()
	if st == nil {
		return nil, widget.ErrNoGesture
	}
	d.store.EndGesture()
	return d.store.Widget(st.WidgetID)
}

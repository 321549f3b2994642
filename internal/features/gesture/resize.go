package gesture

import (
	"eegdash/internal/features/layout"
	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"go.uber.org/zap"
)

// Resize turns a pointer drag on one of the eight grips into committed
// geometry. The grip decides which of x, y, width and height follow the
// pointer; the opposite edges stay fixed.
type Resize struct {
	store  *widget.Store
	engine *layout.Engine
	log    *zap.Logger
}

func NewResize(store *widget.Store, engine *layout.Engine, log *zap.Logger) *Resize {
	return &Resize{store: store, engine: engine, log: log}
}

func (r *Resize) Start(widgetID string, handle widget.Handle, pointer geometry.Point) error {
	if !handle.Valid() {
		return ErrInvalidHandle
	}
	w, err := r.store.Widget(widgetID)
	if err != nil {
		return err
	}
	if !w.Collides() {
		return ErrNotInteractive
	}
	return r.store.BeginResize(widget.ResizeState{
		WidgetID:    w.ID,
		Handle:      handle,
		StartRect:   w.Rect(),
		MouseStart:  pointer,
		CurrentRect: w.Rect(),
	})
}

// propose applies the pointer delta to the edges the handle owns
func propose(start geometry.Rect, h widget.Handle, dx, dy float64) geometry.Rect {
	r := start
	if h.MovesLeft() {
		r.X = start.X + dx
		r.Width = start.Width - dx
	}
	if h.MovesRight() {
		r.Width = start.Width + dx
	}
	if h.MovesTop() {
		r.Y = start.Y + dy
		r.Height = start.Height - dy
	}
	if h.MovesBottom() {
		r.Height = start.Height + dy
	}
	return r
}

func (r *Resize) Move(pointer geometry.Point) (geometry.Rect, error) {
	st := r.store.Resize()
	if st == nil {
		return geometry.Rect{}, widget.ErrNoGesture
	}
	w, err := r.store.Widget(st.WidgetID)
	if err != nil {
		r.store.EndGesture()
		return geometry.Rect{}, err
	}

	dx := geometry.SanitizeSigned(pointer.X - st.MouseStart.X)
	dy := geometry.SanitizeSigned(pointer.Y - st.MouseStart.Y)
	proposed := propose(st.StartRect, st.Handle, dx, dy)

	rect, err := r.engine.Resolve(layout.SceneOf(r.store), *w, layout.Proposal{
		Kind:   layout.Resize,
		Handle: st.Handle,
		Rect:   proposed,
	})
	if err != nil {
		_ = r.store.UpdateResize(func(s *widget.ResizeState) { s.Rejected = true })
		return st.CurrentRect, err
	}

	_ = r.store.UpdateResize(func(s *widget.ResizeState) {
		s.CurrentRect = rect
		s.Accepted = true
		s.Rejected = false
	})
	return rect, nil
}

func (r *Resize) End() (*widget.Widget, error) {
	st := r.store.Resize()
	if st == nil {
		return nil, widget.ErrNoGesture
	}
	defer r.store.EndGesture()

	w, err := r.store.Widget(st.WidgetID)
	if err != nil {
		return nil, err
	}
	if !st.Accepted {
		if st.Rejected && !r.engine.Fits(layout.SceneOf(r.store), *w) {
			r.log.Info("Resize cancelled, no valid geometry", zap.String("widget_id", st.WidgetID))
			return w, layout.ErrLayoutConflict
		}
		return w, nil
	}

	rect, err := r.engine.Resolve(layout.SceneOf(r.store), *w, layout.Proposal{
		Kind:   layout.Resize,
		Handle: st.Handle,
		Rect:   st.CurrentRect,
	})
	if err != nil {
		r.log.Info("Resize cancelled at commit", zap.String("widget_id", st.WidgetID), zap.Error(err))
		return w, err
	}
	pos, size := rect.Position(), rect.Size()
	return r.store.UpdateWidget(st.WidgetID, widget.Patch{Position: &pos, Size: &size})
}

func (r *Resize) Cancel() (*widget.Widget, error) {
	st := r.store.Resize()
	if st == nil {
		return nil, widget.ErrNoGesture
	}
	r.store.EndGesture()
	return r.store.Widget(st.WidgetID)
}

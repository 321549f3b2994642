package widget

import (
	"time"

	"eegdash/pkg/geometry"
)

// Widget is one panel instance on the dashboard
type Widget struct {
	ID               string          `json:"id" bson:"id"`
	Title            string          `json:"title" bson:"title"`
	Type             string          `json:"type" bson:"type"`
	Position         geometry.Point  `json:"position" bson:"position"`
	Size             geometry.Size   `json:"size" bson:"size"`
	MinSize          *geometry.Size  `json:"minSize,omitempty" bson:"min_size,omitempty"`
	MaxSize          *geometry.Size  `json:"maxSize,omitempty" bson:"max_size,omitempty"`
	PreviousPosition *geometry.Point `json:"previousPosition,omitempty" bson:"previous_position,omitempty"`
	PreviousSize     *geometry.Size  `json:"previousSize,omitempty" bson:"previous_size,omitempty"`
	IsPopOut         bool            `json:"isPopOut" bson:"is_pop_out"`
	IsMinimized      bool            `json:"isMinimized" bson:"is_minimized"`
	IsMaximized      bool            `json:"isMaximized" bson:"is_maximized"`
	Data             any             `json:"data,omitempty" bson:"data,omitempty"`
	Settings         map[string]any  `json:"settings,omitempty" bson:"settings,omitempty"`
}

func (w *Widget) Rect() geometry.Rect {
	return geometry.NewRect(w.Position, w.Size)
}

// Collides reports whether the widget takes part in collision detection
func (w *Widget) Collides() bool {
	return !w.IsMinimized && !w.IsPopOut
}

// Clone returns a copy that shares no pointers with w. Data is opaque and is
// shared as-is.
func (w Widget) Clone() Widget {
	c := w
	if w.MinSize != nil {
		v := *w.MinSize
		c.MinSize = &v
	}
	if w.MaxSize != nil {
		v := *w.MaxSize
		c.MaxSize = &v
	}
	if w.PreviousPosition != nil {
		v := *w.PreviousPosition
		c.PreviousPosition = &v
	}
	if w.PreviousSize != nil {
		v := *w.PreviousSize
		c.PreviousSize = &v
	}
	if w.Settings != nil {
		c.Settings = make(map[string]any, len(w.Settings))
		for k, v := range w.Settings {
			c.Settings[k] = v
		}
	}
	return c
}

// Spec is the input to AddWidget. Zero geometry is replaced by the kind defaults.
type Spec struct {
	Title    string          `json:"title"`
	Type     string          `json:"type"`
	Position *geometry.Point `json:"position,omitempty"`
	Size     *geometry.Size  `json:"size,omitempty"`
	MinSize  *geometry.Size  `json:"minSize,omitempty"`
	MaxSize  *geometry.Size  `json:"maxSize,omitempty"`
	Data     any             `json:"data,omitempty"`
	Settings map[string]any  `json:"settings,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched; Settings keys are
// merged, a nil value deletes the key.
type Patch struct {
	Title       *string         `json:"title,omitempty"`
	Position    *geometry.Point `json:"position,omitempty"`
	Size        *geometry.Size  `json:"size,omitempty"`
	MinSize     *geometry.Size  `json:"minSize,omitempty"`
	MaxSize     *geometry.Size  `json:"maxSize,omitempty"`
	IsMinimized *bool           `json:"isMinimized,omitempty"`
	IsMaximized *bool           `json:"isMaximized,omitempty"`
	Data        any             `json:"data,omitempty"`
	Settings    map[string]any  `json:"settings,omitempty"`
}

// AffectsGeometry reports whether the patch needs layout validation
func (p Patch) AffectsGeometry() bool {
	return p.Position != nil || p.Size != nil || p.MinSize != nil || p.MaxSize != nil ||
		(p.IsMinimized != nil && !*p.IsMinimized)
}

// DashboardLayout is a named, ordered set of widgets. Slice order is z-order.
type DashboardLayout struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Widgets   []Widget  `json:"widgets" bson:"widgets"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Policy controls how the layout engine treats proposed geometry
type Policy struct {
	GridSize                 float64 `json:"gridSize"`
	EnableSnapping           bool    `json:"enableSnapping"`
	EnableCollisionDetection bool    `json:"enableCollisionDetection"`
}

// DragState exists only between drag start and drag end
type DragState struct {
	WidgetID        string         `json:"widgetId"`
	StartPosition   geometry.Point `json:"startPosition"`
	MouseStart      geometry.Point `json:"mouseStart"`
	CurrentPosition geometry.Point `json:"currentPosition"`
	Accepted        bool           `json:"accepted"`
	Rejected        bool           `json:"rejected"`
}

// Handle identifies one of the eight resize grips
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

func (h Handle) Valid() bool {
	switch h {
	case HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW:
		return true
	}
	return false
}

// MovesLeft reports whether the handle drags the left edge
func (h Handle) MovesLeft() bool { return h == HandleW || h == HandleNW || h == HandleSW }

// MovesRight reports whether the handle drags the right edge
func (h Handle) MovesRight() bool { return h == HandleE || h == HandleNE || h == HandleSE }

// MovesTop reports whether the handle drags the top edge
func (h Handle) MovesTop() bool { return h == HandleN || h == HandleNE || h == HandleNW }

// MovesBottom reports whether the handle drags the bottom edge
func (h Handle) MovesBottom() bool { return h == HandleS || h == HandleSE || h == HandleSW }

// ResizeState exists only between resize start and resize end
type ResizeState struct {
	WidgetID    string         `json:"widgetId"`
	Handle      Handle         `json:"handle"`
	StartRect   geometry.Rect  `json:"startRect"`
	MouseStart  geometry.Point `json:"mouseStart"`
	CurrentRect geometry.Rect  `json:"currentRect"`
	Accepted    bool           `json:"accepted"`
	Rejected    bool           `json:"rejected"`
}

// DashboardState is the single owned state object behind a Store
type DashboardState struct {
	Layouts          []*DashboardLayout `json:"layouts"`
	CurrentLayoutID  string             `json:"currentLayoutId"`
	SelectedWidgetID string             `json:"selectedWidgetId,omitempty"`
	DragState        *DragState         `json:"dragState,omitempty"`
	ResizeState      *ResizeState       `json:"resizeState,omitempty"`
	Policy           Policy             `json:"policy"`
	Canvas           geometry.Size      `json:"canvas"`
}

// Snapshot is a read-only copy of the state handed to callers outside the loop
type Snapshot struct {
	CurrentLayoutID  string          `json:"currentLayoutId"`
	Layouts          []LayoutSummary `json:"layouts"`
	Widgets          []Widget        `json:"widgets"`
	SelectedWidgetID string          `json:"selectedWidgetId,omitempty"`
	DragState        *DragState      `json:"dragState,omitempty"`
	ResizeState      *ResizeState    `json:"resizeState,omitempty"`
	Policy           Policy          `json:"policy"`
	Canvas           geometry.Size   `json:"canvas"`
}

type LayoutSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	WidgetCount int       `json:"widgetCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

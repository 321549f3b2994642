package layout

import (
	"errors"
	"math"
	"sort"

	"eegdash/internal/features/widget"
	"eegdash/pkg/geometry"

	"go.uber.org/zap"
)

var ErrLayoutConflict = errors.New("no non-overlapping position available")

// minExtent keeps widgets from collapsing to nothing when no minSize is set
const minExtent = 1

const epsilon = 1e-9

type Kind int

const (
	Move Kind = iota
	Resize
)

func (k Kind) String() string {
	if k == Resize {
		return "resize"
	}
	return "move"
}

// Proposal is a requested geometry for one widget
type Proposal struct {
	Kind   Kind
	Handle widget.Handle
	Rect   geometry.Rect
}

// Scene is everything the engine needs to judge a proposal
type Scene struct {
	Policy  widget.Policy
	Canvas  geometry.Size
	Widgets []widget.Widget
}

// SceneOf captures the store's current layout
func SceneOf(s *widget.Store) Scene {
	return Scene{
		Policy:  s.Policy(),
		Canvas:  s.Canvas(),
		Widgets: s.Widgets(),
	}
}

// Engine turns proposed geometry into accepted geometry. It never writes to
// the store.
type Engine struct {
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Resolve snaps, clamps and de-collides the proposal for w. It returns
// ErrLayoutConflict when no position inside the canvas avoids every other
// colliding widget.
func (e *Engine) Resolve(scene Scene, w widget.Widget, p Proposal) (geometry.Rect, error) {
	r := sanitizeRect(p.Rect, p)

	if scene.Policy.EnableSnapping && scene.Policy.GridSize > 0 {
		r = snapRect(r, p, scene.Policy.GridSize)
	}

	r = clampSize(r, p, w.MinSize, w.MaxSize)
	r = clampToCanvas(r, p, scene.Canvas, w.MinSize)

	if !scene.Policy.EnableCollisionDetection {
		return r, nil
	}

	obstacles := obstaclesFor(scene.Widgets, w.ID)
	if !collides(r, obstacles) {
		return r, nil
	}

	if p.Kind == Resize {
		if trimmed, ok := trimResize(r, p.Handle, obstacles, w.MinSize); ok && inCanvas(trimmed, scene.Canvas) {
			return trimmed, nil
		}
	}

	if pushed, ok := push(r, obstacles, scene.Canvas); ok {
		e.log.Debug("Resolved layout collision",
			zap.String("widget_id", w.ID),
			zap.String("kind", p.Kind.String()),
			zap.Float64("dx", pushed.X-r.X),
			zap.Float64("dy", pushed.Y-r.Y),
		)
		return pushed, nil
	}

	e.log.Debug("Rejected layout proposal", zap.String("widget_id", w.ID), zap.String("kind", p.Kind.String()))
	return geometry.Rect{}, ErrLayoutConflict
}

// Fits reports whether w's current rect is acceptable as is: within its size
// bounds, inside the canvas and, with collision detection on, clear of every
// other colliding widget.
func (e *Engine) Fits(scene Scene, w widget.Widget) bool {
	r := w.Rect()
	if !withinBounds(r.Size(), w.MinSize, w.MaxSize) || !inCanvas(r, scene.Canvas) {
		return false
	}
	if !scene.Policy.EnableCollisionDetection {
		return true
	}
	return !collides(r, obstaclesFor(scene.Widgets, w.ID))
}

// Overlap is a pair of widgets whose rectangles intersect
type Overlap struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Validate lists every overlapping pair of colliding widgets in the scene
func (e *Engine) Validate(scene Scene) []Overlap {
	var out []Overlap
	for i := range scene.Widgets {
		a := &scene.Widgets[i]
		if !a.Collides() {
			continue
		}
		for j := i + 1; j < len(scene.Widgets); j++ {
			b := &scene.Widgets[j]
			if b.Collides() && geometry.Intersects(a.Rect(), b.Rect()) {
				out = append(out, Overlap{A: a.ID, B: b.ID})
			}
		}
	}
	return out
}

// sanitizeRect drops non-finite values and folds negative extents. A resize
// that dragged the left or top edge past its opposite edge collapses onto
// that opposite edge, so the later min-size clamp grows back from it.
func sanitizeRect(r geometry.Rect, p Proposal) geometry.Rect {
	r = geometry.Rect{
		X:      geometry.SanitizeSigned(r.X),
		Y:      geometry.SanitizeSigned(r.Y),
		Width:  geometry.SanitizeSigned(r.Width),
		Height: geometry.SanitizeSigned(r.Height),
	}
	if r.Width < 0 {
		if p.Kind == Resize && p.Handle.MovesLeft() {
			r.X += r.Width
		}
		r.Width = 0
	}
	if r.Height < 0 {
		if p.Kind == Resize && p.Handle.MovesTop() {
			r.Y += r.Height
		}
		r.Height = 0
	}
	return r
}

// snapRect snaps the position for moves and the moving edges for resizes, so
// the edges a resize handle does not touch stay put.
func snapRect(r geometry.Rect, p Proposal, grid float64) geometry.Rect {
	if p.Kind == Move {
		r.X = geometry.Snap(r.X, grid)
		r.Y = geometry.Snap(r.Y, grid)
		return r
	}

	left, right := r.X, r.Right()
	top, bottom := r.Y, r.Bottom()
	if p.Handle.MovesLeft() {
		left = geometry.Snap(left, grid)
	}
	if p.Handle.MovesRight() {
		right = geometry.Snap(right, grid)
	}
	if p.Handle.MovesTop() {
		top = geometry.Snap(top, grid)
	}
	if p.Handle.MovesBottom() {
		bottom = geometry.Snap(bottom, grid)
	}
	return geometry.Rect{X: left, Y: top, Width: math.Max(right-left, 0), Height: math.Max(bottom-top, 0)}
}

func effectiveMin(min *geometry.Size) geometry.Size {
	m := geometry.Size{Width: minExtent, Height: minExtent}
	if min != nil {
		m.Width = math.Max(m.Width, min.Width)
		m.Height = math.Max(m.Height, min.Height)
	}
	return m
}

// BoundSize drops non-finite or negative extents from s and clamps it into
// [min, max]. Missing bounds fall back to the engine's minimum extent.
func BoundSize(s geometry.Size, min, max *geometry.Size) geometry.Size {
	m := effectiveMin(min)
	s = geometry.Size{Width: geometry.Sanitize(s.Width), Height: geometry.Sanitize(s.Height)}
	return geometry.Clamp(s, &m, max)
}

func withinBounds(s geometry.Size, min, max *geometry.Size) bool {
	b := BoundSize(s, min, max)
	return math.Abs(b.Width-s.Width) <= epsilon && math.Abs(b.Height-s.Height) <= epsilon
}

// clampSize bounds the size, keeping the edge opposite the resize handle fixed
func clampSize(r geometry.Rect, p Proposal, min, max *geometry.Size) geometry.Rect {
	m := effectiveMin(min)
	size := geometry.Clamp(r.Size(), &m, max)

	if p.Kind == Resize {
		if p.Handle.MovesLeft() {
			r.X = r.Right() - size.Width
		}
		if p.Handle.MovesTop() {
			r.Y = r.Bottom() - size.Height
		}
	}
	r.Width, r.Height = size.Width, size.Height
	return r
}

// clampToCanvas keeps the rect at a non-negative origin and, when the canvas
// size is known, inside its right and bottom edges. A resize gives up size
// on the moving edge before shifting the widget.
func clampToCanvas(r geometry.Rect, p Proposal, canvas geometry.Size, min *geometry.Size) geometry.Rect {
	m := effectiveMin(min)

	if p.Kind == Resize {
		if p.Handle.MovesLeft() && r.X < 0 {
			r.Width = math.Max(r.Width+r.X, m.Width)
			r.X = 0
		}
		if p.Handle.MovesTop() && r.Y < 0 {
			r.Height = math.Max(r.Height+r.Y, m.Height)
			r.Y = 0
		}
		if p.Handle.MovesRight() && canvas.Width > 0 && r.Right() > canvas.Width {
			r.Width = math.Max(canvas.Width-r.X, m.Width)
		}
		if p.Handle.MovesBottom() && canvas.Height > 0 && r.Bottom() > canvas.Height {
			r.Height = math.Max(canvas.Height-r.Y, m.Height)
		}
	}

	if canvas.Width > 0 {
		r.Width = math.Min(r.Width, canvas.Width)
		r.X = math.Min(r.X, canvas.Width-r.Width)
	}
	if canvas.Height > 0 {
		r.Height = math.Min(r.Height, canvas.Height)
		r.Y = math.Min(r.Y, canvas.Height-r.Height)
	}
	r.X = math.Max(r.X, 0)
	r.Y = math.Max(r.Y, 0)
	return r
}

func inCanvas(r geometry.Rect, canvas geometry.Size) bool {
	if r.X < 0 || r.Y < 0 {
		return false
	}
	if canvas.Width > 0 && r.Right() > canvas.Width+epsilon {
		return false
	}
	if canvas.Height > 0 && r.Bottom() > canvas.Height+epsilon {
		return false
	}
	return true
}

func obstaclesFor(widgets []widget.Widget, skipID string) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(widgets))
	for i := range widgets {
		w := &widgets[i]
		if w.ID == skipID || !w.Collides() {
			continue
		}
		out = append(out, w.Rect())
	}
	return out
}

func collides(r geometry.Rect, obstacles []geometry.Rect) bool {
	for _, o := range obstacles {
		if geometry.Intersects(r, o) {
			return true
		}
	}
	return false
}

// trimResize pulls the moving edges back to the obstacles they ran into,
// one obstacle at a time, giving up the smaller extent first.
func trimResize(r geometry.Rect, h widget.Handle, obstacles []geometry.Rect, min *geometry.Size) (geometry.Rect, bool) {
	m := effectiveMin(min)

	for range len(obstacles) + 1 {
		var hit *geometry.Rect
		for i := range obstacles {
			if geometry.Intersects(r, obstacles[i]) {
				hit = &obstacles[i]
				break
			}
		}
		if hit == nil {
			return r, true
		}

		type option struct {
			rect geometry.Rect
			loss float64
		}
		var horizontal, vertical *option

		switch {
		case h.MovesRight() && hit.X > r.X:
			c := r
			c.Width = hit.X - r.X
			horizontal = &option{c, r.Width - c.Width}
		case h.MovesLeft() && hit.Right() < r.Right():
			c := r
			c.X = hit.Right()
			c.Width = r.Right() - c.X
			horizontal = &option{c, r.Width - c.Width}
		}
		switch {
		case h.MovesBottom() && hit.Y > r.Y:
			c := r
			c.Height = hit.Y - r.Y
			vertical = &option{c, r.Height - c.Height}
		case h.MovesTop() && hit.Bottom() < r.Bottom():
			c := r
			c.Y = hit.Bottom()
			c.Height = r.Bottom() - c.Y
			vertical = &option{c, r.Height - c.Height}
		}

		if horizontal != nil && horizontal.rect.Width < m.Width-epsilon {
			horizontal = nil
		}
		if vertical != nil && vertical.rect.Height < m.Height-epsilon {
			vertical = nil
		}

		switch {
		case horizontal != nil && (vertical == nil || horizontal.loss <= vertical.loss+epsilon):
			r = horizontal.rect
		case vertical != nil:
			r = vertical.rect
		default:
			return r, false
		}
	}
	return r, !collides(r, obstacles)
}

type candidate struct {
	rect   geometry.Rect
	dx, dy float64
}

func (c candidate) total() float64 { return c.dx + c.dy }

func (c candidate) axes() int {
	n := 0
	if c.dx > epsilon {
		n++
	}
	if c.dy > epsilon {
		n++
	}
	return n
}

// less orders candidates by displacement, then single-axis before two-axis,
// then horizontal before vertical, then top-most, then left-most.
func (c candidate) less(o candidate) bool {
	if d := c.total() - o.total(); math.Abs(d) > epsilon {
		return d < 0
	}
	if c.axes() != o.axes() {
		return c.axes() < o.axes()
	}
	if d := c.dy - o.dy; math.Abs(d) > epsilon {
		return d < 0
	}
	if d := c.rect.Y - o.rect.Y; math.Abs(d) > epsilon {
		return d < 0
	}
	return c.rect.X < o.rect.X
}

// push looks for the non-colliding position closest to r. Candidate
// coordinates are the proposal itself plus every obstacle and canvas edge
// the rect could be flush against.
func push(r geometry.Rect, obstacles []geometry.Rect, canvas geometry.Size) (geometry.Rect, bool) {
	xs := []float64{r.X, 0}
	ys := []float64{r.Y, 0}
	for _, o := range obstacles {
		xs = append(xs, o.X-r.Width, o.Right())
		ys = append(ys, o.Y-r.Height, o.Bottom())
	}
	if canvas.Width > 0 {
		xs = append(xs, canvas.Width-r.Width)
	}
	if canvas.Height > 0 {
		ys = append(ys, canvas.Height-r.Height)
	}
	xs = dedupe(xs)
	ys = dedupe(ys)

	var best *candidate
	for _, x := range xs {
		for _, y := range ys {
			// edge arithmetic can land a hair below zero
			x, y := math.Max(x, 0), math.Max(y, 0)
			c := geometry.Rect{X: x, Y: y, Width: r.Width, Height: r.Height}
			if !inCanvas(c, canvas) || collides(c, obstacles) {
				continue
			}
			cand := candidate{rect: c, dx: math.Abs(x - r.X), dy: math.Abs(y - r.Y)}
			if best == nil || cand.less(*best) {
				best = &cand
			}
		}
	}
	if best == nil {
		return geometry.Rect{}, false
	}
	return best.rect, true
}

func dedupe(vs []float64) []float64 {
	sort.Float64s(vs)
	out := vs[:0]
	for i, v := range vs {
		if i > 0 && math.Abs(v-out[len(out)-1]) <= epsilon {
			continue
		}
		out = append(out, v)
	}
	return out
}

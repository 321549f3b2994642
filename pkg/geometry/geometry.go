package geometry

import "math"

// Point is a position in layout coordinates
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Size is a width/height pair in layout units
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) Position() Point { return Point{X: r.X, Y: r.Y} }
func (r Rect) Size() Size      { return Size{Width: r.Width, Height: r.Height} }

// Translate returns r moved by dx, dy
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Intersects reports whether a and b overlap. Rectangles that only share an
// edge or a corner do not intersect.
func Intersects(a, b Rect) bool {
	return a.X < b.Right() && b.X < a.Right() &&
		a.Y < b.Bottom() && b.Y < a.Bottom()
}

// Contains reports whether inner lies entirely within outer
func Contains(outer, inner Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.Right() <= outer.Right() && inner.Bottom() <= outer.Bottom()
}

// Overlap returns the extent of the overlap on each axis, zero when disjoint
func Overlap(a, b Rect) (dx, dy float64) {
	if !Intersects(a, b) {
		return 0, 0
	}
	dx = math.Min(a.Right(), b.Right()) - math.Max(a.X, b.X)
	dy = math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Y, b.Y)
	return dx, dy
}

// Snap rounds v to the nearest multiple of grid. A non-positive grid
// disables snapping.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// Clamp bounds each axis of s to [min, max]. Nil bounds are ignored.
func Clamp(s Size, min, max *Size) Size {
	if max != nil {
		if max.Width > 0 && s.Width > max.Width {
			s.Width = max.Width
		}
		if max.Height > 0 && s.Height > max.Height {
			s.Height = max.Height
		}
	}
	if min != nil {
		if s.Width < min.Width {
			s.Width = min.Width
		}
		if s.Height < min.Height {
			s.Height = min.Height
		}
	}
	return s
}

// Sanitize maps NaN, infinities and negative values to zero
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SanitizeSigned is Sanitize for values where a negative sign is meaningful,
// such as pointer deltas.
func SanitizeSigned(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

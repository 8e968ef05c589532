package geometry

import "math"

// Rect is an axis-aligned box in image coordinates (origin top-left, y grows downward)
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the width of the rectangle
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// CenterX returns the horizontal center of the rectangle
func (r Rect) CenterX() float64 {
	return (r.Left + r.Right) / 2
}

// CenterY returns the vertical center of the rectangle
func (r Rect) CenterY() float64 {
	return (r.Top + r.Bottom) / 2
}

// Area returns width*height
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// IsEmpty reports whether the rectangle has no area
func (r Rect) IsEmpty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

// IsValid reports whether the edges are ordered (a zero-sized box is valid)
func (r Rect) IsValid() bool {
	return r.Left <= r.Right && r.Top <= r.Bottom &&
		!math.IsNaN(r.Left) && !math.IsNaN(r.Top) && !math.IsNaN(r.Right) && !math.IsNaN(r.Bottom)
}

// Contains reports whether o lies entirely inside r. An empty r contains nothing.
func (r Rect) Contains(o Rect) bool {
	return !r.IsEmpty() &&
		r.Left <= o.Left && r.Top <= o.Top &&
		r.Right >= o.Right && r.Bottom >= o.Bottom
}

// Intersects reports whether r and o overlap or touch
func (r Rect) Intersects(o Rect) bool {
	return r.Left <= o.Right && o.Left <= r.Right && r.Top <= o.Bottom && o.Top <= r.Bottom
}

// Union returns the smallest rectangle containing both r and o
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// Rotate180 maps r into the frame obtained by turning the envelope upside down
func (r Rect) Rotate180(envelope Rect) Rect {
	return Rect{
		Left:   envelope.Left + envelope.Right - r.Right,
		Top:    envelope.Top + envelope.Bottom - r.Bottom,
		Right:  envelope.Left + envelope.Right - r.Left,
		Bottom: envelope.Top + envelope.Bottom - r.Top,
	}
}

// Bounds returns the union of all rects, or the zero Rect when rects is empty
func Bounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = out.Union(r)
	}
	return out
}

// Extend grows r symmetrically: dx is a percentage of the width, dy a percentage
// of the height, each split evenly between the two opposite sides. A negative
// value is an absolute amount instead of a percentage (-200 grows the width by
// 200, 100 per side). The extended left and top are clamped at 0; right and
// bottom are not clamped.
func Extend(r Rect, dx, dy float64) Rect {
	growX := r.Width() * dx / 100
	if dx < 0 {
		growX = -dx
	}
	growY := r.Height() * dy / 100
	if dy < 0 {
		growY = -dy
	}

	out := Rect{
		Left:   r.Left - growX/2,
		Top:    r.Top - growY/2,
		Right:  r.Right + growX/2,
		Bottom: r.Bottom + growY/2,
	}
	if out.Left < 0 {
		out.Left = 0
	}
	if out.Top < 0 {
		out.Top = 0
	}
	return out
}

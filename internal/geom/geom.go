// Package geom holds the pure math the stage is built on: points, boxes,
// rotation about a pivot and affine matrices. Nothing here knows about
// elements.
package geom

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + o.
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Sub returns p - o.
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// Dist returns the euclidean distance between p and o.
func (p Point) Dist(o Point) float64 { return math.Hypot(p.X-o.X, p.Y-o.Y) }

// RotatePoint rotates (x, y) about the pivot (cx, cy) by angle radians.
// Positive angles turn counter-clockwise in math convention, which is
// clockwise on a y-down screen; the renderer uses the same convention.
func RotatePoint(x, y, cx, cy, angle float64) Point {
	if angle == 0 {
		return Point{x, y}
	}
	sin, cos := math.Sincos(angle)
	dx, dy := x-cx, y-cy
	return Point{
		X: cx + dx*cos - dy*sin,
		Y: cy + dx*sin + dy*cos,
	}
}

// RotateAround is RotatePoint for Point values.
func RotateAround(p, pivot Point, angle float64) Point {
	return RotatePoint(p.X, p.Y, pivot.X, pivot.Y, angle)
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the normalized rect spanned by two corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width && o.Y+o.Height <= r.Y+r.Height
}

// Intersects reports whether r and o overlap (touching counts).
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects. Unlike the area
// check in IsEmpty, degenerate rects (a horizontal line) still contribute.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// Inset grows (negative d) or shrinks the rect on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Box is an oriented box: the unrotated top-left corner and size, turned
// by Rotation radians about its own center. Elements and overlay frames use
// the same convention.
type Box struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// BoxAround builds a box of the given size centered on c.
func BoxAround(c Point, width, height, rotation float64) Box {
	return Box{X: c.X - width/2, Y: c.Y - height/2, Width: width, Height: height, Rotation: rotation}
}

// Center returns the rotation center of the box.
func (b Box) Center() Point {
	return Point{b.X + b.Width/2, b.Y + b.Height/2}
}

// Rect drops the rotation.
func (b Box) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// Corners returns the four world-space corners clockwise from the
// unrotated top-left.
func (b Box) Corners() [4]Point {
	c := b.Center()
	return [4]Point{
		RotatePoint(b.X, b.Y, c.X, c.Y, b.Rotation),
		RotatePoint(b.X+b.Width, b.Y, c.X, c.Y, b.Rotation),
		RotatePoint(b.X+b.Width, b.Y+b.Height, c.X, c.Y, b.Rotation),
		RotatePoint(b.X, b.Y+b.Height, c.X, c.Y, b.Rotation),
	}
}

// AABB returns the axis-aligned bounds of the rotated box.
func (b Box) AABB() Rect {
	c := b.Corners()
	return PointsBounds(c[:])
}

// PointsBounds returns the bounding rect of a point set.
func PointsBounds(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{a.X + t*dx, a.Y + t*dy})
}

// SnapAngle rounds angle to the nearest multiple of step.
func SnapAngle(angle, step float64) float64 {
	if step <= 0 {
		return angle
	}
	return math.Round(angle/step) * step
}

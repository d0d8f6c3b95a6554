// Package viewport converts between screen pixels and world coordinates
// and decides when pointer input pans the view instead of editing.
package viewport

import (
	"math"

	"github.com/inamate/canvas/internal/geom"
)

const (
	MinScale = 0.1
	MaxScale = 10.0
)

// Button identifies a pointer button, using DOM numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// Viewport maps world space to the screen: screen = world*Scale + Offset.
type Viewport struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	panning bool
	last    geom.Point
}

// New returns a viewport at zoom 1 with the world origin at the top-left
// of a width x height screen.
func New(width, height float64) *Viewport {
	return &Viewport{Scale: 1, Width: width, Height: height}
}

// Resize updates the screen size.
func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
}

// ScreenToWorld converts a screen point to world coordinates.
func (v *Viewport) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{
		X: (p.X - v.OffsetX) / v.Scale,
		Y: (p.Y - v.OffsetY) / v.Scale,
	}
}

// WorldToScreen converts a world point to screen coordinates.
func (v *Viewport) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{
		X: p.X*v.Scale + v.OffsetX,
		Y: p.Y*v.Scale + v.OffsetY,
	}
}

// ScreenDistance converts a length in screen pixels to world units.
func (v *Viewport) ScreenDistance(px float64) float64 {
	return px / v.Scale
}

// VisibleWorldBounds returns the world rect currently on screen.
func (v *Viewport) VisibleWorldBounds() geom.Rect {
	tl := v.ScreenToWorld(geom.Point{})
	return geom.Rect{X: tl.X, Y: tl.Y, Width: v.Width / v.Scale, Height: v.Height / v.Scale}
}

// PanTo centers the screen on a world point.
func (v *Viewport) PanTo(world geom.Point) {
	v.OffsetX = v.Width/2 - world.X*v.Scale
	v.OffsetY = v.Height/2 - world.Y*v.Scale
}

// PanBy shifts the view by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ZoomAt multiplies the scale by factor while keeping the world point under
// screen point anchor fixed. The scale is clamped to [MinScale, MaxScale].
func (v *Viewport) ZoomAt(anchor geom.Point, factor float64) {
	if factor <= 0 {
		return
	}
	world := v.ScreenToWorld(anchor)
	v.Scale = math.Max(MinScale, math.Min(MaxScale, v.Scale*factor))
	v.OffsetX = anchor.X - world.X*v.Scale
	v.OffsetY = anchor.Y - world.Y*v.Scale
}

// CanPan reports whether a press of button starts a pan. The hand tool or
// a held space bar turns any button into a pan; otherwise only the middle
// button pans.
func CanPan(button Button, handTool, spaceHeld bool) bool {
	if handTool || spaceHeld {
		return true
	}
	return button == ButtonMiddle
}

// BeginPan starts a drag-to-pan at a screen point.
func (v *Viewport) BeginPan(screen geom.Point) {
	v.panning = true
	v.last = screen
}

// MovePan follows the pointer while panning. It reports whether a pan is
// in progress.
func (v *Viewport) MovePan(screen geom.Point) bool {
	if !v.panning {
		return false
	}
	v.PanBy(screen.X-v.last.X, screen.Y-v.last.Y)
	v.last = screen
	return true
}

// EndPan finishes a pan. It reports whether one was in progress.
func (v *Viewport) EndPan() bool {
	was := v.panning
	v.panning = false
	return was
}

// Panning reports whether a drag-to-pan is active.
func (v *Viewport) Panning() bool { return v.panning }

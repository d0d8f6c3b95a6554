package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inamate/canvas/internal/geom"
)

func TestScreenWorldRoundTrip(t *testing.T) {
	v := New(800, 600)
	v.OffsetX, v.OffsetY, v.Scale = 100, -50, 2

	w := v.ScreenToWorld(geom.Point{X: 300, Y: 150})
	assert.Equal(t, geom.Point{X: 100, Y: 100}, w)
	assert.Equal(t, geom.Point{X: 300, Y: 150}, v.WorldToScreen(w))
	assert.Equal(t, 5.0, v.ScreenDistance(10))
}

func TestVisibleWorldBounds(t *testing.T) {
	v := New(800, 600)
	v.Scale = 2
	v.PanTo(geom.Point{X: 1000, Y: 1000})
	assert.Equal(t, geom.Rect{X: 800, Y: 850, Width: 400, Height: 300}, v.VisibleWorldBounds())
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	v := New(800, 600)
	anchor := geom.Point{X: 200, Y: 100}
	before := v.ScreenToWorld(anchor)
	v.ZoomAt(anchor, 3)
	assert.Equal(t, 3.0, v.Scale)
	after := v.ScreenToWorld(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	v.ZoomAt(anchor, 100)
	assert.Equal(t, MaxScale, v.Scale)
	v.ZoomAt(anchor, 0)
	assert.Equal(t, MaxScale, v.Scale)
}

func TestPanGating(t *testing.T) {
	assert.True(t, CanPan(ButtonMiddle, false, false))
	assert.False(t, CanPan(ButtonPrimary, false, false))
	assert.True(t, CanPan(ButtonPrimary, true, false))
	assert.True(t, CanPan(ButtonPrimary, false, true))
}

func TestDragPan(t *testing.T) {
	v := New(800, 600)
	assert.False(t, v.MovePan(geom.Point{X: 5, Y: 5}))

	v.BeginPan(geom.Point{X: 10, Y: 10})
	assert.True(t, v.MovePan(geom.Point{X: 30, Y: 5}))
	assert.Equal(t, 20.0, v.OffsetX)
	assert.Equal(t, -5.0, v.OffsetY)
	assert.True(t, v.EndPan())
	assert.False(t, v.Panning())
}

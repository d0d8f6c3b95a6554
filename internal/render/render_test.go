package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/store"
)

func newStore(t *testing.T, els ...document.Element) *store.Store {
	t.Helper()
	s := store.New()
	for _, el := range els {
		require.True(t, s.Add(el))
	}
	return s
}

func TestCompilePaintOrder(t *testing.T) {
	s := newStore(t,
		document.Element{ID: "a", Type: document.TypeRect, X: 0, Y: 0, Width: 10, Height: 20, Fill: "#fff", Alpha: 1},
		document.Element{ID: "b", Type: document.TypeCircle, X: 5, Y: 5, Width: 10, Height: 10, Alpha: 1},
		document.Element{ID: "g", Type: document.TypeGroup, Children: []string{"a", "b"}},
		document.Element{ID: "t", Type: document.TypeText, Text: "hi", FontSize: 12, Alpha: 1},
	)

	cmds := Compile(s.State())
	require.Len(t, cmds, 3)
	assert.Equal(t, "a", cmds[0].ElementID)
	assert.Equal(t, "path", cmds[0].Op)
	assert.True(t, cmds[0].Closed)
	assert.Equal(t, "#fff", cmds[0].Fill)
	assert.Equal(t, []float64{1, 0, 0, 1, 0, 0}, cmds[0].Transform)
	assert.Equal(t, "b", cmds[1].ElementID)
	assert.Equal(t, "text", cmds[2].Op)
	assert.Equal(t, "hi", cmds[2].Text)

	out, err := DrawCommandsToJSON(cmds)
	require.NoError(t, err)
	assert.Contains(t, out, `"elementId":"a"`)
}

func TestCompileArrowHasBarbs(t *testing.T) {
	s := newStore(t, document.Element{
		ID: "arr", Type: document.TypeArrow, Width: 100, StrokeWidth: 2, Alpha: 1,
		Points: []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}},
	})
	cmds := Compile(s.State())
	require.Len(t, cmds, 1)
	assert.False(t, cmds[0].Closed)
	assert.Len(t, cmds[0].Path, 5)
}

func TestHitTestTopmost(t *testing.T) {
	s := newStore(t,
		document.Element{ID: "back", Type: document.TypeRect, X: 0, Y: 0, Width: 100, Height: 100},
		document.Element{ID: "front", Type: document.TypeRect, X: 50, Y: 50, Width: 100, Height: 100},
	)
	assert.Equal(t, "front", HitTest(s.State(), geom.Point{X: 75, Y: 75}, 0))
	assert.Equal(t, "back", HitTest(s.State(), geom.Point{X: 25, Y: 25}, 0))
	assert.Equal(t, "", HitTest(s.State(), geom.Point{X: 300, Y: 300}, 0))
}

func TestHitTestRotatedBox(t *testing.T) {
	s := newStore(t, document.Element{
		ID: "r", Type: document.TypeRect, X: 0, Y: 40, Width: 100, Height: 20, Rotation: math.Pi / 2,
	})
	// Turned upright about (50, 50): now spans x 40..60, y 0..100.
	assert.Equal(t, "r", HitTest(s.State(), geom.Point{X: 50, Y: 5}, 0))
	assert.Equal(t, "", HitTest(s.State(), geom.Point{X: 5, Y: 50}, 0))
}

func TestHitTestResolvesGroup(t *testing.T) {
	s := newStore(t,
		document.Element{ID: "a", Type: document.TypeRect, X: 0, Y: 0, Width: 10, Height: 10},
		document.Element{ID: "inner", Type: document.TypeGroup, Children: []string{"a"}},
		document.Element{ID: "outer", Type: document.TypeGroup, Children: []string{"inner"}},
	)
	assert.Equal(t, "outer", HitTest(s.State(), geom.Point{X: 5, Y: 5}, 0))
}

func TestHitTestPathDistance(t *testing.T) {
	s := newStore(t, document.Element{
		ID: "l", Type: document.TypeLine, X: 0, Y: 0, Width: 100, Height: 0, StrokeWidth: 2,
		Points: []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}},
	})
	r := NewRenderer(s)
	id, ok := r.TopmostElementAt(geom.Point{X: 50, Y: 4})
	assert.True(t, ok)
	assert.Equal(t, "l", id)

	_, ok = r.TopmostElementAt(geom.Point{X: 50, Y: 20})
	assert.False(t, ok)
}

func TestHitTestCircleCorner(t *testing.T) {
	s := newStore(t, document.Element{ID: "c", Type: document.TypeCircle, Width: 100, Height: 100})
	assert.Equal(t, "c", HitTest(s.State(), geom.Point{X: 50, Y: 50}, 0))
	assert.Equal(t, "", HitTest(s.State(), geom.Point{X: 2, Y: 2}, 0))
}

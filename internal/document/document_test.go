package document

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/canvas/internal/geom"
)

func rect(id string, x, y, w, h, r float64) *Element {
	return &Element{ID: id, Type: TypeRect, X: x, Y: y, Width: w, Height: h, Rotation: r}
}

func group(id string, children ...string) *Element {
	return &Element{ID: id, Type: TypeGroup, Children: children}
}

func TestSelectionBounds(t *testing.T) {
	els := Elements{
		"a": rect("a", 0, 0, 10, 10, 0),
		"b": rect("b", 20, 5, 10, 20, math.Pi/4),
	}
	r, ok := SelectionBounds([]string{"a", "b", "missing"}, els)
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 30, Height: 25}, r)

	_, ok = SelectionBounds([]string{"missing"}, els)
	assert.False(t, ok)
}

func TestDescendantIDsNested(t *testing.T) {
	els := Elements{
		"g1": group("g1", "a", "g2"),
		"g2": group("g2", "b", "c"),
		"a":  rect("a", 0, 0, 1, 1, 0),
		"b":  rect("b", 0, 0, 1, 1, 0),
		"c":  rect("c", 0, 0, 1, 1, 0),
	}
	assert.Equal(t, []string{"a", "g2", "b", "c"}, DescendantIDs("g1", els))
	assert.Nil(t, DescendantIDs("a", els))
	assert.Nil(t, DescendantIDs("nope", els))
}

func TestDescendantIDsTerminatesOnCycle(t *testing.T) {
	els := Elements{
		"g1": group("g1", "g2"),
		"g2": group("g2", "g1", "a"),
		"a":  rect("a", 0, 0, 1, 1, 0),
	}
	assert.Equal(t, []string{"g2", "a"}, DescendantIDs("g1", els))
}

func TestExpandAndLeafIDs(t *testing.T) {
	els := Elements{
		"g": group("g", "a", "b"),
		"a": rect("a", 0, 0, 1, 1, 0),
		"b": rect("b", 0, 0, 1, 1, 0),
		"c": rect("c", 0, 0, 1, 1, 0),
	}
	assert.Equal(t, []string{"c", "g", "a", "b"}, ExpandSelection([]string{"c", "g", "a"}, els))
	assert.Equal(t, []string{"c", "a", "b"}, LeafIDs([]string{"c", "g"}, els))
}

func TestGroupBoundsAxisAligned(t *testing.T) {
	els := Elements{
		"a": rect("a", 0, 0, 10, 10, 0),
		"b": rect("b", 30, 20, 10, 10, 0),
	}
	b, ok := GroupBounds(els, []string{"a", "b"}, 0)
	require.True(t, ok)
	assert.InDelta(t, 0, b.X, 1e-9)
	assert.InDelta(t, 0, b.Y, 1e-9)
	assert.InDelta(t, 40, b.Width, 1e-9)
	assert.InDelta(t, 30, b.Height, 1e-9)
}

func TestGroupBoundsRotatedFrameHugsRotatedChild(t *testing.T) {
	angle := 0.5
	els := Elements{"a": rect("a", 10, 20, 60, 30, angle)}
	b, ok := GroupBounds(els, []string{"a"}, angle)
	require.True(t, ok)
	assert.InDelta(t, 10, b.X, 1e-9)
	assert.InDelta(t, 20, b.Y, 1e-9)
	assert.InDelta(t, 60, b.Width, 1e-9)
	assert.InDelta(t, 30, b.Height, 1e-9)
	assert.InDelta(t, angle, b.Rotation, 1e-12)
}

func TestGroupBoundsEmpty(t *testing.T) {
	_, ok := GroupBounds(Elements{}, []string{"x"}, 0)
	assert.False(t, ok)
}

func TestSharedRotation(t *testing.T) {
	els := Elements{
		"a": rect("a", 0, 0, 1, 1, 0.3),
		"b": rect("b", 0, 0, 1, 1, 0.3),
		"c": rect("c", 0, 0, 1, 1, 0.1),
	}
	assert.InDelta(t, 0.3, SharedRotation([]string{"a", "b"}, els), 1e-12)
	assert.Equal(t, 0.0, SharedRotation([]string{"a", "c"}, els))
}

func TestRootOf(t *testing.T) {
	els := Elements{
		"g1": group("g1", "g2"),
		"g2": group("g2", "a"),
		"a":  rect("a", 0, 0, 1, 1, 0),
	}
	parents := ParentIndex([]string{"g1", "g2", "a"}, els)
	assert.Equal(t, "g1", RootOf("a", parents))
	assert.Equal(t, "g1", RootOf("g1", parents))
}

func TestAttrsApplyAndGeometryDiff(t *testing.T) {
	el := rect("a", 0, 0, 10, 10, 0)
	before := el.Clone()
	Attrs{X: Ptr(5.0), Fill: Ptr("#fff")}.Apply(el)
	assert.Equal(t, 5.0, el.X)
	assert.Equal(t, "#fff", el.Fill)
	assert.True(t, GeometryDiffers(before, el))

	nudged := before.Clone()
	nudged.X += 0.001
	assert.False(t, GeometryDiffers(before, nudged))

	assert.True(t, Attrs{}.IsEmpty())
	assert.False(t, GeometryAttrs(el).IsEmpty())
}

func TestAbsolutePointsRoundTrip(t *testing.T) {
	el := &Element{
		ID: "l", Type: TypeLine, X: 10, Y: 10, Width: 20, Height: 0,
		Points: []geom.Point{{X: 0, Y: 0}, {X: 20, Y: 0}},
	}
	el.Rotation = math.Pi / 2
	abs := el.AbsolutePoints()
	assert.InDelta(t, 20, abs[0].X, 1e-9)
	assert.InDelta(t, 0, abs[0].Y, 1e-9)
	assert.InDelta(t, 20, abs[1].X, 1e-9)
	assert.InDelta(t, 20, abs[1].Y, 1e-9)

	el.SetAbsolutePoints(abs)
	assert.Equal(t, 0.0, el.Rotation)
	assert.InDelta(t, 20, el.X, 1e-9)
	assert.InDelta(t, 0, el.Width, 1e-9)
	assert.InDelta(t, 20, el.Height, 1e-9)
	assert.InDelta(t, 20, el.Points[1].Y, 1e-9)
}

func TestSampleBoardGroupMatchesChildren(t *testing.T) {
	board := NewSampleBoard("room_test")
	els := Elements{}
	var groupEl *Element
	for i := range board.Elements {
		el := &board.Elements[i]
		els[el.ID] = el
		if el.Type == TypeGroup {
			groupEl = el
		}
	}
	require.NotNil(t, groupEl)
	b, ok := GroupBounds(els, groupEl.Children, 0)
	require.True(t, ok)
	assert.InDelta(t, groupEl.X, b.X, 1e-9)
	assert.InDelta(t, groupEl.Width, b.Width, 1e-9)

	data, err := json.Marshal(board)
	require.NoError(t, err)
	var back Board
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Len(t, back.Elements, len(board.Elements))
}

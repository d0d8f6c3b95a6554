package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/canvas/internal/document"
)

func rect(id string, x, y float64) document.Element {
	return document.Element{ID: id, Type: document.TypeRect, X: x, Y: y, Width: 10, Height: 10}
}

func TestAddRejectsDuplicates(t *testing.T) {
	s := New()
	require.True(t, s.Add(rect("a", 0, 0)))
	assert.False(t, s.Add(rect("a", 5, 5)))
	el, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 0.0, el.X)
	assert.Equal(t, []string{"a"}, s.State().Order())
}

func TestMutationsProduceNewStates(t *testing.T) {
	s := New()
	s.Add(rect("a", 0, 0))
	s.Add(rect("b", 0, 0))
	before := s.State()

	s.Update("a", document.Attrs{X: document.Ptr(42.0)})
	after := s.State()

	require.NotSame(t, before, after)
	a0, _ := before.Get("a")
	a1, _ := after.Get("a")
	assert.Equal(t, 0.0, a0.X)
	assert.Equal(t, 42.0, a1.X)

	b0, _ := before.Get("b")
	b1, _ := after.Get("b")
	assert.Same(t, b0, b1, "untouched elements are shared")
	assert.Greater(t, after.Version(), before.Version())
}

func TestUpdateUnknownIsNoop(t *testing.T) {
	s := New()
	s.Add(rect("a", 0, 0))
	st := s.State()
	s.Update("missing", document.Attrs{X: document.Ptr(1.0)})
	s.Update("a", document.Attrs{})
	assert.Same(t, st, s.State())
}

func TestSubscribersSeeWritesSynchronously(t *testing.T) {
	s := New()
	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) {
		changes = append(changes, c)
		assert.Same(t, c.Next, s.State())
	})

	s.Add(rect("a", 0, 0))
	s.UpdateMany(map[string]document.Attrs{"a": {Y: document.Ptr(3.0)}})
	s.Select("a")
	s.Remove("a")

	require.Len(t, changes, 4)
	assert.Equal(t, []string{"a"}, changes[0].Added)
	assert.Equal(t, []string{"a"}, changes[1].Updated)
	assert.True(t, changes[2].Selection)
	assert.Equal(t, []string{"a"}, changes[3].Removed)
	assert.True(t, changes[3].Selection)

	unsubscribe()
	s.Add(rect("b", 0, 0))
	assert.Len(t, changes, 4)
}

func TestRemoveCleansGroupsAndSelection(t *testing.T) {
	s := New()
	s.Add(rect("a", 0, 0))
	s.Add(rect("b", 20, 0))
	s.Add(document.Element{ID: "g", Type: document.TypeGroup, Children: []string{"a", "b"}})
	s.Select("a", "g")

	s.Remove("a", "nope")

	g, _ := s.Get("g")
	assert.Equal(t, []string{"b"}, g.Children)
	assert.Equal(t, []string{"g"}, s.State().Selected())
	assert.Equal(t, []string{"b", "g"}, s.State().Order())
}

func TestSelectAndToggle(t *testing.T) {
	s := New()
	s.Add(rect("a", 0, 0))
	s.Add(rect("b", 0, 0))

	s.Select("b", "missing", "b", "a")
	assert.Equal(t, []string{"b", "a"}, s.State().Selected())

	s.Toggle("b")
	assert.Equal(t, []string{"a"}, s.State().Selected())
	s.Toggle("b")
	assert.Equal(t, []string{"a", "b"}, s.State().Selected())

	s.ClearSelection()
	assert.Empty(t, s.State().Selected())
}

func TestRestoreDiffsStates(t *testing.T) {
	s := New()
	s.Add(rect("a", 0, 0))
	s.Add(rect("b", 0, 0))
	saved := s.State()

	s.Update("a", document.Attrs{X: document.Ptr(9.0)})
	s.Remove("b")
	s.Add(rect("c", 0, 0))
	s.Select("c", "a")

	var got Change
	s.Subscribe(func(c Change) { got = c })
	s.Restore(saved)

	assert.Equal(t, []string{"b"}, got.Added)
	assert.Equal(t, []string{"a"}, got.Updated)
	assert.Equal(t, []string{"c"}, got.Removed)
	assert.Equal(t, []string{"a"}, s.State().Selected())
	a, _ := s.Get("a")
	assert.Equal(t, 0.0, a.X)
	assert.Equal(t, []string{"a", "b"}, s.State().Order())
}

func TestLoadAndBoard(t *testing.T) {
	s := New()
	s.Load(&document.Board{Elements: []document.Element{
		rect("a", 1, 2),
		rect("", 0, 0),
		rect("a", 3, 4),
		{ID: "g", Type: document.TypeGroup, Children: []string{"a"}},
	}})
	assert.Equal(t, []string{"a", "g"}, s.State().Order())
	assert.Equal(t, []string{"g"}, s.State().TopLevel())

	b := s.State().Board()
	require.Len(t, b.Elements, 2)
	assert.Equal(t, 1.0, b.Elements[0].X)
}

func TestInsertClampsIndex(t *testing.T) {
	s := New()
	s.Add(rect("a", 0, 0))
	s.Add(rect("b", 0, 0))
	require.True(t, s.Insert(rect("c", 0, 0), 1))
	require.True(t, s.Insert(rect("d", 0, 0), -3))
	require.True(t, s.Insert(rect("e", 0, 0), 99))
	assert.Equal(t, []string{"d", "a", "c", "b", "e"}, s.State().Order())
	assert.False(t, s.Insert(rect("a", 0, 0), 0))
}

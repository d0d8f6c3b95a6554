package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/store"
)

type countingCommand struct {
	executed, undone, redone int
}

func (c *countingCommand) Execute() { c.executed++ }
func (c *countingCommand) Undo()    { c.undone++ }
func (c *countingCommand) Redo()    { c.redone++ }

func TestExecuteIgnoredWhileLocked(t *testing.T) {
	m := NewManager()
	m.Lock()
	cmd := &countingCommand{}
	assert.False(t, m.Execute(cmd))
	assert.False(t, m.Record(cmd))
	assert.Equal(t, 0, cmd.executed)
	assert.Equal(t, 0, m.UndoLen())

	m.Unlock()
	assert.True(t, m.Execute(cmd))
	assert.Equal(t, 1, cmd.executed)
	assert.Equal(t, 1, m.UndoLen())
}

func TestExecuteClearsRedoBranch(t *testing.T) {
	m := NewManager()
	m.Execute(&countingCommand{})
	m.Execute(&countingCommand{})
	require.True(t, m.Undo())
	assert.Equal(t, 1, m.RedoLen())

	m.Execute(&countingCommand{})
	assert.Equal(t, 0, m.RedoLen())
	assert.False(t, m.CanRedo())
}

func TestUndoRedoOrder(t *testing.T) {
	m := NewManager()
	a, b := &countingCommand{}, &countingCommand{}
	m.Execute(a)
	m.Execute(b)

	m.Undo()
	assert.Equal(t, 1, b.undone)
	assert.Equal(t, 0, a.undone)
	m.Redo()
	assert.Equal(t, 1, b.redone)
	assert.False(t, m.Locked())

	assert.True(t, m.Undo())
	assert.True(t, m.Undo())
	assert.False(t, m.Undo())
	assert.Equal(t, 2, m.RedoLen())
}

func TestUndoRefusedMidGesture(t *testing.T) {
	m := NewManager()
	m.Execute(&countingCommand{})
	m.Lock()
	assert.False(t, m.Undo())
	assert.True(t, m.Locked(), "a refused undo must not release the gesture lock")
}

func TestLimitDropsOldest(t *testing.T) {
	m := NewManager()
	m.Limit = 2
	first := &countingCommand{}
	m.Execute(first)
	m.Execute(&countingCommand{})
	m.Execute(&countingCommand{})
	assert.Equal(t, 2, m.UndoLen())
	m.Undo()
	m.Undo()
	assert.Equal(t, 0, first.undone)
}

func TestOnChangeFires(t *testing.T) {
	m := NewManager()
	calls := 0
	m.OnChange = func() { calls++ }
	m.Execute(&countingCommand{})
	m.Undo()
	m.Redo()
	m.Clear()
	assert.Equal(t, 4, calls)
}

func TestAttrsCommandRoundTrip(t *testing.T) {
	s := store.New()
	s.Add(document.Element{ID: "a", Type: document.TypeRect, Width: 10, Height: 10})
	s.Add(document.Element{ID: "b", Type: document.TypeRect, X: 50, Width: 10, Height: 10})

	cmd := NewAttrsCommand(s, "move", []AttrsChange{
		{ID: "a", Before: document.Attrs{X: document.Ptr(0.0)}, After: document.Attrs{X: document.Ptr(10.0)}},
		{ID: "b", Before: document.Attrs{X: document.Ptr(50.0)}, After: document.Attrs{X: document.Ptr(60.0)}},
	})
	m := NewManager()
	m.Execute(cmd)
	a, _ := s.Get("a")
	b, _ := s.Get("b")
	assert.Equal(t, 10.0, a.X)
	assert.Equal(t, 60.0, b.X)

	m.Undo()
	a, _ = s.Get("a")
	b, _ = s.Get("b")
	assert.Equal(t, 0.0, a.X)
	assert.Equal(t, 50.0, b.X)

	m.Redo()
	a, _ = s.Get("a")
	assert.Equal(t, 10.0, a.X)
}

func TestSnapshotCommandRoundTrip(t *testing.T) {
	s := store.New()
	s.Add(document.Element{ID: "a", Type: document.TypeRect, Width: 10, Height: 10})
	before := s.State()
	s.Remove("a")
	after := s.State()

	m := NewManager()
	m.Record(NewSnapshotCommand(s, "erase", before, after))
	assert.False(t, s.State().Has("a"))

	m.Undo()
	assert.True(t, s.State().Has("a"))
	m.Redo()
	assert.False(t, s.State().Has("a"))
}

package history

import (
	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/store"
)

// Command is one undoable step. Implementations must be total over valid
// states: there is no partial failure and no rollback.
type Command interface {
	Execute()
	Undo()
	Redo()
}

// SnapshotCommand swaps whole-store states. States are immutable, so
// holding two of them costs two pointers.
type SnapshotCommand struct {
	store  *store.Store
	Label  string
	Before *store.State
	After  *store.State
}

// NewSnapshotCommand records a transition between two states of s.
func NewSnapshotCommand(s *store.Store, label string, before, after *store.State) *SnapshotCommand {
	return &SnapshotCommand{store: s, Label: label, Before: before, After: after}
}

func (c *SnapshotCommand) Execute() { c.store.Restore(c.After) }
func (c *SnapshotCommand) Undo()    { c.store.Restore(c.Before) }
func (c *SnapshotCommand) Redo()    { c.store.Restore(c.After) }

// AttrsChange is the before/after of one element.
type AttrsChange struct {
	ID     string         `json:"id"`
	Before document.Attrs `json:"initialAttrs"`
	After  document.Attrs `json:"finalAttrs"`
}

// AttrsCommand replays field-level changes across many elements as one
// store transition.
type AttrsCommand struct {
	store   *store.Store
	Label   string
	Changes []AttrsChange
}

// NewAttrsCommand bundles changes for s.
func NewAttrsCommand(s *store.Store, label string, changes []AttrsChange) *AttrsCommand {
	return &AttrsCommand{store: s, Label: label, Changes: changes}
}

func (c *AttrsCommand) apply(before bool) {
	updates := make(map[string]document.Attrs, len(c.Changes))
	for _, ch := range c.Changes {
		if before {
			updates[ch.ID] = ch.Before
		} else {
			updates[ch.ID] = ch.After
		}
	}
	c.store.UpdateMany(updates)
}

func (c *AttrsCommand) Execute() { c.apply(false) }
func (c *AttrsCommand) Undo()    { c.apply(true) }
func (c *AttrsCommand) Redo()    { c.apply(false) }

package store

import (
	"slices"

	"github.com/inamate/canvas/internal/document"
)

// State is an immutable snapshot of the board. Elements reachable from a
// State are never modified in place; callers must treat them as read-only.
type State struct {
	elements map[string]*document.Element
	order    []string
	selected []string
	version  uint64
}

func emptyState() *State {
	return &State{elements: make(map[string]*document.Element)}
}

// Get returns the element with the given id.
func (s *State) Get(id string) (*document.Element, bool) {
	el, ok := s.elements[id]
	return el, ok
}

// Has reports whether id exists.
func (s *State) Has(id string) bool {
	_, ok := s.elements[id]
	return ok
}

// Len returns the number of elements.
func (s *State) Len() int { return len(s.order) }

// Version increases with every mutation.
func (s *State) Version() uint64 { return s.version }

// Order returns every id in paint order, back to front.
func (s *State) Order() []string { return slices.Clone(s.order) }

// Selected returns the selected ids in selection order.
func (s *State) Selected() []string { return slices.Clone(s.selected) }

// IsSelected reports whether id is selected.
func (s *State) IsSelected(id string) bool { return slices.Contains(s.selected, id) }

// Parents maps every grouped element to its group.
func (s *State) Parents() map[string]string {
	return document.ParentIndex(s.order, s)
}

// TopLevel returns the ids that are not children of any group, in paint
// order.
func (s *State) TopLevel() []string {
	parents := s.Parents()
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if _, child := parents[id]; !child {
			out = append(out, id)
		}
	}
	return out
}

// Board copies the state into its serializable form.
func (s *State) Board() *document.Board {
	b := &document.Board{Elements: make([]document.Element, 0, len(s.order))}
	for _, id := range s.order {
		b.Elements = append(b.Elements, *s.elements[id].Clone())
	}
	return b
}

func (s *State) clone() *State {
	next := &State{
		elements: make(map[string]*document.Element, len(s.elements)),
		order:    s.order,
		selected: s.selected,
		version:  s.version + 1,
	}
	for id, el := range s.elements {
		next.elements[id] = el
	}
	return next
}

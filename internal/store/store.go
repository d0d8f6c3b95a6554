// Package store is the authoritative element store. Every mutation swaps in
// a new immutable State and notifies subscribers synchronously before
// returning, so a caller can read back its own writes in the same tick.
//
// A Store is owned by a single event loop and is not safe for concurrent use.
package store

import (
	"log/slog"
	"slices"

	"github.com/inamate/canvas/internal/document"
)

// Change describes one mutation. Prev and Next are the states on either side.
type Change struct {
	Added     []string
	Updated   []string
	Removed   []string
	Selection bool
	Prev      *State
	Next      *State
}

// Empty reports whether the change touched nothing.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0 && !c.Selection
}

type subscriber struct {
	id int
	fn func(Change)
}

type Store struct {
	state   *State
	subs    []subscriber
	nextSub int
	log     *slog.Logger
}

// New creates an empty store.
func New() *Store {
	return &Store{state: emptyState(), log: slog.Default()}
}

// SetLogger replaces the logger; nil restores slog.Default().
func (s *Store) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.log = l
}

// State returns the current snapshot.
func (s *Store) State() *State { return s.state }

// Get is shorthand for State().Get.
func (s *Store) Get(id string) (*document.Element, bool) { return s.state.Get(id) }

// Subscribe registers fn for every subsequent change. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

func (s *Store) commit(next *State, c Change) {
	c.Prev = s.state
	c.Next = next
	s.state = next
	for _, sub := range slices.Clone(s.subs) {
		sub.fn(c)
	}
}

// Add inserts el at the top of the paint order. It does nothing and returns
// false if the id is already present.
func (s *Store) Add(el document.Element) bool {
	return s.Insert(el, len(s.state.order))
}

// Insert places el at index in the paint order, clamped to the valid
// range. Like Add it refuses duplicate ids.
func (s *Store) Insert(el document.Element, index int) bool {
	if el.ID == "" || s.state.Has(el.ID) {
		s.log.Debug("add ignored", "id", el.ID)
		return false
	}
	index = max(0, min(index, len(s.state.order)))
	next := s.state.clone()
	next.elements[el.ID] = el.Clone()
	next.order = slices.Insert(slices.Clone(s.state.order), index, el.ID)
	s.commit(next, Change{Added: []string{el.ID}})
	return true
}

// Update merges attrs into the element. Unknown ids are ignored.
func (s *Store) Update(id string, attrs document.Attrs) {
	s.UpdateMany(map[string]document.Attrs{id: attrs})
}

// UpdateMany applies every update as one state transition.
func (s *Store) UpdateMany(updates map[string]document.Attrs) {
	var next *State
	var updated []string
	for _, id := range s.state.order {
		attrs, ok := updates[id]
		if !ok || attrs.IsEmpty() {
			continue
		}
		if next == nil {
			next = s.state.clone()
		}
		el := next.elements[id].Clone()
		attrs.Apply(el)
		next.elements[id] = el
		updated = append(updated, id)
	}
	if next == nil {
		return
	}
	s.commit(next, Change{Updated: updated})
}

// Remove deletes the given elements, drops them from any group that lists
// them and from the selection. Unknown ids are ignored.
func (s *Store) Remove(ids ...string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		if s.state.Has(id) {
			gone[id] = true
		}
	}
	if len(gone) == 0 {
		return
	}

	next := s.state.clone()
	var removed, updated []string
	order := make([]string, 0, len(s.state.order))
	for _, id := range s.state.order {
		if gone[id] {
			delete(next.elements, id)
			removed = append(removed, id)
			continue
		}
		order = append(order, id)
	}
	next.order = order

	for _, id := range order {
		el := next.elements[id]
		if el.Type != document.TypeGroup || !slices.ContainsFunc(el.Children, func(c string) bool { return gone[c] }) {
			continue
		}
		el = el.Clone()
		el.Children = slices.DeleteFunc(el.Children, func(c string) bool { return gone[c] })
		next.elements[id] = el
		updated = append(updated, id)
	}

	selection := false
	if slices.ContainsFunc(s.state.selected, func(id string) bool { return gone[id] }) {
		next.selected = slices.DeleteFunc(slices.Clone(s.state.selected), func(id string) bool { return gone[id] })
		selection = true
	}
	s.commit(next, Change{Removed: removed, Updated: updated, Selection: selection})
}

// Select replaces the selection. Unknown and duplicate ids are dropped.
func (s *Store) Select(ids ...string) {
	sel := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.state.Has(id) && !slices.Contains(sel, id) {
			sel = append(sel, id)
		}
	}
	if slices.Equal(sel, s.state.selected) {
		return
	}
	next := s.state.clone()
	next.selected = sel
	s.commit(next, Change{Selection: true})
}

// Toggle adds id to the selection or removes it if already present.
func (s *Store) Toggle(id string) {
	if s.state.IsSelected(id) {
		s.Select(slices.DeleteFunc(s.state.Selected(), func(x string) bool { return x == id })...)
		return
	}
	s.Select(append(s.state.Selected(), id)...)
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() { s.Select() }

// Restore brings back the elements and paint order of a previous state.
// The current selection survives where its ids still exist.
func (s *Store) Restore(st *State) {
	next := &State{
		elements: st.elements,
		order:    st.order,
		version:  s.state.version + 1,
	}
	var c Change
	for _, id := range st.order {
		old, ok := s.state.elements[id]
		switch {
		case !ok:
			c.Added = append(c.Added, id)
		case old != st.elements[id]:
			c.Updated = append(c.Updated, id)
		}
	}
	for _, id := range s.state.order {
		if _, ok := st.elements[id]; !ok {
			c.Removed = append(c.Removed, id)
		}
	}
	if len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Updated) == 0 && slices.Equal(st.order, s.state.order) {
		return
	}

	next.selected = slices.DeleteFunc(slices.Clone(s.state.selected), func(id string) bool { return !next.Has(id) })
	c.Selection = len(next.selected) != len(s.state.selected)
	s.commit(next, c)
}

// Load replaces the whole board. Elements with duplicate or empty ids are
// skipped.
func (s *Store) Load(board *document.Board) {
	st := emptyState()
	for _, el := range board.Elements {
		if el.ID == "" || st.Has(el.ID) {
			s.log.Warn("skipping element on load", "id", el.ID)
			continue
		}
		st.elements[el.ID] = el.Clone()
		st.order = append(st.order, el.ID)
	}
	s.Restore(st)
	s.ClearSelection()
}

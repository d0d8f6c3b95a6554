package oplog

import (
	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/store"
)

// Apply replays a peer's operation onto a local store. Deletes of unknown
// elements are ignored, matching the store's tolerance of stale ids.
func Apply(s *store.Store, op Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}
	switch op.Type {
	case TypeUpsert:
		if _, ok := s.Get(op.ElementID); ok {
			s.Update(op.ElementID, document.AttrsOf(op.Element))
			return nil
		}
		index := s.State().Len()
		if op.Index != nil {
			index = *op.Index
		}
		s.Insert(*op.Element, index)
	case TypeDelete:
		s.Remove(op.ElementID)
	}
	return nil
}

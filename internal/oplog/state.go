package oplog

import (
	"fmt"
	"slices"
	"sync"

	"github.com/inamate/canvas/internal/document"
)

// BoardState holds the authoritative board for a room.
type BoardState struct {
	mu        sync.RWMutex
	elements  map[string]*document.Element
	order     []string
	serverSeq int64
	dirty     bool
}

// NewBoardState creates a board state from an initial board.
func NewBoardState(board *document.Board) *BoardState {
	bs := &BoardState{elements: make(map[string]*document.Element)}
	if board == nil {
		return bs
	}
	for _, el := range board.Elements {
		if el.ID == "" || bs.elements[el.ID] != nil {
			continue
		}
		bs.elements[el.ID] = el.Clone()
		bs.order = append(bs.order, el.ID)
	}
	return bs
}

// Board returns a copy of the current board.
func (bs *BoardState) Board() *document.Board {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	b := &document.Board{Elements: make([]document.Element, 0, len(bs.order))}
	for _, id := range bs.order {
		b.Elements = append(b.Elements, *bs.elements[id].Clone())
	}
	return b
}

// Seq returns the last assigned server sequence.
func (bs *BoardState) Seq() int64 {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.serverSeq
}

// TakeDirty reports whether the board changed since the last call.
func (bs *BoardState) TakeDirty() bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	d := bs.dirty
	bs.dirty = false
	return d
}

// ApplyOperation applies an operation to the board and returns the server sequence
func (bs *BoardState) ApplyOperation(op Operation) (int64, error) {
	if err := op.Validate(); err != nil {
		return 0, err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	switch op.Type {
	case TypeUpsert:
		bs.applyUpsert(op)
	case TypeDelete:
		if err := bs.applyDelete(op); err != nil {
			return 0, err
		}
	}

	bs.serverSeq++
	bs.dirty = true
	return bs.serverSeq, nil
}

func (bs *BoardState) applyUpsert(op Operation) {
	el := op.Element.Clone()
	if _, ok := bs.elements[el.ID]; !ok {
		index := len(bs.order)
		if op.Index != nil {
			index = max(0, min(*op.Index, len(bs.order)))
		}
		bs.order = slices.Insert(bs.order, index, el.ID)
	}
	bs.elements[el.ID] = el
}

func (bs *BoardState) applyDelete(op Operation) error {
	if _, ok := bs.elements[op.ElementID]; !ok {
		return fmt.Errorf("delete %s: %w", op.ElementID, ErrElementNotFound)
	}
	delete(bs.elements, op.ElementID)
	bs.order = slices.DeleteFunc(bs.order, func(id string) bool { return id == op.ElementID })

	// Remove from groups' children
	for id, el := range bs.elements {
		if el.Type != document.TypeGroup || !slices.Contains(el.Children, op.ElementID) {
			continue
		}
		g := el.Clone()
		g.Children = slices.DeleteFunc(g.Children, func(c string) bool { return c == op.ElementID })
		bs.elements[id] = g
	}
	return nil
}

// Package oplog describes board mutations as small serializable
// operations: the outbox turns store changes into them, and BoardState
// and Apply replay them on the server and on peers.
package oplog

import (
	"errors"
	"fmt"
	"time"

	"github.com/inamate/canvas/internal/document"
)

const (
	TypeUpsert = "element.upsert"
	TypeDelete = "element.delete"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrElementNotFound  = errors.New("element not found")
)

// Operation represents a document mutation
type Operation struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Timestamp int64             `json:"timestamp"`
	ClientSeq int64             `json:"clientSeq"`
	ElementID string            `json:"elementId"`
	Element   *document.Element `json:"element,omitempty"` // For element.upsert
	Index     *int              `json:"index,omitempty"`   // Paint order position for element.upsert
}

// Validate checks that op is well formed for its type.
func (op Operation) Validate() error {
	if op.ElementID == "" {
		return fmt.Errorf("%w: missing elementId", ErrInvalidOperation)
	}
	switch op.Type {
	case TypeUpsert:
		if op.Element == nil || op.Element.ID != op.ElementID {
			return fmt.Errorf("%w: upsert needs a matching element", ErrInvalidOperation)
		}
		if !op.Element.Type.Valid() {
			return fmt.Errorf("%w: bad element type %q", ErrInvalidOperation, op.Element.Type)
		}
	case TypeDelete:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
	return nil
}

// ServerTimestamp returns the current server timestamp
func ServerTimestamp() int64 {
	return time.Now().UnixMilli()
}

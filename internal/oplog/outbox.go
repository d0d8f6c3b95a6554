package oplog

import (
	"log/slog"
	"slices"

	"github.com/inamate/canvas/internal/store"
	"github.com/inamate/canvas/internal/typeid"
)

// Outbox subscribes to a store and coalesces its changes into pending
// operations, one per element, until drained. Selection changes are local
// and never produce operations.
type Outbox struct {
	pending map[string]Operation
	order   []string
	fresh   map[string]bool
	seq     int64
	muted   bool
	cancel  func()
	log     *slog.Logger
}

// NewOutbox starts recording changes of s.
func NewOutbox(s *store.Store) *Outbox {
	o := &Outbox{pending: make(map[string]Operation), fresh: make(map[string]bool), log: slog.Default()}
	o.cancel = s.Subscribe(o.record)
	return o
}

// SetLogger replaces the logger; nil restores slog.Default().
func (o *Outbox) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	o.log = l
}

// Close stops recording.
func (o *Outbox) Close() { o.cancel() }

// Muted runs fn without recording the changes it makes, e.g. while
// replaying operations that came from a peer.
func (o *Outbox) Muted(fn func()) {
	prev := o.muted
	o.muted = true
	defer func() { o.muted = prev }()
	fn()
}

func (o *Outbox) record(c store.Change) {
	if o.muted {
		return
	}
	// Added elements may have been inserted mid-order, and a restore can
	// move everything after them, so positions are recorded for upserts.
	order := c.Next.Order()
	index := make(map[string]int, len(order))
	for i, id := range order {
		index[id] = i
	}
	for _, id := range c.Added {
		o.fresh[id] = true
	}
	for _, id := range append(c.Added, c.Updated...) {
		el, ok := c.Next.Get(id)
		if !ok {
			continue
		}
		i := index[id]
		o.put(Operation{Type: TypeUpsert, ElementID: id, Element: el.Clone(), Index: &i})
	}
	for _, id := range c.Removed {
		if o.fresh[id] {
			// Created and removed before anyone saw it.
			o.drop(id)
			continue
		}
		o.put(Operation{Type: TypeDelete, ElementID: id})
	}
}

func (o *Outbox) put(op Operation) {
	if _, ok := o.pending[op.ElementID]; !ok {
		o.order = append(o.order, op.ElementID)
	}
	o.pending[op.ElementID] = op
}

func (o *Outbox) drop(id string) {
	delete(o.pending, id)
	delete(o.fresh, id)
	o.order = slices.DeleteFunc(o.order, func(x string) bool { return x == id })
}

// Len returns the number of pending operations.
func (o *Outbox) Len() int { return len(o.order) }

// Drain returns the pending operations in first-touched order and clears
// the queue.
func (o *Outbox) Drain() []Operation {
	if len(o.order) == 0 {
		return nil
	}
	out := make([]Operation, 0, len(o.order))
	now := ServerTimestamp()
	for _, id := range o.order {
		op := o.pending[id]
		o.seq++
		op.ID = typeid.NewOpID()
		op.ClientSeq = o.seq
		op.Timestamp = now
		out = append(out, op)
	}
	o.pending = make(map[string]Operation)
	o.fresh = make(map[string]bool)
	o.order = nil
	o.log.Debug("outbox drained", "ops", len(out), "seq", o.seq)
	return out
}

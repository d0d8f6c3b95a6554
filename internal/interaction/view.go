package interaction

import (
	"github.com/inamate/canvas/internal/document"
)

// pending layers uncommitted element updates over a base state so bounds
// can be measured before anything is written.
type pending struct {
	base    document.Getter
	updated document.Elements
	order   []string
}

func newPending(base document.Getter) *pending {
	return &pending{base: base, updated: make(document.Elements)}
}

func (p *pending) Get(id string) (*document.Element, bool) {
	if el, ok := p.updated[id]; ok {
		return el, true
	}
	return p.base.Get(id)
}

func (p *pending) set(el *document.Element) {
	if _, ok := p.updated[el.ID]; !ok {
		p.order = append(p.order, el.ID)
	}
	p.updated[el.ID] = el
}

// attrs turns every pending element into a geometry update.
func (p *pending) attrs() map[string]document.Attrs {
	out := make(map[string]document.Attrs, len(p.updated))
	for _, id := range p.order {
		out[id] = document.GeometryAttrs(p.updated[id])
	}
	return out
}

package render

import (
	"math"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/store"
)

// DefaultTolerance is the hit slop in world units.
const DefaultTolerance = 4.0

// HitTest returns the topmost top-level element under p, or "" when
// nothing is hit. Elements are tested front to back; a hit on a grouped
// element resolves to its outermost group.
func HitTest(st *store.State, p geom.Point, tolerance float64) string {
	order := st.Order()
	var parents map[string]string
	for i := len(order) - 1; i >= 0; i-- {
		el, ok := st.Get(order[i])
		if !ok || !hitElement(el, p, tolerance) {
			continue
		}
		if parents == nil {
			parents = st.Parents()
		}
		return document.RootOf(el.ID, parents)
	}
	return ""
}

// hitElement tests p against el's visible shape.
func hitElement(el *document.Element, p geom.Point, tol float64) bool {
	switch {
	case el.Type == document.TypeGroup:
		return false

	case el.Type.IsPath():
		pts := el.AbsolutePoints()
		reach := tol + el.StrokeWidth/2
		if len(pts) == 1 {
			return p.Dist(pts[0]) <= reach
		}
		for i := 1; i < len(pts); i++ {
			if geom.DistanceToSegment(p, pts[i-1], pts[i]) <= reach {
				return true
			}
		}
		return false
	}

	local := geom.BoxTransform(el.Box()).Invert().TransformPoint(p)
	w, h := el.Width, el.Height
	if el.Type == document.TypeText {
		// Fresh text boxes can be empty; keep a line-sized target.
		w = math.Max(w, el.FontSize)
		h = math.Max(h, el.FontSize*1.2)
	}

	if el.Type == document.TypeCircle && w > 0 && h > 0 {
		rx, ry := w/2+tol, h/2+tol
		dx, dy := local.X-w/2, local.Y-h/2
		return (dx*dx)/(rx*rx)+(dy*dy)/(ry*ry) <= 1
	}
	return local.X >= -tol && local.X <= w+tol && local.Y >= -tol && local.Y <= h+tol
}

// Renderer hit tests against a store's live state.
type Renderer struct {
	store     *store.Store
	Tolerance float64
}

// NewRenderer creates a renderer reading from s.
func NewRenderer(s *store.Store) *Renderer {
	return &Renderer{store: s, Tolerance: DefaultTolerance}
}

// TopmostElementAt returns the top-level element under a world point.
func (r *Renderer) TopmostElementAt(p geom.Point) (string, bool) {
	id := HitTest(r.store.State(), p, r.Tolerance)
	return id, id != ""
}

// Commands compiles the live state.
func (r *Renderer) Commands() []DrawCommand {
	return Compile(r.store.State())
}

package interaction

import (
	"math"
	"slices"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/guides"
	"github.com/inamate/canvas/internal/history"
	"github.com/inamate/canvas/internal/overlay"
	"github.com/inamate/canvas/internal/store"
)

// begin captures the snapshot for a transform gesture and locks history.
func (m *Machine) begin(mode Mode, p geom.Point) bool {
	st := m.store.State()
	sel := st.Selected()
	if len(sel) == 0 {
		return false
	}
	m.gesture = Gesture{
		Mode:   mode,
		Start:  p,
		Last:   p,
		Before: st,
		IDs:    document.ExpandSelection(sel, st),
	}
	m.history.Lock()
	return true
}

func (m *Machine) beginDrag(p geom.Point, hit string, ctrl bool) {
	st := m.store.State()
	switch {
	case ctrl:
		m.store.Toggle(hit)
	case !st.IsSelected(hit):
		m.store.Select(hit)
	}
	if m.begin(ModeDragging, p) {
		m.gesture.Ctrl = ctrl
	}
}

// drag moves the selection by the pointer delta since the previous frame.
// The primary element is snapped against every element outside the
// gesture; the snapped offset then applies to the whole selection.
func (m *Machine) drag(p geom.Point) {
	g := &m.gesture
	dx, dy := p.X-g.Last.X, p.Y-g.Last.Y
	st := m.store.State()

	sel := st.Selected()
	if len(sel) == 0 {
		return
	}
	if primary, ok := st.Get(sel[0]); ok {
		moving := primary.Rect()
		moving.X += dx
		moving.Y += dy
		exclude := make(map[string]bool, len(g.IDs))
		for _, id := range g.IDs {
			exclude[id] = true
		}
		res := guides.Calculate(moving, st.Order(), st, exclude, m.cfg.SnapThreshold)
		if res.X != nil {
			dx = *res.X - primary.X
		}
		if res.Y != nil {
			dy = *res.Y - primary.Y
		}
		m.setGuidelines(res.Guidelines)
	}

	if dx == 0 && dy == 0 {
		return
	}
	updates := make(map[string]document.Attrs, len(g.IDs))
	for _, id := range g.IDs {
		el, ok := st.Get(id)
		if !ok {
			continue
		}
		updates[id] = document.Attrs{X: document.Ptr(el.X + dx), Y: document.Ptr(el.Y + dy)}
	}
	m.store.UpdateMany(updates)
}

func (m *Machine) beginResize(p geom.Point, h overlay.Handle) {
	if !m.begin(ModeResizing, p) {
		return
	}
	m.gesture.Handle = h
	if h.IsEndpoint() {
		return
	}
	sel := m.gesture.Before.Selected()
	m.gesture.Frame, _ = document.SelectionFrame(sel, m.gesture.Before)
	frame := m.gesture.Frame
	m.gesture.Live = &frame
}

// resize recomputes every element from the pointer-down snapshot. The
// frame is measured in its own unrotated space; the active edges follow
// the pointer there and each element is mapped through the resulting
// signed scale, so crossing the opposite edge mirrors rather than
// collapsing.
func (m *Machine) resize(p geom.Point) {
	g := &m.gesture
	before := g.Before

	if g.Handle.IsEndpoint() {
		m.moveEndpoint(p)
		return
	}

	f := g.Frame
	a := f.Rotation
	toLocal := func(q geom.Point) geom.Point { return geom.RotatePoint(q.X, q.Y, 0, 0, -a) }
	toWorld := func(q geom.Point) geom.Point { return geom.RotatePoint(q.X, q.Y, 0, 0, a) }

	c := toLocal(f.Center())
	lx0, ly0 := c.X-f.Width/2, c.Y-f.Height/2
	lx1, ly1 := lx0+f.Width, ly0+f.Height

	s, q := toLocal(g.Start), toLocal(p)
	dx, dy := q.X-s.X, q.Y-s.Y

	nx0, nx1, ny0, ny1 := lx0, lx1, ly0, ly1
	left, right, top, bottom := g.Handle.Edges()
	if left {
		nx0 += dx
	}
	if right {
		nx1 += dx
	}
	if top {
		ny0 += dy
	}
	if bottom {
		ny1 += dy
	}

	sx, sy := 1.0, 1.0
	if f.Width != 0 {
		sx = (nx1 - nx0) / f.Width
	}
	if f.Height != 0 {
		sy = (ny1 - ny0) / f.Height
	}
	mapLocal := func(u geom.Point) geom.Point {
		return geom.Point{X: nx0 + (u.X-lx0)*sx, Y: ny0 + (u.Y-ly0)*sy}
	}
	avg := (math.Abs(sx) + math.Abs(sy)) / 2
	// A flip on one axis mirrors orientation across the frame axis; on
	// both axes it is a half turn, which leaves boxes unchanged.
	mirrored := (sx < 0) != (sy < 0)
	reflect := func(rot float64) float64 {
		if mirrored {
			return 2*a - rot
		}
		return rot
	}

	view := newPending(before)
	var groups []*document.Element
	for _, id := range g.IDs {
		orig, ok := before.Get(id)
		if !ok {
			continue
		}
		el := orig.Clone()
		switch {
		case el.Type == document.TypeGroup:
			el.Rotation = reflect(orig.Rotation)
			groups = append(groups, el)
			continue
		case el.Type.IsPath():
			abs := orig.AbsolutePoints()
			for i, pt := range abs {
				abs[i] = toWorld(mapLocal(toLocal(pt)))
			}
			el.SetAbsolutePoints(abs)
		default:
			center := toWorld(mapLocal(toLocal(orig.Center())))
			el.Width = orig.Width * math.Abs(sx)
			el.Height = orig.Height * math.Abs(sy)
			el.Rotation = reflect(orig.Rotation)
			el.X = center.X - el.Width/2
			el.Y = center.Y - el.Height/2
		}
		el.StrokeWidth = orig.StrokeWidth * avg
		el.FontSize = orig.FontSize * avg
		view.set(el)
	}
	refreshGroups(view, groups)
	m.store.UpdateMany(view.attrs())

	nw, nh := math.Abs(nx1-nx0), math.Abs(ny1-ny0)
	live := geom.BoxAround(toWorld(geom.Point{X: math.Min(nx0, nx1) + nw/2, Y: math.Min(ny0, ny1) + nh/2}), nw, nh, a)
	g.Live = &live
}

// refreshGroups re-derives each group's box from its leaves at the
// group's own rotation.
func refreshGroups(view *pending, groups []*document.Element) {
	for _, grp := range groups {
		leaves := document.LeafIDs(grp.Children, view)
		if b, ok := document.GroupBounds(view, leaves, grp.Rotation); ok {
			grp.X, grp.Y, grp.Width, grp.Height = b.X, b.Y, b.Width, b.Height
		}
		view.set(grp)
	}
}

// moveEndpoint drags one end of a single line or arrow.
func (m *Machine) moveEndpoint(p geom.Point) {
	g := &m.gesture
	if len(g.IDs) != 1 {
		return
	}
	orig, ok := g.Before.Get(g.IDs[0])
	if !ok || len(orig.Points) < 2 {
		return
	}
	abs := orig.AbsolutePoints()
	if g.Handle == overlay.Start {
		abs[0] = p
	} else {
		abs[len(abs)-1] = p
	}
	el := orig.Clone()
	el.SetAbsolutePoints(abs)
	m.store.Update(el.ID, document.GeometryAttrs(el))
}

func (m *Machine) beginRotate(p geom.Point) {
	if !m.begin(ModeRotating, p) {
		return
	}
	sel := m.gesture.Before.Selected()
	m.gesture.Frame, _ = document.SelectionFrame(sel, m.gesture.Before)
	m.gesture.Pivot = m.gesture.Frame.Center()
	frame := m.gesture.Frame
	m.gesture.Live = &frame
}

// rotate spins every element about its own center and orbits that center
// about the pivot by the same angle, so the selection turns as one body.
// Path elements have the rotation baked into their points.
func (m *Machine) rotate(p geom.Point, snap bool) {
	g := &m.gesture
	pv := g.Pivot
	delta := math.Atan2(p.Y-pv.Y, p.X-pv.X) - math.Atan2(g.Start.Y-pv.Y, g.Start.X-pv.X)
	if snap {
		delta = geom.SnapAngle(g.Frame.Rotation+delta, m.cfg.RotateStep) - g.Frame.Rotation
	}

	updates := make(map[string]document.Attrs, len(g.IDs))
	for _, id := range g.IDs {
		orig, ok := g.Before.Get(id)
		if !ok {
			continue
		}
		el := orig.Clone()
		if el.Type.IsPath() {
			abs := orig.AbsolutePoints()
			for i, pt := range abs {
				abs[i] = geom.RotateAround(pt, pv, delta)
			}
			el.SetAbsolutePoints(abs)
		} else {
			c := geom.RotateAround(orig.Center(), pv, delta)
			el.Rotation = orig.Rotation + delta
			el.X = c.X - el.Width/2
			el.Y = c.Y - el.Height/2
		}
		updates[id] = document.GeometryAttrs(el)
	}
	m.store.UpdateMany(updates)

	live := geom.BoxAround(g.Frame.Center(), g.Frame.Width, g.Frame.Height, g.Frame.Rotation+delta)
	g.Live = &live
}

// commitTransform diffs the gesture's elements against the snapshot and
// records one command for everything that moved.
func (m *Machine) commitTransform(g Gesture) {
	st := m.store.State()
	var changes []history.AttrsChange
	for _, id := range g.IDs {
		before, ok := g.Before.Get(id)
		if !ok {
			continue
		}
		after, ok := st.Get(id)
		if !ok || !document.GeometryDiffers(before, after) {
			continue
		}
		changes = append(changes, history.AttrsChange{
			ID:     id,
			Before: document.GeometryAttrs(before),
			After:  document.GeometryAttrs(after),
		})
	}
	if len(changes) == 0 {
		return
	}
	m.history.Record(history.NewAttrsCommand(m.store, string(g.Mode), changes))
	m.log.Debug("gesture committed", "mode", g.Mode, "elements", len(changes))
}

// snapshot records the transition from before to the current state.
func (m *Machine) snapshot(label string, before *store.State) bool {
	after := m.store.State()
	if after == before {
		return false
	}
	m.history.Record(history.NewSnapshotCommand(m.store, label, before, after))
	m.log.Debug("edit recorded", "label", label, "elements", after.Len())
	return true
}

// selectedGroups returns the selected ids that are groups.
func selectedGroups(st *store.State) []string {
	return slices.DeleteFunc(st.Selected(), func(id string) bool {
		el, ok := st.Get(id)
		return !ok || el.Type != document.TypeGroup
	})
}

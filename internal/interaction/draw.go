package interaction

import (
	"math"
	"slices"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/overlay"
)

func (m *Machine) beginSelect(p geom.Point, ctrl bool) {
	if !ctrl {
		m.store.ClearSelection()
	}
	band := geom.Rect{X: p.X, Y: p.Y}
	m.gesture = Gesture{Mode: ModeSelecting, Start: p, Last: p, Band: &band, Ctrl: ctrl}
}

// finishSelect selects every top-level element whose box lies inside the
// rubber band.
func (m *Machine) finishSelect(p geom.Point) {
	band := geom.RectFromPoints(m.gesture.Start, p)
	if band.IsEmpty() {
		return
	}
	st := m.store.State()
	var ids []string
	if m.gesture.Ctrl {
		ids = st.Selected()
	}
	for _, id := range st.TopLevel() {
		if el, ok := st.Get(id); ok && band.ContainsRect(el.Rect()) {
			ids = append(ids, id)
		}
	}
	m.store.Select(ids...)
}

// eraseAt deletes whatever is under p. Each removal is its own undo step.
func (m *Machine) eraseAt(p geom.Point) {
	m.eraser = &overlay.Circle{Center: p, Radius: m.cfg.EraserRadius}
	id, ok := m.hits.TopmostElementAt(p)
	if !ok {
		return
	}
	before := m.store.State()
	m.store.Remove(document.ExpandSelection([]string{id}, before)...)
	m.snapshot("erase", before)
}

// placeText drops an empty text element at p, selects it and returns to
// the select tool.
func (m *Machine) placeText(p geom.Point) {
	before := m.store.State()
	el := m.newElement(document.TypeText, p)
	if !m.store.Add(el) {
		return
	}
	m.store.Select(el.ID)
	m.snapshot("text", before)
	m.tool = ToolSelect
}

func (m *Machine) newElement(t document.ElementType, p geom.Point) document.Element {
	el := document.Element{
		ID:          m.NewID(),
		Type:        t,
		X:           p.X,
		Y:           p.Y,
		Fill:        m.style.Fill,
		Stroke:      m.style.Stroke,
		StrokeWidth: m.style.StrokeWidth,
		Alpha:       m.style.Alpha,
	}
	switch {
	case t == document.TypeText:
		el.Fill = m.style.Stroke
		el.FontSize = m.style.FontSize
		el.FontFamily = m.style.FontFamily
	case t.IsPath():
		el.Fill = ""
		el.Points = []geom.Point{{}, {}}
		if t == document.TypePencil {
			el.Points = el.Points[:1]
		}
	}
	return el
}

func (m *Machine) beginDraw(p geom.Point) {
	t, ok := m.tool.ShapeType()
	if !ok {
		return
	}
	before := m.store.State()
	el := m.newElement(t, p)
	if !m.store.Add(el) {
		return
	}
	m.gesture = Gesture{Mode: ModeDrawing, Start: p, Last: p, Before: before, DrawID: el.ID, IDs: []string{el.ID}}
	m.history.Lock()
}

// draw sizes the new element from the gesture start to p. Path points stay
// relative to the start until the gesture ends.
func (m *Machine) draw(p geom.Point) {
	g := &m.gesture
	el, ok := m.store.Get(g.DrawID)
	if !ok {
		return
	}
	dx, dy := p.X-g.Start.X, p.Y-g.Start.Y

	var a document.Attrs
	switch el.Type {
	case document.TypeLine, document.TypeArrow:
		a.Points = document.Ptr([]geom.Point{{}, {X: dx, Y: dy}})
		a.Width = document.Ptr(math.Abs(dx))
		a.Height = document.Ptr(math.Abs(dy))
	case document.TypePencil:
		pts := append(slices.Clone(el.Points), geom.Point{X: dx, Y: dy})
		b := geom.PointsBounds(pts)
		a.Points = &pts
		a.Width = document.Ptr(b.Width)
		a.Height = document.Ptr(b.Height)
	default:
		r := geom.RectFromPoints(g.Start, p)
		a.X, a.Y = document.Ptr(r.X), document.Ptr(r.Y)
		a.Width, a.Height = document.Ptr(r.Width), document.Ptr(r.Height)
	}
	m.store.Update(g.DrawID, a)
}

// finishDraw commits the drawn element, or removes it when it never grew.
func (m *Machine) finishDraw(g Gesture) {
	el, ok := m.store.Get(g.DrawID)
	if !ok {
		return
	}

	if el.Type.IsPath() {
		norm := el.Clone()
		norm.SetAbsolutePoints(el.AbsolutePoints())
		if norm.Width == 0 && norm.Height == 0 {
			m.store.Remove(el.ID)
			m.log.Debug("discarded empty drawing", "type", el.Type)
			return
		}
		m.store.Update(el.ID, document.GeometryAttrs(norm))
	} else if el.Width == 0 || el.Height == 0 {
		m.store.Remove(el.ID)
		m.log.Debug("discarded empty drawing", "type", el.Type)
		return
	}

	m.store.Select(el.ID)
	m.snapshot("draw", g.Before)
}

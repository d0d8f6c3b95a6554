package interaction

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/history"
)

// Text boxes are sized from the font size; there are no font metrics on
// this side of the bridge.
const (
	charWidth  = 0.6
	lineHeight = 1.2
)

// SetTool switches the active tool. Any gesture in flight is cancelled and
// the selection is cleared.
func (m *Machine) SetTool(t Tool) bool {
	if !t.Valid() {
		return false
	}
	m.Cancel()
	m.tool = t
	m.eraser = nil
	m.store.ClearSelection()
	return true
}

// SetStyle changes the paint used for new elements and repaints the
// selection with it as one undo step.
func (m *Machine) SetStyle(s Style) {
	m.style = s
	if m.Busy() {
		return
	}
	st := m.store.State()
	leaves := document.LeafIDs(st.Selected(), st)
	if len(leaves) == 0 {
		return
	}
	updates := make(map[string]document.Attrs, len(leaves))
	for _, id := range leaves {
		el, _ := st.Get(id)
		a := document.Attrs{
			Stroke:      document.Ptr(s.Stroke),
			StrokeWidth: document.Ptr(s.StrokeWidth),
			Alpha:       document.Ptr(s.Alpha),
		}
		switch {
		case el.Type == document.TypeText:
			a.Fill = document.Ptr(s.Stroke)
			a.FontSize = document.Ptr(s.FontSize)
			a.FontFamily = document.Ptr(s.FontFamily)
		case !el.Type.IsPath():
			a.Fill = document.Ptr(s.Fill)
		}
		updates[id] = a
	}
	m.store.UpdateMany(updates)
	m.snapshot("style", st)
}

// Group wraps the selected top-level elements in a new group whose box is
// their frame at the shared rotation. The group becomes the selection.
func (m *Machine) Group() (string, bool) {
	if m.Busy() {
		return "", false
	}
	st := m.store.State()
	parents := st.Parents()
	var children []string
	for _, id := range st.Order() {
		if _, nested := parents[id]; !nested && st.IsSelected(id) {
			children = append(children, id)
		}
	}
	if len(children) < 2 {
		return "", false
	}
	frame, ok := document.SelectionFrame(children, st)
	if !ok {
		return "", false
	}

	grp := document.Element{
		ID:       m.NewID(),
		Type:     document.TypeGroup,
		X:        frame.X,
		Y:        frame.Y,
		Width:    frame.Width,
		Height:   frame.Height,
		Rotation: frame.Rotation,
		Alpha:    1,
		Children: children,
	}
	if !m.store.Add(grp) {
		return "", false
	}
	m.store.Select(grp.ID)
	m.snapshot("group", st)
	return grp.ID, true
}

// Ungroup dissolves the selected groups; their children become the
// selection.
func (m *Machine) Ungroup() bool {
	if m.Busy() {
		return false
	}
	st := m.store.State()
	groups := selectedGroups(st)
	if len(groups) == 0 {
		return false
	}
	var children []string
	for _, id := range groups {
		el, _ := st.Get(id)
		children = append(children, el.Children...)
	}
	m.store.Remove(groups...)
	m.store.Select(children...)
	m.snapshot("ungroup", st)
	return true
}

// DeleteSelected removes the selection and every descendant.
func (m *Machine) DeleteSelected() bool {
	if m.Busy() {
		return false
	}
	st := m.store.State()
	ids := document.ExpandSelection(st.Selected(), st)
	if len(ids) == 0 {
		return false
	}
	m.store.Remove(ids...)
	return m.snapshot("delete", st)
}

// SelectAll selects every top-level element.
func (m *Machine) SelectAll() {
	if m.Busy() {
		return
	}
	m.store.Select(m.store.State().TopLevel()...)
}

// Nudge moves the selection by a fixed offset as one undo step.
func (m *Machine) Nudge(dx, dy float64) bool {
	if m.Busy() || (dx == 0 && dy == 0) {
		return false
	}
	st := m.store.State()
	ids := document.ExpandSelection(st.Selected(), st)
	if len(ids) == 0 {
		return false
	}
	changes := make([]history.AttrsChange, 0, len(ids))
	for _, id := range ids {
		el, _ := st.Get(id)
		changes = append(changes, history.AttrsChange{
			ID:     id,
			Before: document.Attrs{X: document.Ptr(el.X), Y: document.Ptr(el.Y)},
			After:  document.Attrs{X: document.Ptr(el.X + dx), Y: document.Ptr(el.Y + dy)},
		})
	}
	return m.history.Execute(history.NewAttrsCommand(m.store, "nudge", changes))
}

// InsertImage adds an image of its natural size centered on at.
func (m *Machine) InsertImage(src string, width, height float64, at geom.Point) (string, bool) {
	if m.Busy() || src == "" || width <= 0 || height <= 0 {
		return "", false
	}
	st := m.store.State()
	el := document.Element{
		ID:     m.NewID(),
		Type:   document.TypeImage,
		X:      at.X - width/2,
		Y:      at.Y - height/2,
		Width:  width,
		Height: height,
		Alpha:  1,
		Src:    src,
	}
	if !m.store.Add(el) {
		return "", false
	}
	m.store.Select(el.ID)
	m.snapshot("image", st)
	m.tool = ToolSelect
	return el.ID, true
}

// SetText replaces a text element's content and resizes its box to fit,
// keeping the top-left corner fixed.
func (m *Machine) SetText(id, text string) bool {
	if m.Busy() {
		return false
	}
	st := m.store.State()
	el, ok := st.Get(id)
	if !ok || el.Type != document.TypeText || el.Text == text {
		return false
	}
	w, h := measureText(text, el.FontSize)
	m.store.Update(id, document.Attrs{
		Text:   document.Ptr(text),
		Width:  document.Ptr(w),
		Height: document.Ptr(h),
	})
	return m.snapshot("text", st)
}

func measureText(text string, fontSize float64) (w, h float64) {
	if text == "" {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	return math.Round(float64(longest) * fontSize * charWidth), math.Round(float64(len(lines)) * fontSize * lineHeight)
}

// Selected is shorthand for the store's selection.
func (m *Machine) Selected() []string {
	return m.store.State().Selected()
}

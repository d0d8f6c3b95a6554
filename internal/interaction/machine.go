// Package interaction turns pointer input into store mutations. A Machine
// owns the gesture in flight, locks history while it runs and records a
// single command when it finishes.
//
// All methods must be called from the goroutine that owns the store.
package interaction

import (
	"log/slog"
	"math"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/guides"
	"github.com/inamate/canvas/internal/history"
	"github.com/inamate/canvas/internal/overlay"
	"github.com/inamate/canvas/internal/store"
	"github.com/inamate/canvas/internal/typeid"
	"github.com/inamate/canvas/internal/viewport"
)

type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeSelecting Mode = "selecting"
	ModeDragging  Mode = "dragging"
	ModeResizing  Mode = "resizing"
	ModeRotating  Mode = "rotating"
	ModeDrawing   Mode = "drawing"
	ModeErasing   Mode = "erasing"
)

type Tool string

const (
	ToolSelect   Tool = "select"
	ToolHand     Tool = "hand"
	ToolEraser   Tool = "eraser"
	ToolText     Tool = "text"
	ToolRect     Tool = "rect"
	ToolCircle   Tool = "circle"
	ToolTriangle Tool = "triangle"
	ToolDiamond  Tool = "diamond"
	ToolLine     Tool = "line"
	ToolArrow    Tool = "arrow"
	ToolPencil   Tool = "pencil"
)

// ShapeType returns the element type a drawing tool creates.
func (t Tool) ShapeType() (document.ElementType, bool) {
	switch t {
	case ToolRect, ToolCircle, ToolTriangle, ToolDiamond, ToolLine, ToolArrow, ToolPencil:
		return document.ElementType(t), true
	}
	return "", false
}

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	if _, ok := t.ShapeType(); ok {
		return true
	}
	return t == ToolSelect || t == ToolHand || t == ToolEraser || t == ToolText
}

type EventKind string

const (
	PointerDown EventKind = "down"
	PointerMove EventKind = "move"
	PointerUp   EventKind = "up"
)

// PointerEvent is a pointer sample in world coordinates.
type PointerEvent struct {
	Kind   EventKind       `json:"kind"`
	Point  geom.Point      `json:"point"`
	Button viewport.Button `json:"button"`
	Ctrl   bool            `json:"ctrl"`
	Shift  bool            `json:"shift"`
}

// HitTester finds the topmost top-level element at a world point, in the
// renderer's paint order.
type HitTester interface {
	TopmostElementAt(p geom.Point) (string, bool)
}

// GuidelineSink receives the alignment guides of every drag frame; an
// empty slice clears them.
type GuidelineSink func([]guides.Guideline)

// Style is the paint applied to newly drawn elements.
type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Alpha       float64 `json:"alpha"`
	FontSize    float64 `json:"fontSize"`
	FontFamily  string  `json:"fontFamily"`
}

var DefaultStyle = Style{
	Fill:        "#ffffff",
	Stroke:      "#1a1a2e",
	StrokeWidth: 2,
	Alpha:       1,
	FontSize:    24,
	FontFamily:  "sans-serif",
}

// Config holds interaction tolerances in world units.
type Config struct {
	SnapThreshold float64
	EraserRadius  float64
	HandleRadius  float64
	MinTextBox    float64
	RotateOffset  float64
	// RotateStep is the Shift-rotate increment in radians.
	RotateStep float64
}

// DefaultConfig returns the stock tolerances.
func DefaultConfig() Config {
	return Config{
		SnapThreshold: guides.DefaultThreshold,
		EraserRadius:  8,
		HandleRadius:  6,
		MinTextBox:    overlay.DefaultOptions.MinTextBox,
		RotateOffset:  overlay.DefaultOptions.RotateOffset,
		RotateStep:    math.Pi / 12,
	}
}

// Scaled divides the distance tolerances by zoom, so they stay constant
// on screen.
func (c Config) Scaled(zoom float64) Config {
	if zoom <= 0 {
		return c
	}
	c.SnapThreshold /= zoom
	c.EraserRadius /= zoom
	c.HandleRadius /= zoom
	c.RotateOffset /= zoom
	return c
}

// Gesture is the state of the gesture in flight. Before is the store
// state captured on pointer-down; states are immutable, so it doubles as
// the frozen snapshot every frame is computed from.
type Gesture struct {
	Mode   Mode
	Handle overlay.Handle
	Start  geom.Point
	Last   geom.Point
	Before *store.State
	// IDs are the elements the gesture rewrites: the selection plus every
	// descendant of a selected group.
	IDs    []string
	Frame  geom.Box
	Pivot  geom.Point
	Live   *geom.Box
	DrawID string
	Band   *geom.Rect
	Ctrl   bool
}

type Machine struct {
	store   *store.Store
	history *history.Manager
	hits    HitTester
	cfg     Config
	log     *slog.Logger

	// NewID mints element ids.
	NewID func() string

	tool       Tool
	style      Style
	gesture    Gesture
	guidelines []guides.Guideline
	sink       GuidelineSink
	eraser     *overlay.Circle
}

// New wires a machine to its collaborators.
func New(s *store.Store, h *history.Manager, hits HitTester, cfg Config) *Machine {
	return &Machine{
		store:   s,
		history: h,
		hits:    hits,
		cfg:     cfg,
		log:     slog.Default(),
		NewID:   typeid.NewElementID,
		tool:    ToolSelect,
		style:   DefaultStyle,
		gesture: Gesture{Mode: ModeIdle},
	}
}

// SetLogger replaces the logger; nil restores slog.Default().
func (m *Machine) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	m.log = l
}

// SetConfig replaces the tolerances. Gestures in flight pick the new values
// up on their next event.
func (m *Machine) SetConfig(cfg Config) { m.cfg = cfg }

// SetGuidelineSink registers the guideline consumer.
func (m *Machine) SetGuidelineSink(fn GuidelineSink) { m.sink = fn }

func (m *Machine) Mode() Mode                     { return m.gesture.Mode }
func (m *Machine) Tool() Tool                     { return m.tool }
func (m *Machine) Style() Style                   { return m.style }
func (m *Machine) Gesture() Gesture               { return m.gesture }
func (m *Machine) Guidelines() []guides.Guideline { return m.guidelines }

// Busy reports whether a gesture is in flight.
func (m *Machine) Busy() bool { return m.gesture.Mode != ModeIdle }

// Dispatch routes one pointer event to the handler for the current mode.
func (m *Machine) Dispatch(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		m.down(ev)
	case PointerMove:
		m.move(ev)
	case PointerUp:
		m.up(ev)
	}
}

func (m *Machine) PointerDown(ev PointerEvent) { ev.Kind = PointerDown; m.Dispatch(ev) }
func (m *Machine) PointerMove(ev PointerEvent) { ev.Kind = PointerMove; m.Dispatch(ev) }
func (m *Machine) PointerUp(ev PointerEvent)   { ev.Kind = PointerUp; m.Dispatch(ev) }

func (m *Machine) down(ev PointerEvent) {
	if ev.Button != viewport.ButtonPrimary || m.tool == ToolHand {
		return
	}
	if m.Busy() {
		m.log.Warn("pointer down during gesture ignored", "mode", m.gesture.Mode)
		return
	}
	p := ev.Point

	// Handles outrank every tool: a shape stays selected after it is
	// drawn and its handles must stay usable.
	o := overlay.Compute(m.store.State(), nil, m.overlayOptions())
	if h := overlay.HandleAt(o, p, m.cfg.HandleRadius); h != overlay.HandleNone {
		if h == overlay.Rotate {
			m.beginRotate(p)
		} else {
			m.beginResize(p, h)
		}
		return
	}

	switch m.tool {
	case ToolEraser:
		m.gesture = Gesture{Mode: ModeErasing, Start: p, Last: p}
		m.eraseAt(p)
		return
	case ToolText:
		m.placeText(p)
		return
	}

	if id, ok := m.hits.TopmostElementAt(p); ok {
		m.beginDrag(p, id, ev.Ctrl)
		return
	}
	if m.tool == ToolSelect {
		m.beginSelect(p, ev.Ctrl)
		return
	}
	m.beginDraw(p)
}

func (m *Machine) move(ev PointerEvent) {
	p := ev.Point
	switch m.gesture.Mode {
	case ModeSelecting:
		band := geom.RectFromPoints(m.gesture.Start, p)
		m.gesture.Band = &band
	case ModeErasing:
		m.eraseAt(p)
	case ModeDragging:
		m.drag(p)
	case ModeResizing:
		m.resize(p)
	case ModeRotating:
		m.rotate(p, ev.Shift)
	case ModeDrawing:
		m.draw(p)
	case ModeIdle:
		if m.tool == ToolEraser {
			m.eraser = &overlay.Circle{Center: p, Radius: m.cfg.EraserRadius}
		}
	}
	m.gesture.Last = p
}

func (m *Machine) up(ev PointerEvent) {
	g := m.gesture
	switch g.Mode {
	case ModeIdle:
		return
	case ModeSelecting:
		m.finishSelect(ev.Point)
	case ModeDragging, ModeResizing, ModeRotating:
		m.history.Unlock()
		m.commitTransform(g)
	case ModeDrawing:
		m.history.Unlock()
		m.finishDraw(g)
	}
	m.gesture = Gesture{Mode: ModeIdle}
	m.setGuidelines(nil)
}

// Cancel aborts the gesture in flight: any geometry it wrote is rolled
// back to the pointer-down snapshot, history is unlocked and nothing is
// recorded. Erasing has already recorded each removal and is just ended.
func (m *Machine) Cancel() {
	g := m.gesture
	switch g.Mode {
	case ModeIdle:
		return
	case ModeDragging, ModeResizing, ModeRotating, ModeDrawing:
		m.store.Restore(g.Before)
		m.history.Unlock()
	}
	m.log.Debug("gesture cancelled", "mode", g.Mode)
	m.gesture = Gesture{Mode: ModeIdle}
	m.setGuidelines(nil)
}

func (m *Machine) setGuidelines(lines []guides.Guideline) {
	if len(lines) == 0 && len(m.guidelines) == 0 {
		return
	}
	m.guidelines = lines
	if m.sink != nil {
		m.sink(lines)
	}
}

func (m *Machine) overlayOptions() overlay.Options {
	return overlay.Options{MinTextBox: m.cfg.MinTextBox, RotateOffset: m.cfg.RotateOffset}
}

// Overlay derives what the renderer draws above the board: the selection
// frame (live while resizing or rotating), the rubber band and the eraser.
func (m *Machine) Overlay() overlay.Overlay {
	var live *geom.Box
	if m.gesture.Mode == ModeResizing || m.gesture.Mode == ModeRotating {
		live = m.gesture.Live
	}
	o := overlay.Compute(m.store.State(), live, m.overlayOptions())
	o.RubberBand = m.gesture.Band
	if m.tool == ToolEraser {
		o.Eraser = m.eraser
	}
	return o
}

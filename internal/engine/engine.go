// Package engine is the stage engine the browser talks to. It owns the
// element store, history, interaction machine, renderer and viewport, and
// answers queries as JSON strings for the wasm bridge.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/history"
	"github.com/inamate/canvas/internal/interaction"
	"github.com/inamate/canvas/internal/oplog"
	"github.com/inamate/canvas/internal/render"
	"github.com/inamate/canvas/internal/store"
	"github.com/inamate/canvas/internal/viewport"
)

var ErrUnknownTool = errors.New("unknown tool")

// noButton marks that no press owns the pointer.
const noButton = -1

// Engine is the main stage engine. It processes pointer input and commands
// from the frontend and returns query results.
//
// Engine is not safe for concurrent use; the wasm bridge calls it from the
// browser's single thread.
type Engine struct {
	store    *store.Store
	history  *history.Manager
	renderer *render.Renderer
	machine  *interaction.Machine
	view     *viewport.Viewport
	outbox   *oplog.Outbox
	cfg      interaction.Config
	log      *slog.Logger

	boardID   string
	boardName string

	// pressed is the button whose press started the pan or gesture in
	// flight. Releases of any other button are ignored.
	pressed int

	// Remote operations that arrive mid-gesture wait here, so the gesture
	// keeps computing from its own snapshot.
	deferred []oplog.Operation
}

// NewEngine creates an engine with an empty board and a width x height
// viewport.
func NewEngine(width, height float64) *Engine {
	s := store.New()
	h := history.NewManager()
	r := render.NewRenderer(s)
	cfg := interaction.DefaultConfig()
	e := &Engine{
		store:    s,
		history:  h,
		renderer: r,
		machine:  interaction.New(s, h, r, cfg),
		view:     viewport.New(width, height),
		outbox:   oplog.NewOutbox(s),
		cfg:      cfg,
		log:      slog.Default(),
		pressed:  noButton,
	}
	return e
}

// SetLogger replaces the logger of the engine and its collaborators.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	e.log = l
	e.store.SetLogger(l)
	e.history.SetLogger(l)
	e.machine.SetLogger(l)
	e.outbox.SetLogger(l)
}

// Machine exposes the interaction machine, e.g. to pin id generation in
// tests.
func (e *Engine) Machine() *interaction.Machine { return e.machine }

// --- Commands (frontend → backend) ---

// LoadBoard replaces the board with one decoded from JSON. History is
// cleared and nothing is queued for replication.
func (e *Engine) LoadBoard(jsonData string) error {
	var board document.Board
	if err := json.Unmarshal([]byte(jsonData), &board); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	e.load(&board)
	return nil
}

// LoadSampleBoard loads the built-in sample board.
func (e *Engine) LoadSampleBoard(boardID string) {
	e.load(document.NewSampleBoard(boardID))
}

func (e *Engine) load(board *document.Board) {
	e.machine.Cancel()
	e.view.EndPan()
	e.pressed = noButton
	e.deferred = nil
	e.boardID, e.boardName = board.ID, board.Name
	e.outbox.Muted(func() { e.store.Load(board) })
	e.history.Clear()
	e.log.Info("board loaded", "board", board.ID, "elements", e.store.State().Len())
}

// Resize updates the screen size.
func (e *Engine) Resize(width, height float64) {
	e.view.Resize(width, height)
}

// PointerDown handles a press at screen coordinates. Panning takes the
// press first; everything else goes to the interaction machine in world
// coordinates. A second button pressed mid-gesture is ignored.
func (e *Engine) PointerDown(x, y float64, button int, ctrl, shift, space bool) {
	if e.pressed != noButton {
		return
	}
	screen := geom.Point{X: x, Y: y}
	if viewport.CanPan(viewport.Button(button), e.machine.Tool() == interaction.ToolHand, space) {
		if !e.machine.Busy() {
			e.view.BeginPan(screen)
			e.pressed = button
		}
		return
	}
	e.machine.PointerDown(e.event(screen, button, ctrl, shift))
	if e.machine.Busy() {
		e.pressed = button
	}
}

// PointerMove handles pointer movement at screen coordinates.
func (e *Engine) PointerMove(x, y float64, ctrl, shift bool) {
	screen := geom.Point{X: x, Y: y}
	if e.view.MovePan(screen) {
		return
	}
	e.machine.PointerMove(e.event(screen, int(viewport.ButtonPrimary), ctrl, shift))
}

// PointerUp handles a release at screen coordinates. Only the button that
// started the pan or gesture ends it.
func (e *Engine) PointerUp(x, y float64, button int, ctrl, shift bool) {
	if button != e.pressed {
		return
	}
	e.pressed = noButton
	if e.view.EndPan() {
		return
	}
	e.machine.PointerUp(e.event(geom.Point{X: x, Y: y}, button, ctrl, shift))
	e.flushDeferred()
}

// CancelGesture abandons the gesture in flight, restoring the board.
func (e *Engine) CancelGesture() {
	e.pressed = noButton
	e.view.EndPan()
	e.machine.Cancel()
	e.flushDeferred()
}

func (e *Engine) event(screen geom.Point, button int, ctrl, shift bool) interaction.PointerEvent {
	return interaction.PointerEvent{
		Point:  e.view.ScreenToWorld(screen),
		Button: viewport.Button(button),
		Ctrl:   ctrl,
		Shift:  shift,
	}
}

// Zoom scales the view by factor around a screen point.
func (e *Engine) Zoom(x, y, factor float64) {
	e.view.ZoomAt(geom.Point{X: x, Y: y}, factor)
	e.syncTolerances()
}

// PanBy shifts the view by a screen-space delta.
func (e *Engine) PanBy(dx, dy float64) {
	e.view.PanBy(dx, dy)
}

// CenterOn centers the view on a world point.
func (e *Engine) CenterOn(x, y float64) {
	e.view.PanTo(geom.Point{X: x, Y: y})
}

// syncTolerances keeps handle, snap, eraser and hit slop constant in
// screen pixels.
func (e *Engine) syncTolerances() {
	e.machine.SetConfig(e.cfg.Scaled(e.view.Scale))
	e.renderer.Tolerance = e.view.ScreenDistance(render.DefaultTolerance)
}

// SetTool switches the active tool by name.
func (e *Engine) SetTool(name string) error {
	t := interaction.Tool(name)
	if !t.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	e.machine.SetTool(t)
	return nil
}

// SetStyle sets the drawing style from JSON and repaints the selection.
func (e *Engine) SetStyle(jsonData string) error {
	style := e.machine.Style()
	if err := json.Unmarshal([]byte(jsonData), &style); err != nil {
		return fmt.Errorf("decode style: %w", err)
	}
	e.machine.SetStyle(style)
	return nil
}

// SetSelection replaces the selection. Unknown ids are ignored.
func (e *Engine) SetSelection(ids []string) {
	if e.machine.Busy() {
		return
	}
	e.store.Select(ids...)
}

// SelectAll selects every top-level element.
func (e *Engine) SelectAll() { e.machine.SelectAll() }

// Undo reverts the last command.
func (e *Engine) Undo() bool { return e.history.Undo() }

// Redo re-applies the last undone command.
func (e *Engine) Redo() bool { return e.history.Redo() }

// Group groups the selected elements and returns the new group id.
func (e *Engine) Group() string {
	id, _ := e.machine.Group()
	return id
}

// Ungroup dissolves the selected groups.
func (e *Engine) Ungroup() bool { return e.machine.Ungroup() }

// DeleteSelected removes the selection and its descendants.
func (e *Engine) DeleteSelected() bool { return e.machine.DeleteSelected() }

// Nudge moves the selection by a world-space delta.
func (e *Engine) Nudge(dx, dy float64) bool { return e.machine.Nudge(dx, dy) }

// InsertImage places an image centered on the middle of the screen and
// returns its id.
func (e *Engine) InsertImage(src string, width, height float64) string {
	at := e.view.ScreenToWorld(geom.Point{X: e.view.Width / 2, Y: e.view.Height / 2})
	id, _ := e.machine.InsertImage(src, width, height, at)
	return id
}

// SetText replaces the content of a text element.
func (e *Engine) SetText(id, text string) bool { return e.machine.SetText(id, text) }

// ApplyRemote applies an operation from a peer without queueing it for
// replication. Operations arriving mid-gesture are applied once the
// gesture ends.
func (e *Engine) ApplyRemote(jsonData string) error {
	var op oplog.Operation
	if err := json.Unmarshal([]byte(jsonData), &op); err != nil {
		return fmt.Errorf("decode operation: %w", err)
	}
	if err := op.Validate(); err != nil {
		return err
	}
	if e.machine.Busy() {
		e.deferred = append(e.deferred, op)
		return nil
	}
	return e.applyRemote(op)
}

func (e *Engine) applyRemote(op oplog.Operation) error {
	var err error
	e.outbox.Muted(func() { err = oplog.Apply(e.store, op) })
	if err != nil {
		return fmt.Errorf("apply %s: %w", op.ID, err)
	}
	return nil
}

func (e *Engine) flushDeferred() {
	if e.machine.Busy() || len(e.deferred) == 0 {
		return
	}
	ops := e.deferred
	e.deferred = nil
	for _, op := range ops {
		if err := e.applyRemote(op); err != nil {
			e.log.Warn("deferred operation dropped", "op", op.ID, "error", err)
		}
	}
}

// --- Queries (frontend ← backend) ---

// Render returns the draw commands for the board as JSON.
func (e *Engine) Render() string {
	result, err := render.DrawCommandsToJSON(e.renderer.Commands())
	if err != nil {
		return "[]"
	}
	return result
}

// GetOverlay returns the selection overlay in world coordinates as JSON.
func (e *Engine) GetOverlay() string {
	return toJSON(e.machine.Overlay(), "{}")
}

// GetGuidelines returns the active alignment guides as JSON.
func (e *Engine) GetGuidelines() string {
	lines := e.machine.Guidelines()
	if len(lines) == 0 {
		return "[]"
	}
	return toJSON(lines, "[]")
}

// HitTest returns the id of the topmost top-level element under a screen
// point, or the empty string.
func (e *Engine) HitTest(x, y float64) string {
	id, _ := e.renderer.TopmostElementAt(e.view.ScreenToWorld(geom.Point{X: x, Y: y}))
	return id
}

// GetSelection returns the selected ids as JSON.
func (e *Engine) GetSelection() string {
	return toJSON(e.machine.Selected(), "[]")
}

// GetSelectionBounds returns the world-space bounding rect of the selection
// as JSON.
func (e *Engine) GetSelectionBounds() string {
	st := e.store.State()
	bounds, _ := document.SelectionBounds(document.ExpandSelection(st.Selected(), st), st)
	return toJSON(bounds, "{}")
}

// GetBoard returns the whole board as JSON.
func (e *Engine) GetBoard() string {
	board := e.store.State().Board()
	board.ID, board.Name = e.boardID, e.boardName
	return toJSON(board, "{}")
}

// GetElement returns one element as JSON, or "null".
func (e *Engine) GetElement(id string) string {
	el, ok := e.store.Get(id)
	if !ok {
		return "null"
	}
	return toJSON(el, "null")
}

// GetViewport returns the viewport as JSON.
func (e *Engine) GetViewport() string {
	return toJSON(e.view, "{}")
}

// GetEditorState returns tool, mode, style and history state as JSON.
func (e *Engine) GetEditorState() string {
	return toJSON(map[string]interface{}{
		"tool":    e.machine.Tool(),
		"mode":    e.machine.Mode(),
		"style":   e.machine.Style(),
		"canUndo": e.history.CanUndo(),
		"canRedo": e.history.CanRedo(),
		"version": e.store.State().Version(),
		"pending": e.outbox.Len(),
	}, "{}")
}

// DrainOperations returns the local changes since the last drain as a JSON
// array of operations.
func (e *Engine) DrainOperations() string {
	ops := e.outbox.Drain()
	if len(ops) == 0 {
		return "[]"
	}
	return toJSON(ops, "[]")
}

// Version returns the store version; it changes on every mutation.
func (e *Engine) Version() uint64 {
	return e.store.State().Version()
}

func toJSON(v any, fallback string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(data)
}

package engine

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/oplog"
	"github.com/inamate/canvas/internal/overlay"
	"github.com/inamate/canvas/internal/render"
	"github.com/inamate/canvas/internal/viewport"
)

const testBoard = `{
	"id": "board_1",
	"name": "Test",
	"elements": [
		{"id": "a", "type": "rect", "x": 0, "y": 0, "width": 100, "height": 100, "alpha": 1},
		{"id": "b", "type": "rect", "x": 300, "y": 0, "width": 50, "height": 50, "alpha": 1}
	]
}`

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(800, 600)
	require.NoError(t, e.LoadBoard(testBoard))
	n := 0
	e.Machine().NewID = func() string {
		n++
		return fmt.Sprintf("new%d", n)
	}
	return e
}

func element(t *testing.T, e *Engine, id string) *document.Element {
	t.Helper()
	var el *document.Element
	require.NoError(t, json.Unmarshal([]byte(e.GetElement(id)), &el))
	require.NotNil(t, el, "element %s", id)
	return el
}

func drain(t *testing.T, e *Engine) []oplog.Operation {
	t.Helper()
	var ops []oplog.Operation
	require.NoError(t, json.Unmarshal([]byte(e.DrainOperations()), &ops))
	return ops
}

func TestLoadBoardRendersAndQueuesNothing(t *testing.T) {
	e := newEngine(t)

	var cmds []render.DrawCommand
	require.NoError(t, json.Unmarshal([]byte(e.Render()), &cmds))
	require.Len(t, cmds, 2)
	assert.Equal(t, "a", cmds[0].ElementID)

	assert.Equal(t, "[]", e.DrainOperations())

	var board document.Board
	require.NoError(t, json.Unmarshal([]byte(e.GetBoard()), &board))
	assert.Equal(t, "board_1", board.ID)
	assert.Equal(t, "Test", board.Name)
	assert.Len(t, board.Elements, 2)
}

func TestLoadBoardRejectsBadJSON(t *testing.T) {
	e := NewEngine(800, 600)
	assert.Error(t, e.LoadBoard("{"))
}

func TestLoadSampleBoard(t *testing.T) {
	e := NewEngine(800, 600)
	e.LoadSampleBoard("board_sample")
	assert.Contains(t, e.GetBoard(), `"board_sample"`)
	assert.NotEqual(t, "[]", e.Render())
}

func TestDragInScreenSpaceUnderZoom(t *testing.T) {
	e := newEngine(t)
	e.Zoom(0, 0, 2)

	e.PointerDown(100, 100, 0, false, false, false)
	e.PointerMove(140, 100, false, false)
	e.PointerUp(140, 100, 0, false, false)

	a := element(t, e, "a")
	assert.InDelta(t, 20.0, a.X, 1e-9)
	assert.InDelta(t, 0.0, a.Y, 1e-9)
	assert.Equal(t, `["a"]`, e.GetSelection())

	ops := drain(t, e)
	require.Len(t, ops, 1)
	assert.Equal(t, oplog.TypeUpsert, ops[0].Type)
	assert.InDelta(t, 20.0, ops[0].Element.X, 1e-9)

	require.True(t, e.Undo())
	assert.InDelta(t, 0.0, element(t, e, "a").X, 1e-9)
	require.True(t, e.Redo())
	assert.InDelta(t, 20.0, element(t, e, "a").X, 1e-9)
}

func TestZoomScalesTolerances(t *testing.T) {
	e := newEngine(t)
	e.Zoom(0, 0, 2)
	assert.InDelta(t, render.DefaultTolerance/2, e.renderer.Tolerance, 1e-9)

	var v viewport.Viewport
	require.NoError(t, json.Unmarshal([]byte(e.GetViewport()), &v))
	assert.Equal(t, 2.0, v.Scale)
}

func TestMiddleButtonPansWithoutEditing(t *testing.T) {
	e := newEngine(t)
	version := e.Version()

	e.PointerDown(50, 50, int(viewport.ButtonMiddle), false, false, false)
	e.PointerMove(80, 70, false, false)
	e.PointerUp(80, 70, int(viewport.ButtonMiddle), false, false)

	assert.Equal(t, version, e.Version())
	assert.Equal(t, 0.0, element(t, e, "a").X)
	assert.Equal(t, "a", e.HitTest(80+1, 70+1))
	assert.Equal(t, "", e.HitTest(10, 10))
}

func TestSpaceAndHandToolPan(t *testing.T) {
	e := newEngine(t)
	e.PointerDown(50, 50, 0, false, false, true)
	e.PointerMove(60, 50, false, false)
	e.PointerUp(60, 50, 0, false, false)
	assert.Equal(t, 0.0, element(t, e, "a").X)

	require.NoError(t, e.SetTool("hand"))
	e.PointerDown(50, 50, 0, false, false, false)
	e.PointerMove(60, 50, false, false)
	e.PointerUp(60, 50, 0, false, false)

	var v viewport.Viewport
	require.NoError(t, json.Unmarshal([]byte(e.GetViewport()), &v))
	assert.Equal(t, 20.0, v.OffsetX)
	assert.Equal(t, 0.0, element(t, e, "a").X)
}

func TestSetToolRejectsUnknown(t *testing.T) {
	e := newEngine(t)
	assert.ErrorIs(t, e.SetTool("lasso"), ErrUnknownTool)
	require.NoError(t, e.SetTool("pencil"))
	assert.Contains(t, e.GetEditorState(), `"tool":"pencil"`)
}

func TestDrawThenUndoNeverLeavesTheClient(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.SetTool("rect"))

	e.PointerDown(10, 200, 0, false, false, false)
	e.PointerMove(60, 260, false, false)
	e.PointerUp(60, 260, 0, false, false)

	el := element(t, e, "new1")
	assert.Equal(t, document.TypeRect, el.Type)
	assert.InDelta(t, 50.0, el.Width, 1e-9)
	assert.InDelta(t, 60.0, el.Height, 1e-9)

	require.True(t, e.Undo())
	assert.Equal(t, "null", e.GetElement("new1"))
	assert.Equal(t, "[]", e.DrainOperations())
}

func TestRemoteOperationsWaitForGesture(t *testing.T) {
	e := newEngine(t)
	remote := `{"id":"op_r","type":"element.upsert","elementId":"b",
		"element":{"id":"b","type":"rect","x":999,"y":0,"width":50,"height":50,"alpha":1}}`

	e.PointerDown(50, 50, 0, false, false, false)
	e.PointerMove(60, 50, false, false)
	require.NoError(t, e.ApplyRemote(remote))
	assert.Equal(t, 300.0, element(t, e, "b").X)

	e.PointerUp(60, 50, 0, false, false)
	assert.Equal(t, 999.0, element(t, e, "b").X)

	ops := drain(t, e)
	require.Len(t, ops, 1)
	assert.Equal(t, "a", ops[0].ElementID)
}

func TestApplyRemoteInsertAndDelete(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.ApplyRemote(`{"id":"op1","type":"element.upsert","elementId":"c","index":0,
		"element":{"id":"c","type":"circle","x":5,"y":5,"width":10,"height":10,"alpha":1}}`))
	require.NoError(t, e.ApplyRemote(`{"id":"op2","type":"element.delete","elementId":"b"}`))

	var board document.Board
	require.NoError(t, json.Unmarshal([]byte(e.GetBoard()), &board))
	require.Len(t, board.Elements, 2)
	assert.Equal(t, "c", board.Elements[0].ID)
	assert.Equal(t, "a", board.Elements[1].ID)
	assert.Equal(t, "[]", e.DrainOperations())

	assert.ErrorIs(t, e.ApplyRemote(`{"id":"op3","type":"element.move","elementId":"a"}`), oplog.ErrUnknownOperation)
	assert.Error(t, e.ApplyRemote("nope"))
}

func TestOverlayAndBoundsFollowSelection(t *testing.T) {
	e := newEngine(t)
	var o overlay.Overlay
	require.NoError(t, json.Unmarshal([]byte(e.GetOverlay()), &o))
	assert.Equal(t, overlay.KindNone, o.Kind)

	e.SetSelection([]string{"a", "b"})
	require.NoError(t, json.Unmarshal([]byte(e.GetOverlay()), &o))
	assert.Equal(t, overlay.KindBox, o.Kind)
	assert.InDelta(t, 350.0, o.Box.Width, 1e-9)

	assert.JSONEq(t, `{"x":0,"y":0,"width":350,"height":100}`, e.GetSelectionBounds())
}

func TestGroupNudgeAndDelete(t *testing.T) {
	e := newEngine(t)
	e.SelectAll()
	id := e.Group()
	require.Equal(t, "new1", id)
	assert.Equal(t, `["new1"]`, e.GetSelection())

	require.True(t, e.Nudge(5, 0))
	assert.Equal(t, 5.0, element(t, e, "a").X)
	assert.Equal(t, 305.0, element(t, e, "b").X)

	require.True(t, e.Ungroup())
	require.True(t, e.DeleteSelected())
	assert.Equal(t, "[]", e.Render())
}

func TestCancelGestureRestores(t *testing.T) {
	e := newEngine(t)
	e.PointerDown(50, 50, 0, false, false, false)
	e.PointerMove(90, 50, false, false)
	e.CancelGesture()
	assert.Equal(t, 0.0, element(t, e, "a").X)
	assert.False(t, e.Undo())
}

func TestInsertImageAtScreenCenter(t *testing.T) {
	e := newEngine(t)
	id := e.InsertImage("/assets/x.png", 40, 20)
	require.NotEmpty(t, id)
	el := element(t, e, id)
	assert.Equal(t, document.TypeImage, el.Type)
	assert.InDelta(t, 380.0, el.X, 1e-9)
	assert.InDelta(t, 290.0, el.Y, 1e-9)
}

func TestOtherButtonReleaseKeepsGesture(t *testing.T) {
	e := newEngine(t)
	e.PointerDown(50, 50, int(viewport.ButtonPrimary), false, false, false)
	e.PointerMove(70, 50, false, false)

	e.PointerDown(70, 50, int(viewport.ButtonMiddle), false, false, false)
	e.PointerUp(70, 50, int(viewport.ButtonMiddle), false, false)
	e.PointerUp(70, 50, int(viewport.ButtonSecondary), false, false)

	var state struct {
		Mode    string `json:"mode"`
		CanUndo bool   `json:"canUndo"`
	}
	require.NoError(t, json.Unmarshal([]byte(e.GetEditorState()), &state))
	assert.Equal(t, "dragging", state.Mode)
	assert.False(t, state.CanUndo)

	e.PointerMove(90, 50, false, false)
	e.PointerUp(90, 50, int(viewport.ButtonPrimary), false, false)
	assert.Equal(t, 40.0, element(t, e, "a").X)
	assert.True(t, e.Undo())
	assert.Equal(t, 0.0, element(t, e, "a").X)

	var v viewport.Viewport
	require.NoError(t, json.Unmarshal([]byte(e.GetViewport()), &v))
	assert.Equal(t, 0.0, v.OffsetX)
}

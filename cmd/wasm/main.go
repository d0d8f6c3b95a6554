//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/canvas/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(800, 600)

	// Create the engine API object
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("loadBoard", js.FuncOf(loadBoard))
	api.Set("loadSampleBoard", js.FuncOf(loadSampleBoard))
	api.Set("resize", js.FuncOf(resize))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("cancelGesture", js.FuncOf(cancelGesture))
	api.Set("zoom", js.FuncOf(zoom))
	api.Set("panBy", js.FuncOf(panBy))
	api.Set("centerOn", js.FuncOf(centerOn))
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("setStyle", js.FuncOf(setStyle))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("selectAll", js.FuncOf(selectAll))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("group", js.FuncOf(group))
	api.Set("ungroup", js.FuncOf(ungroup))
	api.Set("deleteSelected", js.FuncOf(deleteSelected))
	api.Set("nudge", js.FuncOf(nudge))
	api.Set("insertImage", js.FuncOf(insertImage))
	api.Set("setText", js.FuncOf(setText))
	api.Set("applyRemote", js.FuncOf(applyRemote))

	// --- Queries (frontend ← backend) ---
	api.Set("render", js.FuncOf(render))
	api.Set("getOverlay", js.FuncOf(getOverlay))
	api.Set("getGuidelines", js.FuncOf(getGuidelines))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getBoard", js.FuncOf(getBoard))
	api.Set("getElement", js.FuncOf(getElement))
	api.Set("getViewport", js.FuncOf(getViewport))
	api.Set("getEditorState", js.FuncOf(getEditorState))
	api.Set("drainOperations", js.FuncOf(drainOperations))
	api.Set("getVersion", js.FuncOf(getVersion))

	// Register on global scope
	js.Global().Set("canvasEngine", api)

	// Signal that WASM is ready
	js.Global().Set("canvasWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func floatArg(args []js.Value, i int) float64 {
	if len(args) <= i || args[i].Type() != js.TypeNumber {
		return 0
	}
	return args[i].Float()
}

func boolArg(args []js.Value, i int) bool {
	return len(args) > i && args[i].Truthy()
}

func stringArg(args []js.Value, i int) string {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

// --- Command Handlers ---

func loadBoard(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing board JSON"})
	}
	if err := eng.LoadBoard(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleBoard(this js.Value, args []js.Value) interface{} {
	boardID := "room_sample"
	if s := stringArg(args, 0); s != "" {
		boardID = s
	}
	eng.LoadSampleBoard(boardID)
	return okResult()
}

func resize(this js.Value, args []js.Value) interface{} {
	eng.Resize(floatArg(args, 0), floatArg(args, 1))
	return nil
}

// pointerDown(x, y, button, ctrl, shift, space)
func pointerDown(this js.Value, args []js.Value) interface{} {
	eng.PointerDown(floatArg(args, 0), floatArg(args, 1), int(floatArg(args, 2)),
		boolArg(args, 3), boolArg(args, 4), boolArg(args, 5))
	return nil
}

// pointerMove(x, y, ctrl, shift)
func pointerMove(this js.Value, args []js.Value) interface{} {
	eng.PointerMove(floatArg(args, 0), floatArg(args, 1), boolArg(args, 2), boolArg(args, 3))
	return nil
}

// pointerUp(x, y, button, ctrl, shift)
func pointerUp(this js.Value, args []js.Value) interface{} {
	eng.PointerUp(floatArg(args, 0), floatArg(args, 1), int(floatArg(args, 2)),
		boolArg(args, 3), boolArg(args, 4))
	return nil
}

func cancelGesture(this js.Value, args []js.Value) interface{} {
	eng.CancelGesture()
	return nil
}

func zoom(this js.Value, args []js.Value) interface{} {
	eng.Zoom(floatArg(args, 0), floatArg(args, 1), floatArg(args, 2))
	return nil
}

func panBy(this js.Value, args []js.Value) interface{} {
	eng.PanBy(floatArg(args, 0), floatArg(args, 1))
	return nil
}

func centerOn(this js.Value, args []js.Value) interface{} {
	eng.CenterOn(floatArg(args, 0), floatArg(args, 1))
	return nil
}

func setTool(this js.Value, args []js.Value) interface{} {
	if err := eng.SetTool(stringArg(args, 0)); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setStyle(this js.Value, args []js.Value) interface{} {
	if err := eng.SetStyle(stringArg(args, 0)); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(args[0].String()), &ids); err != nil {
		return errorResult(err)
	}
	eng.SetSelection(ids)
	return nil
}

func selectAll(this js.Value, args []js.Value) interface{} {
	eng.SelectAll()
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

func group(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Group())
}

func ungroup(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Ungroup())
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.DeleteSelected())
}

func nudge(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Nudge(floatArg(args, 0), floatArg(args, 1)))
}

// insertImage(src, width, height)
func insertImage(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.InsertImage(stringArg(args, 0), floatArg(args, 1), floatArg(args, 2)))
}

func setText(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.SetText(stringArg(args, 0), stringArg(args, 1)))
}

func applyRemote(this js.Value, args []js.Value) interface{} {
	if err := eng.ApplyRemote(stringArg(args, 0)); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func getOverlay(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetOverlay())
}

func getGuidelines(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetGuidelines())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.HitTest(floatArg(args, 0), floatArg(args, 1)))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getBoard(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetBoard())
}

func getElement(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetElement(stringArg(args, 0)))
}

func getViewport(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetViewport())
}

func getEditorState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetEditorState())
}

func drainOperations(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.DrainOperations())
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(float64(eng.Version()))
}

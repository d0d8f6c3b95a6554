// Package render turns store state into a draw command buffer for the
// browser canvas and answers hit tests in the same paint order.
package render

import (
	"encoding/json"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/store"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path", "text" or "image"
	ElementID   string        `json:"elementId,omitempty"`   // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Closed      bool          `json:"closed,omitempty"`      // Fill applies only to closed paths
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Opacity     float64       `json:"opacity,omitempty"`     // Global alpha
	Text        string        `json:"text,omitempty"`
	FontSize    float64       `json:"fontSize,omitempty"`
	FontFamily  string        `json:"fontFamily,omitempty"`
	Src         string        `json:"src,omitempty"` // Image URL
	Width       float64       `json:"width,omitempty"`
	Height      float64       `json:"height,omitempty"`
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type PathCommand []any

// Compile generates a draw command buffer from a state, in painter's
// order (back to front). Groups draw nothing themselves; their children
// are ordinary elements in the paint order.
func Compile(st *store.State) []DrawCommand {
	order := st.Order()
	commands := make([]DrawCommand, 0, len(order))
	for _, id := range order {
		el, ok := st.Get(id)
		if !ok {
			continue
		}
		if cmd, ok := compileElement(el); ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

func compileElement(el *document.Element) (DrawCommand, bool) {
	cmd := DrawCommand{
		ElementID: el.ID,
		Transform: geom.BoxTransform(el.Box()).ToSlice(),
		Opacity:   el.Alpha,
	}

	switch el.Type {
	case document.TypeGroup:
		return DrawCommand{}, false

	case document.TypeText:
		cmd.Op = "text"
		cmd.Text = el.Text
		cmd.Fill = el.Fill
		cmd.FontSize = el.FontSize
		cmd.FontFamily = el.FontFamily
		cmd.Width, cmd.Height = el.Width, el.Height

	case document.TypeImage:
		cmd.Op = "image"
		cmd.Src = el.Src
		cmd.Width, cmd.Height = el.Width, el.Height

	default:
		path, closed := elementPath(el)
		if len(path) == 0 {
			return DrawCommand{}, false
		}
		cmd.Op = "path"
		cmd.Path = path
		cmd.Closed = closed
		if closed {
			cmd.Fill = el.Fill
		}
		cmd.Stroke = el.Stroke
		cmd.StrokeWidth = el.StrokeWidth
	}
	return cmd, true
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

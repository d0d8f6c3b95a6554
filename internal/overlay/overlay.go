// Package overlay derives the selection box and its handles from the
// current selection. It holds no state: the same inputs always give the
// same overlay.
package overlay

import (
	"math"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/store"
)

type Handle string

const (
	HandleNone  Handle = ""
	TopLeft     Handle = "tl"
	Top         Handle = "t"
	TopRight    Handle = "tr"
	Right       Handle = "r"
	BottomRight Handle = "br"
	Bottom      Handle = "b"
	BottomLeft  Handle = "bl"
	Left        Handle = "l"
	Rotate      Handle = "rot"
	Start       Handle = "p0"
	End         Handle = "p1"
)

// IsResize reports whether h is one of the eight box handles.
func (h Handle) IsResize() bool {
	switch h {
	case TopLeft, Top, TopRight, Right, BottomRight, Bottom, BottomLeft, Left:
		return true
	}
	return false
}

// IsEndpoint reports whether h grabs a line end.
func (h Handle) IsEndpoint() bool { return h == Start || h == End }

// Edges reports which box edges h moves.
func (h Handle) Edges() (left, right, top, bottom bool) {
	switch h {
	case TopLeft:
		return true, false, true, false
	case Top:
		return false, false, true, false
	case TopRight:
		return false, true, true, false
	case Right:
		return false, true, false, false
	case BottomRight:
		return false, true, false, true
	case Bottom:
		return false, false, false, true
	case BottomLeft:
		return true, false, false, true
	case Left:
		return true, false, false, false
	}
	return false, false, false, false
}

// offset returns the unit position of h relative to the box center, in
// half extents.
func (h Handle) offset() (fx, fy float64) {
	l, r, t, b := h.Edges()
	if l {
		fx = -1
	} else if r {
		fx = 1
	}
	if t {
		fy = -1
	} else if b {
		fy = 1
	}
	return fx, fy
}

var boxHandles = []Handle{TopLeft, Top, TopRight, Right, BottomRight, Bottom, BottomLeft, Left}

type Kind string

const (
	KindNone      Kind = "none"
	KindBox       Kind = "box"
	KindEndpoints Kind = "endpoints"
)

// HandlePos places a handle in world space.
type HandlePos struct {
	Handle Handle     `json:"handle"`
	Point  geom.Point `json:"point"`
}

// Circle is the eraser indicator.
type Circle struct {
	Center geom.Point `json:"center"`
	Radius float64    `json:"radius"`
}

// Overlay is everything the renderer draws on top of the board.
type Overlay struct {
	Kind       Kind        `json:"kind"`
	Box        geom.Box    `json:"box"`
	Handles    []HandlePos `json:"handles,omitempty"`
	RubberBand *geom.Rect  `json:"rubberBand,omitempty"`
	Eraser     *Circle     `json:"eraser,omitempty"`
}

type Options struct {
	// MinTextBox is the smallest box drawn around a selection containing
	// text, so an empty text element stays grabbable.
	MinTextBox float64
	// RotateOffset is the distance of the rotate handle above the box.
	RotateOffset float64
}

// DefaultOptions are in world units at zoom 1.
var DefaultOptions = Options{MinTextBox: 10, RotateOffset: 24}

// Compute derives the overlay for the state's selection. When live is
// non-nil it is used as the frame instead of the committed geometry, so an
// in-flight resize or rotate shows the box the gesture is producing.
func Compute(st *store.State, live *geom.Box, opts Options) Overlay {
	sel := st.Selected()
	if len(sel) == 0 {
		return Overlay{Kind: KindNone}
	}

	if len(sel) == 1 && live == nil {
		if el, ok := st.Get(sel[0]); ok && (el.Type == document.TypeLine || el.Type == document.TypeArrow) && len(el.Points) >= 2 {
			abs := el.AbsolutePoints()
			return Overlay{
				Kind: KindEndpoints,
				Box:  el.Box(),
				Handles: []HandlePos{
					{Handle: Start, Point: abs[0]},
					{Handle: End, Point: abs[len(abs)-1]},
				},
			}
		}
	}

	var frame geom.Box
	if live != nil {
		frame = *live
	} else {
		b, ok := document.SelectionFrame(sel, st)
		if !ok {
			return Overlay{Kind: KindNone}
		}
		frame = b
		if hasText(sel, st) {
			frame = floor(frame, opts.MinTextBox)
		}
	}
	return Overlay{Kind: KindBox, Box: frame, Handles: Handles(frame, opts.RotateOffset)}
}

func hasText(ids []string, st *store.State) bool {
	for _, id := range document.LeafIDs(ids, st) {
		if el, _ := st.Get(id); el.Type == document.TypeText {
			return true
		}
	}
	return false
}

func floor(b geom.Box, minSize float64) geom.Box {
	c := b.Center()
	return geom.BoxAround(c, math.Max(b.Width, minSize), math.Max(b.Height, minSize), b.Rotation)
}

// Handles places the eight resize handles and the rotate handle around b.
func Handles(b geom.Box, rotateOffset float64) []HandlePos {
	c := b.Center()
	hw, hh := b.Width/2, b.Height/2
	out := make([]HandlePos, 0, len(boxHandles)+1)
	for _, h := range boxHandles {
		fx, fy := h.offset()
		out = append(out, HandlePos{
			Handle: h,
			Point:  geom.RotatePoint(c.X+fx*hw, c.Y+fy*hh, c.X, c.Y, b.Rotation),
		})
	}
	out = append(out, HandlePos{
		Handle: Rotate,
		Point:  geom.RotatePoint(c.X, c.Y-hh-rotateOffset, c.X, c.Y, b.Rotation),
	})
	return out
}

// HandleAt returns the handle nearest to p within radius.
func HandleAt(o Overlay, p geom.Point, radius float64) Handle {
	best, bestDist := HandleNone, math.Inf(1)
	for _, h := range o.Handles {
		if d := h.Point.Dist(p); d <= radius && d < bestDist {
			best, bestDist = h.Handle, d
		}
	}
	return best
}

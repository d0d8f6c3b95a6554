// Package guides computes alignment snapping for a moving element against
// its siblings.
package guides

import (
	"math"

	"github.com/inamate/canvas/internal/document"
	"github.com/inamate/canvas/internal/geom"
)

// DefaultThreshold is the snap distance in world units.
const DefaultThreshold = 5.0

type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// Guideline is a line for the renderer to draw: vertical lines sit at an x
// position, horizontal ones at a y position.
type Guideline struct {
	Type     Orientation `json:"type"`
	Position float64     `json:"position"`
}

// Result holds at most one snapped coordinate per axis. X and Y are the
// moving element's new top-left coordinates.
type Result struct {
	X          *float64    `json:"x,omitempty"`
	Y          *float64    `json:"y,omitempty"`
	Guidelines []Guideline `json:"guidelines"`
}

// Snapped reports whether either axis snapped.
func (r Result) Snapped() bool { return r.X != nil || r.Y != nil }

type candidate struct {
	target float64 // sibling edge or center
	snapTo float64 // moving element origin that aligns with target
}

// Calculate compares the moving rect's edges and center with every
// candidate in order, skipping exclude. The first match within threshold
// wins per axis; later, possibly closer, matches are not considered.
func Calculate(moving geom.Rect, order []string, elements document.Getter, exclude map[string]bool, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	res := Result{}

	left, right, cx := moving.X, moving.X+moving.Width, moving.X+moving.Width/2
	top, bottom, cy := moving.Y, moving.Y+moving.Height, moving.Y+moving.Height/2
	w, h := moving.Width, moving.Height

	for _, id := range order {
		if res.X != nil && res.Y != nil {
			break
		}
		if exclude[id] {
			continue
		}
		el, ok := elements.Get(id)
		if !ok {
			continue
		}
		r := el.Rect()
		sl, sr, scx := r.X, r.X+r.Width, r.X+r.Width/2
		st, sb, scy := r.Y, r.Y+r.Height, r.Y+r.Height/2

		if res.X == nil {
			xs := []struct {
				mine float64
				c    candidate
			}{
				{left, candidate{sl, sl}},
				{left, candidate{sr, sr}},
				{right, candidate{sr, sr - w}},
				{right, candidate{sl, sl - w}},
				{cx, candidate{scx, scx - w/2}},
			}
			for _, x := range xs {
				if math.Abs(x.mine-x.c.target) <= threshold {
					res.X = document.Ptr(x.c.snapTo)
					res.Guidelines = append(res.Guidelines, Guideline{Type: Vertical, Position: x.c.target})
					break
				}
			}
		}

		if res.Y == nil {
			ys := []struct {
				mine float64
				c    candidate
			}{
				{top, candidate{st, st}},
				{top, candidate{sb, sb}},
				{bottom, candidate{sb, sb - h}},
				{bottom, candidate{st, st - h}},
				{cy, candidate{scy, scy - h/2}},
			}
			for _, y := range ys {
				if math.Abs(y.mine-y.c.target) <= threshold {
					res.Y = document.Ptr(y.c.snapTo)
					res.Guidelines = append(res.Guidelines, Guideline{Type: Horizontal, Position: y.c.target})
					break
				}
			}
		}
	}
	return res
}

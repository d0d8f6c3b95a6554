package render

import (
	"math"

	"github.com/inamate/canvas/internal/document"
)

// arrowHead is the length of the arrow barbs relative to the stroke.
const arrowHead = 4.0

// elementPath builds the outline of el in its local box space, where the
// origin is the unrotated top-left corner.
func elementPath(el *document.Element) ([]PathCommand, bool) {
	w, h := el.Width, el.Height
	switch el.Type {
	case document.TypeRect:
		return []PathCommand{
			{"M", 0.0, 0.0},
			{"L", w, 0.0},
			{"L", w, h},
			{"L", 0.0, h},
			{"Z"},
		}, true

	case document.TypeCircle:
		return ellipsePath(w/2, h/2, w/2, h/2), true

	case document.TypeTriangle:
		return []PathCommand{
			{"M", w / 2, 0.0},
			{"L", w, h},
			{"L", 0.0, h},
			{"Z"},
		}, true

	case document.TypeDiamond:
		return []PathCommand{
			{"M", w / 2, 0.0},
			{"L", w, h / 2},
			{"L", w / 2, h},
			{"L", 0.0, h / 2},
			{"Z"},
		}, true

	case document.TypeLine, document.TypePencil:
		return polyline(el), false

	case document.TypeArrow:
		path := polyline(el)
		if n := len(el.Points); n >= 2 {
			path = append(path, arrowBarbs(el, el.Points[n-2].X, el.Points[n-2].Y, el.Points[n-1].X, el.Points[n-1].Y)...)
		}
		return path, false
	}
	return nil, false
}

func polyline(el *document.Element) []PathCommand {
	if len(el.Points) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(el.Points))
	for i, p := range el.Points {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, p.X, p.Y})
	}
	return path
}

func arrowBarbs(el *document.Element, fx, fy, tx, ty float64) []PathCommand {
	angle := math.Atan2(ty-fy, tx-fx)
	size := math.Max(10, el.StrokeWidth*arrowHead)
	const spread = math.Pi / 6
	ax := tx - size*math.Cos(angle-spread)
	ay := ty - size*math.Sin(angle-spread)
	bx := tx - size*math.Cos(angle+spread)
	by := ty - size*math.Sin(angle+spread)
	return []PathCommand{
		{"M", ax, ay},
		{"L", tx, ty},
		{"L", bx, by},
	}
}

// ellipsePath approximates an ellipse centered on (cx, cy) with four
// cubic bezier curves.
func ellipsePath(cx, cy, rx, ry float64) []PathCommand {
	// k = 4 * (sqrt(2) - 1) / 3
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}

package document

import (
	"math"

	"github.com/inamate/canvas/internal/geom"
)

// MaxGroupDepth bounds descendant expansion so malformed membership cannot
// run away.
const MaxGroupDepth = 64

// Getter resolves element ids. The store's State and Elements both satisfy
// it, as does any overlay of pending updates.
type Getter interface {
	Get(id string) (*Element, bool)
}

// Elements is a plain id -> element mapping.
type Elements map[string]*Element

// Get implements Getter.
func (m Elements) Get(id string) (*Element, bool) {
	el, ok := m[id]
	return el, ok
}

// SelectionBounds returns the axis-aligned box enclosing the raw
// x/y/width/height of each id. Rotation is ignored.
func SelectionBounds(ids []string, elements Getter) (geom.Rect, bool) {
	var out geom.Rect
	found := false
	for _, id := range ids {
		el, ok := elements.Get(id)
		if !ok {
			continue
		}
		if !found {
			out = el.Rect()
			found = true
			continue
		}
		out = out.Union(el.Rect())
	}
	return out, found
}

// DescendantIDs flattens a group's children, their children and so on,
// breadth first. It returns nil for missing or non-group ids.
func DescendantIDs(groupID string, elements Getter) []string {
	root, ok := elements.Get(groupID)
	if !ok || root.Type != TypeGroup {
		return nil
	}

	var out []string
	seen := map[string]bool{groupID: true}
	level := root.Children
	for depth := 0; len(level) > 0 && depth < MaxGroupDepth; depth++ {
		var next []string
		for _, id := range level {
			if seen[id] {
				continue
			}
			seen[id] = true
			el, ok := elements.Get(id)
			if !ok {
				continue
			}
			out = append(out, id)
			if el.Type == TypeGroup {
				next = append(next, el.Children...)
			}
		}
		level = next
	}
	return out
}

// ExpandSelection returns ids followed by every descendant of the groups
// among them, without duplicates and skipping unknown ids.
func ExpandSelection(ids []string, elements Getter) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	add := func(id string) {
		if seen[id] {
			return
		}
		if _, ok := elements.Get(id); !ok {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range ids {
		add(id)
	}
	for _, id := range ids {
		for _, d := range DescendantIDs(id, elements) {
			add(d)
		}
	}
	return out
}

// LeafIDs is ExpandSelection without the group elements themselves. Groups
// carry a derived box, so measuring their leaves hugs the visible content.
func LeafIDs(ids []string, elements Getter) []string {
	all := ExpandSelection(ids, elements)
	out := all[:0:0]
	for _, id := range all {
		if el, _ := elements.Get(id); el.Type != TypeGroup {
			out = append(out, id)
		}
	}
	return out
}

// GroupBounds computes the tightest box around the given elements when the
// frame is rotated by groupRotation: every corner is rotated into the
// frame, measured there, and the measured center is rotated back.
func GroupBounds(elements Getter, childIDs []string, groupRotation float64) (geom.Box, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false

	for _, id := range childIDs {
		el, ok := elements.Get(id)
		if !ok {
			continue
		}
		found = true
		for _, c := range el.Box().Corners() {
			local := geom.RotatePoint(c.X, c.Y, 0, 0, -groupRotation)
			minX = math.Min(minX, local.X)
			minY = math.Min(minY, local.Y)
			maxX = math.Max(maxX, local.X)
			maxY = math.Max(maxY, local.Y)
		}
	}
	if !found {
		return geom.Box{}, false
	}

	w, h := maxX-minX, maxY-minY
	center := geom.RotatePoint(minX+w/2, minY+h/2, 0, 0, groupRotation)
	return geom.BoxAround(center, w, h, groupRotation), true
}

// SharedRotation returns the rotation common to every id, or 0 when they
// disagree (within AngularEpsilon) or ids is empty.
func SharedRotation(ids []string, elements Getter) float64 {
	var r float64
	first := true
	for _, id := range ids {
		el, ok := elements.Get(id)
		if !ok {
			continue
		}
		if first {
			r = el.Rotation
			first = false
			continue
		}
		if math.Abs(el.Rotation-r) > AngularEpsilon {
			return 0
		}
	}
	return r
}

// SelectionFrame is the oriented frame resize, rotate and the overlay all
// share: the leaves of ids measured at their shared rotation.
func SelectionFrame(ids []string, elements Getter) (geom.Box, bool) {
	angle := SharedRotation(ids, elements)
	return GroupBounds(elements, LeafIDs(ids, elements), angle)
}

// ParentIndex maps every child id to the group that lists it.
func ParentIndex(order []string, elements Getter) map[string]string {
	parents := make(map[string]string)
	for _, id := range order {
		el, ok := elements.Get(id)
		if !ok || el.Type != TypeGroup {
			continue
		}
		for _, c := range el.Children {
			parents[c] = id
		}
	}
	return parents
}

// RootOf climbs parents to the top-level ancestor of id.
func RootOf(id string, parents map[string]string) string {
	for range MaxGroupDepth {
		p, ok := parents[id]
		if !ok {
			return id
		}
		id = p
	}
	return id
}

package document

import (
	"math"
	"slices"

	"github.com/inamate/canvas/internal/geom"
)

type ElementType string

const (
	TypeRect     ElementType = "rect"
	TypeCircle   ElementType = "circle"
	TypeTriangle ElementType = "triangle"
	TypeDiamond  ElementType = "diamond"
	TypeLine     ElementType = "line"
	TypeArrow    ElementType = "arrow"
	TypePencil   ElementType = "pencil"
	TypeText     ElementType = "text"
	TypeImage    ElementType = "image"
	TypeGroup    ElementType = "group"
)

// IsPath reports whether elements of this type are described by Points.
func (t ElementType) IsPath() bool {
	return t == TypeLine || t == TypeArrow || t == TypePencil
}

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	switch t {
	case TypeRect, TypeCircle, TypeTriangle, TypeDiamond, TypeLine,
		TypeArrow, TypePencil, TypeText, TypeImage, TypeGroup:
		return true
	}
	return false
}

// Element is a single shape on the board.
//
// X, Y, Width and Height describe the unrotated local box; Rotation turns it
// about its center. Points are relative to (X, Y). Group children are
// stored in world space, never relative to the group.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth"`
	Alpha       float64 `json:"alpha"`

	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Text       string  `json:"text,omitempty"`
	Src        string  `json:"src,omitempty"`

	Points   []geom.Point `json:"points,omitempty"`
	Children []string     `json:"children,omitempty"`
}

// Clone returns a deep copy.
func (e *Element) Clone() *Element {
	c := *e
	c.Points = slices.Clone(e.Points)
	c.Children = slices.Clone(e.Children)
	return &c
}

// Box returns the element's oriented box.
func (e *Element) Box() geom.Box {
	return geom.Box{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height, Rotation: e.Rotation}
}

// Rect returns the raw unrotated box.
func (e *Element) Rect() geom.Rect {
	return geom.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// Center returns the rotation center.
func (e *Element) Center() geom.Point {
	return geom.Point{X: e.X + e.Width/2, Y: e.Y + e.Height/2}
}

// AbsolutePoints returns Points in world space, with the element rotation
// applied about its center.
func (e *Element) AbsolutePoints() []geom.Point {
	c := e.Center()
	out := make([]geom.Point, len(e.Points))
	for i, p := range e.Points {
		out[i] = geom.RotatePoint(e.X+p.X, e.Y+p.Y, c.X, c.Y, e.Rotation)
	}
	return out
}

// SetAbsolutePoints rebaselines a path element from world-space points: the
// box becomes the points' bounds, Points become relative to its top-left and
// the rotation is folded in (reset to zero).
func (e *Element) SetAbsolutePoints(abs []geom.Point) {
	b := geom.PointsBounds(abs)
	e.X, e.Y = b.X, b.Y
	e.Width, e.Height = b.Width, b.Height
	e.Rotation = 0
	e.Points = make([]geom.Point, len(abs))
	for i, p := range abs {
		e.Points[i] = geom.Point{X: p.X - b.X, Y: p.Y - b.Y}
	}
}

// Board is the serializable form of a whole document. Elements are in
// paint order, back to front.
type Board struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name,omitempty"`
	Elements []Element `json:"elements"`
}

// Attrs is a partial element update. Nil fields are left unchanged.
type Attrs struct {
	X           *float64      `json:"x,omitempty"`
	Y           *float64      `json:"y,omitempty"`
	Width       *float64      `json:"width,omitempty"`
	Height      *float64      `json:"height,omitempty"`
	Rotation    *float64      `json:"rotation,omitempty"`
	Fill        *string       `json:"fill,omitempty"`
	Stroke      *string       `json:"stroke,omitempty"`
	StrokeWidth *float64      `json:"strokeWidth,omitempty"`
	Alpha       *float64      `json:"alpha,omitempty"`
	FontSize    *float64      `json:"fontSize,omitempty"`
	FontFamily  *string       `json:"fontFamily,omitempty"`
	Text        *string       `json:"text,omitempty"`
	Points      *[]geom.Point `json:"points,omitempty"`
	Children    *[]string     `json:"children,omitempty"`
}

// Ptr returns a pointer to v; handy for building Attrs.
func Ptr[T any](v T) *T { return &v }

// IsEmpty reports whether the update changes nothing.
func (a Attrs) IsEmpty() bool {
	return a == Attrs{}
}

// Apply merges the set fields into el.
func (a Attrs) Apply(el *Element) {
	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setS := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setF(&el.X, a.X)
	setF(&el.Y, a.Y)
	setF(&el.Width, a.Width)
	setF(&el.Height, a.Height)
	setF(&el.Rotation, a.Rotation)
	setS(&el.Fill, a.Fill)
	setS(&el.Stroke, a.Stroke)
	setF(&el.StrokeWidth, a.StrokeWidth)
	setF(&el.Alpha, a.Alpha)
	setF(&el.FontSize, a.FontSize)
	setS(&el.FontFamily, a.FontFamily)
	setS(&el.Text, a.Text)
	if a.Points != nil {
		el.Points = slices.Clone(*a.Points)
	}
	if a.Children != nil {
		el.Children = slices.Clone(*a.Children)
	}
}

// AttrsOf captures every mutable field of el.
func AttrsOf(el *Element) Attrs {
	a := GeometryAttrs(el)
	a.Fill = Ptr(el.Fill)
	a.Stroke = Ptr(el.Stroke)
	a.Alpha = Ptr(el.Alpha)
	a.FontFamily = Ptr(el.FontFamily)
	a.Text = Ptr(el.Text)
	a.Children = Ptr(slices.Clone(el.Children))
	return a
}

// GeometryAttrs captures every field a transform gesture can touch.
func GeometryAttrs(el *Element) Attrs {
	a := Attrs{
		X:           Ptr(el.X),
		Y:           Ptr(el.Y),
		Width:       Ptr(el.Width),
		Height:      Ptr(el.Height),
		Rotation:    Ptr(el.Rotation),
		StrokeWidth: Ptr(el.StrokeWidth),
		FontSize:    Ptr(el.FontSize),
	}
	if el.Points != nil {
		a.Points = Ptr(slices.Clone(el.Points))
	}
	return a
}

// Tolerances used when deciding whether a gesture changed anything.
const (
	LinearEpsilon  = 0.01
	AngularEpsilon = 0.001
)

// GeometryDiffers reports whether two elements differ in any transform
// field beyond the gesture tolerances.
func GeometryDiffers(a, b *Element) bool {
	far := func(x, y, eps float64) bool { return math.Abs(x-y) > eps }
	if far(a.X, b.X, LinearEpsilon) || far(a.Y, b.Y, LinearEpsilon) ||
		far(a.Width, b.Width, LinearEpsilon) || far(a.Height, b.Height, LinearEpsilon) ||
		far(a.StrokeWidth, b.StrokeWidth, LinearEpsilon) || far(a.FontSize, b.FontSize, LinearEpsilon) ||
		far(a.Rotation, b.Rotation, AngularEpsilon) {
		return true
	}
	if len(a.Points) != len(b.Points) {
		return true
	}
	for i := range a.Points {
		if far(a.Points[i].X, b.Points[i].X, LinearEpsilon) || far(a.Points[i].Y, b.Points[i].Y, LinearEpsilon) {
			return true
		}
	}
	return false
}

package document

import (
	"github.com/inamate/canvas/internal/geom"
	"github.com/inamate/canvas/internal/typeid"
)

// NewSampleBoard builds the playground board: a few loose shapes and a
// two-element group.
func NewSampleBoard(boardID string) *Board {
	rectID := typeid.NewElementID()
	circleID := typeid.NewElementID()
	arrowID := typeid.NewElementID()
	textID := typeid.NewElementID()
	groupID := typeid.NewElementID()
	diamondID := typeid.NewElementID()
	triangleID := typeid.NewElementID()

	return &Board{
		ID:   boardID,
		Name: "Playground",
		Elements: []Element{
			{
				ID: rectID, Type: TypeRect,
				X: 120, Y: 120, Width: 200, Height: 140,
				Fill: "#e94560", Stroke: "#000000", StrokeWidth: 2, Alpha: 1,
			},
			{
				ID: circleID, Type: TypeCircle,
				X: 420, Y: 140, Width: 160, Height: 160,
				Fill: "#0f3460", Stroke: "#16213e", StrokeWidth: 2, Alpha: 1,
			},
			{
				ID: arrowID, Type: TypeArrow,
				X: 320, Y: 190, Width: 100, Height: 30,
				Stroke: "#1a1a2e", StrokeWidth: 3, Alpha: 1,
				Points: []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 30}},
			},
			{
				ID: textID, Type: TypeText,
				X: 120, Y: 60, Width: 240, Height: 34,
				Fill: "#1a1a2e", Alpha: 1,
				FontSize: 28, FontFamily: "sans-serif", Text: "Welcome to the board",
			},
			{
				ID: diamondID, Type: TypeDiamond,
				X: 160, Y: 360, Width: 120, Height: 120,
				Fill: "#53d769", Stroke: "#2d6a4f", StrokeWidth: 2, Alpha: 1,
			},
			{
				ID: triangleID, Type: TypeTriangle,
				X: 320, Y: 360, Width: 120, Height: 100,
				Fill: "#f5a623", Stroke: "#c78400", StrokeWidth: 2, Alpha: 1,
			},
			{
				ID: groupID, Type: TypeGroup,
				X: 160, Y: 360, Width: 280, Height: 120,
				Children: []string{diamondID, triangleID},
				Alpha:    1,
			},
		},
	}
}

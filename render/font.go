package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
	// Plate draws a filled box in the bounding box color behind the label.
	// When false the label is drawn in the bounding box color instead.
	Plate bool
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
		Plate:     true,
	}
}

// PlainFont returns font settings for labels drawn directly above the box
// with no background plate
func PlainFont() Font {
	f := DefaultFont()
	f.Thickness = 2
	f.LeftPad = 0
	f.RightPad = 0
	f.TopPad = 0
	f.BottomPad = 10
	f.Plate = false
	return f
}

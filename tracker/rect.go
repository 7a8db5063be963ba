package tracker

import (
	"image"

	"gonum.org/v1/gonum/floats"
)

// Tlwh (top, left, width, height) represents a 1x4 matrix
type Tlwh []float32

// Rect represents a rectangle with Tlwh (top, left, width, height) format
type Rect struct {
	Tlwh Tlwh
}

// NewRect creates a new Rect with given coordinates
func NewRect(x, y, width, height float32) Rect {
	return Rect{
		Tlwh: Tlwh{x, y, width, height},
	}
}

// RectFromImage converts an image.Rectangle as returned by OpenCV into a Rect
func RectFromImage(r image.Rectangle) Rect {
	return NewRect(float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()),
		float32(r.Dy()))
}

// X returns the x coordinate of the rectangle
func (r Rect) X() float32 {
	return r.Tlwh[0]
}

// Y returns the y coordinate of the rectangle
func (r Rect) Y() float32 {
	return r.Tlwh[1]
}

// Width returns the width of the rectangle
func (r Rect) Width() float32 {
	return r.Tlwh[2]
}

// Height returns the height of the rectangle
func (r Rect) Height() float32 {
	return r.Tlwh[3]
}

// BRX returns the bottom-right x coordinate of the rectangle
func (r Rect) BRX() float32 {
	return r.Tlwh[0] + r.Tlwh[2]
}

// BRY returns the bottom-right y coordinate of the rectangle
func (r Rect) BRY() float32 {
	return r.Tlwh[1] + r.Tlwh[3]
}

// Area returns the area of the rectangle
func (r Rect) Area() float32 {
	return r.Tlwh[2] * r.Tlwh[3]
}

// AspectRatio returns width divided by height, or zero for a rectangle with
// no height
func (r Rect) AspectRatio() float32 {
	if r.Tlwh[3] == 0 {
		return 0
	}

	return r.Tlwh[2] / r.Tlwh[3]
}

// Centre returns the center point of the rectangle
func (r Rect) Centre() (float32, float32) {
	return r.Tlwh[0] + r.Tlwh[2]/2, r.Tlwh[1] + r.Tlwh[3]/2
}

// CentreDistance returns the euclidean distance between the center points of
// two rectangles
func (r Rect) CentreDistance(other Rect) float64 {

	x1, y1 := r.Centre()
	x2, y2 := other.Centre()

	return floats.Distance(
		[]float64{float64(x1), float64(y1)},
		[]float64{float64(x2), float64(y2)},
		2,
	)
}

// Image converts the rectangle to an image.Rectangle for drawing or passing
// to OpenCV, coordinates are truncated to whole pixels
func (r Rect) Image() image.Rectangle {
	x, y := int(r.Tlwh[0]), int(r.Tlwh[1])
	return image.Rect(x, y, x+int(r.Tlwh[2]), y+int(r.Tlwh[3]))
}

// Clamp returns the part of the rectangle that lies within a frame of the
// given dimensions
func (r Rect) Clamp(width, height int) Rect {
	clipped := r.Image().Intersect(image.Rect(0, 0, width, height))
	return RectFromImage(clipped)
}

// Scale multiplies all coordinates by the given factor
func (r Rect) Scale(factor float32) Rect {
	return NewRect(r.Tlwh[0]*factor, r.Tlwh[1]*factor, r.Tlwh[2]*factor,
		r.Tlwh[3]*factor)
}

// CalcIoU calculates the Intersection over Union (IoU) with another rectangle
func (r Rect) CalcIoU(other Rect) float32 {

	iw := min(r.BRX(), other.BRX()) - max(r.X(), other.X())

	if iw <= 0 {
		return 0
	}

	ih := min(r.BRY(), other.BRY()) - max(r.Y(), other.Y())

	if ih <= 0 {
		return 0
	}

	inter := iw * ih

	return inter / (r.Area() + other.Area() - inter)
}

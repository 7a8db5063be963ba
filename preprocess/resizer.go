package preprocess

import (
	"image"

	"github.com/swdee/go-cvtrack/tracker"
	"gocv.io/x/gocv"
)

// Resizer defines the struct used for downscaling video frames before
// running a detector on them, which speeds up detectors such as HOG on high
// resolution video
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// maxWidth is the largest width a frame is scaled to
	maxWidth int
	// scale is the factor applied to the source dimensions
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewResizer returns a resizer used for scaling frames of the given size to
// at most maxWidth pixels wide whilst maintaining image aspect.  A maxWidth of
// zero or wider than the source disables scaling.
func NewResizer(srcWidth, srcHeight, maxWidth int) *Resizer {
	r := &Resizer{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		maxWidth:  maxWidth,
	}

	// precalculate scaling dimensions
	r.preCalc()

	return r
}

// preCalc the scaling factor and destination size
func (r *Resizer) preCalc() {

	r.scale = 1
	r.resizeW = r.srcWidth
	r.resizeH = r.srcHeight

	if r.maxWidth <= 0 || r.srcWidth <= r.maxWidth || r.srcWidth == 0 {
		return
	}

	r.scale = float32(r.maxWidth) / float32(r.srcWidth)
	r.resizeW = r.maxWidth
	r.resizeH = int(float32(r.srcHeight) * r.scale)
}

// Active returns true if frames are scaled
func (r *Resizer) Active() bool {
	return r.scale != 1
}

// Resize scales the source image into dest.  When scaling is not active the
// source is copied.
func (r *Resizer) Resize(src gocv.Mat, dest *gocv.Mat) {

	if !r.Active() {
		src.CopyTo(dest)
		return
	}

	gocv.Resize(src, dest, image.Pt(r.resizeW, r.resizeH), 0, 0,
		gocv.InterpolationArea)
}

// ToSource maps a rectangle found on the resized image back to coordinates
// on the source image
func (r *Resizer) ToSource(rect image.Rectangle) image.Rectangle {

	if !r.Active() {
		return rect
	}

	return tracker.RectFromImage(rect).Scale(1 / r.scale).
		Clamp(r.srcWidth, r.srcHeight).Image()
}

// ScaleFactor returns the scale factor applied to the source image
func (r *Resizer) ScaleFactor() float32 {
	return r.scale
}

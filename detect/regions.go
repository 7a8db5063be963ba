package detect

import (
	"image"

	"github.com/swdee/go-cvtrack/tracker"
	"gocv.io/x/gocv"
)

// region is a candidate object found from the contours of a mask
type region struct {
	rect image.Rectangle
	area float64
}

// newKernel returns a square structuring element used to clean masks
func newKernel(size int) gocv.Mat {
	if size < 1 {
		size = 1
	}

	return gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
}

// cleanMask removes speckle noise from a binary mask with a morphological
// open, then fills small holes with a close
func cleanMask(mask *gocv.Mat, kernel gocv.Mat) {
	gocv.MorphologyEx(*mask, mask, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(*mask, mask, gocv.MorphClose, kernel)
}

// findRegions returns the bounding boxes of the external contours in the
// mask with an area larger than minArea that pass the accept filter
func findRegions(mask gocv.Mat, minArea float64,
	accept func(r image.Rectangle) bool) []region {

	contours := gocv.FindContours(mask, gocv.RetrievalExternal,
		gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]region, 0)

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)

		// filter small contours
		if area <= minArea {
			continue
		}

		rect := gocv.BoundingRect(contour)

		if !accept(rect) {
			continue
		}

		regions = append(regions, region{rect: rect, area: area})
	}

	return regions
}

// aspectWithin checks width/height lies strictly between min and max
func aspectWithin(r image.Rectangle, min, max float64) bool {
	if r.Dy() == 0 {
		return false
	}

	aspect := float64(r.Dx()) / float64(r.Dy())
	return aspect > min && aspect < max
}

// largest returns the region with the biggest contour area
func largest(regions []region) (region, bool) {

	var best region
	found := false

	for _, r := range regions {
		if r.area > best.area {
			best = r
			found = true
		}
	}

	return best, found
}

// rects returns the bounding boxes of the regions
func rects(regions []region) []image.Rectangle {
	out := make([]image.Rectangle, len(regions))

	for i, r := range regions {
		out[i] = r.rect
	}

	return out
}

// dropOverlaps removes boxes whose IoU with an earlier kept box is above
// maxIoU
func dropOverlaps(boxes []image.Rectangle, maxIoU float32) []image.Rectangle {

	if maxIoU <= 0 {
		return boxes
	}

	kept := make([]image.Rectangle, 0, len(boxes))

next:
	for _, box := range boxes {
		r := tracker.RectFromImage(box)

		for _, k := range kept {
			if r.CalcIoU(tracker.RectFromImage(k)) > maxIoU {
				continue next
			}
		}

		kept = append(kept, box)
	}

	return kept
}

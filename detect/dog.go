package detect

import (
	"image"

	log "github.com/sirupsen/logrus"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/render"
	"github.com/swdee/go-cvtrack/tracker"
	"gocv.io/x/gocv"
)

// Dog finds the largest region of dog colored pixels and follows it with a
// single KCF tracker.  Detection only runs while nothing is being tracked.
type Dog struct {
	params DogParams
	tracks *tracker.Set
	kernel gocv.Mat
	hsv    gocv.Mat
	mask   gocv.Mat
	lower  gocv.Scalar
	upper  gocv.Scalar
	font   render.Font
}

// NewDog returns a color based dog detector
func NewDog(params DogParams) *Dog {
	return &Dog{
		params: params,
		tracks: tracker.NewSet(),
		kernel: newKernel(params.KernelSize),
		hsv:    gocv.NewMat(),
		mask:   gocv.NewMat(),
		lower: gocv.NewScalar(params.Color.Lower[0], params.Color.Lower[1],
			params.Color.Lower[2], 0),
		upper: gocv.NewScalar(params.Color.Upper[0], params.Color.Upper[1],
			params.Color.Upper[2], 0),
		font: render.PlainFont(),
	}
}

// Target returns cvtrack.Dog
func (d *Dog) Target() cvtrack.Target {
	return cvtrack.Dog
}

// Reset drops the tracked dog for a new video
func (d *Dog) Reset(width, height int) {
	d.tracks.Reset()
}

// Process tracks the dog if one has been found, otherwise searches the frame
// for a dog colored region to start tracking
func (d *Dog) Process(frameNum int, frame gocv.Mat, canvas *gocv.Mat) cvtrack.FrameStats {

	var stats cvtrack.FrameStats

	if d.tracks.Len() > 0 {
		tracks, lost := d.tracks.Update(frame)
		stats.Tracked = len(tracks)
		stats.Lost = lost

		for _, t := range tracks {
			render.Box(canvas, t.GetRect().Image(), "Dog", render.Green, d.font, 2)
		}
	}

	if d.tracks.Len() > 0 && frameNum != 1 {
		return stats
	}

	rect, ok := d.detect(frame)

	if !ok {
		return stats
	}

	stats.Detections = 1

	render.Box(canvas, rect, "Dog Detected", render.Blue, d.font, 2)

	// only a single dog is tracked
	d.tracks.Clear()

	if _, err := d.tracks.Start(frame, rect, "Dog"); err != nil {
		log.Printf("Error creating dog tracker: %v", err)
		return stats
	}

	stats.Started = 1

	return stats
}

// detect returns the bounding box of the largest dog colored region
func (d *Dog) detect(frame gocv.Mat) (image.Rectangle, bool) {

	// convert to HSV for color detection
	gocv.CvtColor(frame, &d.hsv, gocv.ColorBGRToHSV)
	gocv.InRangeWithScalar(d.hsv, d.lower, d.upper, &d.mask)

	cleanMask(&d.mask, d.kernel)

	regions := findRegions(d.mask, d.params.MinArea, d.accept)

	best, ok := largest(regions)
	return best.rect, ok
}

// accept checks the shape of a candidate region is plausible for a dog
func (d *Dog) accept(r image.Rectangle) bool {
	return aspectWithin(r, d.params.MinAspect, d.params.MaxAspect) &&
		r.Dx() > d.params.MinWidth && r.Dy() > d.params.MinHeight
}

// Close frees the OpenCV resources
func (d *Dog) Close() error {
	d.tracks.Reset()
	d.hsv.Close()
	d.mask.Close()
	return d.kernel.Close()
}

package detect

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/render"
	"github.com/swdee/go-cvtrack/tracker"
	"gocv.io/x/gocv"
)

// cascadeScaleImage is the OpenCV CASCADE_SCALE_IMAGE flag
const cascadeScaleImage = 2

// Car detects cars with a Haar cascade classifier, falling back to MOG2
// background subtraction to find moving vehicles when the cascade is not
// available or finds nothing.  Detected cars are followed with KCF trackers.
type Car struct {
	params        CarParams
	cascade       gocv.CascadeClassifier
	cascadeLoaded bool
	bgSubtractor  gocv.BackgroundSubtractorMOG2
	tracks        *tracker.Set
	kernel        gocv.Mat
	gray          gocv.Mat
	fgMask        gocv.Mat
	width         int
	height        int
	font          render.Font
	footerFont    render.Font
	// findMotion returns moving regions shaped like a car
	findMotion func(frame gocv.Mat) []image.Rectangle
	// now returns the time written in the footer
	now func() time.Time
}

// NewCar returns a cascade and motion based car detector.  Failure to load
// the cascade is logged and the detector runs on motion alone.
func NewCar(params CarParams) *Car {

	c := &Car{
		params:  params,
		cascade: gocv.NewCascadeClassifier(),
		bgSubtractor: gocv.NewBackgroundSubtractorMOG2WithParams(params.History,
			params.VarThreshold, params.DetectShadows),
		tracks:     tracker.NewSet(),
		kernel:     newKernel(params.KernelSize),
		gray:       gocv.NewMat(),
		fgMask:     gocv.NewMat(),
		font:       render.PlainFont(),
		footerFont: render.DefaultFont(),
		now:        time.Now,
	}

	c.cascadeLoaded = c.loadCascade(params.CascadePath)
	c.findMotion = c.detectMotion

	return c
}

// loadCascade loads the classifier from the XML file
func (c *Car) loadCascade(path string) bool {

	if path == "" {
		log.Printf("No car cascade classifier configured, using motion detection only")
		return false
	}

	if _, err := os.Stat(path); err != nil {
		log.Printf("Unable to find cascade classifier file: %s", path)
		return false
	}

	if !c.cascade.Load(path) {
		log.Printf("Error loading cascade classifier: %s", path)
		return false
	}

	return true
}

// CascadeLoaded returns true if the Haar cascade is in use
func (c *Car) CascadeLoaded() bool {
	return c.cascadeLoaded
}

// Target returns cvtrack.Car
func (c *Car) Target() cvtrack.Target {
	return cvtrack.Car
}

// Reset clears all tracks and the background model for a new video
func (c *Car) Reset(width, height int) {
	c.tracks.Reset()
	c.width = width
	c.height = height

	// the background model belongs to the previous video
	c.bgSubtractor.Close()
	c.bgSubtractor = gocv.NewBackgroundSubtractorMOG2WithParams(c.params.History,
		c.params.VarThreshold, c.params.DetectShadows)
}

// Process runs detection on the first frame, every DetectionInterval frames
// and whenever nothing is tracked, then updates the trackers.  If every
// tracker has been lost motion detection is retried every MotionInterval
// frames.
func (c *Car) Process(frameNum int, frame gocv.Mat, canvas *gocv.Mat) cvtrack.FrameStats {

	var stats cvtrack.FrameStats

	if c.detectionDue(frameNum) {
		// restart tracking from fresh detections
		c.tracks.Clear()

		regions := c.detectCascade(frame)

		if len(regions) == 0 {
			regions = c.findMotion(frame)
		}

		stats.Detections += len(regions)
		stats.Started += c.startTracks(frame, canvas, regions, "Car Detected", render.Red)
	}

	// update all trackers, keeping those that succeeded
	tracks, lost := c.tracks.Update(frame)
	stats.Tracked = len(tracks)
	stats.Lost = lost

	for _, t := range tracks {
		render.Box(canvas, t.GetRect().Image(), "Car", render.Green, c.font, 2)
	}

	// nothing tracked so look for moving cars
	if c.tracks.Len() == 0 && c.params.MotionInterval > 0 &&
		frameNum%c.params.MotionInterval == 0 {

		regions := c.findMotion(frame)
		stats.Detections += len(regions)
		stats.Started += c.startTracks(frame, canvas, regions, "Moving Car", render.Blue)
	}

	if c.params.Footer {
		render.Footer(canvas, fmt.Sprintf("Frame: %d | Time: %s", frameNum,
			c.now().Format("2006-01-02 15:04:05")), c.footerFont)
	}

	return stats
}

// detectionDue returns true if a full detection should run on this frame
func (c *Car) detectionDue(frameNum int) bool {
	return frameNum == 1 || c.tracks.Len() == 0 ||
		(c.params.DetectionInterval > 0 && frameNum%c.params.DetectionInterval == 0)
}

// startTracks creates a tracker for each region and draws its detection box
func (c *Car) startTracks(frame gocv.Mat, canvas *gocv.Mat,
	regions []image.Rectangle, label string, clr color.RGBA) int {

	started := 0

	for _, r := range dropOverlaps(regions, c.params.MaxOverlap) {
		if _, err := c.tracks.Start(frame, r, "Car"); err != nil {
			log.Printf("Error creating car tracker: %v", err)
			continue
		}

		started++
		render.Box(canvas, r, label, clr, c.font, 2)
	}

	return started
}

// detectCascade runs the Haar cascade on the grayscale frame
func (c *Car) detectCascade(frame gocv.Mat) []image.Rectangle {

	if !c.cascadeLoaded {
		return nil
	}

	gocv.CvtColor(frame, &c.gray, gocv.ColorBGRToGray)

	found := c.cascade.DetectMultiScaleWithParams(c.gray, c.params.ScaleFactor,
		c.params.MinNeighbors, cascadeScaleImage,
		image.Pt(c.params.MinSize, c.params.MinSize), image.Pt(0, 0))

	cars := make([]image.Rectangle, 0, len(found))

	for _, r := range found {
		if c.acceptCascade(r) {
			cars = append(cars, r)
		}
	}

	return cars
}

// acceptCascade filters cascade hits that are too small or cover more than
// half the frame
func (c *Car) acceptCascade(r image.Rectangle) bool {
	return r.Dx() > c.params.MinBoxSize && r.Dy() > c.params.MinBoxSize &&
		2*r.Dx() < c.width && 2*r.Dy() < c.height
}

// detectMotion applies background subtraction and returns moving regions
// shaped like a car
func (c *Car) detectMotion(frame gocv.Mat) []image.Rectangle {

	c.bgSubtractor.Apply(frame, &c.fgMask)
	cleanMask(&c.fgMask, c.kernel)

	return rects(findRegions(c.fgMask, c.params.MinMotionArea, c.acceptMotion))
}

// acceptMotion checks the shape of a moving region is plausible for a car
func (c *Car) acceptMotion(r image.Rectangle) bool {
	return aspectWithin(r, c.params.MinAspect, c.params.MaxAspect) &&
		r.Dx() > c.params.MinMotionWidth && r.Dy() > c.params.MinMotionHeight &&
		2*r.Dx() < c.width && 2*r.Dy() < c.height
}

// Close frees the classifier, background model and trackers
func (c *Car) Close() error {
	c.tracks.Reset()
	c.gray.Close()
	c.fgMask.Close()
	c.kernel.Close()
	c.bgSubtractor.Close()
	return c.cascade.Close()
}

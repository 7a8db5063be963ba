package detect

import (
	"fmt"
	"image"

	log "github.com/sirupsen/logrus"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/preprocess"
	"github.com/swdee/go-cvtrack/render"
	"github.com/swdee/go-cvtrack/tracker"
	"gocv.io/x/gocv"
)

// Human detects people with the OpenCV HOG pedestrian descriptor and follows
// up to MaxTracks of them with KCF trackers
type Human struct {
	params HumanParams
	hog    gocv.HOGDescriptor
	tracks *tracker.Set
	trail  *tracker.Trail
	// resizer downscales frames before running HOG
	resizer *preprocess.Resizer
	small   gocv.Mat
	font    render.Font
	// findPeople returns the bounding boxes of people in the frame
	findPeople func(frame gocv.Mat) []image.Rectangle
}

// NewHuman returns a HOG based people detector
func NewHuman(params HumanParams) *Human {

	hog := gocv.NewHOGDescriptor()

	people := gocv.HOGDefaultPeopleDetector()
	defer people.Close()

	// the descriptor keeps its own copy of the SVM coefficients
	if err := hog.SetSVMDetector(people); err != nil {
		log.Printf("Error setting HOG people detector: %v", err)
	}

	h := &Human{
		params:  params,
		hog:     hog,
		tracks:  tracker.NewSet(),
		resizer: preprocess.NewResizer(0, 0, 0),
		small:   gocv.NewMat(),
		font:    render.PlainFont(),
	}

	h.findPeople = h.detect

	if params.TrailLength > 0 {
		h.trail = tracker.NewTrail(params.TrailLength)
	}

	return h
}

// Target returns cvtrack.Human
func (h *Human) Target() cvtrack.Target {
	return cvtrack.Human
}

// Reset clears all tracks for a new video
func (h *Human) Reset(width, height int) {
	h.tracks.Reset()
	h.resizer = preprocess.NewResizer(width, height, h.params.DetectWidth)

	if h.trail != nil {
		h.trail.Reset()
	}
}

// Process updates the existing tracks and, on detection frames or when
// below the track limit, runs HOG to start tracking new people
func (h *Human) Process(frameNum int, frame gocv.Mat, canvas *gocv.Mat) cvtrack.FrameStats {

	var stats cvtrack.FrameStats

	// update all trackers, failed ones are dropped
	tracks, lost := h.tracks.Update(frame)
	stats.Tracked = len(tracks)
	stats.Lost = lost

	if h.trail != nil {
		// drop the history of lost tracks
		h.trail.Prune(tracks)

		for _, t := range tracks {
			h.trail.Add(t)
		}

		render.Trail(canvas, tracks, h.trail, render.DefaultTrailStyle())
	}

	render.TrackerBoxes(canvas, tracks, render.TrackStyle{
		Text: func(t *tracker.Track) string {
			return fmt.Sprintf("ID: %d", t.GetTrackID())
		},
	}, h.font, 2)

	// detect periodically or when there is room for more tracks
	if !h.detectionDue(frameNum) {
		return stats
	}

	boxes := h.findPeople(frame)
	stats.Detections = len(boxes)

	for _, box := range h.newBoxes(boxes) {
		if h.tracks.Len() >= h.params.MaxTracks {
			break
		}

		if _, err := h.tracks.Start(frame, box, "person"); err != nil {
			log.Printf("Error creating person tracker: %v", err)
			continue
		}

		stats.Started++

		// draw detection box
		render.Box(canvas, box, "", render.Red, h.font, 2)
	}

	return stats
}

// detectionDue returns true if HOG should run on this frame
func (h *Human) detectionDue(frameNum int) bool {
	return (h.params.DetectionInterval > 0 && frameNum%h.params.DetectionInterval == 0) ||
		h.tracks.Len() < h.params.MaxTracks
}

// detect runs the HOG people detector on the frame
func (h *Human) detect(frame gocv.Mat) []image.Rectangle {

	img := frame

	if h.resizer.Active() {
		h.resizer.Resize(frame, &h.small)
		img = h.small
	}

	found := h.hog.DetectMultiScaleWithParams(img, h.params.HitThreshold,
		image.Pt(h.params.WinStride, h.params.WinStride),
		image.Pt(h.params.Padding, h.params.Padding),
		h.params.Scale, h.params.GroupThreshold, false)

	boxes := make([]image.Rectangle, 0, len(found))

	for _, box := range found {
		boxes = append(boxes, h.resizer.ToSource(box))
	}

	return boxes
}

// newBoxes filters out detections whose center is within MinDistance of an
// object already being tracked
func (h *Human) newBoxes(boxes []image.Rectangle) []image.Rectangle {

	fresh := make([]image.Rectangle, 0, len(boxes))

	for _, box := range boxes {
		if h.tracks.Near(tracker.RectFromImage(box), h.params.MinDistance) {
			continue
		}

		fresh = append(fresh, box)
	}

	return fresh
}

// Close frees the HOG descriptor and trackers
func (h *Human) Close() error {
	h.tracks.Reset()
	h.small.Close()
	return h.hog.Close()
}

package cvtrack

import "gocv.io/x/gocv"

// FrameStats are the counts recorded by a Detector for a single frame
type FrameStats struct {
	// Detections is the number of objects found by the detection stage
	Detections int
	// Started is the number of new trackers initialised
	Started int
	// Tracked is the number of trackers that successfully updated
	Tracked int
	// Lost is the number of trackers dropped after failing to update
	Lost int
}

// Add the counts of other to the stats
func (f *FrameStats) Add(other FrameStats) {
	f.Detections += other.Detections
	f.Started += other.Started
	f.Tracked += other.Tracked
	f.Lost += other.Lost
}

// Detector finds and tracks one Target class through the frames of a video.
// A Detector is stateful and not safe for concurrent use, it holds the
// trackers for the video currently being processed.
type Detector interface {
	// Target returns the class of object detected
	Target() Target
	// Reset discards all tracker state and prepares the detector for a new
	// video with the given frame dimensions
	Reset(width, height int)
	// Process runs detection and tracking on the frame and draws the results
	// onto canvas.  frameNum starts at 1 for the first frame of the video
	Process(frameNum int, frame gocv.Mat, canvas *gocv.Mat) FrameStats
	// Close frees all OpenCV resources held by the detector
	Close() error
}

package cvtrack

import (
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"gocv.io/x/gocv"
)

// fakeDetector draws a fixed box on every frame and records calls made to it
type fakeDetector struct {
	mu     sync.Mutex
	target Target
	width  int
	height int
	frames []int
	resets int
	closed int
	// onFrame is called after each frame is processed
	onFrame func(frameNum int)
}

func (f *fakeDetector) Target() Target {
	return f.target
}

func (f *fakeDetector) Reset(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.width = width
	f.height = height
	f.frames = nil
	f.resets++
}

func (f *fakeDetector) Process(frameNum int, frame gocv.Mat, canvas *gocv.Mat) FrameStats {
	f.mu.Lock()
	f.frames = append(f.frames, frameNum)
	f.mu.Unlock()

	gocv.Rectangle(canvas, image.Rect(10, 10, 50, 50),
		color.RGBA{G: 255, A: 255}, 4)

	if f.onFrame != nil {
		f.onFrame(frameNum)
	}

	return FrameStats{Detections: 1, Tracked: 1}
}

func (f *fakeDetector) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed++
	return nil
}

// writeTestVideo creates an MJPG encoded AVI file of solid gray frames
func writeTestVideo(t *testing.T, frames, width, height int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.avi")

	writer, err := gocv.VideoWriterFile(path, "MJPG", 25, width, height, true)

	if err != nil {
		t.Fatalf("error creating test video: %v", err)
	}

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0),
		height, width, gocv.MatTypeCV8UC3)
	defer img.Close()

	for i := 0; i < frames; i++ {
		if err := writer.Write(img); err != nil {
			t.Fatalf("error writing test video frame: %v", err)
		}
	}

	writer.Close()

	return path
}

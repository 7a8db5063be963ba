package detect

import (
	"errors"
	"image"
	"image/color"
	"testing"

	cvtrack "github.com/swdee/go-cvtrack"
	"gocv.io/x/gocv"
)

var (
	orange = color.RGBA{R: 255, G: 128, B: 0, A: 255}
	blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// stubTracker always follows the box it was initialised with
type stubTracker struct {
	rect image.Rectangle
}

func (s *stubTracker) Init(img gocv.Mat, box image.Rectangle) bool {
	s.rect = box
	return true
}

func (s *stubTracker) Update(img gocv.Mat) (image.Rectangle, bool) {
	return s.rect, true
}

func (s *stubTracker) Close() error {
	return nil
}

func newStubTracker() gocv.Tracker {
	return &stubTracker{}
}

// lostTracker initialises on any box but never finds the object again
type lostTracker struct{}

func (lostTracker) Init(img gocv.Mat, box image.Rectangle) bool {
	return true
}

func (lostTracker) Update(img gocv.Mat) (image.Rectangle, bool) {
	return image.Rectangle{}, false
}

func (lostTracker) Close() error {
	return nil
}

func newLostTracker() gocv.Tracker {
	return lostTracker{}
}

// newFrame returns a black BGR frame with filled rectangles drawn on it
func newFrame(width, height int, boxes map[image.Rectangle]color.RGBA) gocv.Mat {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)

	for r, clr := range boxes {
		gocv.Rectangle(&frame, r, clr, -1)
	}

	return frame
}

// near checks two rectangles match within a tolerance of a few pixels
func near(a, b image.Rectangle) bool {
	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}

	return abs(a.Min.X-b.Min.X) <= 2 && abs(a.Min.Y-b.Min.Y) <= 2 &&
		abs(a.Max.X-b.Max.X) <= 2 && abs(a.Max.Y-b.Max.Y) <= 2
}

func TestNew(t *testing.T) {

	params := DefaultParams()
	params.Car.CascadePath = ""

	for _, target := range cvtrack.Targets() {
		det, err := New(target, params)

		if err != nil {
			t.Fatalf("unexpected error creating %s detector: %v", target, err)
		}

		if det.Target() != target {
			t.Errorf("expected %s detector, got %s", target, det.Target())
		}

		if err := det.Close(); err != nil {
			t.Errorf("error closing %s detector: %v", target, err)
		}
	}

	if _, err := New(cvtrack.Target("cat"), params); !errors.Is(err, cvtrack.ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestAspectWithin(t *testing.T) {

	tests := []struct {
		rect     image.Rectangle
		expected bool
	}{
		{image.Rect(0, 0, 100, 100), true},
		{image.Rect(0, 0, 50, 100), false},
		{image.Rect(0, 0, 51, 100), true},
		{image.Rect(0, 0, 200, 100), false},
		{image.Rect(0, 0, 10, 0), false},
	}

	for _, tc := range tests {
		if got := aspectWithin(tc.rect, 0.5, 2.0); got != tc.expected {
			t.Errorf("aspectWithin(%v) = %v, expected %v", tc.rect, got, tc.expected)
		}
	}
}

func TestLargest(t *testing.T) {

	if _, ok := largest(nil); ok {
		t.Errorf("expected no region from empty list")
	}

	best, ok := largest([]region{
		{rect: image.Rect(0, 0, 10, 10), area: 100},
		{rect: image.Rect(0, 0, 50, 50), area: 2500},
		{rect: image.Rect(0, 0, 20, 20), area: 400},
	})

	if !ok || best.area != 2500 {
		t.Errorf("expected largest region of area 2500, got %v", best)
	}
}

func TestDropOverlaps(t *testing.T) {

	boxes := []image.Rectangle{
		image.Rect(0, 0, 100, 100),
		// IoU 0.81 with the first box
		image.Rect(5, 5, 105, 105),
		// IoU 1/3 with the first box
		image.Rect(50, 0, 150, 100),
		image.Rect(300, 300, 400, 400),
	}

	got := dropOverlaps(boxes, 0.5)
	expected := []image.Rectangle{boxes[0], boxes[2], boxes[3]}

	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}

	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("box %d: expected %v, got %v", i, expected[i], got[i])
		}
	}

	if got := dropOverlaps(boxes, 0); len(got) != len(boxes) {
		t.Errorf("expected all boxes kept when disabled, got %v", got)
	}
}

package tracker

import (
	"errors"
	"image"
	"testing"

	"gocv.io/x/gocv"
)

// stubTracker is a gocv.Tracker that follows a scripted list of results so
// tracks can be tested without image content
type stubTracker struct {
	initOK  bool
	results []bool
	rect    image.Rectangle
	closed  *int
}

func (s *stubTracker) Init(img gocv.Mat, box image.Rectangle) bool {
	s.rect = box
	return s.initOK
}

func (s *stubTracker) Update(img gocv.Mat) (image.Rectangle, bool) {
	if len(s.results) == 0 {
		return s.rect, true
	}

	ok := s.results[0]
	s.results = s.results[1:]
	s.rect = s.rect.Add(image.Pt(1, 1))

	return s.rect, ok
}

func (s *stubTracker) Close() error {
	*s.closed++
	return nil
}

func TestSetStartAndUpdate(t *testing.T) {

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	closed := 0
	scripts := [][]bool{
		{true, true},
		{false},
		{true, false},
	}
	next := 0

	set := NewSetWithTracker(func() gocv.Tracker {
		tr := &stubTracker{initOK: true, results: scripts[next], closed: &closed}
		next++
		return tr
	})

	for i := 0; i < 3; i++ {
		track, err := set.Start(frame, image.Rect(i*100, 10, i*100+50, 60), "obj")

		if err != nil {
			t.Fatalf("unexpected start error: %v", err)
		}

		if track.GetTrackID() != i+1 {
			t.Errorf("expected track id %d, got %d", i+1, track.GetTrackID())
		}
	}

	tracks, lost := set.Update(frame)

	if lost != 1 || len(tracks) != 2 {
		t.Fatalf("frame 1: expected 2 tracks and 1 lost, got %d and %d", len(tracks), lost)
	}

	if tracks[0].GetTrackID() != 1 || tracks[1].GetTrackID() != 3 {
		t.Errorf("unexpected surviving ids %d, %d", tracks[0].GetTrackID(), tracks[1].GetTrackID())
	}

	if tracks[0].GetHits() != 1 || tracks[1].GetHits() != 1 {
		t.Errorf("expected one hit per surviving track, got %d, %d",
			tracks[0].GetHits(), tracks[1].GetHits())
	}

	if got := tracks[0].GetRect().Image(); got != image.Rect(1, 11, 51, 61) {
		t.Errorf("expected track to move, got %v", got)
	}

	tracks, lost = set.Update(frame)

	if lost != 1 || len(tracks) != 1 || set.Len() != 1 {
		t.Fatalf("frame 2: expected 1 track and 1 lost, got %d and %d", len(tracks), lost)
	}

	if closed != 2 {
		t.Errorf("expected 2 trackers closed, got %d", closed)
	}

	set.Reset()

	if set.Len() != 0 || closed != 3 {
		t.Errorf("expected empty set with all trackers closed, got len %d closed %d", set.Len(), closed)
	}
}

func TestSetStartFailures(t *testing.T) {

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	closed := 0

	set := NewSetWithTracker(func() gocv.Tracker {
		return &stubTracker{initOK: false, closed: &closed}
	})

	_, err := set.Start(frame, image.Rect(700, 500, 800, 600), "obj")

	if !errors.Is(err, ErrTrackerInit) {
		t.Errorf("expected ErrTrackerInit for box outside frame, got %v", err)
	}

	_, err = set.Start(frame, image.Rect(10, 10, 50, 50), "obj")

	if !errors.Is(err, ErrTrackerInit) {
		t.Errorf("expected ErrTrackerInit for failed init, got %v", err)
	}

	if closed != 1 {
		t.Errorf("expected failed tracker to be closed, got %d", closed)
	}

	if set.Len() != 0 {
		t.Errorf("expected no tracks, got %d", set.Len())
	}
}

func TestSetNear(t *testing.T) {

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	closed := 0
	set := NewSetWithTracker(func() gocv.Tracker {
		return &stubTracker{initOK: true, closed: &closed}
	})

	if _, err := set.Start(frame, image.Rect(100, 100, 200, 300), "obj"); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	if !set.Near(NewRect(120, 110, 100, 200), 50) {
		t.Errorf("expected box 22px away to be near")
	}

	if set.Near(NewRect(300, 100, 100, 200), 50) {
		t.Errorf("expected box 200px away to not be near")
	}
}

func TestTrail(t *testing.T) {

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	closed := 0
	set := NewSetWithTracker(func() gocv.Tracker {
		return &stubTracker{initOK: true, closed: &closed}
	})

	track, err := set.Start(frame, image.Rect(0, 0, 10, 10), "obj")

	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	trail := NewTrail(3)

	for i := 0; i < 5; i++ {
		trail.Add(track)
	}

	points := trail.GetPoints(track.GetTrackID())

	if len(points) != 3 {
		t.Fatalf("expected trail capped at 3 points, got %d", len(points))
	}

	if points[0] != (Point{X: 5, Y: 5}) {
		t.Errorf("expected center point 5,5 got %v", points[0])
	}

	trail.Forget(track.GetTrackID())

	if trail.GetPoints(track.GetTrackID()) != nil {
		t.Errorf("expected no points after forget")
	}
}

func TestTrailPrune(t *testing.T) {

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	closed := 0
	set := NewSetWithTracker(func() gocv.Tracker {
		return &stubTracker{initOK: true, closed: &closed}
	})

	trail := NewTrail(5)
	tracks := make([]*Track, 0)

	for i := 0; i < 3; i++ {
		track, err := set.Start(frame, image.Rect(i*100, 0, i*100+10, 10), "obj")

		if err != nil {
			t.Fatalf("unexpected start error: %v", err)
		}

		trail.Add(track)
		tracks = append(tracks, track)
	}

	trail.Prune(tracks[1:])

	if trail.GetPoints(tracks[0].GetTrackID()) != nil {
		t.Errorf("expected history of inactive track to be pruned")
	}

	for _, track := range tracks[1:] {
		if len(trail.GetPoints(track.GetTrackID())) != 1 {
			t.Errorf("expected history kept for active track %d", track.GetTrackID())
		}
	}

	trail.Prune(nil)

	if trail.GetPoints(tracks[2].GetTrackID()) != nil {
		t.Errorf("expected all history pruned with no active tracks")
	}
}

package tracker

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// ErrTrackerInit is returned when OpenCV fails to initialise a tracker on the
// given bounding box
var ErrTrackerInit = errors.New("tracker initialisation failed")

// Track is a single object being followed through the video by a KCF tracker
type Track struct {
	// id is the unique number of the track within the current video
	id int
	// label is the text drawn next to the tracked object
	label string
	// rect is the last known bounding box
	rect Rect
	// hits is the number of frames the object was successfully tracked
	hits int
	// tracker is the OpenCV tracker instance
	tracker gocv.Tracker
}

// GetTrackID returns the unique track id
func (t *Track) GetTrackID() int {
	return t.id
}

// GetLabel returns the track label
func (t *Track) GetLabel() string {
	return t.label
}

// GetRect returns the last known bounding box
func (t *Track) GetRect() Rect {
	return t.rect
}

// GetHits returns the number of successful tracker updates
func (t *Track) GetHits() int {
	return t.hits
}

// update moves the track to its position in the given frame
func (t *Track) update(frame gocv.Mat) bool {

	rect, ok := t.tracker.Update(frame)

	if !ok {
		return false
	}

	t.rect = RectFromImage(rect)
	t.hits++

	return true
}

// close frees the OpenCV tracker
func (t *Track) close() {
	if t.tracker != nil {
		t.tracker.Close()
		t.tracker = nil
	}
}

// NewTrackerFunc creates a new OpenCV tracker instance
type NewTrackerFunc func() gocv.Tracker

// NewKCF creates a Kernelized Correlation Filter tracker
func NewKCF() gocv.Tracker {
	return contrib.NewTrackerKCF()
}

// Set keeps the active tracks for a video.  Tracks are kept in the order
// they were started.
type Set struct {
	tracks     []*Track
	nextID     int
	newTracker NewTrackerFunc
}

// NewSet returns an empty set of tracks backed by KCF trackers
func NewSet() *Set {
	return NewSetWithTracker(NewKCF)
}

// NewSetWithTracker returns an empty set of tracks using the given tracker
// constructor
func NewSetWithTracker(fn NewTrackerFunc) *Set {
	return &Set{
		tracks:     make([]*Track, 0),
		nextID:     1,
		newTracker: fn,
	}
}

// Start a new track on the bounding box in the frame.  The box is clamped to
// the frame dimensions before initialising the tracker.
func (s *Set) Start(frame gocv.Mat, box image.Rectangle, label string) (*Track, error) {

	box = box.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))

	if box.Empty() {
		return nil, fmt.Errorf("%w: box outside frame", ErrTrackerInit)
	}

	tr := s.newTracker()

	if ok := tr.Init(frame, box); !ok {
		tr.Close()
		return nil, fmt.Errorf("%w: box %v", ErrTrackerInit, box)
	}

	track := &Track{
		id:      s.nextID,
		label:   label,
		rect:    RectFromImage(box),
		tracker: tr,
	}

	s.nextID++
	s.tracks = append(s.tracks, track)

	return track, nil
}

// Update all tracks with the new frame.  Tracks whose tracker fails to find
// the object are closed and removed.  Returns the surviving tracks and the
// number of tracks lost.
func (s *Set) Update(frame gocv.Mat) ([]*Track, int) {

	keep := make([]*Track, 0, len(s.tracks))
	lost := 0

	for _, track := range s.tracks {
		if track.update(frame) {
			keep = append(keep, track)
			continue
		}

		track.close()
		lost++
	}

	s.tracks = keep

	return s.Tracks(), lost
}

// Near checks if the center of the given box lies within minDist pixels of
// the center of any active track
func (s *Set) Near(box Rect, minDist float64) bool {

	for _, track := range s.tracks {
		if track.rect.CentreDistance(box) < minDist {
			return true
		}
	}

	return false
}

// Tracks returns a copy of the active tracks
func (s *Set) Tracks() []*Track {
	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Len returns the number of active tracks
func (s *Set) Len() int {
	return len(s.tracks)
}

// Clear closes and removes all active tracks, track ids keep incrementing
func (s *Set) Clear() {
	for _, track := range s.tracks {
		track.close()
	}

	s.tracks = s.tracks[:0]
}

// Reset clears all tracks and restarts track ids from one, used when
// starting a new video
func (s *Set) Reset() {
	s.Clear()
	s.nextID = 1
}

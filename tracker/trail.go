package tracker

import "sync"

// Point represents the x,y coordinates of the center box of a tracking
// rect/bounding box results
type Point struct {
	X, Y int
}

// history is the list of center points for one track
type history struct {
	points []Point
}

// Trail is the struct to keep a history of Track results used for drawing
// a trail
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points
	history map[int]*history
	sync.Mutex
}

// NewTrail returns a new trail history track instance.  Size is the number
// of most recent trails to keep and specifies the maximum length of the trail
// to maintain
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int]*history),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int]*history)
}

// Add a track to the history
func (t *Trail) Add(track *Track) {
	t.Lock()
	defer t.Unlock()

	// init map if no history exists yet for track id
	if _, exists := t.history[track.GetTrackID()]; !exists {
		t.history[track.GetTrackID()] = &history{}
	}

	h := t.history[track.GetTrackID()]

	// add bounding box/rect's center point to track history
	x, y := track.GetRect().Centre()

	h.points = append(h.points, Point{
		X: int(x),
		Y: int(y),
	})

	// check if history is exceeded and drop oldest point
	if len(h.points) > t.size {
		h.points = h.points[1:]
	}
}

// Forget removes the history of a track that is no longer active
func (t *Trail) Forget(id int) {
	t.Lock()
	defer t.Unlock()

	delete(t.history, id)
}

// Prune removes the history of every track not in the active list
func (t *Trail) Prune(active []*Track) {
	t.Lock()
	defer t.Unlock()

	keep := make(map[int]struct{}, len(active))

	for _, track := range active {
		keep[track.GetTrackID()] = struct{}{}
	}

	for id := range t.history {
		if _, ok := keep[id]; !ok {
			delete(t.history, id)
		}
	}
}

// GetPoints gets the point history for a specific track id
func (t *Trail) GetPoints(id int) []Point {
	t.Lock()
	defer t.Unlock()

	if h, exists := t.history[id]; exists {
		return h.points
	}

	// no history yet
	return nil
}

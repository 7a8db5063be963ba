package detect

// HSVRange is an inclusive range of OpenCV HSV values (H 0-180, S and V
// 0-255) used to build a color mask
type HSVRange struct {
	Lower [3]float64 `yaml:"lower"`
	Upper [3]float64 `yaml:"upper"`
}

// HumanParams are the HOG pedestrian detector and tracking parameters
type HumanParams struct {
	// WinStride is the HOG window step in pixels, used for x and y
	WinStride int `yaml:"win_stride"`
	// Padding is the HOG window padding in pixels, used for x and y
	Padding int `yaml:"padding"`
	// Scale is the HOG detection window scale coefficient
	Scale float64 `yaml:"scale"`
	// HitThreshold is the minimum SVM weight for a window to count as a
	// person
	HitThreshold float64 `yaml:"hit_threshold"`
	// GroupThreshold is the number of overlapping windows needed when
	// grouping detections
	GroupThreshold float64 `yaml:"group_threshold"`
	// DetectionInterval forces detection every N frames
	DetectionInterval int `yaml:"detection_interval"`
	// MaxTracks is the maximum number of people tracked at once
	MaxTracks int `yaml:"max_tracks"`
	// MinDistance is the minimum distance in pixels between the center of a
	// new detection and an existing track
	MinDistance float64 `yaml:"min_distance"`
	// DetectWidth downscales frames to this width before running HOG, zero
	// runs at full resolution
	DetectWidth int `yaml:"detect_width"`
	// TrailLength is the number of center points drawn behind each track,
	// zero disables trails
	TrailLength int `yaml:"trail_length"`
}

// DogParams are the color based dog detector parameters.  The default color
// range matches orange/yellow coats.
type DogParams struct {
	Color      HSVRange `yaml:"color"`
	KernelSize int      `yaml:"kernel_size"`
	// MinArea is the minimum contour area of a candidate region
	MinArea float64 `yaml:"min_area"`
	// MinAspect and MaxAspect are the exclusive bounds of width/height
	MinAspect float64 `yaml:"min_aspect"`
	MaxAspect float64 `yaml:"max_aspect"`
	// MinWidth and MinHeight are exclusive minimum region dimensions
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
}

// CarParams are the cascade and motion based car detector parameters
type CarParams struct {
	// CascadePath is the Haar cascade XML file, when it can not be loaded
	// only motion detection is used
	CascadePath  string  `yaml:"cascade_path"`
	ScaleFactor  float64 `yaml:"scale_factor"`
	MinNeighbors int     `yaml:"min_neighbors"`
	// MinSize is the smallest cascade window in pixels
	MinSize int `yaml:"min_size"`
	// MinBoxSize is the exclusive minimum width and height of a cascade
	// detection that is kept
	MinBoxSize int `yaml:"min_box_size"`
	// DetectionInterval forces detection every N frames
	DetectionInterval int `yaml:"detection_interval"`
	// MotionInterval is the frame interval motion detection runs on when
	// every track has been lost
	MotionInterval int `yaml:"motion_interval"`
	// MOG2 background subtractor
	History       int     `yaml:"history"`
	VarThreshold  float64 `yaml:"var_threshold"`
	DetectShadows bool    `yaml:"detect_shadows"`
	KernelSize    int     `yaml:"kernel_size"`
	// motion region filters, aspect and dimensions are exclusive bounds
	MinMotionArea   float64 `yaml:"min_motion_area"`
	MinAspect       float64 `yaml:"min_aspect"`
	MaxAspect       float64 `yaml:"max_aspect"`
	MinMotionWidth  int     `yaml:"min_motion_width"`
	MinMotionHeight int     `yaml:"min_motion_height"`
	// MaxOverlap drops a detection overlapping an earlier one with an IoU
	// above this value so a car gets a single tracker, zero disables
	MaxOverlap float32 `yaml:"max_overlap"`
	// Footer draws the frame number and time along the bottom of the video
	Footer bool `yaml:"footer"`
}

// Params holds the parameters of every detector
type Params struct {
	Human HumanParams `yaml:"human"`
	Dog   DogParams   `yaml:"dog"`
	Car   CarParams   `yaml:"car"`
}

// HumanDefaultParams returns the default HOG parameters
func HumanDefaultParams() HumanParams {
	return HumanParams{
		WinStride:         8,
		Padding:           8,
		Scale:             1.05,
		HitThreshold:      0.5,
		GroupThreshold:    2,
		DetectionInterval: 30,
		MaxTracks:         5,
		MinDistance:       50,
		DetectWidth:       0,
		TrailLength:       0,
	}
}

// DogDefaultParams returns the default color detection parameters
func DogDefaultParams() DogParams {
	return DogParams{
		Color: HSVRange{
			Lower: [3]float64{10, 100, 100},
			Upper: [3]float64{30, 255, 255},
		},
		KernelSize: 5,
		MinArea:    1000,
		MinAspect:  0.5,
		MaxAspect:  2.0,
		MinWidth:   30,
		MinHeight:  30,
	}
}

// CarDefaultParams returns the default cascade and motion parameters
func CarDefaultParams() CarParams {
	return CarParams{
		CascadePath:       "/usr/share/opencv4/haarcascades/haarcascade_car.xml",
		ScaleFactor:       1.1,
		MinNeighbors:      5,
		MinSize:           80,
		MinBoxSize:        60,
		DetectionInterval: 30,
		MotionInterval:    5,
		History:           100,
		VarThreshold:      50,
		DetectShadows:     false,
		KernelSize:        5,
		MinMotionArea:     2000,
		MinAspect:         0.8,
		MaxAspect:         3.0,
		MinMotionWidth:    80,
		MinMotionHeight:   60,
		MaxOverlap:        0.5,
		Footer:            true,
	}
}

// DefaultParams returns the default parameters of every detector
func DefaultParams() Params {
	return Params{
		Human: HumanDefaultParams(),
		Dog:   DogDefaultParams(),
		Car:   CarDefaultParams(),
	}
}

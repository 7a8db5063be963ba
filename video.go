package cvtrack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultFPS is used when the video container does not report a frame rate
	DefaultFPS = 30
)

var (
	// ErrOutputMissing is returned when the video writer finished without
	// producing an output file
	ErrOutputMissing = errors.New("output video file was not generated")
	// ErrNoCodec is returned when none of the configured codecs could open a
	// video writer
	ErrNoCodec = errors.New("no usable video codec")

	// DefaultCodecs are the FourCC codecs tried in order when opening the
	// output video writer.  H.264 is preferred as browsers can play it.
	DefaultCodecs = []string{"avc1", "mp4v"}
)

// VideoOptions are the parameters used when writing the annotated video
type VideoOptions struct {
	// Codecs is the list of FourCC codes to try in order, the first one
	// that opens a writer is used
	Codecs []string
}

// Result is the summary of a processed video
type Result struct {
	// OutputPath is the location of the annotated video
	OutputPath string
	// Codec is the FourCC code the output was written with
	Codec string
	// Width and Height are the frame dimensions
	Width  int
	Height int
	// FPS is the frame rate of the output video
	FPS float64
	// Frames is the number of frames read and written
	Frames int
	// Stats are the detection and tracking totals across all frames
	Stats FrameStats
	// Elapsed is the total processing time
	Elapsed time.Duration
	// MeanFrameTime is the average time spent running the detector per frame
	MeanFrameTime time.Duration
}

// ProcessVideo reads every frame of the video at inPath, runs the detector on
// it and writes the annotated frames to outPath.  The detector is Reset
// before the first frame so it can be reused across videos.
func ProcessVideo(ctx context.Context, det Detector, inPath, outPath string,
	opts VideoOptions) (*Result, error) {

	start := time.Now()

	// open handle to read frames of video file
	video, err := gocv.VideoCaptureFile(inPath)

	if err != nil {
		return nil, fmt.Errorf("error opening video %s: %w", inPath, err)
	}

	defer video.Close()

	if !video.IsOpened() {
		return nil, fmt.Errorf("error opening video %s: capture not opened", inPath)
	}

	// get video properties
	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))
	fps := float64(int(video.Get(gocv.VideoCaptureFPS)))

	if fps <= 0 {
		fps = DefaultFPS
	}

	writer, codec, err := openWriter(outPath, opts.Codecs, fps, width, height)

	if err != nil {
		return nil, err
	}

	res := &Result{
		OutputPath: outPath,
		Codec:      codec,
		Width:      width,
		Height:     height,
		FPS:        fps,
	}

	det.Reset(width, height)

	frame := gocv.NewMat()
	defer frame.Close()

	canvas := gocv.NewMat()
	defer canvas.Close()

	frameTimes := make([]float64, 0)
	var loopErr error

	for {
		if err := ctx.Err(); err != nil {
			loopErr = err
			break
		}

		// read the next frame from the video
		if ok := video.Read(&frame); !ok {
			// reached last video frame
			break
		}

		if frame.Empty() {
			continue
		}

		res.Frames++

		// annotate a copy so the detector and trackers see the raw frame
		frame.CopyTo(&canvas)

		frameStart := time.Now()
		res.Stats.Add(det.Process(res.Frames, frame, &canvas))
		frameTimes = append(frameTimes, float64(time.Since(frameStart)))

		if err := writer.Write(canvas); err != nil {
			loopErr = fmt.Errorf("error writing frame %d: %w", res.Frames, err)
			break
		}
	}

	// release the writer so the container is finalised before checking it
	writer.Close()

	if loopErr != nil {
		return nil, loopErr
	}

	if _, err := os.Stat(outPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOutputMissing, outPath)
	}

	if len(frameTimes) > 0 {
		res.MeanFrameTime = time.Duration(stat.Mean(frameTimes, nil))
	}

	res.Elapsed = time.Since(start)

	log.WithFields(log.Fields{
		"target":     det.Target(),
		"frames":     res.Frames,
		"detections": res.Stats.Detections,
		"started":    res.Stats.Started,
		"lost":       res.Stats.Lost,
		"elapsed":    res.Elapsed.Round(time.Millisecond),
	}).Info("video processed")

	return res, nil
}

// openWriter opens a video writer for the output file using the first codec
// in the list that OpenCV is able to open
func openWriter(outPath string, codecs []string, fps float64,
	width, height int) (*gocv.VideoWriter, string, error) {

	if len(codecs) == 0 {
		codecs = DefaultCodecs
	}

	for _, codec := range codecs {
		writer, err := gocv.VideoWriterFile(outPath, codec, fps, width, height, true)

		if err != nil {
			log.Printf("Codec %s unavailable: %v", codec, err)
			continue
		}

		if !writer.IsOpened() {
			writer.Close()
			log.Printf("Codec %s failed to open writer for %s", codec, outPath)
			continue
		}

		return writer, codec, nil
	}

	return nil, "", fmt.Errorf("%w for %s, tried %v", ErrNoCodec, outPath, codecs)
}

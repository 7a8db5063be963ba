package cvtrack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestProcessVideo(t *testing.T) {

	input := writeTestVideo(t, 12, 320, 240)
	output := filepath.Join(t.TempDir(), "processed_input.avi")

	det := &fakeDetector{target: Dog}

	res, err := ProcessVideo(context.Background(), det, input, output,
		VideoOptions{Codecs: []string{"MJPG"}})

	if err != nil {
		t.Fatalf("unexpected error processing video: %v", err)
	}

	if res.Frames != 12 || len(det.frames) != 12 {
		t.Errorf("expected 12 frames processed, got %d (detector saw %d)", res.Frames, len(det.frames))
	}

	if det.frames[0] != 1 || det.frames[11] != 12 {
		t.Errorf("expected frame numbers 1..12, got %v", det.frames)
	}

	if det.resets != 1 || det.width != 320 || det.height != 240 {
		t.Errorf("expected detector reset with 320x240, got %d resets %dx%d",
			det.resets, det.width, det.height)
	}

	if res.Codec != "MJPG" || res.FPS != 25 {
		t.Errorf("unexpected codec %s or fps %f", res.Codec, res.FPS)
	}

	if res.Stats.Detections != 12 || res.Stats.Tracked != 12 {
		t.Errorf("expected stats summed across frames, got %+v", res.Stats)
	}

	// read back the output and check the annotation was written
	video, err := gocv.VideoCaptureFile(output)

	if err != nil {
		t.Fatalf("error opening output video: %v", err)
	}

	defer video.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	count := 0

	for video.Read(&frame) {
		if frame.Empty() {
			continue
		}

		if count == 0 {
			// box edge is green, allowing for jpeg compression
			px := frame.GetVecbAt(30, 10)

			if int(px[1]) < int(px[0])+40 || int(px[1]) < int(px[2])+40 {
				t.Errorf("expected green annotation in output, got %v", px)
			}
		}

		count++
	}

	if count != 12 {
		t.Errorf("expected 12 frames in output, got %d", count)
	}
}

func TestProcessVideoMissingInput(t *testing.T) {

	det := &fakeDetector{target: Car}
	output := filepath.Join(t.TempDir(), "out.avi")

	_, err := ProcessVideo(context.Background(), det,
		filepath.Join(t.TempDir(), "missing.mp4"), output,
		VideoOptions{Codecs: []string{"MJPG"}})

	if err == nil {
		t.Fatalf("expected error for missing input video")
	}

	if len(det.frames) != 0 {
		t.Errorf("expected no frames processed")
	}
}

func TestProcessVideoCancelled(t *testing.T) {

	input := writeTestVideo(t, 5, 160, 120)
	output := filepath.Join(t.TempDir(), "out.avi")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProcessVideo(ctx, &fakeDetector{target: Human}, input, output,
		VideoOptions{Codecs: []string{"MJPG"}})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProcessVideoOutputMissing(t *testing.T) {

	input := writeTestVideo(t, 5, 160, 120)
	output := filepath.Join(t.TempDir(), "out.avi")

	// unlink the output while the writer still holds it open
	det := &fakeDetector{
		target: Dog,
		onFrame: func(frameNum int) {
			if frameNum == 1 {
				os.Remove(output)
			}
		},
	}

	res, err := ProcessVideo(context.Background(), det, input, output,
		VideoOptions{Codecs: []string{"MJPG"}})

	if !errors.Is(err, ErrOutputMissing) {
		t.Errorf("expected ErrOutputMissing, got %v (%+v)", err, res)
	}

	if len(det.frames) != 5 {
		t.Errorf("expected all 5 frames processed, got %d", len(det.frames))
	}
}

func TestOpenWriterNoCodec(t *testing.T) {

	output := filepath.Join(t.TempDir(), "missing-dir", "out.avi")

	_, _, err := openWriter(output, []string{"MJPG"}, 25, 160, 120)

	if !errors.Is(err, ErrNoCodec) {
		t.Errorf("expected ErrNoCodec writing into missing directory, got %v", err)
	}

	if _, statErr := os.Stat(output); statErr == nil {
		t.Errorf("expected no output file to be created")
	}
}

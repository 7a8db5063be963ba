package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-cvtrack/tracker"
	"gocv.io/x/gocv"
)

// Annotation is a bounding box and its text label to draw on a frame
type Annotation struct {
	Rect  image.Rectangle
	Text  string
	Color color.RGBA
}

// boxLabel holds the precalculated position of a label
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// Box renders a single bounding box with its label
func Box(img *gocv.Mat, rect image.Rectangle, text string, clr color.RGBA,
	font Font, lineThickness int) {

	Boxes(img, []Annotation{{Rect: rect, Text: text, Color: clr}}, font,
		lineThickness)
}

// Boxes renders the bounding boxes around the objects detected
func Boxes(img *gocv.Mat, annotations []Annotation, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0, len(annotations))

	for _, ann := range annotations {

		// draw rectangle around detected object
		gocv.Rectangle(img, ann.Rect, ann.Color, lineThickness)

		if ann.Text == "" {
			continue
		}

		boxLabels = append(boxLabels, layoutLabel(ann, font, lineThickness))
	}

	// draw all precalculated box labels so they are the top most layer on the
	// image and don't get overlapped by neighbouring boxes
	for _, box := range boxLabels {

		textClr := font.Color

		if font.Plate {
			// draw box text gets written on
			gocv.Rectangle(img, box.rect, box.clr, -1)
		} else {
			textClr = box.clr
		}

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, textClr, font.Thickness,
			font.LineType, false)
	}
}

// layoutLabel calculates where the label text and plate are drawn relative
// to the bounding box
func layoutLabel(ann Annotation, font Font, lineThickness int) boxLabel {

	textSize := gocv.GetTextSize(ann.Text, font.Face, font.Scale, font.Thickness)

	// Calculate the alignment of text label
	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (ann.Rect.Min.X + ann.Rect.Max.X) / 2

	case Right:
		centerX = ann.Rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = ann.Rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	// Adjust the label position so the text is centered horizontally
	labelPosition := image.Pt(centerX-textSize.X/2, ann.Rect.Min.Y-font.BottomPad)

	// create box for placing text on
	bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
		ann.Rect.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
		centerX+textSize.X/2+font.RightPad, ann.Rect.Min.Y)

	return boxLabel{
		rect:    bRect,
		clr:     ann.Color,
		text:    ann.Text,
		textPos: labelPosition,
	}
}

// TrackStyle selects the color and label text used to render a track
type TrackStyle struct {
	// Color returns the box color for the track, when nil the palette
	// color for the track id is used
	Color func(t *tracker.Track) color.RGBA
	// Text returns the label for the track, when nil the track label and
	// id are used
	Text func(t *tracker.Track) string
}

// TrackerBoxes renders the bounding boxes around the tracked objects
func TrackerBoxes(img *gocv.Mat, tracks []*tracker.Track, style TrackStyle,
	font Font, lineThickness int) {

	annotations := make([]Annotation, 0, len(tracks))

	for _, t := range tracks {

		clr := TrackColor(t.GetTrackID())

		if style.Color != nil {
			clr = style.Color(t)
		}

		text := fmt.Sprintf("%s %d", t.GetLabel(), t.GetTrackID())

		if style.Text != nil {
			text = style.Text(t)
		}

		annotations = append(annotations, Annotation{
			Rect:  t.GetRect().Image(),
			Text:  text,
			Color: clr,
		})
	}

	Boxes(img, annotations, font, lineThickness)
}

// Footer writes a line of text along the bottom left of the image
func Footer(img *gocv.Mat, text string, font Font) {
	gocv.PutTextWithParams(img, text, image.Pt(10, img.Rows()-20),
		font.Face, font.Scale, font.Color, font.Thickness, font.LineType, false)
}

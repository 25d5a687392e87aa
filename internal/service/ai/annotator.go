package ai

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"sortrash/internal/model"
	"sortrash/internal/service/pipeline"
)

var (
	colorPlastic = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	colorPaper   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	colorMetal   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	colorOther   = color.RGBA{R: 255, G: 0, B: 255, A: 0}
)

// MaterialColor returns the box colour used for a material.
func MaterialColor(label string) color.RGBA {
	switch label {
	case "plastic":
		return colorPlastic
	case "paper":
		return colorPaper
	case "metal":
		return colorMetal
	default:
		return colorOther
	}
}

// Annotator draws classification results onto frames.
type Annotator struct{}

// Annotate draws each result on a copy of frame and returns it as JPEG.
func (Annotator) Annotate(frame pipeline.Frame, results []model.ClassificationResult) ([]byte, error) {
	src, release, err := toMat(frame)
	if err != nil {
		return nil, err
	}
	defer release()

	mat := src.Clone()
	defer mat.Close()

	for _, r := range results {
		c := MaterialColor(r.Label)
		rect := r.Box.Image()
		if err := gocv.Rectangle(&mat, rect, c, 3); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %v", err)
		}

		label := fmt.Sprintf("%s %.2f", r.Label, r.Confidence)
		pt := image.Pt(max(0, r.Box.X1), max(20, r.Box.Y1-5))
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.7, c, 2); err != nil {
			return nil, fmt.Errorf("failed to draw text: %v", err)
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

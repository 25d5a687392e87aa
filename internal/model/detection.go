package model

import "image"

// Box is a detector box in pixel coordinates. Coordinates may be fractional
// and may fall outside the image when the model overshoots.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Rect truncates the box to integer pixel coordinates.
func (b Box) Rect() Rect {
	return Rect{X1: int(b.X1), Y1: int(b.Y1), X2: int(b.X2), Y2: int(b.Y2)}
}

// Rect is an integer pixel box. It serializes as [x1, y1, x2, y2].
type Rect struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Width returns x2 - x1.
func (r Rect) Width() int { return r.X2 - r.X1 }

// Height returns y2 - y1.
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Image converts the rect to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// DetectionCandidate is one region returned by a region detector.
type DetectionCandidate struct {
	Box        Box
	Confidence float64
	Label      string
}

// LabelScore is one ranked answer of a material classifier.
type LabelScore struct {
	Label      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// ClassificationResult is the pipeline output for one detected region.
type ClassificationResult struct {
	Label      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Box        Rect    `json:"bbox"`
}

package pipeline

import (
	"context"
	"image"

	"sortrash/internal/model"
)

// Frame is a decoded raster in the channel order the detector expects.
type Frame interface {
	Bounds() image.Rectangle
	// Crop returns the sub-image r. The crop owns its pixels and must be
	// closed independently of the parent.
	Crop(r image.Rectangle) (Frame, error)
	// Encode renders the frame in the given format (".jpg", ".png").
	Encode(ext string) ([]byte, error)
	Close() error
}

// Decoder turns raw image bytes into a Frame.
type Decoder interface {
	Decode(data []byte) (Frame, error)
}

// Detector locates candidate regions. Candidates below minConfidence are
// never returned.
type Detector interface {
	Detect(ctx context.Context, frame Frame, minConfidence float64) ([]model.DetectionCandidate, error)
}

// Classifier ranks material labels for a cropped region, best first.
type Classifier interface {
	Classify(ctx context.Context, crop Frame, minConfidence float64) ([]model.LabelScore, error)
}

// Recorder persists classification results.
type Recorder interface {
	Append(results []model.ClassificationResult) ([]model.JournalEntry, error)
}

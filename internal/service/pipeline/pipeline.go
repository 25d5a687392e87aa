// Package pipeline runs the locate-then-identify classification flow:
// the detector proposes regions, each usable region is cropped and handed
// to the material classifier, and the surviving results are journalled.
package pipeline

import (
	"context"
	"image"
	"math"

	perr "sortrash/internal/errors"
	"sortrash/internal/logger"
	"sortrash/internal/model"
)

const (
	// DetectionThreshold is the confidence floor passed to the detector.
	DetectionThreshold = 0.4
	// ClassificationThreshold is the confidence floor passed to the classifier.
	ClassificationThreshold = 0.25
	// MinRegionSize is the smallest width and height, in pixels, of a region
	// worth classifying.
	MinRegionSize = 10
)

// Pipeline wires a detector, a classifier and a journal together.
type Pipeline struct {
	detector   Detector
	classifier Classifier
	recorder   Recorder
	logger     *logger.Logger
}

// New creates a Pipeline. recorder may be nil, in which case results are
// returned but not journalled.
func New(detector Detector, classifier Classifier, recorder Recorder, logger *logger.Logger) *Pipeline {
	return &Pipeline{
		detector:   detector,
		classifier: classifier,
		recorder:   recorder,
		logger:     logger,
	}
}

// Classify runs the pipeline on frame and returns the results in detector
// order. An empty slice means nothing was found or nothing was
// classifiable and is not an error.
//
// Inference failures return a KindInference error and leave the journal
// untouched. When the journal write fails, the results are returned
// together with a KindStoreWrite error.
func (p *Pipeline) Classify(ctx context.Context, frame Frame) ([]model.ClassificationResult, error) {
	candidates, err := p.detector.Detect(ctx, frame, DetectionThreshold)
	if err != nil {
		return nil, perr.Wrap(err, perr.KindInference, "region detection failed")
	}

	bounds := frame.Bounds()
	results := []model.ClassificationResult{}

	for _, c := range candidates {
		rect := c.Box.Rect()
		if rect.Width() < MinRegionSize || rect.Height() < MinRegionSize {
			continue
		}

		region := rect.Image().Intersect(bounds)
		if region.Empty() {
			continue
		}

		label, ok, err := p.classifyRegion(ctx, frame, region)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		results = append(results, model.ClassificationResult{
			Label:      label.Label,
			Confidence: CeilConfidence(label.Confidence),
			Box:        rect,
		})
	}

	if len(results) == 0 || p.recorder == nil {
		return results, nil
	}

	if _, err := p.recorder.Append(results); err != nil {
		return results, err
	}
	p.logger.Info("Classified %d of %d detected regions", len(results), len(candidates))

	return results, nil
}

// classifyRegion crops region out of frame and returns the top-ranked
// label. ok is false when the classifier has no answer above its floor.
func (p *Pipeline) classifyRegion(ctx context.Context, frame Frame, region image.Rectangle) (model.LabelScore, bool, error) {
	crop, err := frame.Crop(region)
	if err != nil {
		return model.LabelScore{}, false, perr.Wrapf(err, perr.KindInputDecode, "failed to crop region %v", region)
	}
	defer crop.Close()

	labels, err := p.classifier.Classify(ctx, crop, ClassificationThreshold)
	if err != nil {
		return model.LabelScore{}, false, perr.Wrap(err, perr.KindInference, "material classification failed")
	}
	if len(labels) == 0 {
		return model.LabelScore{}, false, nil
	}

	// first answer only, whatever its rank among the rest
	return labels[0], true, nil
}

// CeilConfidence rounds c up to two decimal places. The small epsilon keeps
// values that are already exact in decimal, such as 0.07, from being pushed
// up by binary representation noise.
func CeilConfidence(c float64) float64 {
	if c <= 0 {
		return 0
	}
	return math.Ceil(c*100-1e-9) / 100
}

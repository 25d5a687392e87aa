// Package ai runs the region detector and the material classifier locally
// with OpenCV's DNN module on ONNX exports of the trained models.
package ai

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"sortrash/internal/logger"
	"sortrash/internal/model"
	"sortrash/internal/service/pipeline"
)

const (
	// DetectorInputSize is the square input the detector was exported with.
	DetectorInputSize = 640
	// NMSThreshold is the IoU above which overlapping boxes are merged.
	NMSThreshold = 0.45
)

// DetectorService runs a YOLO-style detector. Its output tensor is
// [1, 4+classes, anchors] with (cx, cy, w, h) in input pixels followed by
// one score per class.
type DetectorService struct {
	net       gocv.Net
	modelPath string
	labels    []string
	logger    *logger.Logger
	mu        sync.Mutex
}

// NewDetectorService loads the detector from modelPath. labels is optional
// and names the detector's classes.
func NewDetectorService(modelPath string, labels []string, logger *logger.Logger) (*DetectorService, error) {
	s := &DetectorService{
		modelPath: modelPath,
		labels:    labels,
		logger:    logger,
	}

	net, err := loadNet(modelPath)
	if err != nil {
		return nil, err
	}
	s.net = net
	s.logger.Info("Detection network initialized from %s", modelPath)
	return s, nil
}

// loadNet reads an ONNX network and pins it to the CPU backend.
func loadNet(modelPath string) (gocv.Net, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return gocv.Net{}, fmt.Errorf("model file not found: %s", modelPath)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return gocv.Net{}, fmt.Errorf("failed to load network %s", modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return gocv.Net{}, fmt.Errorf("failed to set preferable backend or target")
	}
	return net, nil
}

// Detect implements pipeline.Detector.
func (s *DetectorService) Detect(ctx context.Context, frame pipeline.Frame, minConfidence float64) ([]model.DetectionCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, release, err := toMat(frame)
	if err != nil {
		return nil, err
	}
	defer release()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(DetectorInputSize, DetectorInputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.mu.Lock()
	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	s.mu.Unlock()
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 || dims[1] < 5 {
		return nil, fmt.Errorf("unexpected detector output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read detector output: %v", err)
	}

	channels, anchors := dims[1], dims[2]
	scaleX := float64(mat.Cols()) / DetectorInputSize
	scaleY := float64(mat.Rows()) / DetectorInputSize

	var (
		boxes   []image.Rectangle
		scores  []float32
		classes []int
		raw     []model.Box
	)
	for i := 0; i < anchors; i++ {
		best, bestClass := float32(0), 0
		for c := 4; c < channels; c++ {
			if v := data[c*anchors+i]; v > best {
				best, bestClass = v, c-4
			}
		}
		if float64(best) < minConfidence {
			continue
		}

		cx, cy := float64(data[i]), float64(data[anchors+i])
		w, h := float64(data[2*anchors+i]), float64(data[3*anchors+i])
		box := model.Box{
			X1: (cx - w/2) * scaleX,
			Y1: (cy - h/2) * scaleY,
			X2: (cx + w/2) * scaleX,
			Y2: (cy + h/2) * scaleY,
		}

		raw = append(raw, box)
		boxes = append(boxes, image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2)))
		scores = append(scores, best)
		classes = append(classes, bestClass)
	}

	if len(boxes) == 0 {
		return []model.DetectionCandidate{}, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, float32(minConfidence), NMSThreshold)
	results := make([]model.DetectionCandidate, 0, len(keep))
	for _, idx := range keep {
		results = append(results, model.DetectionCandidate{
			Box:        raw[idx],
			Confidence: float64(scores[idx]),
			Label:      labelFor(s.labels, classes[idx]),
		})
	}

	s.logger.Info("Detected %d regions", len(results))
	return results, nil
}

// Close frees the network.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}

// labelFor maps a class index to its name.
func labelFor(labels []string, classID int) string {
	if classID >= 0 && classID < len(labels) {
		return labels[classID]
	}
	return fmt.Sprintf("class%d", classID)
}

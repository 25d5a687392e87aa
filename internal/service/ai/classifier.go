package ai

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"sortrash/internal/logger"
	"sortrash/internal/model"
	"sortrash/internal/service/pipeline"
)

// ClassifierInputSize is the square input the classifier was exported with.
const ClassifierInputSize = 224

// ClassifierService ranks material labels for a cropped region.
type ClassifierService struct {
	net    gocv.Net
	labels []string
	logger *logger.Logger
	mu     sync.Mutex
}

// NewClassifierService loads the classifier; labels name its outputs in
// order.
func NewClassifierService(modelPath string, labels []string, logger *logger.Logger) (*ClassifierService, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("classifier needs at least one label")
	}
	net, err := loadNet(modelPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Classification network initialized from %s (%d labels)", modelPath, len(labels))
	return &ClassifierService{net: net, labels: labels, logger: logger}, nil
}

// Classify implements pipeline.Classifier. Labels come back sorted by
// descending score.
func (s *ClassifierService) Classify(ctx context.Context, crop pipeline.Frame, minConfidence float64) ([]model.LabelScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, release, err := toMat(crop)
	if err != nil {
		return nil, err
	}
	defer release()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(ClassifierInputSize, ClassifierInputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.mu.Lock()
	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	s.mu.Unlock()
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier output: %v", err)
	}
	if len(data) != len(s.labels) {
		return nil, fmt.Errorf("classifier produced %d scores for %d labels", len(data), len(s.labels))
	}

	probs := probabilities(data)
	results := make([]model.LabelScore, 0, len(probs))
	for i, p := range probs {
		if p >= minConfidence {
			results = append(results, model.LabelScore{Label: s.labels[i], Confidence: p})
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Confidence > results[b].Confidence
	})
	return results, nil
}

// Close frees the network.
func (s *ClassifierService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}

// probabilities returns scores as-is when they already form a distribution
// and applies softmax to raw logits otherwise.
func probabilities(scores []float32) []float64 {
	out := make([]float64, len(scores))
	sum := 0.0
	isDist := true
	for i, v := range scores {
		out[i] = float64(v)
		sum += out[i]
		if v < 0 || v > 1 {
			isDist = false
		}
	}
	if isDist && math.Abs(sum-1) < 1e-3 {
		return out
	}

	maxV := out[0]
	for _, v := range out {
		maxV = math.Max(maxV, v)
	}
	sum = 0
	for i, v := range out {
		out[i] = math.Exp(v - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

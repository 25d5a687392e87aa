// Package inference talks to a remote model server that hosts the region
// detector and the material classifier behind HTTP.
//
// Both endpoints take a multipart form with the image in "file" and the
// confidence floor in "conf":
//
//	POST {url}/detect   -> {"detections": [{"class", "confidence", "bbox": [x1,y1,x2,y2]}]}
//	POST {url}/classify -> {"predictions": [{"class", "confidence"}]}
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sortrash/internal/model"
	"sortrash/internal/service/pipeline"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// Client is a pipeline.Detector and pipeline.Classifier backed by HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the model server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type detectionPayload struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

// Detect implements pipeline.Detector.
func (c *Client) Detect(ctx context.Context, frame pipeline.Frame, minConfidence float64) ([]model.DetectionCandidate, error) {
	var result struct {
		Detections []detectionPayload `json:"detections"`
	}
	if err := c.post(ctx, "/detect", frame, minConfidence, &result); err != nil {
		return nil, err
	}

	candidates := make([]model.DetectionCandidate, 0, len(result.Detections))
	for i, d := range result.Detections {
		if len(d.BBox) != 4 {
			return nil, fmt.Errorf("detection %d: expected 4 bbox coordinates, got %d", i, len(d.BBox))
		}
		if d.Confidence < minConfidence {
			continue
		}
		candidates = append(candidates, model.DetectionCandidate{
			Box:        model.Box{X1: d.BBox[0], Y1: d.BBox[1], X2: d.BBox[2], Y2: d.BBox[3]},
			Confidence: d.Confidence,
			Label:      d.Class,
		})
	}
	return candidates, nil
}

// Classify implements pipeline.Classifier. The server's ranking is kept.
func (c *Client) Classify(ctx context.Context, crop pipeline.Frame, minConfidence float64) ([]model.LabelScore, error) {
	var result struct {
		Predictions []model.LabelScore `json:"predictions"`
	}
	if err := c.post(ctx, "/classify", crop, minConfidence, &result); err != nil {
		return nil, err
	}

	labels := make([]model.LabelScore, 0, len(result.Predictions))
	for _, p := range result.Predictions {
		if p.Confidence >= minConfidence {
			labels = append(labels, p)
		}
	}
	return labels, nil
}

// CheckHealth pings {url}/health.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server unhealthy: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, frame pipeline.Frame, conf float64, out any) error {
	imageData, err := frame.Encode(".jpg")
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.WriteField("conf", strconv.FormatFloat(conf, 'f', -1, 64)); err != nil {
		return fmt.Errorf("write conf field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s failed with status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"sortrash/internal/config"
	"sortrash/internal/dto"
	perr "sortrash/internal/errors"
	"sortrash/internal/logger"
	"sortrash/internal/model"
	"sortrash/internal/repository/jsonfile"
	"sortrash/internal/service/frame"
	"sortrash/internal/service/journal"
	"sortrash/internal/service/pipeline"
	"sortrash/internal/service/websocket"
)

type stubDetector struct {
	candidates []model.DetectionCandidate
	err        error
}

func (d *stubDetector) Detect(context.Context, pipeline.Frame, float64) ([]model.DetectionCandidate, error) {
	return d.candidates, d.err
}

type stubClassifier struct{ label string }

func (c *stubClassifier) Classify(context.Context, pipeline.Frame, float64) ([]model.LabelScore, error) {
	return []model.LabelScore{{Label: c.label, Confidence: 0.873}}, nil
}

type stubAnnotator struct{ calls int }

func (a *stubAnnotator) Annotate(pipeline.Frame, []model.ClassificationResult) ([]byte, error) {
	a.calls++
	return []byte("annotated"), nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 120, 80))); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

type fixture struct {
	manager   *Manager
	hub       *websocket.HubService
	detector  *stubDetector
	annotator *stubAnnotator
}

func newFixture(t *testing.T, interval int) fixture {
	t.Helper()

	cfg := &config.Config{ProcessingInterval: interval}
	log := logger.NewNop()
	j := journal.New(jsonfile.New(filepath.Join(t.TempDir(), "history.json")), log)
	hub := websocket.NewHubService(log)
	det := &stubDetector{candidates: []model.DetectionCandidate{
		{Box: model.Box{X1: 10, Y1: 10, X2: 60, Y2: 60}, Confidence: 0.9},
	}}
	ann := &stubAnnotator{}

	m := NewManager(frame.Decoder{}, det, &stubClassifier{label: "plastic"}, ann, j, hub, cfg, log)
	return fixture{manager: m, hub: hub, detector: det, annotator: ann}
}

func TestManager_ClassifyImageJournals(t *testing.T) {
	fx := newFixture(t, 1)

	results, err := fx.manager.ClassifyImage(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("ClassifyImage failed: %v", err)
	}
	if len(results) != 1 || results[0].Label != "plastic" || results[0].Confidence != 0.88 {
		t.Fatalf("Unexpected results %+v", results)
	}

	history := fx.manager.History()
	if len(history) != 1 || history[0].ID != 1 || history[0].Category != "plastic" {
		t.Errorf("Journal should hold the classification, got %+v", history)
	}

	snap := fx.manager.Stats()
	if snap.TotalScans != 1 || snap.MostCommon != "plastic" {
		t.Errorf("Unexpected stats %+v", snap)
	}
}

func TestManager_ClassifyImageDecodeError(t *testing.T) {
	fx := newFixture(t, 1)

	_, err := fx.manager.ClassifyImage(context.Background(), []byte("garbage"))
	if !perr.IsKind(err, perr.KindInputDecode) {
		t.Errorf("Expected InputDecode, got %v", err)
	}
	if len(fx.manager.History()) != 0 {
		t.Error("Journal must stay empty after a decode failure")
	}
}

func TestManager_ClassifyBase64(t *testing.T) {
	fx := newFixture(t, 1)

	payload := "data:image/png;base64," + frame.EncodeBase64(pngBytes(t))
	results, err := fx.manager.ClassifyBase64(context.Background(), payload)
	if err != nil || len(results) != 1 {
		t.Fatalf("ClassifyBase64 failed: %v, %+v", err, results)
	}
}

type recordingViewer struct {
	messages chan []byte
}

func (v *recordingViewer) WriteMessage(_ int, data []byte) error {
	v.messages <- data
	return nil
}

func (v *recordingViewer) SetWriteDeadline(time.Time) error { return nil }

func (v *recordingViewer) Close() error { return nil }

func (v *recordingViewer) next(t *testing.T) dto.JournalEvent {
	t.Helper()
	select {
	case data := <-v.messages:
		var ev dto.JournalEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("Bad event %s: %v", data, err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
	}
	return dto.JournalEvent{}
}

func TestManager_JournalChangesAreBroadcast(t *testing.T) {
	fx := newFixture(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fx.hub.Run(ctx)

	viewer := &recordingViewer{messages: make(chan []byte, 4)}
	fx.hub.Register(viewer)
	for fx.hub.GetClientCount() == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := fx.manager.ClassifyImage(context.Background(), pngBytes(t)); err != nil {
		t.Fatalf("ClassifyImage failed: %v", err)
	}
	if err := fx.manager.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}

	appended := viewer.next(t)
	if appended.Type != dto.EventAppended || len(appended.Entries) != 1 {
		t.Errorf("Unexpected append event %+v", appended)
	}
	if cleared := viewer.next(t); cleared.Type != dto.EventCleared {
		t.Errorf("Unexpected clear event %+v", cleared)
	}
	if len(fx.manager.History()) != 0 {
		t.Error("History should be empty after clear")
	}
}

func TestManager_LiveSessionProcessesEveryNthFrame(t *testing.T) {
	fx := newFixture(t, 3)
	session := fx.manager.NewLiveSession()
	in := dto.LiveFrame{Image: frame.EncodeBase64(pngBytes(t))}

	var processed []int
	for i := 0; i < 7; i++ {
		out := fx.manager.HandleLiveFrame(context.Background(), session, in)
		if out.Error != nil {
			t.Fatalf("Frame %d failed: %+v", out.Frame, out.Error)
		}
		if out.Processed {
			processed = append(processed, out.Frame)
			if len(out.Detections) != 1 || out.Image == "" {
				t.Errorf("Processed frame should carry detections and preview, got %+v", out)
			}
		} else if len(out.Detections) != 0 {
			t.Errorf("Skipped frame must not carry detections")
		}
	}

	if len(processed) != 2 || processed[0] != 3 || processed[1] != 6 {
		t.Errorf("Expected frames 3 and 6 processed, got %v", processed)
	}
	if fx.annotator.calls != 2 {
		t.Errorf("Expected 2 annotations, got %d", fx.annotator.calls)
	}
	if got := len(fx.manager.History()); got != 2 {
		t.Errorf("Live classifications are journalled; expected 2 entries, got %d", got)
	}

	fx.manager.EndLiveSession(session)
}

func TestManager_LiveFrameErrorsAreReported(t *testing.T) {
	fx := newFixture(t, 1)
	session := fx.manager.NewLiveSession()

	out := fx.manager.HandleLiveFrame(context.Background(), session, dto.LiveFrame{Image: "%%%"})
	if out.Error == nil || out.Error.Code != "input_decode" {
		t.Errorf("Expected input_decode error, got %+v", out.Error)
	}

	fx.detector.err = errors.New("gpu lost")
	out = fx.manager.HandleLiveFrame(context.Background(), session, dto.LiveFrame{Image: frame.EncodeBase64(pngBytes(t))})
	if out.Error == nil || out.Error.Code != "inference" {
		t.Errorf("Expected inference error, got %+v", out.Error)
	}
}

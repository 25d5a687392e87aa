package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"sortrash/internal/model"
)

func TestNewClassifyResponse_Empty(t *testing.T) {
	resp := NewClassifyResponse(nil)

	if resp.Primary != nil || resp.DisposalTip != "" {
		t.Errorf("Empty result must not have a primary, got %+v", resp)
	}

	data, _ := json.Marshal(resp)
	if string(data) != `{"detections":[]}` {
		t.Errorf("Unexpected JSON %s", data)
	}
}

func TestNewClassifyResponse_PrimaryIsMostConfident(t *testing.T) {
	resp := NewClassifyResponse([]model.ClassificationResult{
		{Label: "paper", Confidence: 0.6},
		{Label: "metal", Confidence: 0.9},
		{Label: "plastic", Confidence: 0.9},
	})

	if resp.Primary == nil || resp.Primary.Label != "metal" {
		t.Fatalf("Expected metal to win the tie, got %+v", resp.Primary)
	}
	if resp.DisposalTip != model.DisposalTip("metal") {
		t.Errorf("Unexpected tip %q", resp.DisposalTip)
	}
	if len(resp.Detections) != 3 {
		t.Errorf("All detections should be kept")
	}
}

func TestNewClassifyResponse_WireFormat(t *testing.T) {
	resp := NewClassifyResponse([]model.ClassificationResult{
		{Label: "glass", Confidence: 0.77, Box: model.Rect{X1: 1, Y1: 2, X2: 30, Y2: 40}},
	})

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `{"class":"glass","confidence":0.77,"bbox":[1,2,30,40]}`) {
		t.Errorf("Unexpected wire format %s", data)
	}
}

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBox_Rect_Truncates(t *testing.T) {
	r := Box{X1: 10.9, Y1: 20.2, X2: 55.7, Y2: 80.99}.Rect()
	if r != (Rect{X1: 10, Y1: 20, X2: 55, Y2: 80}) {
		t.Errorf("Unexpected rect: %+v", r)
	}
	if r.Width() != 45 || r.Height() != 60 {
		t.Errorf("Expected 45x60, got %dx%d", r.Width(), r.Height())
	}
}

func TestClassificationResult_JSON(t *testing.T) {
	res := ClassificationResult{Label: "plastic", Confidence: 0.86, Box: Rect{1, 2, 30, 40}}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"class":"plastic","confidence":0.86,"bbox":[1,2,30,40]}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	var back ClassificationResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != res {
		t.Errorf("Expected %+v, got %+v", res, back)
	}
}

func TestRect_UnmarshalJSON_WrongLength(t *testing.T) {
	var r Rect
	err := json.Unmarshal([]byte(`[1,2,3]`), &r)
	if err == nil || !strings.Contains(err.Error(), "expected 4") {
		t.Errorf("Expected length error, got %v", err)
	}
}

func TestDisposalTip(t *testing.T) {
	if got := DisposalTip(" Plastic "); !strings.Contains(got, "Rinse the plastic") {
		t.Errorf("Unexpected plastic tip: %s", got)
	}
	if got := DisposalTip("styrofoam"); got != DefaultDisposalTip {
		t.Errorf("Expected default tip, got %s", got)
	}
}

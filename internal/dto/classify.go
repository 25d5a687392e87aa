package dto

import "sortrash/internal/model"

// ClassifyRequest is the JSON form of an upload. Image is plain base64 or
// a data URL.
type ClassifyRequest struct {
	Image string `json:"image" validate:"required"`
}

// FrameRequest carries one captured video frame as a data URL.
type FrameRequest struct {
	Frame string `json:"frame" validate:"required"`
}

// ClassifyResponse is returned for every classified image.
type ClassifyResponse struct {
	Detections  []model.ClassificationResult `json:"detections"`
	Primary     *model.ClassificationResult  `json:"primary,omitempty"`
	DisposalTip string                       `json:"disposalTip,omitempty"`
}

// NewClassifyResponse picks the highest-confidence result as primary. The
// earliest result wins a tie.
func NewClassifyResponse(results []model.ClassificationResult) ClassifyResponse {
	if results == nil {
		results = []model.ClassificationResult{}
	}
	resp := ClassifyResponse{Detections: results}
	if len(results) == 0 {
		return resp
	}

	best := 0
	for i, r := range results {
		if r.Confidence > results[best].Confidence {
			best = i
		}
	}
	primary := results[best]
	resp.Primary = &primary
	resp.DisposalTip = model.DisposalTip(primary.Label)
	return resp
}

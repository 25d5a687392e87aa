package dto

import (
	perr "sortrash/internal/errors"
	"sortrash/internal/model"
)

// LiveFrame is one frame sent by a live tracking client.
type LiveFrame struct {
	Image string `json:"image"`
}

// LiveResult answers a LiveFrame. Skipped frames carry Processed=false
// and no detections.
type LiveResult struct {
	Session    string                       `json:"session"`
	Frame      int                          `json:"frame"`
	Processed  bool                         `json:"processed"`
	Detections []model.ClassificationResult `json:"detections"`
	Image      string                       `json:"image,omitempty"`
	Error      *perr.Wire                   `json:"error,omitempty"`
}

// Journal event types pushed to dashboard viewers.
const (
	EventAppended = "appended"
	EventCleared  = "cleared"
)

// JournalEvent notifies viewers that the journal changed.
type JournalEvent struct {
	Type    string               `json:"type"`
	Entries []model.JournalEntry `json:"entries,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

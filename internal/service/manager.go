package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"sortrash/internal/config"
	"sortrash/internal/dto"
	perr "sortrash/internal/errors"
	"sortrash/internal/logger"
	"sortrash/internal/model"
	"sortrash/internal/service/frame"
	"sortrash/internal/service/journal"
	"sortrash/internal/service/pipeline"
	"sortrash/internal/service/stats"
	"sortrash/internal/service/websocket"
)

// Annotator renders results onto a frame for live preview.
type Annotator interface {
	Annotate(frame pipeline.Frame, results []model.ClassificationResult) ([]byte, error)
}

// Manager is the caller-facing façade over the pipeline, the journal and
// the statistics engine.
type Manager struct {
	decoder          pipeline.Decoder
	pipeline         *pipeline.Pipeline
	journal          *journal.Journal
	stats            *stats.Service
	websocketService *websocket.HubService
	annotator        Annotator
	logger           *logger.Logger

	frameCounters   map[string]int // Licznik klatek dla każdej sesji
	processEveryNth int            // Przetwarzaj co N-tą klatkę
	frameCounterMu  sync.Mutex
}

// NewManager wires the pipeline on top of the given capabilities. annotator
// may be nil, in which case live results carry no preview image.
func NewManager(decoder pipeline.Decoder, detector pipeline.Detector, classifier pipeline.Classifier, annotator Annotator,
	journal *journal.Journal, websocketService *websocket.HubService, config *config.Config, logger *logger.Logger) *Manager {
	m := &Manager{
		decoder:          decoder,
		journal:          journal,
		stats:            stats.NewService(journal),
		websocketService: websocketService,
		annotator:        annotator,
		logger:           logger,
		frameCounters:    make(map[string]int),
		processEveryNth:  max(1, config.ProcessingInterval),
	}
	m.pipeline = pipeline.New(detector, classifier, &broadcastingRecorder{journal: journal, hub: websocketService}, logger)

	m.logger.Info("Manager started - live sessions process every %d frame(s)", m.processEveryNth)
	return m
}

// ClassifyImage decodes data and runs it through the pipeline.
func (m *Manager) ClassifyImage(ctx context.Context, data []byte) ([]model.ClassificationResult, error) {
	f, err := m.decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	results, err := m.pipeline.Classify(ctx, f)
	if err != nil {
		m.logger.Error("Classification failed: %v", err)
	}
	return results, err
}

// ClassifyBase64 accepts a base64 string or data URL.
func (m *Manager) ClassifyBase64(ctx context.Context, payload string) ([]model.ClassificationResult, error) {
	data, err := frame.DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return m.ClassifyImage(ctx, data)
}

// NewLiveSession starts frame counting for a live client.
func (m *Manager) NewLiveSession() string {
	id := uuid.NewString()

	m.frameCounterMu.Lock()
	m.frameCounters[id] = 0
	m.frameCounterMu.Unlock()

	m.logger.Info("Live session %s started", id)
	return id
}

// EndLiveSession forgets the session's counter.
func (m *Manager) EndLiveSession(session string) {
	m.frameCounterMu.Lock()
	delete(m.frameCounters, session)
	m.frameCounterMu.Unlock()

	m.logger.Info("Live session %s ended", session)
}

// HandleLiveFrame runs every Nth frame of a session through the pipeline.
// Frames in between are acknowledged as skipped. Failures are reported in
// the result rather than ending the session.
func (m *Manager) HandleLiveFrame(ctx context.Context, session string, in dto.LiveFrame) dto.LiveResult {
	m.frameCounterMu.Lock()
	m.frameCounters[session]++
	frameCount := m.frameCounters[session]
	m.frameCounterMu.Unlock()

	out := dto.LiveResult{
		Session:    session,
		Frame:      frameCount,
		Detections: []model.ClassificationResult{},
	}

	// Przetwarzaj tylko co N-tą klatkę
	if frameCount%m.processEveryNth != 0 {
		return out
	}
	out.Processed = true

	data, err := frame.DecodeBase64(in.Image)
	if err != nil {
		return withError(out, err)
	}
	f, err := m.decoder.Decode(data)
	if err != nil {
		return withError(out, err)
	}
	defer f.Close()

	results, err := m.pipeline.Classify(ctx, f)
	if results != nil {
		out.Detections = results
	}
	if err != nil {
		m.logger.Error("Live session %s frame %d failed: %v", session, frameCount, err)
		return withError(out, err)
	}

	if m.annotator != nil && len(results) > 0 {
		img, err := m.annotator.Annotate(f, results)
		if err != nil {
			m.logger.Warning("Failed to annotate live frame: %v", err)
		} else {
			out.Image = frame.EncodeBase64(img)
		}
	}
	return out
}

// History returns the full journal in append order.
func (m *Manager) History() []model.JournalEntry {
	return m.journal.Load()
}

// Stats computes a fresh snapshot.
func (m *Manager) Stats() model.StatisticsSnapshot {
	return m.stats.Snapshot()
}

// ClearHistory empties the journal and tells viewers.
func (m *Manager) ClearHistory() error {
	if err := m.journal.Clear(); err != nil {
		return err
	}
	m.websocketService.BroadcastJSON(dto.JournalEvent{Type: dto.EventCleared})
	return nil
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}

func withError(out dto.LiveResult, err error) dto.LiveResult {
	wire := perr.WireFrom(err)
	out.Error = &wire
	return out
}

// broadcastingRecorder journals results and pushes the new entries to
// dashboard viewers.
type broadcastingRecorder struct {
	journal *journal.Journal
	hub     *websocket.HubService
}

func (r *broadcastingRecorder) Append(results []model.ClassificationResult) ([]model.JournalEntry, error) {
	entries, err := r.journal.Append(results)
	if err != nil {
		return nil, err
	}
	r.hub.BroadcastJSON(dto.JournalEvent{Type: dto.EventAppended, Entries: entries})
	return entries, nil
}

package handler

import (
	"net/http"

	"sortrash/internal/dto"
	"sortrash/internal/logger"
	"sortrash/internal/service"
)

// HistoryHandler returns the whole journal in append order.
func HistoryHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, manager.History(), http.StatusOK)
	}
}

// StatsHandler returns a statistics snapshot computed at request time.
func StatsHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, manager.Stats(), http.StatusOK)
	}
}

// ClearHistoryHandler empties the journal.
func ClearHistoryHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := manager.ClearHistory(); err != nil {
			respondError(w, err)
			return
		}
		logger.Info("History cleared by %s", r.RemoteAddr)
		respondJSON(w, dto.MessageResponse{Message: "History cleared"}, http.StatusOK)
	}
}

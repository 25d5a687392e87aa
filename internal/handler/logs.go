package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"sortrash/internal/config"
	"sortrash/internal/dto"
	perr "sortrash/internal/errors"
	"sortrash/internal/logger"
)

var logFiles = map[string]string{
	"info":    "info.log",
	"warning": "warning.log",
	"error":   "error.log",
}

// logFileFor maps the {level} URL parameter to a log file name.
func logFileFor(r *http.Request) (string, error) {
	level := chi.URLParam(r, "level")
	name, ok := logFiles[level]
	if !ok {
		return "", perr.Newf(perr.KindInvalidArgument, "unknown log level %q", level)
	}
	return name, nil
}

// ShowLogsHandler serves the log file for {level} as text/plain.
func ShowLogsHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := logFileFor(r)
		if err != nil {
			respondError(w, err)
			return
		}
		serveLogFile(w, r, cfg.LogDirectory, name)
	}
}

// serveLogFile is a helper that sets headers and serves a log file if it exists.
func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	filePath := filepath.Join(logDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeFile(w, r, filePath)
}

// ClearLogsHandler truncates the log file for {level} via the logger utility.
func ClearLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := logFileFor(r)
		if err != nil {
			respondError(w, err)
			return
		}
		if err := logger.CleanLogs(name); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, dto.MessageResponse{Message: name + " cleared"}, http.StatusOK)
	}
}

package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"sortrash/internal/config"
	"sortrash/internal/dto"
	perr "sortrash/internal/errors"
	"sortrash/internal/logger"
	"sortrash/internal/model"
	"sortrash/internal/service"
)

// ClassifyHandler accepts an image as a multipart "file" upload or as a
// JSON {"image": base64} body and returns the classified detections.
func ClassifyHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	limit := int64(cfg.MaxUploadMB) << 20

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)

		var (
			results []model.ClassificationResult
			err     error
		)

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mediaType {
		case "application/json":
			var req dto.ClassifyRequest
			if err := decodeJSON(r, &req); err != nil {
				respondError(w, err)
				return
			}
			results, err = manager.ClassifyBase64(r.Context(), req.Image)

		case "multipart/form-data":
			data, readErr := readUpload(r, limit)
			if readErr != nil {
				respondError(w, readErr)
				return
			}
			results, err = manager.ClassifyImage(r.Context(), data)

		default:
			respondError(w, perr.Newf(perr.KindInvalidArgument, "unsupported content type %q", mediaType))
			return
		}

		if err != nil {
			logger.Error("Classify request failed: %v", err)
			respondError(w, err)
			return
		}

		logger.Info("Classified upload: %d detections", len(results))
		respondJSON(w, dto.NewClassifyResponse(results), http.StatusOK)
	}
}

// ClassifyFrameHandler classifies a single captured video frame sent as
// {"frame": dataURL}.
func ClassifyFrameHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	limit := int64(cfg.MaxUploadMB) << 20

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)

		var req dto.FrameRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}

		results, err := manager.ClassifyBase64(r.Context(), req.Frame)
		if err != nil {
			logger.Error("Frame classification failed: %v", err)
			respondError(w, err)
			return
		}
		respondJSON(w, dto.NewClassifyResponse(results), http.StatusOK)
	}
}

func readUpload(r *http.Request, limit int64) ([]byte, error) {
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, perr.Newf(perr.KindInvalidArgument, "upload larger than %d bytes", limit)
		}
		return nil, perr.Wrap(err, perr.KindInvalidArgument, "failed to parse form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, perr.New(perr.KindInvalidArgument, "No file part")
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, perr.New(perr.KindInvalidArgument, "No selected file")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, perr.Wrap(err, perr.KindInvalidArgument, "failed to read file")
	}
	return data, nil
}

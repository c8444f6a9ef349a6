package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"

	"github.com/go-chi/chi/v5"
)

// handleRoot returns API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":             "grabarr media downloader API",
		"version":             Version,
		"supported_platforms": s.dl.Platforms(),
		"endpoints": map[string]string{
			"download": "/download",
			"telegram": "/download/telegram",
			"info":     "/info",
			"files":    "/files",
			"history":  "/history",
			"health":   "/health",
		},
	})
}

// handleHealth is the liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Service is running",
	})
}

// handleDownload downloads media and returns the normalized result as JSON.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	req, dlType, ok := s.decodeDownloadRequest(w, r)
	if !ok {
		return
	}

	result, err := s.dl.Download(r.Context(), req.URL, dlType)
	if err != nil {
		s.writeDownloadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleTelegramDownload downloads media and streams the file bytes back,
// with headers carrying filename, MIME type and content length. Errors fall
// back to the standard JSON error shape.
func (s *Server) handleTelegramDownload(w http.ResponseWriter, r *http.Request) {
	req, dlType, ok := s.decodeDownloadRequest(w, r)
	if !ok {
		return
	}

	result, err := s.dl.Download(r.Context(), req.URL, dlType)
	if err != nil {
		s.writeDownloadError(w, err)
		return
	}

	file, err := os.Open(result.FilePath)
	if err != nil {
		s.log.Error().Err(err).Str("path", result.FilePath).Msg("failed to open downloaded file")
		writeJSON(w, http.StatusInternalServerError, models.ErrorDownloadResult(
			models.NewError(models.KindInternal, "Downloaded file could not be opened.")))
		return
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorDownloadResult(
			models.NewError(models.KindInternal, "Downloaded file could not be read.")))
		return
	}

	w.Header().Set("Content-Type", dlType.MimeType())
	w.Header().Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(result.FilePath)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file); err != nil {
		s.log.Error().Err(err).Str("path", result.FilePath).Msg("failed streaming file to client")
	}
}

// handleInfo extracts metadata without downloading.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req models.InfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorVideoInfo(
			models.NewError(models.KindInvalidURL, "Invalid request body.")))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorVideoInfo(
			models.NewError(models.KindInvalidURL, "URL is required.")))
		return
	}

	info, err := s.dl.Info(r.Context(), req.URL)
	if err != nil {
		writeJSON(w, statusForKind(models.AsError(err).Kind), models.ErrorVideoInfo(err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// fileEntry is one row of the /files listing.
type fileEntry struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	Created     int64  `json:"created"`
	DownloadURL string `json:"download_url"`
}

// handleListFiles lists the files currently present in the download
// directory.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dl.OutputDir())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorDownloadResult(
			models.NewError(models.KindFilesystem, fmt.Sprintf("Error listing files: %v", err))))
		return
	}

	files := make([]fileEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileEntry{
			Filename:    entry.Name(),
			Size:        fi.Size(),
			Created:     fi.ModTime().Unix(),
			DownloadURL: "/files/" + entry.Name(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": consts.StatusSuccess,
		"files":  files,
		"count":  len(files),
	})
}

// handleGetFile serves a previously downloaded file.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	// Reject anything that could escape the download directory.
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		writeJSON(w, http.StatusBadRequest, models.ErrorDownloadResult(
			models.NewError(models.KindInvalidURL, "Invalid filename.")))
		return
	}

	path := filepath.Join(s.dl.OutputDir(), filename)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorDownloadResult(
			models.NewError(models.KindInvalidURL, fmt.Sprintf("File %q not found.", filename))))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// handleHistory returns recorded downloads, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 25
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ErrorDownloadResult(
				models.NewError(models.KindInvalidURL, fmt.Sprintf("Invalid limit %q.", raw))))
			return
		}
		limit = n
	}

	var recs []models.DownloadRecord
	if s.history != nil {
		var err error
		if recs, err = s.history.LatestDownloads(limit); err != nil {
			writeJSON(w, http.StatusInternalServerError, models.ErrorDownloadResult(
				models.NewError(models.KindInternal, "Failed to read download history.")))
			return
		}
	}
	if recs == nil {
		recs = []models.DownloadRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    consts.StatusSuccess,
		"downloads": recs,
		"count":     len(recs),
	})
}

// decodeDownloadRequest parses and validates the shared download body,
// writing the error response itself when validation fails.
func (s *Server) decodeDownloadRequest(w http.ResponseWriter, r *http.Request) (models.DownloadRequest, models.DownloadType, bool) {
	var req models.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorDownloadResult(
			models.NewError(models.KindInvalidURL, "Invalid request body.")))
		return req, "", false
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorDownloadResult(
			models.NewError(models.KindInvalidURL, "URL is required.")))
		return req, "", false
	}

	dlType, err := models.ParseDownloadType(req.DownloadType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorDownloadResult(
			models.NewError(models.KindInvalidURL, err.Error())))
		return req, "", false
	}
	return req, dlType, true
}

// writeDownloadError renders an orchestrator error with its mapped status
// code.
func (s *Server) writeDownloadError(w http.ResponseWriter, err error) {
	e := models.AsError(err)
	s.log.Warn().Int("kind", int(e.Kind)).Str("message", e.Message).Msg("download request failed")
	writeJSON(w, statusForKind(e.Kind), models.ErrorDownloadResult(err))
}

// statusForKind maps the error taxonomy onto HTTP status codes: client-input
// kinds are 4xx, upstream extraction trouble is 422, upstream fetch faults
// are 502, and everything local is 500.
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindUnsupportedPlatform, models.KindInvalidURL:
		return http.StatusBadRequest
	case models.KindExtraction:
		return http.StatusUnprocessableEntity
	case models.KindDownload:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode JSON", http.StatusInternalServerError)
	}
}

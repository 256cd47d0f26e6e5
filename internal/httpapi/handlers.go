package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aatumaykin/tubedrop/internal/cleanup"
	"github.com/aatumaykin/tubedrop/internal/extractor"
	"github.com/aatumaykin/tubedrop/internal/logger"
	"github.com/aatumaykin/tubedrop/internal/workers"
)

type infoRequest struct {
	URL string `json:"url"`
}

type infoResponse struct {
	Success bool                `json:"success"`
	Info    *extractor.Metadata `json:"info"`
}

type downloadRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

type downloadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
	Title    string `json:"title"`
}

type statsResponse struct {
	Success   bool            `json:"success"`
	Files     int             `json:"files"`
	Bytes     int64           `json:"bytes"`
	State     string          `json:"state"`
	LastCycle *cleanup.Report `json:"last_cycle"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	info, err := s.extractor.Info(r.Context(), req.URL)
	if err != nil {
		if isBadURL(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorCtx(r.Context(), "failed to fetch video info", err,
			logger.Field{Key: "url", Value: req.URL})
		writeError(w, http.StatusInternalServerError, "could not fetch video information")
		return
	}

	writeJSON(w, http.StatusOK, infoResponse{Success: true, Info: info})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	res, err := s.extractor.Download(r.Context(), req.URL, req.Format)
	if err != nil {
		switch {
		case errors.Is(err, workers.ErrPoolStopped):
			writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		case r.Context().Err() != nil:
			// client went away; nobody reads the response
			writeError(w, http.StatusRequestTimeout, "request cancelled")
		default:
			if !isBadURL(err) {
				s.logger.WarnCtx(r.Context(), "download failed",
					logger.Field{Key: "url", Value: req.URL},
					logger.Field{Key: "error", Value: err.Error()})
			}
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{
		Success:  true,
		Filename: res.Filename,
		Filepath: res.Filepath,
		Title:    res.Title,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "cleanup service is not configured")
		return
	}

	resp := statsResponse{
		Success: true,
		Files:   s.stats.FileCount(),
		Bytes:   s.stats.DirectorySize(),
		State:   s.stats.State().String(),
	}
	if last, ok := s.stats.LastReport(); ok {
		resp.LastCycle = &last
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v, writing a 400 (or 413) response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := r.Body
	if s.opts.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	}

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func isBadURL(err error) bool {
	return errors.Is(err, extractor.ErrInvalidURL) || errors.Is(err, extractor.ErrURLNotAllowed)
}

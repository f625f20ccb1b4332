package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/ats-resume-builder/internal/export"
	"github.com/jonathan/ats-resume-builder/internal/extract"
	"github.com/jonathan/ats-resume-builder/internal/storage"
	"github.com/jonathan/ats-resume-builder/internal/types"
)

// HealthMessage is reported by GET /api/health.
const HealthMessage = "ATS Resume Builder API is running"

// InfoResponse is the body of GET /api.
type InfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// handleOptimize optimizes a resume for a job description
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req types.OptimizeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.optimizer.Optimize(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if result.RunID != uuid.Nil {
		w.Header().Set("X-Run-ID", result.RunID.String())
	}
	s.jsonResponse(w, r, http.StatusOK, types.OptimizeResponse{OptimizedResume: result.Resume})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, r, http.StatusOK, types.HealthResponse{
		Status:    "OK",
		Message:   HealthMessage,
		Timestamp: s.now().UTC(),
	})
}

// handleInfo describes the API
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]string{
		"health":   "/api/health",
		"optimize": "/api/optimize-resume",
		"extract":  "/api/extract-text",
		"export":   "/api/export/{docx|txt|json}",
	}
	if s.history != nil {
		endpoints["history"] = "/api/history"
	}
	s.jsonResponse(w, r, http.StatusOK, InfoResponse{
		Message:   "ATS Resume Builder API",
		Version:   Version,
		Endpoints: endpoints,
	})
}

// handleExtract extracts text from an uploaded resume in the "resume" form field
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("resume")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			s.errorResponse(w, r, http.StatusRequestEntityTooLarge, MsgFileTooLarge, err)
		case errors.Is(err, http.ErrMissingFile):
			s.errorResponse(w, r, http.StatusBadRequest, MsgNoFile, nil)
		default:
			s.errorResponse(w, r, http.StatusBadRequest, MsgInvalidBody, err)
		}
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, extract.MaxUploadSize+1))
	if err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, MsgInvalidBody, err)
		return
	}

	doc, err := extract.Text(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "extracted resume text",
		"format", doc.Format, "bytes", len(data), "chars", utf8.RuneCountInString(doc.Text))
	s.jsonResponse(w, r, http.StatusOK, types.ExtractResponse{
		FileName:   doc.FileName,
		Format:     string(doc.Format),
		Text:       doc.Text,
		Characters: utf8.RuneCountInString(doc.Text),
	})
}

// handleExport renders an optimized resume as a download, or uploads it when ?store=true
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	store := false
	if raw := r.URL.Query().Get("store"); raw != "" {
		if store, err = strconv.ParseBool(raw); err != nil {
			s.errorResponse(w, r, http.StatusBadRequest, "Invalid store parameter", err)
			return
		}
	}
	if store && s.storage == nil {
		s.errorResponse(w, r, http.StatusNotFound, MsgStorageDisabled, nil)
		return
	}

	var req types.ExportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, MsgMissingResumeField, nil)
		return
	}

	body, err := export.Render(format, req.OptimizedResume)
	if err != nil {
		s.errorResponse(w, r, http.StatusInternalServerError, MsgExportFailed, err)
		return
	}

	now := s.now()
	if store {
		stored, err := s.storage.Put(r.Context(), storage.NewKey(now, string(format)), format.ContentType(), body)
		if err != nil {
			s.errorResponse(w, r, http.StatusBadGateway, MsgExportFailed, err)
			return
		}
		s.jsonResponse(w, r, http.StatusCreated, stored)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format, now)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.WarnContext(r.Context(), "failed to write export", "error", err)
	}
}

// handleListHistory lists recent optimization runs
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, r, http.StatusNotFound, MsgHistoryDisabled, nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorResponse(w, r, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		limit = n
	}

	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, r, http.StatusInternalServerError, MsgInternalError, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetHistory returns one run including its result
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, r, http.StatusNotFound, MsgHistoryDisabled, nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, MsgInvalidRunID, nil)
		return
	}

	run, err := s.history.GetRun(r.Context(), id)
	if err != nil {
		status, message := classify(err)
		if status == http.StatusInternalServerError {
			message = MsgInternalError
		}
		s.errorResponse(w, r, status, message, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, run)
}

// decodeJSON decodes the request body into v, writing the error response on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		s.errorResponse(w, r, http.StatusRequestEntityTooLarge, "Request body is too large", err)
	} else {
		s.errorResponse(w, r, http.StatusBadRequest, MsgInvalidBody, err)
	}
	return false
}

// writeError maps err to a status code and writes the error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	s.errorResponse(w, r, status, message, err)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), message, "status", status, "error", err)
	} else if err != nil {
		slog.DebugContext(r.Context(), message, "status", status, "error", err)
	}
	s.jsonResponse(w, r, status, errorBody(err, message))
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.WarnContext(r.Context(), "error encoding JSON response", "error", err)
	}
}

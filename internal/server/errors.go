package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/ats-resume-builder/internal/export"
	"github.com/jonathan/ats-resume-builder/internal/extract"
	"github.com/jonathan/ats-resume-builder/internal/history"
	"github.com/jonathan/ats-resume-builder/internal/optimize"
	"github.com/jonathan/ats-resume-builder/internal/types"
)

// Client-facing error messages.
const (
	MsgOptimizeFailed     = "Failed to optimize resume"
	MsgInvalidBody        = "Invalid request body"
	MsgPromptTooLarge     = "Job description and resume are too long"
	MsgFetchFailed        = "Failed to fetch job description"
	MsgNoFile             = "No resume file uploaded"
	MsgFileTooLarge       = "File is too large (maximum 10 MB)"
	MsgEmptyDocument      = "No text could be extracted from the file"
	MsgExtractionFailed   = "Failed to extract text from the file"
	MsgUnknownExport      = "Unknown export format (use docx, txt or json)"
	MsgRunNotFound        = "Run not found"
	MsgHistoryDisabled    = "History is not enabled"
	MsgStorageDisabled    = "Export storage is not enabled"
	MsgExportFailed       = "Failed to export resume"
	MsgUnsupportedFormat  = "Unsupported file format"
	MsgInternalError      = "Internal server error"
	MsgInvalidRunID       = "Invalid run id"
	MsgMissingResumeField = "optimizedResume is required"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// classify maps an error to its status code and client message.
func classify(err error) (int, string) {
	var (
		validationErr  *optimize.ValidationError
		tooLargeErr    *optimize.PromptTooLargeError
		fetchErr       *optimize.FetchError
		unsupportedErr *extract.UnsupportedFormatError
		extractionErr  *extract.ExtractionError
		maxBytesErr    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge, MsgPromptTooLarge
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, MsgFetchFailed
	case errors.As(err, &unsupportedErr):
		return http.StatusUnsupportedMediaType, MsgUnsupportedFormat
	case errors.Is(err, extract.ErrTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, MsgFileTooLarge
	case errors.Is(err, extract.ErrEmptyDocument):
		return http.StatusUnprocessableEntity, MsgEmptyDocument
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity, MsgExtractionFailed
	case errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest, MsgUnknownExport
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, MsgRunNotFound
	default:
		return http.StatusInternalServerError, MsgOptimizeFailed
	}
}

// errorBody builds the JSON error body. The underlying error becomes the
// details unless it only repeats the message.
func errorBody(err error, message string) types.ErrorResponse {
	resp := types.ErrorResponse{Error: message}
	if err != nil && err.Error() != message {
		resp.Details = err.Error()
	}
	return resp
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/ats-resume-builder/internal/export"
	"github.com/jonathan/ats-resume-builder/internal/extract"
	"github.com/jonathan/ats-resume-builder/internal/history"
	"github.com/jonathan/ats-resume-builder/internal/llm"
	"github.com/jonathan/ats-resume-builder/internal/optimize"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"missing input", &optimize.ValidationError{Message: optimize.MissingInputMessage}, http.StatusBadRequest, optimize.MissingInputMessage},
		{"prompt too large", &optimize.PromptTooLargeError{Tokens: 9000, Limit: 8000}, http.StatusRequestEntityTooLarge, MsgPromptTooLarge},
		{"fetch", &optimize.FetchError{URL: "https://x", Cause: errors.New("404")}, http.StatusBadGateway, MsgFetchFailed},
		{"unsupported", &extract.UnsupportedFormatError{FileName: "a.doc"}, http.StatusUnsupportedMediaType, MsgUnsupportedFormat},
		{"upload too large", extract.ErrTooLarge, http.StatusRequestEntityTooLarge, MsgFileTooLarge},
		{"empty document", extract.ErrEmptyDocument, http.StatusUnprocessableEntity, MsgEmptyDocument},
		{"corrupt document", &extract.ExtractionError{Format: extract.FormatPDF, Cause: errors.New("bad xref")}, http.StatusUnprocessableEntity, MsgExtractionFailed},
		{"unknown export", fmt.Errorf("%w: %q", export.ErrUnknownFormat, "pdf"), http.StatusBadRequest, MsgUnknownExport},
		{"run not found", history.ErrNotFound, http.StatusNotFound, MsgRunNotFound},
		{"upstream", &llm.UpstreamError{Provider: llm.ProviderOpenRouter, StatusCode: 502}, http.StatusInternalServerError, MsgOptimizeFailed},
		{"other", errors.New("boom"), http.StatusInternalServerError, MsgOptimizeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	body := errorBody(&optimize.ValidationError{Message: optimize.MissingInputMessage}, optimize.MissingInputMessage)
	assert.Empty(t, body.Details)

	body = errorBody(errors.New("status 401: invalid key"), MsgOptimizeFailed)
	assert.Equal(t, MsgOptimizeFailed, body.Error)
	assert.Equal(t, "status 401: invalid key", body.Details)

	body = errorBody(nil, MsgNoFile)
	assert.Empty(t, body.Details)
}

// Package types provides request, response and result types shared by the server, CLI and services.
package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// OptimizeRequest is the body of POST /api/optimize-resume.
type OptimizeRequest struct {
	JobDescription    string `json:"jobDescription" validate:"required"`
	ResumeText        string `json:"resumeText" validate:"required"`
	OriginalFormat    string `json:"originalFormat,omitempty" validate:"omitempty,max=100"`
	JobDescriptionURL string `json:"jobDescriptionUrl,omitempty" validate:"omitempty,url"`
}

// Normalize trims surrounding whitespace so blank inputs count as missing.
func (r *OptimizeRequest) Normalize() {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	r.ResumeText = strings.TrimSpace(r.ResumeText)
	r.OriginalFormat = strings.TrimSpace(r.OriginalFormat)
	r.JobDescriptionURL = strings.TrimSpace(r.JobDescriptionURL)
}

// Validate validates the OptimizeRequest using the validator.
func (r *OptimizeRequest) Validate() error {
	return validate.Struct(r)
}

// OptimizeResponse is the success body of POST /api/optimize-resume.
type OptimizeResponse struct {
	OptimizedResume *OptimizedResume `json:"optimizedResume"`
}

// ErrorResponse is the body of every JSON error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ExtractResponse is the body of POST /api/extract-text.
type ExtractResponse struct {
	FileName   string `json:"fileName"`
	Format     string `json:"format"`
	Text       string `json:"text"`
	Characters int    `json:"characters"`
}

// ExportRequest is the body of POST /api/export/{format}.
type ExportRequest struct {
	OptimizedResume *OptimizedResume `json:"optimizedResume" validate:"required"`
}

// Validate validates the ExportRequest using the validator.
func (r *ExportRequest) Validate() error {
	return validate.Struct(r)
}

// StoredExport describes an export uploaded to object storage.
type StoredExport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RunSummary is a recorded optimization, as listed by the history API.
type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	Model        string    `json:"model"`
	ATSScore     int       `json:"atsScore"`
	Fallback     bool      `json:"fallback"`
	PromptTokens int       `json:"promptTokens"`
	DurationMS   int64     `json:"durationMs"`
	JobDigest    string    `json:"jobDigest"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RunDetail is a recorded optimization including its result.
type RunDetail struct {
	RunSummary
	Result *OptimizedResume `json:"result"`
}

package llm

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a client is created without credentials.
var ErrMissingAPIKey = errors.New("API key is required")

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from LLM")

// UpstreamError represents a failed call to the LLM provider.
type UpstreamError struct {
	Provider   Provider
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Cause)
	default:
		return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

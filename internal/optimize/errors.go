package optimize

import (
	"errors"
	"fmt"
)

// MissingInputMessage is returned to clients when a required field is empty.
const MissingInputMessage = "Job description and resume text are required"

// ValidationError indicates the request cannot be sent upstream.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// PromptTooLargeError indicates the assembled prompt exceeds the configured token budget.
type PromptTooLargeError struct {
	Tokens int
	Limit  int
}

func (e *PromptTooLargeError) Error() string {
	return fmt.Sprintf("prompt is %d tokens, limit is %d", e.Tokens, e.Limit)
}

// FetchError indicates the job description URL could not be read.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch job description from %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Reasons a model reply falls back to the raw-text result.
var (
	ErrNoJSON      = errors.New("no JSON found in response")
	ErrNoSections  = errors.New("invalid response structure: missing sections array")
	ErrInvalidJSON = errors.New("response JSON could not be parsed or repaired")
)

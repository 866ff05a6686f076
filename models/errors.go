package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeRelay        = "RELAY_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GatherError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type GatherError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *GatherError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GatherError) Unwrap() error {
	return e.Err
}

// NewGatherError creates a new GatherError.
func NewGatherError(code, message string, err error) *GatherError {
	return &GatherError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *GatherError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode classifies why a recognition path did not produce a label.
type ErrorCode string

const (
	// Remote path
	ErrorRemoteDisabled    ErrorCode = "REMOTE_DISABLED"
	ErrorCredentialMissing ErrorCode = "CREDENTIAL_MISSING"
	ErrorNetworkFailed     ErrorCode = "NETWORK_FAILED"
	ErrorUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorRateLimited       ErrorCode = "RATE_LIMITED"
	ErrorBadStatus         ErrorCode = "BAD_STATUS"
	ErrorMalformedResponse ErrorCode = "MALFORMED_RESPONSE"

	// Image handling
	ErrorImageEncode ErrorCode = "IMAGE_ENCODE_FAILED"
	ErrorImageDecode ErrorCode = "IMAGE_DECODE_FAILED"

	// Local path
	ErrorDetectorFailed ErrorCode = "DETECTOR_FAILED"
)

// RecognitionError is a coded failure inside the recognition pipeline.
// It is logged by the orchestrator and never returned to its callers.
type RecognitionError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Timestamp  time.Time
	Cause      error
}

func (e *RecognitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RecognitionError) Unwrap() error {
	return e.Cause
}

func NewRemoteDisabledError() *RecognitionError {
	return &RecognitionError{
		Code:      ErrorRemoteDisabled,
		Message:   "remote recognition disabled by configuration",
		Timestamp: time.Now(),
	}
}

func NewCredentialMissingError() *RecognitionError {
	return &RecognitionError{
		Code:      ErrorCredentialMissing,
		Message:   "no vision API credential configured",
		Timestamp: time.Now(),
	}
}

func NewNetworkError(cause error) *RecognitionError {
	return &RecognitionError{
		Code:      ErrorNetworkFailed,
		Message:   "vision API request failed",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// NewStatusError maps a non-200 HTTP status to its error code.
func NewStatusError(status int, body string) *RecognitionError {
	code := ErrorBadStatus
	switch status {
	case 401:
		code = ErrorUnauthorized
	case 429:
		code = ErrorRateLimited
	}
	return &RecognitionError{
		Code:       code,
		Message:    fmt.Sprintf("vision API returned status %d: %s", status, body),
		StatusCode: status,
		Timestamp:  time.Now(),
	}
}

func NewMalformedResponseError(reason string, cause error) *RecognitionError {
	return &RecognitionError{
		Code:      ErrorMalformedResponse,
		Message:   reason,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewImageEncodeError(cause error) *RecognitionError {
	return &RecognitionError{
		Code:      ErrorImageEncode,
		Message:   "failed to encode image as JPEG",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewImageDecodeError(cause error) *RecognitionError {
	return &RecognitionError{
		Code:      ErrorImageDecode,
		Message:   "image cannot be interpreted as pixels",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewDetectorError(cause error) *RecognitionError {
	return &RecognitionError{
		Code:      ErrorDetectorFailed,
		Message:   "structural detection failed, using degraded signal",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// CodeOf returns the code of the first RecognitionError in err's chain,
// or an empty code when there is none.
func CodeOf(err error) ErrorCode {
	var re *RecognitionError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// ToMap converts the error to a flat map for structured logging.
func (e *RecognitionError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}
	if e.StatusCode != 0 {
		result["status_code"] = e.StatusCode
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/usestring/json2gql/internal/source"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeFetchError   = "FETCH_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeConvertError = "CONVERT_ERROR"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapFetchError converts a source retrieval error to a coded error.
func WrapFetchError(err error) error {
	if err == nil {
		return nil
	}

	coded := &CodedError{Code: ErrCodeFetchError, Message: "fetching document failed", Cause: err}

	var httpErr *source.HTTPError
	var netErr net.Error
	switch {
	case errors.As(err, &httpErr):
		coded.Message = fmt.Sprintf("status %d", httpErr.StatusCode)
		if httpErr.StatusCode == http.StatusNotFound {
			coded.Code = ErrCodeNotFound
		}
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		coded.Code = ErrCodeTimeout
		coded.Message = "request timed out"
	case errors.Is(err, source.ErrUnsupportedSource):
		coded.Code = ErrCodeInvalidInput
		coded.Message = "unsupported url"
	}

	slog.Warn("fetch error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)
	return coded
}

// ErrConvert wraps a decode, select or conversion failure.
func ErrConvert(err error) error {
	return &CodedError{
		Code:    ErrCodeConvertError,
		Message: "conversion failed",
		Cause:   err,
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

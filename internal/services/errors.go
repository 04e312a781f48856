package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrTimeout            = errors.New("timeout")
	ErrRateLimited        = errors.New("rate limited")
	ErrHTTP               = errors.New("http error")
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")
	ErrMismatchedResponse = errors.New("mismatched response")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConfiguration      = errors.New("configuration error")
	ErrNotFound           = errors.New("not found")
	ErrClosed             = errors.New("closed")
	ErrTransient          = errors.New("transient failure")
)

// HTTPError reports a non-2xx upstream response other than 429. It matches
// ErrHTTP under errors.Is.
type HTTPError struct {
	Source string
	Status int
}

func (e *HTTPError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("http %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s: http %d %s", e.Source, e.Status, http.StatusText(e.Status))
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTransient reports whether err is a failure that a later enrichment pass
// may recover from. Transient outcomes are never cached.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMismatchedResponse), errors.Is(err, ErrNotFound):
		return false
	default:
		return true
	}
}

// Kind returns a short label for the error taxonomy, used in logs and CLI output.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrDailyLimitExceeded):
		return "daily_limit_exceeded"
	case errors.Is(err, ErrMismatchedResponse):
		return "mismatched_response"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrHTTP):
		return "http_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "transient"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

package domain

import (
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrEmptyDataset is returned when a source parses but yields no valid rows.
	ErrEmptyDataset = errors.New("no valid inventory items found")

	// ErrNoData is returned by a trend provider that has no series for a keyword.
	ErrNoData = errors.New("no trend data available")
)

// DataSourceError reports a missing, unreadable or malformed inventory source.
type DataSourceError struct {
	Path   string
	Reason string
	Err    error
}

// NewDataSourceError wraps err with a stack trace so zerolog's pkgerrors
// marshaler and the debug API response can print where the load failed.
func NewDataSourceError(path, reason string, err error) *DataSourceError {
	if err == nil {
		err = pkgerrors.New(reason)
	} else {
		err = pkgerrors.WithStack(err)
	}
	return &DataSourceError{Path: path, Reason: reason, Err: err}
}

func (e *DataSourceError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Reason {
		return fmt.Sprintf("inventory source %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("inventory source %q: %s", e.Path, e.Reason)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// RateLimitError is a retryable provider failure. RetryAfter is the delay
// suggested by the provider, zero when none was given.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("%s: rate limited", e.Provider)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// ProviderError is a non-retryable provider failure.
type ProviderError struct {
	Provider   string
	Keyword    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Provider
	if e.Keyword != "" {
		msg += fmt.Sprintf(" [%s]", e.Keyword)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationError reports a malformed user-supplied parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsRateLimit reports whether err carries a RateLimitError and returns it.
func IsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

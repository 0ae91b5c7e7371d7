package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrQueryTooLong       = fmt.Errorf("query exceeds maximum length")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrBackendUnavailable = fmt.Errorf("backend unavailable")
	ErrEmptyResults       = fmt.Errorf("backend returned no results")
	ErrUnparseableBody    = fmt.Errorf("unparseable response body")
	ErrAllBackendsFailed  = fmt.Errorf("all backends failed")
	ErrCircuitOpen        = fmt.Errorf("circuit breaker open")
	ErrRateLimit          = fmt.Errorf("rate limit exceeded")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Backend.Search")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsBackendFailure reports whether err should trigger fallthrough to the
// next backend rather than aborting the request.
func IsBackendFailure(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, ErrEmptyResults) ||
		errors.Is(err, ErrUnparseableBody) ||
		errors.Is(err, ErrCircuitOpen)
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

// Error codes. Every sentinel error maps to exactly one code.
const (
	CodeUnknown           ErrorCode = "UNKNOWN"
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeQueryTooLong      ErrorCode = "QUERY_TOO_LONG"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeBackendUnavail    ErrorCode = "BACKEND_UNAVAILABLE"
	CodeEmptyResults      ErrorCode = "EMPTY_RESULTS"
	CodeUnparseableBody   ErrorCode = "UNPARSEABLE_BODY"
	CodeAllBackendsFailed ErrorCode = "ALL_BACKENDS_FAILED"
	CodeCircuitOpen       ErrorCode = "CIRCUIT_OPEN"
	CodeRateLimit         ErrorCode = "RATE_LIMIT"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrInvalidInput:       CodeInvalidInput,
	ErrQueryTooLong:       CodeQueryTooLong,
	ErrTimeout:            CodeTimeout,
	ErrBackendUnavailable: CodeBackendUnavail,
	ErrEmptyResults:       CodeEmptyResults,
	ErrUnparseableBody:    CodeUnparseableBody,
	ErrAllBackendsFailed:  CodeAllBackendsFailed,
	ErrCircuitOpen:        CodeCircuitOpen,
	ErrRateLimit:          CodeRateLimit,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and uses errors.Is to match sentinel errors.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	if code, ok := errorCodeMap[e.Err]; ok {
		return code
	}
	return CodeUnknown
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Fault reports whether the error was raised while computing an element.
func (e *AppError) Fault() bool { return IsFaultCode(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Common Error Constructors ---

// InvalidArgument creates an AppError for a missing or malformed argument
// supplied while composing a sequence.
func InvalidArgument(operator, argument, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("%s: invalid %s: %s", operator, argument, reason),
		Details: map[string]any{"operator": operator, "argument": argument},
	}
}

// Evaluation creates an AppError for a caller function that failed while
// computing the element at index within the named stage.
func Evaluation(stage string, index int, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeEvaluationFailed,
		Message: fmt.Sprintf("%s failed on element %d", stage, index),
		Details: map[string]any{"stage": stage, "index": index},
		Cause:   cause,
	}
}

// EmptySequence creates an AppError for an operation that needs at least one element.
func EmptySequence(operation string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptySequence,
		Message: fmt.Sprintf("%s: sequence contains no elements", operation),
		Details: map[string]any{"operation": operation},
	}
}

// IndexOutOfRange creates an AppError for a positional read past the end of a
// sequence holding length elements.
func IndexOutOfRange(index, length int) *AppError {
	return &AppError{
		Code:    ErrCodeIndexOutOfRange,
		Message: fmt.Sprintf("index %d out of range for sequence of %d elements", index, length),
		Details: map[string]any{"index": index, "length": length},
	}
}

// InvalidConfig creates an AppError for a configuration field that failed a check.
func InvalidConfig(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("invalid configuration: %s", reason),
		Details: details,
	}
}

// Validation creates an AppError for aggregated validation failures.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidConfig, Message: message}
}

// Internal creates an AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err's chain holds an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Composition errors
const (
	// ErrCodeInvalidArgument indicates a sequence or operator was built with invalid input.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Traversal errors
const (
	// ErrCodeEvaluationFailed indicates a caller-supplied function failed on an element.
	ErrCodeEvaluationFailed ErrorCode = "EVALUATION_FAILED"
	// ErrCodeEmptySequence indicates an element was requested from an empty sequence.
	ErrCodeEmptySequence ErrorCode = "EMPTY_SEQUENCE"
	// ErrCodeIndexOutOfRange indicates a positional read past the end of a sequence.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
)

// Application errors
const (
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var faultCodes = map[ErrorCode]bool{
	ErrCodeEvaluationFailed: true,
	ErrCodeInternal:         true,
}

// IsFaultCode reports whether the code describes a failure raised while
// elements were being computed, as opposed to a usage or lookup error.
func IsFaultCode(code ErrorCode) bool {
	return faultCodes[code]
}

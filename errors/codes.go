package errors

// ErrorCategory classifies errors by how a caller should react to them.
type ErrorCategory string

const (
	// CategoryPermanent indicates the input is invalid and retrying cannot help.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates unexpected errors, bugs, or corrupted compiled-in data.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // No registry entry for a name
	ErrCodeMalformedURL ErrorCode = "MALFORMED_URL" // Remote URL failed to parse
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Data or settings failed validation
	ErrCodeUnsupported  ErrorCode = "UNSUPPORTED"   // Backend kind or OS not supported
	ErrCodeInternal     ErrorCode = "INTERNAL"      // Unexpected internal error
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeNotFound, ErrCodeMalformedURL, ErrCodeInvalidInput, ErrCodeUnsupported:
		return CategoryPermanent
	default:
		return CategoryInternal
	}
}

var codeDescriptions = map[ErrorCode]string{
	ErrCodeNotFound:     "not found in registry",
	ErrCodeMalformedURL: "malformed url",
	ErrCodeInvalidInput: "invalid input provided",
	ErrCodeUnsupported:  "not supported",
	ErrCodeInternal:     "internal error",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeEmptyData  ErrorType = "EMPTY_DATA"
	ErrTypeIO         ErrorType = "IO"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeInternal   ErrorType = "INTERNAL"
)

// Sentinels for errors.Is. Every typed error below matches the sentinel of its type.
var (
	ErrValidation = stderrors.New("validation error")
	ErrEmptyData  = stderrors.New("empty data")
	ErrIO         = stderrors.New("io error")
	ErrConfig     = stderrors.New("config error")
)

// Reasons reported by ValidationError.
const (
	ReasonMissingColumn    = "missing column"
	ReasonDuplicateColumn  = "duplicate column"
	ReasonEmptyProduct     = "empty product"
	ReasonNonNumericStock  = "non-numeric stock"
	ReasonNegativeStock    = "negative stock"
	ReasonStockOutOfRange  = "stock out of range"
	ReasonDuplicateProduct = "duplicate product"
	ReasonMalformedInput   = "malformed input"
	ReasonInputTooLarge    = "input too large"
	ReasonUnsupportedInput = "unsupported format"
)

// typed is implemented by every error of this package.
type typed interface {
	ErrorType() ErrorType
}

// TypeOf returns the ErrorType of the first typed error in err's chain,
// or ErrTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var t typed
	if stderrors.As(err, &t) {
		return t.ErrorType()
	}
	return ErrTypeInternal
}

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorType returns the type of the error
func (e *AppError) ErrorType() ErrorType {
	return e.Type
}

// Is matches the sentinel of the error type
func (e *AppError) Is(target error) bool {
	return sentinelFor(e.Type) == target
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

func sentinelFor(t ErrorType) error {
	switch t {
	case ErrTypeValidation:
		return ErrValidation
	case ErrTypeEmptyData:
		return ErrEmptyData
	case ErrTypeIO:
		return ErrIO
	case ErrTypeConfig:
		return ErrConfig
	}
	return nil
}

// ValidationError reports malformed input. Row is the 1-based data row;
// zero refers to the header row.
type ValidationError struct {
	Row    int
	Column string
	Reason string
	Value  string
	Detail string
}

// NewValidationError creates a validation error for a data row
func NewValidationError(row int, column, reason, value string) *ValidationError {
	return &ValidationError{Row: row, Column: column, Reason: reason, Value: value}
}

// NewHeaderError creates a validation error for the header row
func NewHeaderError(column, reason string) *ValidationError {
	return &ValidationError{Column: column, Reason: reason}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d: %s", e.Row, e.Reason)
	} else {
		fmt.Fprintf(&b, "header: %s", e.Reason)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " (column %q", e.Column)
		if e.Value != "" {
			fmt.Fprintf(&b, ", value %q", e.Value)
		}
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// WithDetail sets a free-form detail on the error
func (e *ValidationError) WithDetail(format string, args ...interface{}) *ValidationError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// ErrorType returns ErrTypeValidation
func (e *ValidationError) ErrorType() ErrorType { return ErrTypeValidation }

// Is matches ErrValidation
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// EmptyDataError reports a dataset that is well-formed but cannot be aggregated or drawn.
type EmptyDataError struct {
	Reason string
}

// NewEmptyDataError creates an empty data error
func NewEmptyDataError(reason string) *EmptyDataError {
	return &EmptyDataError{Reason: reason}
}

// Error implements the error interface
func (e *EmptyDataError) Error() string {
	return "empty data: " + e.Reason
}

// ErrorType returns ErrTypeEmptyData
func (e *EmptyDataError) ErrorType() ErrorType { return ErrTypeEmptyData }

// Is matches ErrEmptyData
func (e *EmptyDataError) Is(target error) bool { return target == ErrEmptyData }

// IOError reports an unreadable source or unwritable destination.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// NewIOError creates an IO error
func NewIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("io error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *IOError) Unwrap() error { return e.Err }

// ErrorType returns ErrTypeIO
func (e *IOError) ErrorType() ErrorType { return ErrTypeIO }

// Is matches ErrIO
func (e *IOError) Is(target error) bool { return target == ErrIO }

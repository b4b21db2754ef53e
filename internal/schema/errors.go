// file: internal/schema/errors.go
package schema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrorCode classifies validation failures.
type ErrorCode int

// Defined validation error codes.
const (
	ErrSchemaNotFound ErrorCode = iota + 1000
	ErrSchemaCompileFailed
	ErrValidationFailed
	ErrInvalidJSONFormat
)

// ValidationError describes why a document was rejected.
type ValidationError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// SchemaPath is the keyword location that failed, e.g. "/properties/limit/type".
	SchemaPath string
	// InstancePath is the offending location in the document, e.g. "/limit".
	InstancePath string
	// Details lists every leaf failure as "path: message".
	Details []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	base := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if e.InstancePath != "" {
		base += fmt.Sprintf(" (at %s)", e.InstancePath)
	}
	if len(e.Details) > 0 {
		base += ": " + strings.Join(e.Details, "; ")
	}
	return base
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a ValidationError.
func NewValidationError(code ErrorCode, message string, cause error) *ValidationError {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &ValidationError{Code: code, Message: message, Cause: wrapped}
}

// convertValidationError flattens a jsonschema error into a ValidationError.
func convertValidationError(valErr *jsonschema.ValidationError, name string) *ValidationError {
	out := NewValidationError(ErrValidationFailed, fmt.Sprintf("invalid arguments for %s", name), valErr)
	basic := valErr.BasicOutput()
	for _, e := range basic.Errors {
		if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
			continue
		}
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out.Details = append(out.Details, loc+": "+e.Error)
		if out.InstancePath == "" {
			out.InstancePath = loc
			out.SchemaPath = e.KeywordLocation
		}
	}
	if len(out.Details) == 0 {
		out.Details = []string{valErr.Message}
	}
	return out
}

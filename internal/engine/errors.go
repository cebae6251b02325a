package engine

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func UnauthorizedError(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Status: 401, Message: msg}
}

func ForbiddenError(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Status: 403, Message: msg}
}

func ValidationError(details []ErrorDetail) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Status:  422,
		Message: "Validation failed",
		Details: details,
	}
}

// Failures talking to Notion are reported with a generic message; the cause
// is logged server-side only.

func SchemaLoadError() *AppError {
	return &AppError{
		Code:    "SCHEMA_LOAD_FAILED",
		Status:  502,
		Message: "Loading Notion database data failed for some reason",
	}
}

func SearchError() *AppError {
	return &AppError{
		Code:    "SEARCH_FAILED",
		Status:  502,
		Message: "Searching Notion databases failed for some reason",
	}
}

func WriteError() *AppError {
	return &AppError{
		Code:    "WRITE_FAILED",
		Status:  502,
		Message: "Saving your data failed for some reason",
	}
}

var (
	ErrNoTitleProperty         = errors.New("schema has no title property")
	ErrMultipleTitleProperties = errors.New("schema has more than one title property")
)

// SchemaError reports a database schema that cannot be represented as a form.
// It is a caller contract violation, not a user-correctable condition.
type SchemaError struct {
	DatabaseID string
	Err        error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("database %s: %v", e.DatabaseID, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

package table

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the closed failure taxonomy of the engine and
// the export boundary. Operations wrap these in *Error; callers match
// with errors.Is.
var (
	ErrColumnNotFound             = errors.New("column not found")
	ErrParse                      = errors.New("value cannot be parsed")
	ErrUnsupportedStrategyForType = errors.New("strategy unsupported for column type")
	ErrUnsupportedTypeName        = errors.New("unsupported target type")
	ErrNameCollision              = errors.New("column name collision")
	ErrEmptyResultAfterFilter     = errors.New("operation would remove every row or column")
	ErrCustomTransform            = errors.New("custom transform failed")
	ErrStorageUnavailable         = errors.New("storage unavailable")
	ErrEncodingUnsupported        = errors.New("encoding unsupported")
	ErrWriteFailed                = errors.New("write failed")
)

// Error is a typed operation failure: which operation rejected, the
// offending column when there is one, the taxonomy kind and an optional
// cause.
type Error struct {
	Op     string // operation kind, e.g. "convert_types"
	Column string // offending column, may be empty
	Kind   error  // one of the sentinel errors above
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q)", e.Column)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

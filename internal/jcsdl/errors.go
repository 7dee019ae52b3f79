package jcsdl

import (
	"errors"
	"fmt"

	"github.com/hyperjump/jcsdl/internal/schema"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrFormat    = errors.New("malformed JCSDL")
	ErrIntegrity = errors.New("JCSDL integrity check failed")
	ErrValueType = errors.New("invalid filter value")
)

// FormatError reports structural malformation. Line is 1-based, 0 when unknown.
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("jcsdl: line %d: %s", e.Line, e.Reason)
	}
	return "jcsdl: " + e.Reason
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// IntegrityError reports a hash mismatch. Filter is the zero-based index of the
// offending filter, or -1 for the master (whole document) hash.
type IntegrityError struct {
	Filter   int
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	if e.Filter < 0 {
		return fmt.Sprintf("jcsdl: document hash mismatch: expected %s, computed %s", e.Expected, e.Actual)
	}
	return fmt.Sprintf("jcsdl: filter %d hash mismatch: expected %s, computed %s", e.Filter, e.Expected, e.Actual)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// ValueTypeError reports a value the field type rejects.
type ValueTypeError struct {
	Type     schema.FieldType
	Operator string
	Value    string
	Reason   string
}

func (e *ValueTypeError) Error() string {
	return fmt.Sprintf("jcsdl: value %q for %s field with operator %s: %s", e.Value, e.Type, e.Operator, e.Reason)
}

func (e *ValueTypeError) Is(target error) bool { return target == ErrValueType }

// FilterError ties a failure to one filter of a document.
type FilterError struct {
	Index int
	Path  string
	Err   error
}

func (e *FilterError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("filter %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("filter %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }

// Error kinds returned by Kind.
const (
	KindFormat          = "format"
	KindIntegrity       = "integrity"
	KindUnknownTarget   = "unknown_target"
	KindUnknownField    = "unknown_field"
	KindUnknownOperator = "unknown_operator"
	KindValueType       = "value_type"
)

// Kind classifies err for callers that render diagnostics. It returns "" for
// errors outside the codec taxonomy.
func Kind(err error) string {
	var (
		fe  *FormatError
		ie  *IntegrityError
		te  *schema.UnknownTargetError
		ufe *schema.UnknownFieldError
		oe  *schema.UnknownOperatorError
		ve  *ValueTypeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ie):
		return KindIntegrity
	case errors.As(err, &fe):
		return KindFormat
	case errors.As(err, &te):
		return KindUnknownTarget
	case errors.As(err, &ufe):
		return KindUnknownField
	case errors.As(err, &oe):
		return KindUnknownOperator
	case errors.As(err, &ve):
		return KindValueType
	default:
		return ""
	}
}

package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is matched by every schema lookup miss.
var ErrUnknown = errors.New("unknown schema reference")

// UnknownTargetError indicates a target that is not in the schema.
type UnknownTargetError struct {
	Target string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target %q", e.Target)
}

func (e *UnknownTargetError) Is(target error) bool { return target == ErrUnknown }

// UnknownFieldError indicates a field path that does not resolve.
// Segment is the first path element that had no definition and Depth its
// index in Path.
type UnknownFieldError struct {
	Target  string
	Path    []string
	Segment string
	Depth   int
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in path %s.%s", e.Segment, e.Target, strings.Join(e.Path, "."))
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknown }

// UnknownOperatorError indicates an operator name that is not in the schema.
type UnknownOperatorError struct {
	Operator string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Operator)
}

func (e *UnknownOperatorError) Is(target error) bool { return target == ErrUnknown }

package jcsdl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/jcsdl/internal/csdl"
	"github.com/hyperjump/jcsdl/internal/geo"
	"github.com/hyperjump/jcsdl/internal/schema"
)

// Escaper escapes and unescapes the content of a CSDL string literal. regex is
// set when the literal is the value of a regular-expression operator.
type Escaper interface {
	Escape(s string, regex bool) string
	Unescape(s string, regex bool) string
}

var (
	numberPattern  = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
	integerPattern = regexp.MustCompile(`^-?[0-9]+$`)
)

// ValueCodec converts a single filter value between its CSDL literal and the
// value the filter editor works with.
type ValueCodec struct {
	escaper Escaper
}

// NewValueCodec returns a value codec using e, or the CSDL literal rules when e is nil.
func NewValueCodec(e Escaper) *ValueCodec {
	if e == nil {
		e = csdl.Literal{}
	}
	return &ValueCodec{escaper: e}
}

// Quoted reports whether values of field are written as double-quoted literals.
func Quoted(field *schema.FieldDefinition) bool {
	return field.Type != schema.TypeInt
}

// Encode returns the CSDL literal for value. Quoted literals include their quotes.
func (vc *ValueCodec) Encode(field *schema.FieldDefinition, operator, value string) (string, error) {
	if strings.ContainsAny(value, "\r\n") {
		return "", &ValueTypeError{Type: field.Type, Operator: operator, Value: value, Reason: "value must not contain line breaks"}
	}
	if field.Type == schema.TypeInt {
		if operator != schema.OperatorIn {
			if !numberPattern.MatchString(value) {
				return "", &ValueTypeError{Type: field.Type, Operator: operator, Value: value, Reason: "not a number"}
			}
			return value, nil
		}
		items := strings.Split(value, ",")
		for _, item := range items {
			if !integerPattern.MatchString(item) {
				return "", &ValueTypeError{Type: field.Type, Operator: operator, Value: value, Reason: fmt.Sprintf("list item %q is not an integer", item)}
			}
		}
		return "[" + strings.Join(items, ",") + "]", nil
	}

	if field.Type == schema.TypeGeo {
		if _, err := geo.Parse(operator, value); err != nil {
			return "", &ValueTypeError{Type: field.Type, Operator: operator, Value: value, Reason: err.Error()}
		}
	}
	regex := schema.IsRegexOperator(operator)
	if regex && danglingBackslash(value) {
		return "", &ValueTypeError{Type: field.Type, Operator: operator, Value: value, Reason: "regular expression ends with an unescaped backslash"}
	}
	return `"` + vc.escaper.Escape(value, regex) + `"`, nil
}

// danglingBackslash reports whether s ends in an odd run of backslashes, which
// would escape the closing quote of an unescaped regex literal.
func danglingBackslash(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// Decode returns the value for literal. For quoted types literal is the content
// between the quotes.
func (vc *ValueCodec) Decode(field *schema.FieldDefinition, operator, literal string) (string, error) {
	if field.Type == schema.TypeInt {
		if operator != schema.OperatorIn {
			return literal, nil
		}
		if len(literal) < 2 || literal[0] != '[' || literal[len(literal)-1] != ']' {
			return "", &FormatError{Reason: fmt.Sprintf("integer list %q is not bracketed", literal)}
		}
		return literal[1 : len(literal)-1], nil
	}
	return vc.escaper.Unescape(literal, schema.IsRegexOperator(operator)), nil
}

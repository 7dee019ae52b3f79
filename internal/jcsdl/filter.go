package jcsdl

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/hyperjump/jcsdl/internal/models"
	"github.com/hyperjump/jcsdl/internal/schema"
)

// Block is one encoded filter: the start line's hash and syntax, and the CSDL fragment.
type Block struct {
	Hash   string
	Syntax string
	CSDL   string
}

// String renders the three lines of the block.
func (b *Block) String() string {
	return startPrefix + b.Hash + " " + b.Syntax + "\n" + b.CSDL + "\n" + endMarker
}

// EncodeFilter renders f as a block. It fails when the field or operator is not in
// the schema or when the value does not fit the field type.
func (c *Codec) EncodeFilter(f *models.Filter) (*Block, error) {
	if f == nil {
		return nil, &FormatError{Reason: "nil filter"}
	}
	field, err := c.resolver.Field(f.Target, f.FieldPath)
	if err != nil {
		return nil, err
	}
	code, err := c.resolver.OperatorCode(f.Operator)
	if err != nil {
		return nil, err
	}

	path := f.Path()
	fragment := path
	syntax := path + "," + f.Operator

	if f.Operator == schema.OperatorExists {
		fragment += " " + code
	} else {
		literal, err := c.values.Encode(field, f.Operator, f.Value)
		if err != nil {
			return nil, err
		}
		if f.CaseSensitive {
			fragment += " " + csMarker
		}
		fragment += " " + code + " "

		start := utf16Len(fragment)
		length := utf16Len(literal)
		if Quoted(field) {
			start++
			length -= 2
		}
		fragment += literal
		syntax += "," + strconv.Itoa(start) + "-" + strconv.Itoa(length)
		if f.CaseSensitive {
			syntax += "," + csMarker
		}
	}

	return &Block{
		Hash:   c.verifier.FilterHash(fragment),
		Syntax: syntax,
		CSDL:   fragment,
	}, nil
}

// DecodeFilter rebuilds a filter from the syntax of its start line and its CSDL
// fragment. The fragment's hash is expected to be verified already.
func (c *Codec) DecodeFilter(syntax, fragment string) (*models.Filter, error) {
	tokens := strings.Split(syntax, ",")
	if len(tokens) < 2 || tokens[0] == "" || tokens[1] == "" {
		return nil, &FormatError{Reason: "filter syntax " + strconv.Quote(syntax) + " needs a field path and an operator"}
	}

	target, path := schema.SplitPath(tokens[0])
	field, err := c.resolver.Field(target, path)
	if err != nil {
		return nil, err
	}
	operator := tokens[1]
	if _, err := c.resolver.OperatorCode(operator); err != nil {
		return nil, err
	}

	f := &models.Filter{
		Target:    target,
		FieldPath: path,
		Operator:  operator,
	}
	if operator == schema.OperatorExists {
		return f, nil
	}

	if len(tokens) < 3 {
		return nil, &FormatError{Reason: "filter syntax " + strconv.Quote(syntax) + " has no value range"}
	}
	start, length, err := parseRange(tokens[2])
	if err != nil {
		return nil, err
	}
	units := utf16.Encode([]rune(fragment))
	if start > len(units) || length > len(units)-start {
		return nil, &FormatError{Reason: "value range " + tokens[2] + " is outside the CSDL fragment"}
	}
	value, err := c.values.Decode(field, operator, string(utf16.Decode(units[start:start+length])))
	if err != nil {
		return nil, err
	}
	f.Value = value

	for _, token := range tokens[3:] {
		switch token {
		case csMarker:
			f.CaseSensitive = true
		}
	}
	return f, nil
}

// utf16Len counts s in UTF-16 code units, the unit of value ranges.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// parseRange parses "start-length".
func parseRange(s string) (int, int, error) {
	startStr, lengthStr, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, &FormatError{Reason: "value range " + strconv.Quote(s) + " is not start-length"}
	}
	start, err := strconv.Atoi(startStr)
	if err != nil || start < 0 {
		return 0, 0, &FormatError{Reason: "value range " + strconv.Quote(s) + " has an invalid start"}
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil || length < 0 {
		return 0, 0, &FormatError{Reason: "value range " + strconv.Quote(s) + " has an invalid length"}
	}
	return start, length, nil
}

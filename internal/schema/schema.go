// Package schema describes the targets, nested fields and operators a filter may reference,
// and resolves filter paths against them.
package schema

import (
	"sort"
	"strings"
)

// FieldType is the declared type of a field.
type FieldType string

const (
	TypeInt    FieldType = "int"
	TypeString FieldType = "string"
	TypeGeo    FieldType = "geo"
)

// Operator names with special meaning to the codec.
const (
	OperatorExists       = "exists"
	OperatorIn           = "in"
	OperatorRegexPartial = "regex_partial"
	OperatorRegexExact   = "regex_exact"
)

// IsRegexOperator reports whether op takes a regular expression as its value.
func IsRegexOperator(op string) bool {
	return op == OperatorRegexPartial || op == OperatorRegexExact
}

// FieldDefinition describes a target or a field. Fields holds nested definitions.
type FieldDefinition struct {
	Name   string                      `yaml:"name,omitempty" json:"name,omitempty"`
	Type   FieldType                   `yaml:"type" json:"type"`
	Fields map[string]*FieldDefinition `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// OperatorDefinition maps an operator name to its CSDL token.
type OperatorDefinition struct {
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	Code  string `yaml:"code" json:"code"`
}

// Definition is the full schema. It is never mutated after Load/Parse return it.
type Definition struct {
	Targets   map[string]*FieldDefinition    `yaml:"targets" json:"targets"`
	Operators map[string]*OperatorDefinition `yaml:"operators" json:"operators"`
}

// Target returns the definition of a top-level target.
func (d *Definition) Target(name string) (*FieldDefinition, error) {
	if t, ok := d.Targets[name]; ok && t != nil {
		return t, nil
	}
	return nil, &UnknownTargetError{Target: name}
}

// Field descends from target through path one segment at a time.
func (d *Definition) Field(target string, path []string) (*FieldDefinition, error) {
	field, err := d.Target(target)
	if err != nil {
		return nil, err
	}
	for i, name := range path {
		next, ok := field.Fields[name]
		if !ok || next == nil {
			return nil, &UnknownFieldError{Target: target, Path: append([]string(nil), path...), Segment: name, Depth: i}
		}
		field = next
	}
	return field, nil
}

// OperatorCode returns the CSDL token for an operator name.
func (d *Definition) OperatorCode(name string) (string, error) {
	if op, ok := d.Operators[name]; ok && op != nil {
		return op.Code, nil
	}
	return "", &UnknownOperatorError{Operator: name}
}

// TargetNames returns the sorted target names.
func (d *Definition) TargetNames() []string {
	names := make([]string, 0, len(d.Targets))
	for name := range d.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldPaths returns every dotted path reachable in the schema, sorted.
// Paths of fields that have nested fields are included as well.
func (d *Definition) FieldPaths() []string {
	var out []string
	var walk func(prefix string, f *FieldDefinition)
	walk = func(prefix string, f *FieldDefinition) {
		out = append(out, prefix)
		for name, child := range f.Fields {
			walk(prefix+"."+name, child)
		}
	}
	for name, t := range d.Targets {
		walk(name, t)
	}
	sort.Strings(out)
	return out
}

// SplitPath splits "target.a.b" into the target and its field path.
func SplitPath(dotted string) (string, []string) {
	parts := strings.Split(dotted, ".")
	if len(parts) == 1 {
		return parts[0], nil
	}
	return parts[0], parts[1:]
}

package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader errors
var (
	ErrSchemaFileNotFound = errors.New("schema file not found")
	ErrInvalidSchema      = errors.New("invalid schema")
)

// Load reads a schema definition from a YAML or JSON file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schema definition. JSON input is accepted
// since it is a subset of YAML.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := def.normalize(); err != nil {
		return nil, err
	}
	return &def, nil
}

// normalize fills field names, maps type aliases and checks the definition is usable.
func (d *Definition) normalize() error {
	if len(d.Targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrInvalidSchema)
	}
	for name, target := range d.Targets {
		if target == nil {
			return fmt.Errorf("%w: target %q is empty", ErrInvalidSchema, name)
		}
		if err := normalizeField(name, name, target); err != nil {
			return err
		}
	}
	for _, required := range []string{OperatorExists, OperatorIn} {
		if _, ok := d.Operators[required]; !ok {
			return fmt.Errorf("%w: operator %q is required", ErrInvalidSchema, required)
		}
	}
	for name, op := range d.Operators {
		if op == nil || op.Code == "" {
			return fmt.Errorf("%w: operator %q has no code", ErrInvalidSchema, name)
		}
	}
	return nil
}

func normalizeField(name, path string, f *FieldDefinition) error {
	f.Name = name
	if f.Type == "integer" {
		f.Type = TypeInt
	}
	if f.Type == "" && len(f.Fields) == 0 {
		return fmt.Errorf("%w: field %q has no type", ErrInvalidSchema, path)
	}
	for child, def := range f.Fields {
		if def == nil {
			return fmt.Errorf("%w: field %q is empty", ErrInvalidSchema, path+"."+child)
		}
		if err := normalizeField(child, path+"."+child, def); err != nil {
			return err
		}
	}
	return nil
}

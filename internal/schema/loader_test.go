package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testSchemaYAML = `
targets:
  news:
    fields:
      headline:
        type: string
      words:
        type: integer
      location:
        type: geo
operators:
  exists:
    code: exists
  in:
    code: in
  equals:
    code: "=="
`

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(testSchemaYAML), 0600); err != nil {
		t.Fatal(err)
	}
	def, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	f, err := def.Field("news", []string{"words"})
	if err != nil {
		t.Fatal(err)
	}
	if f.Type != TypeInt {
		t.Errorf("integer alias not mapped: %q", f.Type)
	}
	if f.Name != "words" {
		t.Errorf("name = %q", f.Name)
	}
	if code, _ := def.OperatorCode("equals"); code != "==" {
		t.Errorf("equals code = %q", code)
	}
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{"targets":{"blog":{"fields":{"title":{"type":"string"}}}},
		"operators":{"exists":{"code":"exists"},"in":{"code":"in"}}}`)
	def, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := def.Field("blog", []string{"title"}); err != nil {
		t.Error(err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no targets", "operators: {exists: {code: exists}, in: {code: in}}"},
		{"missing exists", "targets: {a: {type: string}}\noperators: {in: {code: in}}"},
		{"operator without code", "targets: {a: {type: string}}\noperators: {exists: {code: exists}, in: {code: in}, eq: {label: x}}"},
		{"field without type", "targets: {a: {fields: {b: {}}}}\noperators: {exists: {code: exists}, in: {code: in}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrSchemaFileNotFound) {
		t.Errorf("expected ErrSchemaFileNotFound, got %v", err)
	}
}

func TestStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(testSchemaYAML), 0600); err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	before := store.Current()
	if _, err := before.Target("news"); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("not: [valid"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("expected reload error for broken file")
	}
	if store.Current() != before {
		t.Error("failed reload must keep previous snapshot")
	}

	updated := testSchemaYAML + "  contains:\n    code: contains\n"
	if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Current().OperatorCode("contains"); err != nil {
		t.Errorf("reloaded schema missing operator: %v", err)
	}
	if _, err := before.OperatorCode("contains"); err == nil {
		t.Error("old snapshot must not change")
	}
}

func TestStore_Default(t *testing.T) {
	store, err := NewStore("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Current().Target("twitter"); err != nil {
		t.Error(err)
	}
	if err := store.Reload(); err == nil {
		t.Error("expected reload without a file to fail")
	}
}

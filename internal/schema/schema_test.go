package schema

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefinition_Field(t *testing.T) {
	def := Default()
	tests := []struct {
		name     string
		target   string
		path     []string
		wantType FieldType
		wantErr  error
	}{
		{"top level string", "interaction", []string{"content"}, TypeString, nil},
		{"nested int", "twitter", []string{"user", "followers_count"}, TypeInt, nil},
		{"deep nested", "salience", []string{"content", "sentiment"}, TypeInt, nil},
		{"geo", "twitter", []string{"geo"}, TypeGeo, nil},
		{"unknown target", "myspace", []string{"content"}, "", &UnknownTargetError{}},
		{"unknown segment", "twitter", []string{"user", "shoe_size"}, "", &UnknownFieldError{}},
		{"descend into leaf", "twitter", []string{"text", "more"}, "", &UnknownFieldError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := def.Field(tt.target, tt.path)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error, got field %+v", f)
				}
				if reflect.TypeOf(err) != reflect.TypeOf(tt.wantErr) {
					t.Errorf("error type = %T, want %T", err, tt.wantErr)
				}
				if !errors.Is(err, ErrUnknown) {
					t.Errorf("expected errors.Is(err, ErrUnknown), got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Type != tt.wantType {
				t.Errorf("type = %q, want %q", f.Type, tt.wantType)
			}
		})
	}
}

func TestDefinition_FieldReportsSegment(t *testing.T) {
	_, err := Default().Field("twitter", []string{"user", "shoe_size", "left"})
	var fe *UnknownFieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
	if fe.Segment != "shoe_size" || fe.Target != "twitter" {
		t.Errorf("got %+v", fe)
	}
	if len(fe.Path) != 3 {
		t.Errorf("path = %v", fe.Path)
	}
}

func TestDefinition_OperatorCode(t *testing.T) {
	def := Default()
	code, err := def.OperatorCode("equals")
	if err != nil || code != "==" {
		t.Errorf("OperatorCode(equals) = %q, %v", code, err)
	}
	_, err = def.OperatorCode("approximately")
	var oe *UnknownOperatorError
	if !errors.As(err, &oe) || oe.Operator != "approximately" {
		t.Errorf("expected UnknownOperatorError, got %v", err)
	}
}

func TestDefinition_TargetNames(t *testing.T) {
	names := Default().TargetNames()
	want := []string{"facebook", "interaction", "klout", "language", "salience", "twitter"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("TargetNames() = %v, want %v", names, want)
	}
}

func TestDefinition_FieldPaths(t *testing.T) {
	paths := Default().FieldPaths()
	found := false
	for _, p := range paths {
		if p == "twitter.user.followers_count" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected twitter.user.followers_count in %v", paths)
	}
}

func TestSplitPath(t *testing.T) {
	target, path := SplitPath("twitter.user.name")
	if target != "twitter" || !reflect.DeepEqual(path, []string{"user", "name"}) {
		t.Errorf("SplitPath = %q %v", target, path)
	}
	target, path = SplitPath("klout")
	if target != "klout" || path != nil {
		t.Errorf("SplitPath(klout) = %q %v", target, path)
	}
}

func TestIsRegexOperator(t *testing.T) {
	if !IsRegexOperator("regex_partial") || !IsRegexOperator("regex_exact") {
		t.Error("expected regex operators")
	}
	if IsRegexOperator("contains") {
		t.Error("contains is not a regex operator")
	}
}

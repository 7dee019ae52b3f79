package jcsdl

import (
	"errors"
	"testing"

	"github.com/hyperjump/jcsdl/internal/schema"
)

var (
	intField    = &schema.FieldDefinition{Name: "score", Type: schema.TypeInt}
	stringField = &schema.FieldDefinition{Name: "content", Type: schema.TypeString}
	geoField    = &schema.FieldDefinition{Name: "geo", Type: schema.TypeGeo}
)

func TestValueCodec_Encode(t *testing.T) {
	vc := NewValueCodec(nil)
	tests := []struct {
		name     string
		field    *schema.FieldDefinition
		operator string
		value    string
		want     string
		wantErr  error
	}{
		{"int passes through", intField, "equals", "42", "42", nil},
		{"negative decimal", intField, "greaterThan", "-3.5", "-3.5", nil},
		{"int rejects text", intField, "equals", "forty", "", ErrValueType},
		{"int rejects empty", intField, "equals", "", "", ErrValueType},
		{"int in list", intField, "in", "3,7,12", "[3,7,12]", nil},
		{"int in single", intField, "in", "5", "[5]", nil},
		{"int in rejects text item", intField, "in", "3,x", "", ErrValueType},
		{"int in rejects spaces", intField, "in", "3, 7", "", ErrValueType},
		{"string quoted", stringField, "contains", "hello", `"hello"`, nil},
		{"string escapes quotes", stringField, "contains", `say "hi"`, `"say \"hi\""`, nil},
		{"string escapes backslash", stringField, "equals", `a\b`, `"a\\b"`, nil},
		{"regex keeps backslash", stringField, "regex_partial", `\d+`, `"\d+"`, nil},
		{"regex trailing backslash rejected", stringField, "regex_partial", `foo\`, "", ErrValueType},
		{"regex exact trailing backslash rejected", stringField, "regex_exact", `a\\\`, "", ErrValueType},
		{"regex escaped trailing backslash", stringField, "regex_partial", `foo\\`, `"foo\\"`, nil},
		{"string trailing backslash doubled", stringField, "contains", `foo\`, `"foo\\"`, nil},
		{"string in is quoted", stringField, "in", "en,fr", `"en,fr"`, nil},
		{"newline rejected", stringField, "contains", "two\nlines", "", ErrValueType},
		{"geo radius", geoField, "geo_radius", "51.5,-0.12:10", `"51.5,-0.12:10"`, nil},
		{"geo radius invalid", geoField, "geo_radius", "51.5,-0.12", "", ErrValueType},
		{"geo box out of range", geoField, "geo_box", "95,0:10,10", "", ErrValueType},
		{"geo non geo operator", geoField, "equals", "anything", `"anything"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vc.Encode(tt.field, tt.operator, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Encode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValueCodec_Decode(t *testing.T) {
	vc := NewValueCodec(nil)
	tests := []struct {
		name     string
		field    *schema.FieldDefinition
		operator string
		literal  string
		want     string
		wantErr  error
	}{
		{"int passes through", intField, "equals", "42", "42", nil},
		{"int in strips brackets", intField, "in", "[3,7,12]", "3,7,12", nil},
		{"int in without brackets", intField, "in", "3,7,12", "", ErrFormat},
		{"int in empty", intField, "in", "", "", ErrFormat},
		{"string unescapes", stringField, "contains", `say \"hi\"`, `say "hi"`, nil},
		{"string unescapes backslash", stringField, "equals", `a\\b`, `a\b`, nil},
		{"regex keeps backslash", stringField, "regex_exact", `\d+\"`, `\d+"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vc.Decode(tt.field, tt.operator, tt.literal)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %s, want %s", got, tt.want)
			}
		})
	}
}

type recordingEscaper struct {
	regexCalls int
	plainCalls int
}

func (r *recordingEscaper) Escape(s string, regex bool) string {
	r.count(regex)
	return s
}

func (r *recordingEscaper) Unescape(s string, regex bool) string {
	r.count(regex)
	return s
}

func (r *recordingEscaper) count(regex bool) {
	if regex {
		r.regexCalls++
	} else {
		r.plainCalls++
	}
}

func TestValueCodec_RegexVariantFollowsOperator(t *testing.T) {
	rec := &recordingEscaper{}
	vc := NewValueCodec(rec)
	for _, op := range []string{"regex_partial", "regex_exact"} {
		if _, err := vc.Encode(stringField, op, "x"); err != nil {
			t.Fatal(err)
		}
		if _, err := vc.Decode(stringField, op, "x"); err != nil {
			t.Fatal(err)
		}
	}
	for _, op := range []string{"contains", "equals", "substr"} {
		if _, err := vc.Encode(stringField, op, "x"); err != nil {
			t.Fatal(err)
		}
	}
	if rec.regexCalls != 4 || rec.plainCalls != 3 {
		t.Errorf("regex calls = %d, plain calls = %d", rec.regexCalls, rec.plainCalls)
	}
}

func TestValueCodec_IntRoundTrip(t *testing.T) {
	vc := NewValueCodec(nil)
	literal, err := vc.Encode(intField, "in", "3,7,12")
	if err != nil {
		t.Fatal(err)
	}
	if literal != "[3,7,12]" {
		t.Fatalf("literal = %s", literal)
	}
	back, err := vc.Decode(intField, "in", literal)
	if err != nil {
		t.Fatal(err)
	}
	if back != "3,7,12" {
		t.Errorf("decoded = %s", back)
	}
}

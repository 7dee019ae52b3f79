package csdl

import "testing"

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		regex bool
		want  string
	}{
		{"plain", "hello world", false, "hello world"},
		{"quote", `say "hi"`, false, `say \"hi\"`},
		{"backslash", `C:\dir`, false, `C:\\dir`},
		{"backslash before quote", `a\"b`, false, `a\\\"b`},
		{"regex keeps backslash", `\d+\s`, true, `\d+\s`},
		{"regex escapes quote", `"\w+"`, true, `\"\w+\"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.in, tt.regex); got != tt.want {
				t.Errorf("Escape(%q, %v) = %q, want %q", tt.in, tt.regex, got, tt.want)
			}
		})
	}
}

func TestUnescape_RoundTrip(t *testing.T) {
	values := []string{
		"",
		"plain",
		`quote " inside`,
		`trailing backslash \`,
		`\\ double`,
		`mixed \" both`,
		`unicode ✓ "ok"`,
	}
	var lit Literal
	for _, v := range values {
		if got := lit.Unescape(lit.Escape(v, false), false); got != v {
			t.Errorf("round trip of %q gave %q", v, got)
		}
	}
	for _, v := range []string{`\d+`, `"quoted"\s*`, `^abc$`} {
		if got := lit.Unescape(lit.Escape(v, true), true); got != v {
			t.Errorf("regex round trip of %q gave %q", v, got)
		}
	}
}

func TestUnescape_LoneBackslash(t *testing.T) {
	if got := Unescape(`a\nb`, false); got != `a\nb` {
		t.Errorf("unknown escape should pass through, got %q", got)
	}
}

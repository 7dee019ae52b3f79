package digest

import "testing"

func TestMD5(t *testing.T) {
	// md5("") and md5("abc") reference values
	if got := MD5(nil); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("MD5(\"\") = %s", got)
	}
	if got := MD5([]byte("abc")); got != "900150983cd24fb0d6963f7d28e17f72" {
		t.Errorf("MD5(abc) = %s", got)
	}
}

func TestSHA256(t *testing.T) {
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := SHA256([]byte("abc")); got != want {
		t.Errorf("SHA256(abc) = %s", got)
	}
}

func TestXXHash(t *testing.T) {
	got := XXHash([]byte("abc"))
	if len(got) != 16 {
		t.Errorf("XXHash length = %d, want 16", len(got))
	}
	if got != XXHash([]byte("abc")) {
		t.Error("XXHash is not stable")
	}
	if got == XXHash([]byte("abd")) {
		t.Error("XXHash did not change with input")
	}
	// xxhash64("") = ef46db3751d8e999
	if e := XXHash(nil); e != "ef46db3751d8e999" {
		t.Errorf("XXHash(\"\") = %s", e)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		wantLen int
		wantErr bool
	}{
		{"", 32, false},
		{"md5", 32, false},
		{"MD5", 32, false},
		{"sha256", 64, false},
		{"xxhash", 16, false},
		{"crc32", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := New(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := len(fn([]byte("x"))); got != tt.wantLen {
				t.Errorf("digest length = %d, want %d", got, tt.wantLen)
			}
		})
	}
}

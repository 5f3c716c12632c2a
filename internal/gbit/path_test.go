package gbit

import (
	"errors"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain relative", "src/main.go", "src/main.go"},
		{"backslashes", `src\app\index.js`, "src/app/index.js"},
		{"leading dot slash", "./src/main.go", "src/main.go"},
		{"leading slash", "/src/main.go", "src/main.go"},
		{"redundant segments", "src/./app//index.js", "src/app/index.js"},
		{"internal dotdot resolved", "src/sub/../main.go", "src/main.go"},
		{"single file", "README.md", "README.md"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePath(tc.in)
			if err != nil {
				t.Fatalf("NormalizePath(%q) failed: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizePathIdempotent(t *testing.T) {
	inputs := []string{"src/main.go", `a\b\c.txt`, "./x/y.go", "/abs/path.md", "a/./b/../c"}

	for _, in := range inputs {
		once, err := NormalizePath(in)
		if err != nil {
			t.Fatalf("NormalizePath(%q) failed: %v", in, err)
		}
		twice, err := NormalizePath(once)
		if err != nil {
			t.Fatalf("NormalizePath(%q) failed on second pass: %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizePathRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"dot", "."},
		{"slash only", "/"},
		{"dotdot", ".."},
		{"escaping", "../etc/passwd"},
		{"escaping after resolution", "a/../../etc/passwd"},
		{"backslash escaping", `..\secrets.txt`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizePath(tc.in)
			if err == nil {
				t.Fatalf("NormalizePath(%q) succeeded, want error", tc.in)
			}
			var ipe *InvalidPathError
			if !errors.As(err, &ipe) {
				t.Errorf("NormalizePath(%q) returned %T, want *InvalidPathError", tc.in, err)
			}
		})
	}
}

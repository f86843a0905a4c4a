package parse

import (
	"testing"

	"github.com/go-mercurial/cmdserver/internal/errors"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"full banner with trivial", "Mercurial Distributed SCM (version 5.7.1)\n", "5.7.1"},
		{"banner without trivial", "Mercurial Distributed SCM (version 5.7)\n", "5.70"},
		{"quiet banner", "5.9.1\n(no version banner)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeVersion(tt.raw)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeVersion(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeVersion(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeVersion_Unparseable(t *testing.T) {
	_, err := NormalizeVersion("not a version string at all")
	if err == nil {
		t.Fatal("expected ParseError for unparseable input")
	}
	if errors.GetCode(err) != errors.CodeParseError {
		t.Errorf("expected CodeParseError, got %v", err)
	}
}

package utils

import "testing"

func TestValidatePassword(t *testing.T) {
	if ok, msg := ValidatePassword("corta"); ok || msg == "" {
		t.Errorf("short password accepted: ok=%v msg=%q", ok, msg)
	}
	if ok, msg := ValidatePassword("suficientemente-larga"); !ok || msg != "" {
		t.Errorf("valid password rejected: ok=%v msg=%q", ok, msg)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Examen parcial  ", "Examen parcial"},
		{"con\x00nulo", "connulo"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeInput(tt.in); got != tt.want {
			t.Errorf("SanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

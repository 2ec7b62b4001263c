package shader

import "testing"

func TestTerminate(t *testing.T) {
	if got := terminate("void main() {}"); got != "void main() {}\x00" {
		t.Errorf("terminate = %q", got)
	}
	if got := terminate("uColor\x00"); got != "uColor\x00" {
		t.Errorf("terminate added a second NUL: %q", got)
	}
}

func TestInfoLog(t *testing.T) {
	tests := []struct {
		raw  []byte
		want string
	}{
		{[]byte("ERROR: 0:3: syntax error\n\x00"), "ERROR: 0:3: syntax error"},
		{[]byte("warning\x00garbage"), "warning"},
		{[]byte{0}, ""},
		{[]byte("no terminator\r\n"), "no terminator"},
	}
	for _, tt := range tests {
		if got := infoLog(tt.raw); got != tt.want {
			t.Errorf("infoLog(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

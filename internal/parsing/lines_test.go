package parsing

import (
	"reflect"
	"testing"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"single unterminated", "x = 1", []string{"x = 1"}},
		{"terminated", "a\nb\n", []string{"a\n", "b\n"}},
		{"trailing partial", "a\nb", []string{"a\n", "b"}},
		{"crlf kept", "a\r\nb\r\n", []string{"a\r\n", "b\r\n"}},
		{"blank lines kept", "\n\nx\n", []string{"\n", "\n", "x\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lines(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassifyINI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LayoutKind
	}{
		{"empty", "", LayoutBlank},
		{"comments only", "# note\n; other\n\n", LayoutBlank},
		{"section first", "[a]\nx=1\n", LayoutSectioned},
		{"comment then section", "# hdr\n  [a]\n", LayoutSectioned},
		{"key first", "x=1\n[a]\ny=2\n", LayoutSectionless},
		{"free text", "just some text\n", LayoutSectionless},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyINI(tt.input); got != tt.want {
				t.Errorf("ClassifyINI(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Group/Channel", "Group_Channel"},
		{`a\b/c`, "a_b_c"},
		{"plain", "plain"},
		{"/lead/", "_lead_"},
	}

	for _, tt := range tests {
		if got := SanitizeKey(tt.input); got != tt.want {
			t.Errorf("SanitizeKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

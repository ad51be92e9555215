package types

import "testing"

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"run_01.tdms", FormatWaveform},
		{"/data/dump.bin", FormatBinary},
		{"settings.ini", FormatConfig},
		{"capture.mat", FormatStructuredData},
		{"analysis.m", FormatScript},
		{"dir.mat/analysis.m", FormatScript},
		{"UPPER.TDMS", FormatUnknown},
		{"settings.INI", FormatUnknown},
		{"run.tdms_index", FormatUnknown},
		{"notes.txt", FormatUnknown},
		{"noext", FormatUnknown},
		{"", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatForPath(tt.path); got != tt.want {
				t.Errorf("FormatForPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormat_ExtensionRoundTrip(t *testing.T) {
	for _, f := range Formats() {
		if got := FormatForPath("file" + f.Extension()); got != f {
			t.Errorf("FormatForPath(file%s) = %v, want %v", f.Extension(), got, f)
		}
	}
	if FormatUnknown.Extension() != "" {
		t.Errorf("FormatUnknown.Extension() = %q, want empty", FormatUnknown.Extension())
	}
}

func TestFormat_String(t *testing.T) {
	if FormatWaveform.String() != "TDMS" {
		t.Errorf("FormatWaveform.String() = %q", FormatWaveform.String())
	}
	if Format(42).String() != "Unknown" {
		t.Errorf("Format(42).String() = %q", Format(42).String())
	}
}

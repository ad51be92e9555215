package labmeta

import "testing"

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"run.tdms", FormatWaveform},
		{"dump.bin", FormatBinary},
		{"rig.ini", FormatConfig},
		{"session.mat", FormatStructuredData},
		{"analysis.m", FormatScript},
		{"/data/2024/run-7/waveforms.tdms", FormatWaveform},
		{"archive.tar.bin", FormatBinary},

		// Case-sensitive
		{"RUN.TDMS", FormatUnknown},
		{"analysis.M", FormatUnknown},

		// Not a suffix match
		{"run.tdms.bak", FormatUnknown},
		{"notes.txt", FormatUnknown},
		{"matlab", FormatUnknown},
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

func TestFormats_RoutingTable(t *testing.T) {
	want := []struct {
		format Format
		ext    string
	}{
		{FormatWaveform, ".tdms"},
		{FormatBinary, ".bin"},
		{FormatConfig, ".ini"},
		{FormatStructuredData, ".mat"},
		{FormatScript, ".m"},
	}

	got := Formats()
	if len(got) != len(want) {
		t.Fatalf("Formats() returned %d formats, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i] != w.format || got[i].Extension() != w.ext {
			t.Errorf("Formats()[%d] = %v (%s), want %v (%s)", i, got[i], got[i].Extension(), w.format, w.ext)
		}
	}
}

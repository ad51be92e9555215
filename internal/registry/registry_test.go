package registry

import (
	"testing"

	"github.com/simonhull/labmeta/internal/types"
)

// mockExtractor implements Extractor for testing.
type mockExtractor struct {
	name string
}

func (m *mockExtractor) Extract(path string, opts types.Options) (types.Record, error) {
	return &types.ScriptRecord{Lines: []string{m.name, path}}, nil
}

func TestRegisterAndGet(t *testing.T) {
	// Use a format that's unlikely to conflict with real registrations
	format := types.Format(999)
	Register(format, &mockExtractor{name: "test"})

	got := Get(format)
	if got == nil {
		t.Fatal("Get() returned nil for registered format")
	}

	me, ok := got.(*mockExtractor)
	if !ok {
		t.Fatal("Get() returned wrong extractor type")
	}
	if me.name != "test" {
		t.Errorf("Extractor name = %q, want %q", me.name, "test")
	}
}

func TestGet_Unregistered(t *testing.T) {
	if got := Get(types.Format(998)); got != nil {
		t.Errorf("Get() = %v for unregistered format, want nil", got)
	}
}

func TestRegister_Overwrites(t *testing.T) {
	format := types.Format(997)
	Register(format, &mockExtractor{name: "first"})
	Register(format, &mockExtractor{name: "second"})

	me, ok := Get(format).(*mockExtractor)
	if !ok {
		t.Fatal("Get() returned wrong extractor type")
	}
	if me.name != "second" {
		t.Errorf("Extractor name = %q, want %q (should be overwritten)", me.name, "second")
	}
}

func TestExtractorFunc(t *testing.T) {
	format := types.Format(996)
	Register(format, ExtractorFunc(func(path string, opts types.Options) (types.Record, error) {
		return &types.ScriptRecord{Lines: []string{path}}, nil
	}))

	rec, err := Get(format).Extract("x.m", types.DefaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	sr, ok := rec.(*types.ScriptRecord)
	if !ok || len(sr.Lines) != 1 || sr.Lines[0] != "x.m" {
		t.Errorf("Extract() = %#v", rec)
	}
}

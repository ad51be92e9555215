package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// labDir lays out a small tree of data files.
func labDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"run-1.m":         "x = 1;\nplot(x);\n",
		"rig.ini":         "[rig]\nname = bench\n",
		"dumps/run-1.bin": strings.Repeat("\x00\x00\x00\x2a", 16),
		"notes.txt":       "not routed",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestDump_YAML(t *testing.T) {
	dir := labDir(t)

	stdout, _, err := run(t, "dump", filepath.Join(dir, "rig.ini"), filepath.Join(dir, "run-1.m"))
	require.NoError(t, err)

	dec := yaml.NewDecoder(strings.NewReader(stdout))
	var kinds []string
	for {
		var doc struct {
			Kind     string         `yaml:"kind"`
			Metadata map[string]any `yaml:"metadata"`
		}
		if dec.Decode(&doc) != nil {
			break
		}
		kinds = append(kinds, doc.Kind)
		assert.NotEmpty(t, doc.Metadata)
	}
	assert.Equal(t, []string{"config", "script"}, kinds)
}

func TestDump_JSON(t *testing.T) {
	dir := labDir(t)

	stdout, _, err := run(t, "dump", "--json", filepath.Join(dir, "dumps", "run-1.bin"))
	require.NoError(t, err)

	var doc struct {
		Kind     string         `json:"kind"`
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "binary_header", doc.Kind)
	assert.Equal(t, float64(42), doc.Metadata["interpreted_integer"])
}

func TestDump_ReportsFailures(t *testing.T) {
	dir := labDir(t)

	stdout, stderr, err := run(t, "dump", filepath.Join(dir, "notes.txt"), filepath.Join(dir, "run-1.m"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, stderr, "notes.txt")
	assert.Contains(t, stdout, "kind: script")
}

func TestScan_Summary(t *testing.T) {
	dir := labDir(t)

	_, stderr, err := run(t, "scan", "--progress=false", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Scanned 3 files")
	assert.Contains(t, stderr, "binary_header")
	assert.Contains(t, stderr, "config")
	assert.Contains(t, stderr, "script")
}

func TestScan_IncludeAndRecords(t *testing.T) {
	dir := labDir(t)

	stdout, stderr, err := run(t, "scan", "--progress=false", "--records", "--json", "--include", "run-*", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Scanned 2 files")

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 2)
}

func TestScan_ConfigInclude(t *testing.T) {
	dir := labDir(t)
	t.Setenv("LABMETA_SCAN_INCLUDE", "*.ini")

	_, stderr, err := run(t, "scan", "--progress=false", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Scanned 1 files")
}

func TestScan_Failures(t *testing.T) {
	dir := labDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.mat"), []byte("short"), 0o644))

	_, stderr, err := run(t, "scan", "--progress=false", dir)
	require.Error(t, err)
	assert.Contains(t, stderr, "Failed: 1")
	assert.Contains(t, stderr, "broken.mat")
}

func TestCollect(t *testing.T) {
	dir := labDir(t)

	all, err := collect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "dumps", "run-1.bin"),
		filepath.Join(dir, "rig.ini"),
		filepath.Join(dir, "run-1.m"),
	}, all.paths)
	assert.Equal(t, int64(64+len("x = 1;\nplot(x);\n")+len("[rig]\nname = bench\n")), all.bytes)

	some, err := collect(dir, []glob.Glob{glob.MustCompile("*.{m,bin}")})
	require.NoError(t, err)
	assert.Len(t, some.paths, 2)

	_, err = collect(filepath.Join(dir, "absent"), nil)
	assert.Error(t, err)
}

func TestFormatsAndVersion(t *testing.T) {
	stdout, _, err := run(t, "formats")
	require.NoError(t, err)
	for _, ext := range []string{".tdms", ".bin", ".ini", ".mat", ".m"} {
		assert.Contains(t, stdout, ext)
	}

	stdout, _, err = run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "labmeta "))
}

func TestConfigWarnings(t *testing.T) {
	t.Setenv("LABMETA_EXTRACT_AGGREGATION", "median")

	_, stderr, err := run(t, "formats")
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: extract.aggregation")
}

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDescription(t *testing.T, body string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(body, out)), 0644))
	return path, out
}

const valid = `{"outputPath": %q, "resolutions": [[16, 16]], "images": [
	{"name": "icon", "width": 1, "height": 1, "background": "#000", "elements": [
		{"type": "rectangle", "x": 0.25, "y": 0.25, "width": 0.5, "height": 0.5, "colour": "#fff"}]}]}`

func TestRun(t *testing.T) {
	path, out := writeDescription(t, valid)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-stats", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, filepath.Join(out, "res16x16", "icon.tga"))
	assert.Contains(t, stdout.String(), "PERFORMANCE REPORT")
	assert.Contains(t, stdout.String(), "[+++] Done: 1 file(s)")
	assert.Empty(t, stderr.String())
}

func TestRunFormat(t *testing.T) {
	path, out := writeDescription(t, valid)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-format", "png", path}, &stdout, &stderr), stderr.String())
	assert.FileExists(t, filepath.Join(out, "res16x16", "icon.png"))
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		args func(path string) []string
		want string
	}{
		{"no arguments", valid, func(string) []string { return nil }, "usage error"},
		{"two arguments", valid, func(p string) []string { return []string{p, p} }, "usage error"},
		{"missing file", valid, func(p string) []string { return []string{p + ".missing"} }, "could not open file"},
		{"bad format", valid, func(p string) []string { return []string{"-format", "gif", p} }, "unknown output format"},
		{"malformed", `{"outputPath": %q,`, nil, "malformed input"},
		{"schema", `{"outputPath": %q, "resolutions": [[10, 10]]}`, nil, "invalid description: images"},
		{"colour", `{"outputPath": %q, "resolutions": [[10, 10]], "images": [
			{"name": "a", "width": 1, "height": 1, "background": "#12", "elements": []}]}`, nil, "invalid colour"},
		{"element", `{"outputPath": %q, "resolutions": [[10, 10]], "images": [
			{"name": "a", "width": 1, "height": 1, "background": "#000", "elements": [{"type": "ellipse"}]}]}`, nil, "unsupported element type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, out := writeDescription(t, tt.body)
			args := []string{path}
			if tt.args != nil {
				args = tt.args(path)
			}

			var stdout, stderr bytes.Buffer
			assert.Equal(t, 1, run(args, &stdout, &stderr))
			assert.Contains(t, stderr.String(), tt.want)
			assert.NoDirExists(t, out)
		})
	}
}

func TestRunOutputDirectoryError(t *testing.T) {
	path, out := writeDescription(t, valid)
	require.NoError(t, os.WriteFile(out, []byte("not a directory"), 0644))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "could not create output folder")
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-version"}, &stdout, &stderr))
	assert.Equal(t, "scenerender dev\n", stdout.String())
}

package cmd

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/visage/internal/testutil"
)

func writeTestImage(t *testing.T, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	data := testutil.EncodePNG(t, testutil.GenerateFaceImage(size, size))
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// runDetectCommand resets detect's stateful flags to their defaults before
// executing, since cobra flag values persist across Execute calls.
func runDetectCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for flag, def := range map[string]string{
		"format":        "json",
		"output":        "",
		"overlay":       "",
		"crops-dir":     "",
		"min-dimension": "200",
		"confidence":    "0.5",
		"workers":       "0",
	} {
		require.NoError(t, detectCmd.Flags().Set(flag, def))
	}

	return executeCommandAndCaptureOutput(t, rootCmd, append([]string{"detect"}, args...))
}

func TestDetectCommand_NoArgs(t *testing.T) {
	_, err := runDetectCommand(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestDetectCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "portrait.png", 300)

	output, err := runDetectCommand(t, path, "--format", "json")
	require.NoError(t, err)

	assert.Contains(t, output, `"total_faces": 1`)
	assert.Contains(t, output, `"processed_image"`)
}

func TestDetectCommand_TextOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "portrait.png", 300)

	output, err := runDetectCommand(t, path, "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, output, "1 face(s)")
	assert.Contains(t, output, path)
}

func TestDetectCommand_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "portrait.png", 300)

	_, err := runDetectCommand(t, path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestDetectCommand_MissingFile(t *testing.T) {
	_, err := runDetectCommand(t, "/nonexistent/portrait.png")
	require.Error(t, err)
}

func TestDetectCommand_OverlayRequiresSingleInput(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 300)
	b := writeTestImage(t, dir, "b.png", 300)

	_, err := runDetectCommand(t, a, b, "--overlay", filepath.Join(dir, "out.jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single input")
}

func TestDetectCommand_OverlayFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "portrait.png", 300)
	overlay := filepath.Join(dir, "annotated.jpg")

	_, err := runDetectCommand(t, path, "--overlay", overlay)
	require.NoError(t, err)

	info, err := os.Stat(overlay)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestDetectCommand_CropsDir(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "portrait.png", 300)
	cropsDir := filepath.Join(dir, "faces")

	_, err := runDetectCommand(t, path, "--crops-dir", cropsDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(cropsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "portrait_face_1.jpg", entries[0].Name())
}

func TestDetectCommand_MultipleInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 300)
	b := writeTestImage(t, dir, "b.png", 100) // too small, no faces

	output, err := runDetectCommand(t, a, b, "--format", "text", "--workers", "2")
	require.NoError(t, err)

	assert.Contains(t, output, "1 face(s)")
	assert.Contains(t, output, "0 face(s)")
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected color.Color
	}{
		{name: "green with hash", input: "#00FF00", expected: color.RGBA{0, 255, 0, 255}},
		{name: "red without hash", input: "FF0000", expected: color.RGBA{255, 0, 0, 255}},
		{name: "lowercase", input: "#a1b2c3", expected: color.RGBA{161, 178, 195, 255}},
		{name: "empty", input: "", expected: nil},
		{name: "too short", input: "#FFF", expected: nil},
		{name: "not hex", input: "#GGGGGG", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseHexColor(tt.input))
		})
	}
}

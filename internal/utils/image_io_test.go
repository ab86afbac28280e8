package utils

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	return path
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("photo.jpg"))
	assert.True(t, IsSupportedImage("photo.JPEG"))
	assert.True(t, IsSupportedImage("scan.png"))
	assert.True(t, IsSupportedImage("scan.bmp"))
	assert.False(t, IsSupportedImage("doc.pdf"))
	assert.False(t, IsSupportedImage("noext"))
}

func TestLoadImage(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 64, 48)

	img, meta, err := LoadImage(path)
	require.NoError(t, err)
	require.NotNil(t, img)

	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 64, meta.Width)
	assert.Equal(t, 48, meta.Height)
	assert.Positive(t, meta.SizeBytes)
}

func TestLoadImage_Errors(t *testing.T) {
	_, _, err := LoadImage("")
	require.Error(t, err)

	_, _, err = LoadImage("missing.tiff")
	require.Error(t, err)
	var procErr *ImageProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "load", procErr.Operation)

	_, _, err = LoadImage(filepath.Join(t.TempDir(), "absent.png"))
	require.Error(t, err)

	// Garbage bytes with a valid extension fail at decode.
	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o600))
	_, _, err = LoadImage(bad)
	require.Error(t, err)
}

func TestDecodeImageBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	img, format, err := DecodeImageBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, _, err = DecodeImageBytes([]byte("junk"))
	require.Error(t, err)
}

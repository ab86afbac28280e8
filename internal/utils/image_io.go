package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path      string
	Format    string
	SizeBytes int64
	Width     int
	Height    int
}

// LoadImage opens and decodes an image file, returning the image and metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		err := &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
		return nil, ImageMetadata{}, err
	}
	if !IsSupportedImage(path) {
		err := &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
		return nil, ImageMetadata{}, err
	}

	f, err := os.Open(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		err = &ImageProcessingError{Operation: "load", Err: err}
		return nil, ImageMetadata{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing image file: %v\n", err)
		}
	}()

	fi, statErr := f.Stat()
	if statErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: statErr}
	}

	img, format, decErr := image.Decode(f)
	if decErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: decErr}
	}

	b := img.Bounds()
	meta := ImageMetadata{
		Path:      path,
		Format:    format,
		SizeBytes: fi.Size(),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}

	return img, meta, nil
}

// DecodeImageBytes decodes an in-memory image payload, e.g. an uploaded file
// or a transport string's decoded bytes.
func DecodeImageBytes(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &ImageProcessingError{Operation: "decode", Err: err}
	}
	return img, format, nil
}

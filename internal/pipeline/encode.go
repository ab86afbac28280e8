package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/MeKo-Tech/visage/internal/codec"
	"github.com/MeKo-Tech/visage/internal/mempool"
	"github.com/MeKo-Tech/visage/internal/utils"
)

// EncodeOptions selects the output container format for transport strings.
type EncodeOptions struct {
	Format      string // "jpeg" or "png"
	JPEGQuality int    // 1-100, jpeg only
}

// DefaultEncodeOptions returns the default output encoding: JPEG at the
// quality the service has always used.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Format: "jpeg", JPEGQuality: 85}
}

// Validate checks the options for usable values.
func (o EncodeOptions) Validate() error {
	switch o.Format {
	case "jpeg", "png":
	default:
		return fmt.Errorf("unsupported output format: %q", o.Format)
	}
	if o.Format == "jpeg" && (o.JPEGQuality < 1 || o.JPEGQuality > 100) {
		return fmt.Errorf("jpeg quality out of range: %d", o.JPEGQuality)
	}
	return nil
}

// mime returns the MIME type for the configured format.
func (o EncodeOptions) mime() string {
	if o.Format == "png" {
		return "image/png"
	}
	return "image/jpeg"
}

// EncodeToDataURI re-serializes img into the configured container format and
// wraps the bytes as a transport data URI. The encode buffer comes from the
// shared pool since this is the allocation hot path.
func EncodeToDataURI(img image.Image, opt EncodeOptions) (string, error) {
	if img == nil {
		return "", &utils.ImageProcessingError{Operation: "encode", Err: errors.New("input image is nil")}
	}

	buf := mempool.GetBuffer(64 * 1024)
	defer mempool.PutBuffer(buf)

	var err error
	switch opt.Format {
	case "png":
		err = png.Encode(buf, img)
	default:
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: opt.JPEGQuality})
	}
	if err != nil {
		return "", &utils.ImageProcessingError{Operation: "encode", Err: err}
	}

	return codec.FormatDataURI(opt.mime(), buf.Bytes()), nil
}

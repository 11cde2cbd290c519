// Package imaging validates uploaded headshots and normalizes them for
// storage. Decoding understands JPEG, PNG, and WebP; everything is stored
// as JPEG after an optional downscale.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"shaggydog/internal/services"

	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Limits bounds what an upload may look like and how it is stored.
type Limits struct {
	// MaxBytes is the largest accepted upload, in bytes.
	MaxBytes int64
	// MinDimension rejects images narrower or shorter than this.
	MinDimension int
	// MaxDimension rejects images wider or taller than this.
	MaxDimension int
	// StoredMaxDim is the long-edge ceiling after normalization.
	StoredMaxDim int
	// JPEGQuality is used when re-encoding for storage.
	JPEGQuality int
}

// Validate checks the raw upload against the configured limits. The
// returned errors carry user-presentable messages under ErrValidation.
func Validate(data []byte, limits Limits) error {
	if len(data) == 0 {
		return services.Wrap(services.ErrValidation, "imaging", "validate", "No image data received", nil)
	}
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		msg := fmt.Sprintf("File too large. Maximum size is %dMB", limits.MaxBytes>>20)
		return services.Wrap(services.ErrValidation, "imaging", "validate", msg, nil)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return services.Wrap(services.ErrValidation, "imaging", "validate", "Invalid image file. Please upload a JPEG, PNG, or WebP photo", err)
	}
	if limits.MinDimension > 0 && (cfg.Width < limits.MinDimension || cfg.Height < limits.MinDimension) {
		msg := fmt.Sprintf("Image must be at least %dx%d pixels", limits.MinDimension, limits.MinDimension)
		return services.Wrap(services.ErrValidation, "imaging", "validate", msg, nil)
	}
	if limits.MaxDimension > 0 && (cfg.Width > limits.MaxDimension || cfg.Height > limits.MaxDimension) {
		msg := fmt.Sprintf("Image too large. Maximum dimensions are %dx%d pixels", limits.MaxDimension, limits.MaxDimension)
		return services.Wrap(services.ErrValidation, "imaging", "validate", msg, nil)
	}
	return nil
}

// Normalize decodes the upload, downscales it so the long edge does not
// exceed the configured ceiling, and re-encodes it as JPEG. Images already
// within bounds are still re-encoded so storage holds one format.
func Normalize(data []byte, limits Limits) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "imaging", "normalize", "Invalid image file. Please upload a JPEG, PNG, or WebP photo", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if limits.StoredMaxDim > 0 && (width > limits.StoredMaxDim || height > limits.StoredMaxDim) {
		if width >= height {
			img = imaging.Resize(img, limits.StoredMaxDim, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, limits.StoredMaxDim, imaging.Lanczos)
		}
	}

	quality := limits.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Dimensions reports the pixel size of an encoded image without a full
// decode.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, services.Wrap(services.ErrValidation, "imaging", "dimensions", "Invalid image file", err)
	}
	return cfg.Width, cfg.Height, nil
}

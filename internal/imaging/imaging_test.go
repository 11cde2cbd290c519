package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"shaggydog/internal/services"
	"shaggydog/internal/testsupport"
)

func testLimits() Limits {
	return Limits{
		MaxBytes:     16 << 20,
		MinDimension: 256,
		MaxDimension: 4096,
		StoredMaxDim: 1024,
		JPEGQuality:  85,
	}
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateAcceptsInBoundsImage(t *testing.T) {
	data := testsupport.JPEGImage(t, 512, 512)
	if err := Validate(data, testLimits()); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateRejectsTooSmall(t *testing.T) {
	data := testsupport.JPEGImage(t, 100, 512)
	err := Validate(data, testLimits())
	if err == nil {
		t.Fatal("expected error for undersized image")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "at least 256x256") {
		t.Fatalf("message should name the minimum: %v", err)
	}
}

func TestValidateRejectsTooLarge(t *testing.T) {
	limits := testLimits()
	limits.MaxDimension = 600
	data := testsupport.JPEGImage(t, 700, 400)
	err := Validate(data, limits)
	if err == nil {
		t.Fatal("expected error for oversized image")
	}
	if !strings.Contains(err.Error(), "600x600") {
		t.Fatalf("message should name the maximum: %v", err)
	}
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	limits := testLimits()
	limits.MaxBytes = 1 << 20
	data := make([]byte, (1<<20)+1)
	err := Validate(data, limits)
	if err == nil {
		t.Fatal("expected error for oversized file")
	}
	if !strings.Contains(err.Error(), "Maximum size is 1MB") {
		t.Fatalf("message should name the limit: %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	err := Validate([]byte("not an image at all"), testLimits())
	if err == nil {
		t.Fatal("expected error for undecodable data")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("not an image at all"), testLimits())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	// Local image handling never reports a provider failure.
	if errors.Is(err, services.ErrRemote) {
		t.Fatalf("decode failure wrongly tagged as remote: %v", err)
	}
}

func TestNormalizeDownscalesLongEdge(t *testing.T) {
	data := testsupport.JPEGImage(t, 2000, 1000)
	out, err := Normalize(data, testLimits())
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	width, height, err := Dimensions(out)
	if err != nil {
		t.Fatalf("Dimensions returned error: %v", err)
	}
	if width != 1024 {
		t.Fatalf("expected long edge 1024, got %dx%d", width, height)
	}
	if height < 500 || height > 524 {
		t.Fatalf("aspect ratio not preserved: %dx%d", width, height)
	}
}

func TestNormalizeConvertsPNGToJPEG(t *testing.T) {
	data := encodePNG(t, 300, 300)
	out, err := Normalize(data, testLimits())
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("output is not JPEG: %v", err)
	}
}

func TestNormalizeKeepsSmallImageSize(t *testing.T) {
	data := testsupport.JPEGImage(t, 400, 300)
	out, err := Normalize(data, testLimits())
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	width, height, err := Dimensions(out)
	if err != nil {
		t.Fatalf("Dimensions returned error: %v", err)
	}
	if width != 400 || height != 300 {
		t.Fatalf("small image should keep its size, got %dx%d", width, height)
	}
}

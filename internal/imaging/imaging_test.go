package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func createTestGIF(w, h int) []byte {
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	var buf bytes.Buffer
	gif.Encode(&buf, img, nil)
	return buf.Bytes()
}

func TestThumbnailJPEG(t *testing.T) {
	result, err := Thumbnail(createTestJPEG(100, 100), ThumbnailDimension)
	if err != nil {
		t.Fatalf("Thumbnail JPEG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
	if len(result.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestThumbnailPNG(t *testing.T) {
	result, err := Thumbnail(createTestPNG(100, 100), ThumbnailDimension)
	if err != nil {
		t.Fatalf("Thumbnail PNG: %v", err)
	}
	if result.MIME != "image/png" {
		t.Errorf("expected image/png, got %s", result.MIME)
	}
}

func TestThumbnailGIF(t *testing.T) {
	result, err := Thumbnail(createTestGIF(300, 150), ThumbnailDimension)
	if err != nil {
		t.Fatalf("Thumbnail GIF: %v", err)
	}
	if result.MIME != "image/png" {
		t.Errorf("expected GIF thumbnails as image/png, got %s", result.MIME)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != ThumbnailDimension || img.Bounds().Dy() != ThumbnailDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", ThumbnailDimension, ThumbnailDimension/2, img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestThumbnailDownscale(t *testing.T) {
	result, err := Thumbnail(createTestJPEG(600, 400), ThumbnailDimension)
	if err != nil {
		t.Fatalf("Thumbnail large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > ThumbnailDimension || bounds.Dy() > ThumbnailDimension {
		t.Errorf("expected max %dx%d, got %dx%d", ThumbnailDimension, ThumbnailDimension, bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailSmallImageNotUpscaled(t *testing.T) {
	result, err := Thumbnail(createTestPNG(50, 20), ThumbnailDimension)
	if err != nil {
		t.Fatalf("Thumbnail small image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 20 {
		t.Errorf("small image should not be resized: got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestThumbnailInvalidFormat(t *testing.T) {
	if _, err := Thumbnail([]byte("not an image"), ThumbnailDimension); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestThumbnailTruncatedPNG(t *testing.T) {
	data := createTestPNG(40, 40)
	if _, err := Thumbnail(data[:len(data)/2], ThumbnailDimension); err == nil {
		t.Error("expected error for truncated image")
	}
}

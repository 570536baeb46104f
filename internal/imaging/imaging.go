package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
)

// ThumbnailDimension is the maximum width or height of a thumbnail.
const ThumbnailDimension = 128

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// AllowedMIME lists the image formats items may carry.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Result contains encoded image data.
type Result struct {
	Data []byte
	MIME string
}

// DetectMIME sniffs the content type from the bytes, not from any name or
// client header.
func DetectMIME(data []byte) string {
	return http.DetectContentType(data)
}

// Thumbnail decodes data, downscales it so neither side exceeds maxDim and
// re-encodes it. JPEG input stays JPEG; PNG and GIF become PNG.
func Thumbnail(data []byte, maxDim int) (*Result, error) {
	detected := DetectMIME(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if detected == "image/jpeg" {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("encoding JPEG: %w", err)
		}
		return &Result{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
	}

	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return &Result{Data: buf.Bytes(), MIME: "image/png"}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim using
// Catmull-Rom interpolation. Images already within bounds are returned as is.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

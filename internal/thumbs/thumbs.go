// Package thumbs generates JPEG thumbnails for image payloads.
package thumbs

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

const (
	// MaxDimension bounds the longer side of a generated thumbnail.
	MaxDimension = 200
	// DefaultQuality is the JPEG quality used when none is configured.
	DefaultQuality = 75
)

// Generate decodes an image payload, scales it to fit within
// MaxDimension on its longer side, and returns it re-encoded as JPEG.
// Payloads that do not decode as a supported image format return an
// error; callers treat that as "no thumbnail", not as a failure of the
// upload itself.
func Generate(payload []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	scaled := scale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// scale downsizes img so its longer side is at most maxDim, preserving
// aspect ratio. Images already within bounds are returned as-is.
func scale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	var tw, th int
	if w >= h {
		tw = maxDim
		th = h * maxDim / w
	} else {
		th = maxDim
		tw = w * maxDim / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	for y := 0; y < th; y++ {
		sy := b.Min.Y + y*h/th
		for x := 0; x < tw; x++ {
			sx := b.Min.X + x*w/tw
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}

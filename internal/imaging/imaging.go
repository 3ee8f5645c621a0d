// Package imaging decodes uploaded images: camera frames headed for the
// symbol decoder and product photos headed for storage.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// FrameDimension bounds the longer side of a camera frame before decoding.
	// Labels stay readable well below typical sensor resolutions.
	FrameDimension = 1280

	// PhotoDimension bounds the longer side of a stored product photo.
	PhotoDimension = 1024

	// JPEGQuality is used for stored photos.
	JPEGQuality = 85

	// MaxUploadBytes caps the size of a single uploaded image.
	MaxUploadBytes = 8 << 20
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is an encoded product photo.
type Photo struct {
	Data []byte
	MIME string
}

// Frame decodes a JPEG or PNG camera frame and scales it down to FrameDimension.
func Frame(r io.Reader) (image.Image, error) {
	img, err := decode(r)
	if err != nil {
		return nil, err
	}
	return fit(img, FrameDimension), nil
}

// ProductPhoto decodes a JPEG or PNG upload, scales it down to PhotoDimension
// and re-encodes it as JPEG.
func ProductPhoto(r io.Reader) (*Photo, error) {
	img, err := decode(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, PhotoDimension), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// decode sniffs the bytes instead of trusting the client's content type.
func decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)
	}

	if mime := http.DetectContentType(data); !allowedMIME[mime] {
		return nil, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// fit scales img with Catmull-Rom so neither side exceeds maxDim, keeping the
// aspect ratio. Smaller images are returned untouched.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	nw, nh := maxDim, max(1, h*maxDim/w)
	if h > w {
		nw, nh = max(1, w*maxDim/h), maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// internal/vision/buffer.go
package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxUploadDimension caps the longest side of images sent to the vision API.
	MaxUploadDimension = 1920
	// UploadJPEGQuality is the JPEG quality used for transmission.
	UploadJPEGQuality = 80
	// MaxDecodePixels bounds width*height of an image accepted for decoding.
	MaxDecodePixels = 50_000_000
)

// PixelBuffer is a decoded image as packed, non-premultiplied RGBA bytes,
// 4 bytes per pixel, row-major, no row padding.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixelBuffer allocates a zeroed buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// Valid reports whether the buffer holds at least one pixel and enough bytes
// for its dimensions.
func (b *PixelBuffer) Valid() bool {
	return b != nil && b.Width > 0 && b.Height > 0 && len(b.Pix) >= b.Width*b.Height*4
}

// Set writes one pixel. Out-of-bounds writes are ignored.
func (b *PixelBuffer) Set(x, y int, r, g, bl, a uint8) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	i := (y*b.Width + x) * 4
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
}

// Fill paints every pixel with one opaque color.
func (b *PixelBuffer) Fill(r, g, bl uint8) {
	for i := 0; i+3 < len(b.Pix); i += 4 {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, 255
	}
}

// Image exposes the buffer as an *image.NRGBA sharing the same bytes.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromImage converts any decoded image into a PixelBuffer.
func FromImage(img image.Image) *PixelBuffer {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	if nrgba.Stride == w*4 {
		return &PixelBuffer{Width: w, Height: h, Pix: nrgba.Pix}
	}

	buf := NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		copy(buf.Pix[y*w*4:(y+1)*w*4], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*4])
	}
	return buf
}

// Decode decodes JPEG, PNG, GIF, BMP, TIFF or WebP bytes into a PixelBuffer.
// The header is checked against MaxDecodePixels before any pixel data is
// allocated.
func Decode(data []byte) (*PixelBuffer, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxDecodePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	buf := FromImage(img)
	if !buf.Valid() {
		return nil, fmt.Errorf("decoded image has no pixels (%dx%d)", buf.Width, buf.Height)
	}
	return buf, nil
}

// EncodeJPEG fits the buffer into maxDimension on its longest side and
// encodes it as JPEG for transmission.
func EncodeJPEG(b *PixelBuffer, maxDimension, quality int) ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("cannot encode empty or truncated buffer")
	}

	var img image.Image = b.Image()
	if b.Width > maxDimension || b.Height > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return out.Bytes(), nil
}

package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// PixelBuffer is a mutable width x height grid of non-premultiplied RGBA
// pixels, 8 bits per channel, stored row-major with a stride of Width*4.
//
// A PixelBuffer is created by the decoder and owned exclusively by one
// pipeline invocation until it is encoded.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer allocates a zeroed (transparent black) buffer.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// Validate checks the buffer invariants:
// Width >= 1, Height >= 1 and len(Pix) == Width*Height*4.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil pixel buffer")
	}
	if b.Width < 1 || b.Height < 1 {
		return fmt.Errorf("invalid buffer size %dx%d", b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return fmt.Errorf("pixel data length %d, want %d for %dx%d", len(b.Pix), want, b.Width, b.Height)
	}
	return nil
}

// Offset returns the index of the R channel of pixel (x, y).
func (b *PixelBuffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// NRGBA views the buffer as an *image.NRGBA sharing the same memory.
func (b *PixelBuffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// BufferFromImage copies img into a new PixelBuffer anchored at (0, 0).
func BufferFromImage(img image.Image) (*PixelBuffer, error) {
	nrgba := imaging.Clone(img)
	buf := &PixelBuffer{
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Pix:    nrgba.Pix,
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Resample renders the buffer onto a new buffer of the given size using a
// Lanczos filter. A buffer that already has the requested size is returned
// unchanged.
func (b *PixelBuffer) Resample(width, height int) (*PixelBuffer, error) {
	if width == b.Width && height == b.Height {
		return b, nil
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid resample size %dx%d", width, height)
	}
	resized := imaging.Resize(b.NRGBA(), width, height, imaging.Lanczos)
	return &PixelBuffer{Width: width, Height: height, Pix: resized.Pix}, nil
}

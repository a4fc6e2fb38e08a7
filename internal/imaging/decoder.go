package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrSurfaceUnavailable reports that the runtime cannot provide a raster
// surface. It is a pass-through condition, not a failure: callers forward the
// original reference unchanged.
var ErrSurfaceUnavailable = errors.New("raster surface unavailable")

// DecodeError reports image bytes that are present but cannot be parsed.
type DecodeError struct {
	// Ref describes the offending reference (never the payload itself).
	Ref string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Ref, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DefaultMaxPixels bounds width*height of a decoded image (100 megapixels).
const DefaultMaxPixels = 100_000_000

// ErrImageTooLarge reports an image whose declared size exceeds the pixel
// limit. It is returned wrapped in a *DecodeError before any pixel data is
// allocated.
var ErrImageTooLarge = errors.New("image exceeds pixel limit")

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	maxPixels int64
}

// WithMaxPixels sets the largest width*height Decode accepts. n <= 0 selects
// DefaultMaxPixels.
func WithMaxPixels(n int64) DecodeOption {
	return func(o *decodeOptions) {
		if n > 0 {
			o.maxPixels = n
		}
	}
}

type decodeResult struct {
	buf    *PixelBuffer
	format string
	err    error
}

// Decode loads an inline-encoded image into a PixelBuffer with its natural
// width and height, honoring EXIF orientation.
//
// Returns:
//   - the decoded buffer and the format name registered with the image package
//     ("png", "jpeg", "gif", "bmp", "tiff", "webp").
//   - ErrNotInlineImage if ref is not an inline image; nothing is read.
//   - *DecodeError if the payload is malformed base64 or not a parseable image,
//     or wrapping ErrImageTooLarge when the header declares more pixels than
//     the limit (DefaultMaxPixels unless WithMaxPixels is given).
//   - ctx.Err() if the context ends before decoding completes.
//
// Decoding runs on its own goroutine. When ctx ends first, Decode returns at
// once but that goroutine runs to completion in the background and its result
// is discarded.
func Decode(ctx context.Context, ref ImageRef, opts ...DecodeOption) (*PixelBuffer, string, error) {
	if !ref.IsInlineImage() {
		return nil, "", ErrNotInlineImage
	}

	o := decodeOptions{maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(&o)
	}

	done := make(chan decodeResult, 1)
	go func() {
		buf, format, err := decodeInline(ref, o.maxPixels)
		done <- decodeResult{buf: buf, format: format, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case res := <-done:
		return res.buf, res.format, res.err
	}
}

func decodeInline(ref ImageRef, maxPixels int64) (*PixelBuffer, string, error) {
	data, _, err := ref.Bytes()
	if err != nil {
		return nil, "", &DecodeError{Ref: ref.String(), Err: err}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Ref: ref.String(), Err: err}
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > maxPixels {
		return nil, "", &DecodeError{
			Ref: ref.String(),
			Err: fmt.Errorf("%w: %dx%d is %d pixels, limit %d", ErrImageTooLarge, cfg.Width, cfg.Height, px, maxPixels),
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", &DecodeError{Ref: ref.String(), Err: err}
	}

	buf, err := BufferFromImage(img)
	if err != nil {
		return nil, "", &DecodeError{Ref: ref.String(), Err: err}
	}
	return buf, format, nil
}

// ImageInfo contains metadata about a referenced image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format, e.g. "png" or "jpeg".
	// Detection is based on content, not on file names.
	Format string `json:"format"`

	// HasAlpha indicates whether the decoded color model carries transparency.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded image in bytes.
	SizeBytes int `json:"size_bytes"`

	// Inline reports whether the reference is an inline-encoded image, i.e.
	// whether it is eligible for preprocessing.
	Inline bool `json:"inline"`
}

// Describe returns metadata about the image behind ref without decoding the
// full pixel data.
func Describe(ref ImageRef) (*ImageInfo, error) {
	data, _, err := ref.Bytes()
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Ref: ref.String(), Err: err}
	}

	// Opaque color models convert a fully transparent probe to an opaque color.
	hasAlpha := false
	if cfg.ColorModel != nil {
		_, _, _, a := cfg.ColorModel.Convert(color.NRGBA{}).RGBA()
		hasAlpha = a == 0
	}

	return &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		HasAlpha:  hasAlpha,
		SizeBytes: len(data),
		Inline:    ref.IsInlineImage(),
	}, nil
}

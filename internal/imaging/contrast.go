package imaging

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// DefaultContrast is the contrast amount applied when the caller does not
// specify one.
const DefaultContrast = 70

// Luminance returns the ITU-R BT.601 weighted brightness of an 8-bit RGB
// triple (0.299*R + 0.587*G + 0.114*B), in the range 0-255.
func Luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// ClampContrast limits a contrast amount to [-255, 255].
func ClampContrast(c int) int {
	if c < -255 {
		return -255
	}
	if c > 255 {
		return 255
	}
	return c
}

// ContrastFactor returns the remap slope for a contrast amount:
//
//	factor = 259*(c+255) / (255*(259-c))
//
// c is clamped to [-255, 255] first. ContrastFactor(0) is exactly 1 and
// ContrastFactor(-255) is 0. At c = 255 the slope is unbounded and this
// function returns +Inf; Remap handles that case as a hard threshold.
func ContrastFactor(c int) float64 {
	c = ClampContrast(c)
	if c == 255 {
		return math.Inf(1)
	}
	return 259 * float64(c+255) / (255 * float64(259-c))
}

// Remap applies the contrast slope around mid-gray (128) to a luminance
// value and returns the rounded, clamped 8-bit result.
//
// An infinite factor saturates: values below 128 map to 0, values above 128
// map to 255, and exactly 128 stays 128.
func Remap(gray, factor float64) uint8 {
	if math.IsInf(factor, 1) {
		switch {
		case gray < 128:
			return 0
		case gray > 128:
			return 255
		default:
			return 128
		}
	}
	adj := factor*(gray-128) + 128
	v := math.Floor(adj + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Normalize converts every pixel of buf to luminance-weighted grayscale and
// applies the contrast remap, in place. Alpha is left untouched.
//
// The transform is per-pixel and order independent, so rows are processed
// concurrently.
func Normalize(buf *PixelBuffer, contrast int) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	factor := ContrastFactor(contrast)
	stride := buf.Width * 4

	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := buf.Pix[y*stride : (y+1)*stride]
			for i := 0; i < len(row); i += 4 {
				v := Remap(Luminance(row[i], row[i+1], row[i+2]), factor)
				row[i] = v
				row[i+1] = v
				row[i+2] = v
			}
		}
	})

	return nil
}
